package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nikolayk812/pickup-checkout/internal/port"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// IdempotencyHeader carries the attempt reference so the provider never charges one attempt twice.
const IdempotencyHeader = "Idempotency-Key"

var ErrUnexpectedResponse = errors.New("unexpected payment provider response")

type authorizeRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

type authorizeResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason,omitempty"`
}

// Client authorizes payments against an HTTP provider. Transport failures and
// 5xx answers trip the breaker; declines are ordinary answers and do not.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[port.Authorization]
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker[port.Authorization](gobreaker.Settings{
		Name:        "payment-authorizer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

func (c *Client) Authorize(ctx context.Context, req port.AuthorizationRequest) (port.Authorization, error) {
	return c.cb.Execute(func() (port.Authorization, error) {
		return c.authorize(ctx, req)
	})
}

func (c *Client) authorize(ctx context.Context, req port.AuthorizationRequest) (port.Authorization, error) {
	body, err := json.Marshal(authorizeRequest{
		Reference: req.Reference.String(),
		Amount:    req.Amount.Amount,
		Currency:  req.Amount.Currency.String(),
	})
	if err != nil {
		return port.Authorization{}, fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authorizations", bytes.NewReader(body))
	if err != nil {
		return port.Authorization{}, fmt.Errorf("http.NewRequest: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(IdempotencyHeader, req.Reference.String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return port.Authorization{}, fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return port.Authorization{}, fmt.Errorf("%w: status %d: %s", ErrUnexpectedResponse, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return port.Authorization{}, fmt.Errorf("%w: decode: %v", ErrUnexpectedResponse, err)
	}

	switch out.Status {
	case "approved":
		if out.TransactionID == "" {
			return port.Authorization{}, fmt.Errorf("%w: approved without transaction id", ErrUnexpectedResponse)
		}
		return port.Authorization{Approved: true, ProviderTxnRef: out.TransactionID}, nil
	case "declined":
		return port.Authorization{Approved: false, ProviderTxnRef: out.TransactionID, DeclineReason: out.Reason}, nil
	default:
		return port.Authorization{}, fmt.Errorf("%w: status %q", ErrUnexpectedResponse, out.Status)
	}
}
