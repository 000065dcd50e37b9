package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/port"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"
)

var errCacheMiss = errors.New("cache miss")

// Service serves product price and stock from Redis, falling back to the source
// on a miss. Cache failures never fail a read.
type Service struct {
	source  port.Catalog
	client  *redis.Client
	baseTTL time.Duration
	logger  *slog.Logger
	sfg     singleflight.Group
}

func New(source port.Catalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		source:  source,
		client:  client,
		baseTTL: ttl,
		logger:  logger,
	}
}

// cachedProduct is the JSON shape kept in Redis.
type cachedProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Stock    int             `json:"stock"`
}

func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	v, err, _ := s.sfg.Do(productID.String(), func() (interface{}, error) {
		p, err := s.get(ctx, productID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, errCacheMiss) {
			s.logger.WarnContext(ctx, "catalog cache get failed", "product_id", productID, "error", err)
		}

		p, err = s.source.GetProduct(ctx, productID)
		if err != nil {
			return domain.Product{}, err
		}

		if err := s.set(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "catalog cache set failed", "product_id", productID, "error", err)
		}

		return p, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return v.(domain.Product), nil
}

func (s *Service) get(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	data, err := s.client.Get(ctx, cacheKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Product{}, errCacheMiss
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("redis get failed: %w", err)
	}

	var cp cachedProduct
	if err := json.Unmarshal(data, &cp); err != nil {
		return domain.Product{}, fmt.Errorf("unmarshal product failed: %w", err)
	}

	cur, err := currency.ParseISO(cp.Currency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", cp.Currency, err)
	}

	return domain.Product{
		ID:    cp.ID,
		Name:  cp.Name,
		Price: domain.Money{Amount: cp.Amount, Currency: cur},
		Stock: cp.Stock,
	}, nil
}

func (s *Service) set(ctx context.Context, p domain.Product) error {
	data, err := json.Marshal(cachedProduct{
		ID:       p.ID,
		Name:     p.Name,
		Amount:   p.Price.Amount,
		Currency: p.Price.Currency.String(),
		Stock:    p.Stock,
	})
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	// jitter spreads expiry of products cached together
	ttl := s.baseTTL + time.Duration(rand.Int63n(int64(s.baseTTL)/4+1))
	if err := s.client.Set(ctx, cacheKey(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func cacheKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID)
}
