package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type Catalog interface {
	// GetProduct returns domain.ErrUnknownProduct for missing products.
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
}

type AuthorizationRequest struct {
	// Reference makes repeated calls for one attempt idempotent on the provider side.
	Reference uuid.UUID
	Amount    domain.Money
}

type Authorization struct {
	Approved       bool
	ProviderTxnRef string
	DeclineReason  string
}

type PaymentAuthorizer interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (Authorization, error)
}

type OrderCommittedEvent struct {
	OrderID   uuid.UUID
	OwnerID   string
	SlotID    uuid.UUID
	Day       domain.Day
	Window    domain.PickupWindow
	Total     domain.Money
	Lines     []domain.OrderLine
	CreatedAt time.Time
}

type Notifier interface {
	OrderCommitted(ctx context.Context, event OrderCommittedEvent) error
}
