package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

// CheckoutStore commits a checkout attempt as a single unit of work.
type CheckoutStore interface {
	// Commit writes order, lines, payment and pending status, marks the reservation
	// committed and empties the cart, or does nothing at all.
	Commit(ctx context.Context, req CommitRequest) (domain.Order, error)
	RecordReconciliation(ctx context.Context, rec Reconciliation) error
}

type CommitRequest struct {
	OrderID       uuid.UUID
	AttemptID     uuid.UUID
	CartID        uuid.UUID
	OwnerID       string
	SlotID        uuid.UUID
	ReservationID uuid.UUID
	Lines         []domain.OrderLine
	Total         domain.Money
	Payment       domain.Payment
}

type Reconciliation struct {
	AttemptID      uuid.UUID
	CartID         uuid.UUID
	ProviderTxnRef string
	Amount         domain.Money
	Reason         string
}
