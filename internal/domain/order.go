package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	OwnerID   string
	SlotID    uuid.UUID
	AttemptID uuid.UUID
	Total     Money
	Lines     []OrderLine
	Payment   Payment
	Status    OrderStatus

	CreatedAt time.Time
}

type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice Money
}

type Payment struct {
	Amount         Money
	ProviderTxnRef string

	CreatedAt time.Time
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: order status %q", ErrInvalidInput, s)
	}
}

// OrderLinesFromCart copies the priced cart lines; the order never points back at them.
func OrderLinesFromCart(lines []CartLine) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	return out
}

type Product struct {
	ID    uuid.UUID
	Name  string
	Price Money
	Stock int
}
