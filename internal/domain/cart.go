package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxCartQuantity caps the sum of quantities across all lines of one cart.
const MaxCartQuantity = 20

// Owner identifies whoever a cart belongs to. Guests are identified by a
// session-scoped surrogate the caller passes in.
type Owner struct {
	ID    string
	Guest bool
}

type Cart struct {
	ID      uuid.UUID
	OwnerID string
	// Guest carts belong to a session surrogate and are re-priced on every read.
	Guest bool
	Lines []CartLine

	CreatedAt       time.Time
	CheckedOutAt    *time.Time
	CheckoutAttempt *uuid.UUID
}

type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartTotals struct {
	Subtotal      Money
	TotalQuantity int
}

func (c Cart) Line(productID uuid.UUID) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}

	return CartLine{}, false
}

// QuantityExcept sums quantities of every line but productID's.
func (c Cart) QuantityExcept(productID uuid.UUID) int {
	total := 0
	for _, l := range c.Lines {
		if l.ProductID != productID {
			total += l.Quantity
		}
	}

	return total
}

func (c Cart) TotalQuantity() int {
	return c.QuantityExcept(uuid.Nil)
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CheckCapacity reports whether productID can hold newQty units without breaking
// the cart cap. The returned error carries how many more units still fit.
func (c Cart) CheckCapacity(productID uuid.UUID, newQty int) error {
	others := c.QuantityExcept(productID)
	if others+newQty <= MaxCartQuantity {
		return nil
	}

	existing := 0
	if l, ok := c.Line(productID); ok {
		existing = l.Quantity
	}

	return &CartFullError{
		MaxAddable:  max(MaxCartQuantity-others-existing, 0),
		MaxQuantity: max(MaxCartQuantity-others, 0),
	}
}

// Totals sums unit price times quantity over all lines.
func (c Cart) Totals(zero Money) (CartTotals, error) {
	subtotal := zero
	qty := 0

	for _, l := range c.Lines {
		var err error
		subtotal, err = subtotal.Add(l.UnitPrice.Times(l.Quantity))
		if err != nil {
			return CartTotals{}, fmt.Errorf("line %s: %w", l.ProductID, err)
		}
		qty += l.Quantity
	}

	return CartTotals{Subtotal: subtotal, TotalQuantity: qty}, nil
}
