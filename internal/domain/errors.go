package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive integer", ErrInvalidInput)
	ErrUnknownProduct  = fmt.Errorf("%w: unknown product", ErrInvalidInput)
	ErrOutOfStock      = errors.New("requested quantity exceeds stock")

	ErrInvalidPickupDay     = errors.New("pickup is not offered on this day")
	ErrInsufficientLeadTime = errors.New("pickup slot starts in less than 24 hours")

	ErrEmptyCart             = errors.New("cart is empty")
	ErrCartAlreadyCheckedOut = errors.New("cart already checked out")
	ErrCheckoutInProgress    = errors.New("checkout already in progress for this cart")

	ErrCartNotFound  = errors.New("cart not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrSlotNotFound  = errors.New("slot not found")
)

type CartFullError struct {
	// MaxAddable is how many more units of the product still fit.
	MaxAddable int
	// MaxQuantity is the largest absolute quantity the product line may hold.
	MaxQuantity int
}

func (e *CartFullError) Error() string {
	return fmt.Sprintf("cart holds at most %d items, you can add %d more", MaxCartQuantity, e.MaxAddable)
}

type FullyBookedError struct {
	SlotID uuid.UUID
}

func (e *FullyBookedError) Error() string {
	return fmt.Sprintf("slot %s is fully booked", e.SlotID)
}

// Remaining is always zero; kept so callers can render capacity errors uniformly.
func (e *FullyBookedError) Remaining() int {
	return 0
}

type PaymentDeclinedError struct {
	Reason string
	Err    error
}

func (e *PaymentDeclinedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment declined: %s: %v", e.Reason, e.Err)
	}
	return "payment declined: " + e.Reason
}

func (e *PaymentDeclinedError) Unwrap() error {
	return e.Err
}

// FatalReconciliationRequiredError means money was captured but no order exists.
// It must reach an operator; it is never retried automatically.
type FatalReconciliationRequiredError struct {
	AttemptID      uuid.UUID
	CartID         uuid.UUID
	ProviderTxnRef string
	Amount         Money
	Err            error
}

func (e *FatalReconciliationRequiredError) Error() string {
	return fmt.Sprintf("reconciliation required: attempt %s captured %s (provider ref %s) without an order: %v",
		e.AttemptID, e.Amount, e.ProviderTxnRef, e.Err)
}

func (e *FatalReconciliationRequiredError) Unwrap() error {
	return e.Err
}
