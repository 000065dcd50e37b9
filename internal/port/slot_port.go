package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type SlotRepository interface {
	// ResolveOrCreate is an idempotent insert-if-absent keyed on (day, window).
	ResolveOrCreate(ctx context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error)
	// Find returns domain.ErrSlotNotFound instead of creating the slot.
	Find(ctx context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error)
	Get(ctx context.Context, slotID uuid.UUID) (domain.Slot, error)

	// TryReserve claims one unit of capacity or fails with *domain.FullyBookedError.
	TryReserve(ctx context.Context, slotID, cartID uuid.UUID) (domain.Reservation, error)
	// Release gives the unit back; a reservation that is not held is left alone.
	Release(ctx context.Context, reservationID uuid.UUID) (bool, error)

	ListStaleReservations(ctx context.Context, olderThan time.Time, limit int) ([]domain.Reservation, error)
}
