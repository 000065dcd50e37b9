package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pickup-checkout/internal/db"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/port"
)

type slotRepository struct {
	querier
}

func NewSlot(pool *pgxpool.Pool) port.SlotRepository {
	return &slotRepository{querier: newQuerier(pool)}
}

func (r *slotRepository) ResolveOrCreate(ctx context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error) {
	// concurrent first callers race on the unique (day, time_window) key; losers insert nothing
	err := r.q.InsertSlotIfAbsent(ctx, db.InsertSlotIfAbsentParams{
		ID:         uuid.New(),
		Day:        dayParam(day),
		TimeWindow: string(window),
		Capacity:   domain.SlotCapacity,
	})
	if err != nil {
		return domain.Slot{}, fmt.Errorf("q.InsertSlotIfAbsent: %w", err)
	}

	return r.Find(ctx, day, window)
}

func (r *slotRepository) Find(ctx context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error) {
	row, err := r.q.GetSlotByKey(ctx, db.GetSlotByKeyParams{
		Day:        dayParam(day),
		TimeWindow: string(window),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	if err != nil {
		return domain.Slot{}, fmt.Errorf("q.GetSlotByKey: %w", err)
	}

	return mapSlotToDomain(row), nil
}

func (r *slotRepository) Get(ctx context.Context, slotID uuid.UUID) (domain.Slot, error) {
	row, err := r.q.GetSlot(ctx, slotID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	if err != nil {
		return domain.Slot{}, fmt.Errorf("q.GetSlot: %w", err)
	}

	return mapSlotToDomain(row), nil
}

func (r *slotRepository) TryReserve(ctx context.Context, slotID, cartID uuid.UUID) (domain.Reservation, error) {
	return withTx(ctx, r.querier, func(q *db.Queries) (domain.Reservation, error) {
		rowsAffected, err := q.ReserveSlot(ctx, slotID)
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("q.ReserveSlot: %w", err)
		}

		if rowsAffected == 0 {
			if _, err := q.GetSlot(ctx, slotID); errors.Is(err, pgx.ErrNoRows) {
				return domain.Reservation{}, domain.ErrSlotNotFound
			}
			return domain.Reservation{}, &domain.FullyBookedError{SlotID: slotID}
		}

		reservation := domain.Reservation{
			ID:        uuid.New(),
			SlotID:    slotID,
			CartID:    cartID,
			Status:    domain.ReservationHeld,
			CreatedAt: time.Now(),
		}

		err = q.InsertReservation(ctx, db.InsertReservationParams{
			ID:     reservation.ID,
			SlotID: slotID,
			CartID: cartID,
		})
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("q.InsertReservation: %w", err)
		}

		return reservation, nil
	})
}

func (r *slotRepository) Release(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	return withTx(ctx, r.querier, func(q *db.Queries) (bool, error) {
		slotID, err := q.ReleaseReservation(ctx, reservationID)
		if errors.Is(err, pgx.ErrNoRows) {
			// already released, committed or never existed
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("q.ReleaseReservation: %w", err)
		}

		if _, err := q.UnreserveSlot(ctx, slotID); err != nil {
			return false, fmt.Errorf("q.UnreserveSlot: %w", err)
		}

		return true, nil
	})
}

func (r *slotRepository) ListStaleReservations(ctx context.Context, olderThan time.Time, limit int) ([]domain.Reservation, error) {
	rows, err := r.q.ListStaleReservations(ctx, db.ListStaleReservationsParams{
		CreatedAt: olderThan,
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("q.ListStaleReservations: %w", err)
	}

	reservations := make([]domain.Reservation, 0, len(rows))
	for _, row := range rows {
		reservations = append(reservations, domain.Reservation{
			ID:        row.ID,
			SlotID:    row.SlotID,
			CartID:    row.CartID,
			Status:    domain.ReservationStatus(row.Status),
			CreatedAt: row.CreatedAt,
		})
	}

	return reservations, nil
}

func mapSlotToDomain(row db.Slot) domain.Slot {
	return domain.Slot{
		ID:        row.ID,
		Day:       domain.DayOf(row.Day),
		Window:    domain.PickupWindow(row.TimeWindow),
		Booked:    int(row.Booked),
		Capacity:  int(row.Capacity),
		CreatedAt: row.CreatedAt,
	}
}
