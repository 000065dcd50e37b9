package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/metrics"
	"github.com/nikolayk812/pickup-checkout/internal/port"
)

// SlotLedger answers whether a pickup slot is eligible and has room, and claims capacity.
// Capacity accounting lives entirely in the store; the ledger keeps no counters of its own.
type SlotLedger struct {
	repo        port.SlotRepository
	allowedDays []time.Weekday
	loc         *time.Location
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewSlotLedger(repo port.SlotRepository, allowedDays []time.Weekday, loc *time.Location, m *metrics.Metrics, logger *slog.Logger) *SlotLedger {
	return &SlotLedger{
		repo:        repo,
		allowedDays: slices.Clone(allowedDays),
		loc:         loc,
		metrics:     m,
		logger:      logger,
	}
}

func (l *SlotLedger) CheckEligibility(day domain.Day, window domain.PickupWindow, now time.Time) error {
	if _, err := domain.ParsePickupWindow(string(window)); err != nil {
		return err
	}

	if !slices.Contains(l.allowedDays, day.Weekday()) {
		return domain.ErrInvalidPickupDay
	}

	start := domain.PickupStart(day, window, l.loc)
	if start.Sub(now) < domain.MinLeadTime {
		return domain.ErrInsufficientLeadTime
	}

	return nil
}

func (l *SlotLedger) ResolveOrCreateSlot(ctx context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error) {
	slot, err := l.repo.ResolveOrCreate(ctx, day, window)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("repo.ResolveOrCreate: %w", err)
	}

	return slot, nil
}

func (l *SlotLedger) TryReserve(ctx context.Context, slotID, cartID uuid.UUID) (domain.Reservation, error) {
	reservation, err := l.repo.TryReserve(ctx, slotID, cartID)

	var fullErr *domain.FullyBookedError
	switch {
	case errors.As(err, &fullErr):
		l.metrics.SlotReservations.WithLabelValues("fully_booked").Inc()
		return domain.Reservation{}, err
	case err != nil:
		l.metrics.SlotReservations.WithLabelValues("error").Inc()
		return domain.Reservation{}, fmt.Errorf("repo.TryReserve: %w", err)
	}

	l.metrics.SlotReservations.WithLabelValues("reserved").Inc()

	return reservation, nil
}

// Release gives back the capacity held by reservation. It is safe to call more than once.
func (l *SlotLedger) Release(ctx context.Context, reservation domain.Reservation, cause string) error {
	released, err := l.repo.Release(ctx, reservation.ID)
	if err != nil {
		return fmt.Errorf("repo.Release: %w", err)
	}

	if released {
		l.metrics.SlotReleases.WithLabelValues(cause).Inc()
		l.logger.Info("slot reservation released",
			"reservation_id", reservation.ID, "slot_id", reservation.SlotID, "cause", cause)
	}

	return nil
}

// PeekRemaining is advisory only; TryReserve makes the authoritative decision.
func (l *SlotLedger) PeekRemaining(ctx context.Context, slotID uuid.UUID) (int, error) {
	slot, err := l.repo.Get(ctx, slotID)
	if err != nil {
		return 0, fmt.Errorf("repo.Get: %w", err)
	}

	return slot.Remaining(), nil
}

// CheckSlot reports availability for display. It never creates a slot record.
func (l *SlotLedger) CheckSlot(ctx context.Context, day domain.Day, window domain.PickupWindow, now time.Time) (domain.SlotAvailability, error) {
	if err := l.CheckEligibility(day, window, now); err != nil {
		return domain.SlotAvailability{}, err
	}

	slot, err := l.repo.Find(ctx, day, window)
	if errors.Is(err, domain.ErrSlotNotFound) {
		return domain.SlotAvailability{Available: true, Remaining: domain.SlotCapacity}, nil
	}
	if err != nil {
		return domain.SlotAvailability{}, fmt.Errorf("repo.Find: %w", err)
	}

	remaining := slot.Remaining()

	return domain.SlotAvailability{Available: remaining > 0, Remaining: remaining}, nil
}
