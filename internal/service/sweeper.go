package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nikolayk812/pickup-checkout/internal/port"
)

const sweepBatchSize = 100

// ReservationSweeper gives back capacity held by checkout attempts that never
// finished, e.g. because the process died between reserving and committing.
type ReservationSweeper struct {
	ledger   *SlotLedger
	slots    port.SlotRepository
	carts    port.CartRepository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewReservationSweeper(ledger *SlotLedger, slots port.SlotRepository, carts port.CartRepository, ttl, interval time.Duration, logger *slog.Logger) *ReservationSweeper {
	return &ReservationSweeper{
		ledger:   ledger,
		slots:    slots,
		carts:    carts,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *ReservationSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "reservation sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep releases every held reservation and checkout guard older than the TTL
// and reports how many reservations it released.
func (s *ReservationSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	released := 0

	for {
		stale, err := s.slots.ListStaleReservations(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return released, err
		}

		for _, r := range stale {
			if err := s.ledger.Release(ctx, r, "expired"); err != nil {
				s.logger.ErrorContext(ctx, "expired reservation release failed", "reservation_id", r.ID, "error", err)
				return released, err
			}
			released++
		}

		if len(stale) < sweepBatchSize {
			break
		}
	}

	guards, err := s.carts.ReleaseStaleCheckouts(ctx, cutoff)
	if err != nil {
		return released, err
	}

	if released > 0 || guards > 0 {
		s.logger.InfoContext(ctx, "stale checkouts swept", "reservations", released, "cart_guards", guards)
	}

	return released, nil
}
