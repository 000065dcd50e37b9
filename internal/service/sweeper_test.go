package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *serviceSuite) newSweeper(interval time.Duration) *service.ReservationSweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewReservationSweeper(suite.ledger, memSlots{suite.store}, memCarts{suite.store}, time.Minute, interval, logger)
}

// stale holds one unit of capacity with a reservation created an hour ago.
func (suite *serviceSuite) stale(slot domain.Slot) domain.Reservation {
	reservation, err := memSlots{suite.store}.TryReserve(suite.T().Context(), slot.ID, uuid.New())
	suite.Require().NoError(err)

	suite.store.mu.Lock()
	suite.store.reservations[reservation.ID].CreatedAt = time.Now().Add(-time.Hour)
	suite.store.mu.Unlock()

	return reservation
}

func (suite *serviceSuite) TestSweeper_Sweep() {
	t := suite.T()
	ctx := t.Context()

	slot := suite.slot(wednesday, domain.Window16to18)
	suite.stale(slot)
	suite.stale(slot)

	// a fresh reservation survives the sweep
	_, err := memSlots{suite.store}.TryReserve(ctx, slot.ID, uuid.New())
	require.NoError(t, err)

	released, err := suite.newSweeper(time.Hour).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, released)

	remaining, err := suite.ledger.PeekRemaining(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotCapacity-1, remaining)

	released, err = suite.newSweeper(time.Hour).Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}

func (suite *serviceSuite) TestSweeper_RunStopsWithContext() {
	t := suite.T()

	slot := suite.slot(wednesday, domain.Window10to12)
	suite.stale(slot)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		suite.newSweeper(10 * time.Millisecond).Run(ctx)
	}()

	require.Eventually(t, func() bool {
		remaining, err := suite.ledger.PeekRemaining(t.Context(), slot.ID)
		return err == nil && remaining == domain.SlotCapacity
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
