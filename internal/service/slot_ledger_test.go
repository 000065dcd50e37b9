package service_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *serviceSuite) TestLedger_CheckSlot() {
	t := suite.T()
	ctx := t.Context()

	availability, err := suite.ledger.CheckSlot(ctx, wednesday, domain.Window10to12, now)
	require.NoError(t, err)
	assert.True(t, availability.Available)
	assert.Equal(t, domain.SlotCapacity, availability.Remaining)

	_, err = memSlots{suite.store}.Find(ctx, wednesday, domain.Window10to12)
	require.ErrorIs(t, err, domain.ErrSlotNotFound, "checking never creates a slot")

	slot := suite.slot(wednesday, domain.Window10to12)
	suite.setBooked(slot.ID, 20)

	availability, err = suite.ledger.CheckSlot(ctx, wednesday, domain.Window10to12, now)
	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Zero(t, availability.Remaining)

	_, err = suite.ledger.CheckSlot(ctx, thursday, domain.Window10to12, now)
	require.ErrorIs(t, err, domain.ErrInvalidPickupDay)
}

func (suite *serviceSuite) TestLedger_ReleaseTwice() {
	t := suite.T()
	ctx := t.Context()

	slot := suite.slot(wednesday, domain.Window12to14)
	reservation, err := suite.ledger.TryReserve(ctx, slot.ID, uuid.New())
	require.NoError(t, err)

	require.NoError(t, suite.ledger.Release(ctx, reservation, "test"))
	require.NoError(t, suite.ledger.Release(ctx, reservation, "test"))

	remaining, err := suite.ledger.PeekRemaining(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotCapacity, remaining, "capacity is never over-released")
}

func (suite *serviceSuite) TestLedger_CustomPickupDays() {
	t := suite.T()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := service.NewSlotLedger(memSlots{suite.store}, []time.Weekday{time.Monday}, time.UTC, suite.metrics, logger)

	monday := domain.Day{Year: 2031, Month: time.January, Date: 13}

	require.NoError(t, ledger.CheckEligibility(monday, domain.Window10to12, now))
	require.ErrorIs(t, ledger.CheckEligibility(wednesday, domain.Window10to12, now), domain.ErrInvalidPickupDay)
}

func (suite *serviceSuite) TestLedger_StoreTimezone() {
	t := suite.T()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := service.NewSlotLedger(memSlots{suite.store}, pickupDays, tokyo, suite.metrics, logger)

	// Wednesday 10:00 in Tokyo is Wednesday 01:00 UTC, 23 hours after this instant
	tuesday := time.Date(2031, time.January, 7, 2, 0, 0, 0, time.UTC)
	require.ErrorIs(t, ledger.CheckEligibility(wednesday, domain.Window10to12, tuesday), domain.ErrInsufficientLeadTime)
	require.NoError(t, suite.ledger.CheckEligibility(wednesday, domain.Window10to12, tuesday))
}
