package service_test

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func (suite *serviceSuite) TestCart_AddOrIncrement() {
	t := suite.T()
	ctx := t.Context()

	owner := newCustomer()

	totals, err := suite.carts.AddOrIncrement(ctx, owner, suite.productA.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalQuantity)

	totals, err = suite.carts.AddOrIncrement(ctx, owner, suite.productA.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, totals.TotalQuantity)
	assert.True(t, usd("70.00").Equal(totals.Subtotal))

	cart, _, err := suite.carts.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 7, cart.Lines[0].Quantity)
}

func (suite *serviceSuite) TestCart_CapLeavesCartUnchanged() {
	t := suite.T()
	ctx := t.Context()

	owner := newCustomer()

	_, err := suite.carts.AddOrIncrement(ctx, owner, suite.productA.ID, 18)
	require.NoError(t, err)

	_, err = suite.carts.AddOrIncrement(ctx, owner, suite.productB.ID, 5)
	var fullErr *domain.CartFullError
	require.ErrorAs(t, err, &fullErr)
	assert.Equal(t, 2, fullErr.MaxAddable)

	_, err = suite.carts.SetQuantity(ctx, owner, suite.productA.ID, 21)
	require.ErrorAs(t, err, &fullErr)
	assert.Equal(t, 2, fullErr.MaxAddable)
	assert.Equal(t, 20, fullErr.MaxQuantity)

	_, totals, err := suite.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 18, totals.TotalQuantity)

	totals, err = suite.carts.AddOrIncrement(ctx, owner, suite.productB.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxCartQuantity, totals.TotalQuantity)

	assert.Equal(t, 2.0, testutil.ToFloat64(suite.metrics.CartRejections.WithLabelValues("cart_full")))
}

func (suite *serviceSuite) TestCart_Rejections() {
	tests := []struct {
		name      string
		productID func() uuid.UUID
		qty       int
		wantErr   error
	}{
		{
			name:      "zero quantity",
			productID: func() uuid.UUID { return suite.productA.ID },
			qty:       0,
			wantErr:   domain.ErrInvalidQuantity,
		},
		{
			name:      "negative quantity",
			productID: func() uuid.UUID { return suite.productA.ID },
			qty:       -3,
			wantErr:   domain.ErrInvalidQuantity,
		},
		{
			name:      "unknown product",
			productID: uuid.New,
			qty:       1,
			wantErr:   domain.ErrUnknownProduct,
		},
		{
			name: "more than in stock",
			productID: func() uuid.UUID {
				scarce := domain.Product{ID: uuid.New(), Name: "truffle", Price: usd("30.00"), Stock: 2}
				suite.catalog.put(scarce)
				return scarce.ID
			},
			qty:     3,
			wantErr: domain.ErrOutOfStock,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			owner := newCustomer()

			_, err := suite.carts.AddOrIncrement(ctx, owner, tt.productID(), tt.qty)
			require.ErrorIs(t, err, tt.wantErr)

			_, err = memCarts{suite.store}.GetCart(ctx, owner.ID)
			require.ErrorIs(t, err, domain.ErrCartNotFound, "rejected input creates no cart")
		})
	}
}

func (suite *serviceSuite) TestCart_SetQuantityAndRemove() {
	t := suite.T()
	ctx := t.Context()

	owner := newCustomer()

	_, err := suite.carts.AddOrIncrement(ctx, owner, suite.productA.ID, 5)
	require.NoError(t, err)

	totals, err := suite.carts.SetQuantity(ctx, owner, suite.productA.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.TotalQuantity)

	totals, err = suite.carts.Remove(ctx, owner, suite.productA.ID)
	require.NoError(t, err)
	assert.Zero(t, totals.TotalQuantity)

	// removing again, or from a cart that never existed, is fine
	_, err = suite.carts.Remove(ctx, owner, suite.productA.ID)
	require.NoError(t, err)

	totals, err = suite.carts.Remove(ctx, newCustomer(), suite.productA.ID)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Amount.IsZero())
}

func (suite *serviceSuite) TestCart_LockedDuringCheckout() {
	t := suite.T()
	ctx := t.Context()

	owner := newCustomer()
	cart := suite.fillCart(owner)

	acquired, err := memCarts{suite.store}.AcquireCheckout(ctx, cart.ID, uuid.New())
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = suite.carts.AddOrIncrement(ctx, owner, suite.productA.ID, 1)
	require.ErrorIs(t, err, domain.ErrCheckoutInProgress)

	_, err = suite.carts.Remove(ctx, owner, suite.productA.ID)
	require.ErrorIs(t, err, domain.ErrCheckoutInProgress)
}

func (suite *serviceSuite) TestCart_GuardTakenAfterRead() {
	t := suite.T()
	ctx := t.Context()

	owner := newCustomer()
	cart := suite.fillCart(owner)

	carts := claimingCarts{memCarts: memCarts{suite.store}, attemptID: uuid.New()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	racing := service.NewCartService(carts, suite.catalog, currency.USD, suite.metrics, logger)

	_, err := racing.AddOrIncrement(ctx, owner, suite.productA.ID, 3)
	require.ErrorIs(t, err, domain.ErrCheckoutInProgress)

	got, err := memCarts{suite.store}.GetCartByID(ctx, cart.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckoutAttempt)
	line, ok := got.Line(suite.productA.ID)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity, "line is unchanged")

	assert.Equal(t, 1.0, testutil.ToFloat64(suite.metrics.CartRejections.WithLabelValues("checkout_in_progress")))
}

func (suite *serviceSuite) TestCart_GuestRepricedFromCatalog() {
	t := suite.T()
	ctx := t.Context()

	guest := domain.Owner{ID: "guest:" + uuid.NewString(), Guest: true}
	customer := newCustomer()

	_, err := suite.carts.AddOrIncrement(ctx, guest, suite.productA.ID, 2)
	require.NoError(t, err)
	_, err = suite.carts.AddOrIncrement(ctx, customer, suite.productA.ID, 2)
	require.NoError(t, err)

	repriced := suite.productA
	repriced.Price = usd("12.50")
	suite.catalog.put(repriced)

	_, guestTotals, err := suite.carts.Get(ctx, guest)
	require.NoError(t, err)
	assert.True(t, usd("25.00").Equal(guestTotals.Subtotal), guestTotals.Subtotal.String())

	_, customerTotals, err := suite.carts.Get(ctx, customer)
	require.NoError(t, err)
	assert.True(t, usd("20.00").Equal(customerTotals.Subtotal), "registered carts keep the price they were added at")
}
