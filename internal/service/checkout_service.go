package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/metrics"
	"github.com/nikolayk812/pickup-checkout/internal/port"
)

const (
	defaultPaymentTimeout = 10 * time.Second
	compensationTimeout   = 5 * time.Second
	notifyTimeout         = 5 * time.Second
)

type CheckoutState string

const (
	StateInitiated         CheckoutState = "initiated"
	StateSlotValidated     CheckoutState = "slot_validated"
	StateSlotReserved      CheckoutState = "slot_reserved"
	StatePaymentAuthorized CheckoutState = "payment_authorized"
	StateCommitted         CheckoutState = "committed"
	StateAborted           CheckoutState = "aborted"
)

type CheckoutRequest struct {
	Owner  domain.Owner
	CartID uuid.UUID
	Day    domain.Day
	Window domain.PickupWindow
}

type CheckoutOption func(*CheckoutService)

func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

func WithPaymentTimeout(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.paymentTimeout = d
	}
}

// CheckoutService turns a cart into an order against a pickup slot. Every
// attempt runs independently; slot capacity is serialized by the store only.
type CheckoutService struct {
	ledger   *SlotLedger
	carts    port.CartRepository
	pricer   *CartService
	store    port.CheckoutStore
	payments port.PaymentAuthorizer
	notifier port.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger

	now            func() time.Time
	paymentTimeout time.Duration
}

func NewCheckoutService(
	ledger *SlotLedger,
	carts port.CartRepository,
	pricer *CartService,
	store port.CheckoutStore,
	payments port.PaymentAuthorizer,
	notifier port.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...CheckoutOption,
) *CheckoutService {
	s := &CheckoutService{
		ledger:         ledger,
		carts:          carts,
		pricer:         pricer,
		store:          store,
		payments:       payments,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
		paymentTimeout: defaultPaymentTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type attempt struct {
	id          uuid.UUID
	state       CheckoutState
	cart        domain.Cart
	reservation *domain.Reservation
	guardHeld   bool
	logger      *slog.Logger
}

func (a *attempt) advance(ctx context.Context, next CheckoutState) {
	a.logger.DebugContext(ctx, "checkout state changed", "from", a.state, "to", next)
	a.state = next
}

func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (domain.Order, error) {
	a := &attempt{
		id:    uuid.New(),
		state: StateInitiated,
	}
	a.logger = s.logger.With("attempt_id", a.id, "cart_id", req.CartID, "day", req.Day.String(), "window", req.Window)

	order, err := s.run(ctx, a, req)
	if err != nil {
		failedIn := a.state
		a.state = StateAborted
		s.metrics.CheckoutAttempts.WithLabelValues(resultLabel(err)).Inc()
		a.logger.InfoContext(ctx, "checkout aborted", "step", failedIn, "error", err)
		return domain.Order{}, err
	}

	s.metrics.CheckoutAttempts.WithLabelValues("committed").Inc()
	a.logger.InfoContext(ctx, "checkout committed", "order_id", order.ID, "slot_id", order.SlotID, "total", order.Total.String())

	s.notify(ctx, a, order, req)

	return order, nil
}

func (s *CheckoutService) run(ctx context.Context, a *attempt, req CheckoutRequest) (domain.Order, error) {
	if req.Owner.ID == "" {
		return domain.Order{}, fmt.Errorf("%w: owner is empty", domain.ErrInvalidInput)
	}

	// Initiated -> SlotValidated: no side effects before this passes
	if err := s.ledger.CheckEligibility(req.Day, req.Window, s.now()); err != nil {
		return domain.Order{}, err
	}
	a.advance(ctx, StateSlotValidated)

	cart, subtotal, err := s.holdCart(ctx, a, req)
	if err != nil {
		return domain.Order{}, err
	}

	// SlotValidated -> SlotReserved
	slot, err := s.ledger.ResolveOrCreateSlot(ctx, req.Day, req.Window)
	if err != nil {
		s.compensate(ctx, a, "slot_resolve_failed")
		return domain.Order{}, err
	}

	reservation, err := s.ledger.TryReserve(ctx, slot.ID, cart.ID)
	if err != nil {
		s.compensate(ctx, a, "fully_booked")
		return domain.Order{}, err
	}
	a.reservation = &reservation
	a.logger = a.logger.With("slot_id", slot.ID, "reservation_id", reservation.ID)
	a.advance(ctx, StateSlotReserved)

	// SlotReserved -> PaymentAuthorized
	auth, err := s.authorize(ctx, a, subtotal)
	if err != nil {
		s.compensate(ctx, a, "payment_declined")
		return domain.Order{}, err
	}
	a.advance(ctx, StatePaymentAuthorized)

	// PaymentAuthorized -> Committed
	order, err := s.store.Commit(ctx, port.CommitRequest{
		OrderID:       uuid.New(),
		AttemptID:     a.id,
		CartID:        cart.ID,
		OwnerID:       cart.OwnerID,
		SlotID:        slot.ID,
		ReservationID: reservation.ID,
		Lines:         domain.OrderLinesFromCart(cart.Lines),
		Total:         subtotal,
		Payment: domain.Payment{
			Amount:         subtotal,
			ProviderTxnRef: auth.ProviderTxnRef,
		},
	})
	if err != nil {
		s.compensate(ctx, a, "commit_failed")
		return domain.Order{}, s.reconciliationRequired(ctx, a, auth, subtotal, err)
	}
	a.advance(ctx, StateCommitted)

	return order, nil
}

// holdCart takes the cart's checkout guard and prices it. Lines are read only
// after the guard is held so a finished checkout is never seen as a fresh cart.
func (s *CheckoutService) holdCart(ctx context.Context, a *attempt, req CheckoutRequest) (domain.Cart, domain.Money, error) {
	cart, err := s.carts.GetCartByID(ctx, req.CartID)
	if err != nil {
		return domain.Cart{}, domain.Money{}, fmt.Errorf("carts.GetCartByID: %w", err)
	}
	if cart.OwnerID != req.Owner.ID {
		return domain.Cart{}, domain.Money{}, domain.ErrCartNotFound
	}

	acquired, err := s.carts.AcquireCheckout(ctx, cart.ID, a.id)
	if err != nil {
		return domain.Cart{}, domain.Money{}, fmt.Errorf("carts.AcquireCheckout: %w", err)
	}
	if !acquired {
		return domain.Cart{}, domain.Money{}, domain.ErrCheckoutInProgress
	}
	a.guardHeld = true
	a.cart = cart

	cart, err = s.carts.GetCartByID(ctx, req.CartID)
	if err != nil {
		s.compensate(ctx, a, "cart_read_failed")
		return domain.Cart{}, domain.Money{}, fmt.Errorf("carts.GetCartByID: %w", err)
	}

	if cart.IsEmpty() {
		s.compensate(ctx, a, "empty_cart")
		if cart.CheckedOutAt != nil {
			return domain.Cart{}, domain.Money{}, domain.ErrCartAlreadyCheckedOut
		}
		return domain.Cart{}, domain.Money{}, domain.ErrEmptyCart
	}

	priced, err := s.pricer.Priced(ctx, cart)
	if err != nil {
		s.compensate(ctx, a, "pricing_failed")
		return domain.Cart{}, domain.Money{}, err
	}

	totals, err := priced.Totals(domain.ZeroMoney(s.pricer.currency))
	if err != nil {
		s.compensate(ctx, a, "pricing_failed")
		return domain.Cart{}, domain.Money{}, fmt.Errorf("cart.Totals: %w", err)
	}

	a.cart = priced

	return priced, totals.Subtotal, nil
}

func (s *CheckoutService) authorize(ctx context.Context, a *attempt, amount domain.Money) (port.Authorization, error) {
	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	auth, err := s.payments.Authorize(payCtx, port.AuthorizationRequest{
		Reference: a.id,
		Amount:    amount,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return port.Authorization{}, &domain.PaymentDeclinedError{Reason: "payment authorizer timed out", Err: err}
	}
	if err != nil {
		return port.Authorization{}, &domain.PaymentDeclinedError{Reason: "payment authorizer unavailable", Err: err}
	}
	if !auth.Approved {
		return port.Authorization{}, &domain.PaymentDeclinedError{Reason: auth.DeclineReason}
	}

	return auth, nil
}

// compensate undoes whatever the attempt holds. It runs detached from the
// request context so a cancelled client cannot leak slot capacity.
func (s *CheckoutService) compensate(ctx context.Context, a *attempt, cause string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if a.reservation != nil {
		if err := s.ledger.Release(cctx, *a.reservation, cause); err != nil {
			a.logger.ErrorContext(ctx, "slot release failed, reservation left for the sweeper", "error", err)
		}
	}

	if a.guardHeld {
		if err := s.carts.ReleaseCheckout(cctx, a.cart.ID, a.id); err != nil {
			a.logger.ErrorContext(ctx, "checkout guard release failed", "error", err)
		}
		a.guardHeld = false
	}
}

func (s *CheckoutService) reconciliationRequired(ctx context.Context, a *attempt, auth port.Authorization, amount domain.Money, cause error) error {
	s.metrics.Reconciliations.Inc()

	fatal := &domain.FatalReconciliationRequiredError{
		AttemptID:      a.id,
		CartID:         a.cart.ID,
		ProviderTxnRef: auth.ProviderTxnRef,
		Amount:         amount,
		Err:            cause,
	}

	a.logger.ErrorContext(ctx, "payment captured without order, manual reconciliation required",
		"provider_txn_ref", auth.ProviderTxnRef, "amount", amount.String(), "error", cause)

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	err := s.store.RecordReconciliation(rctx, port.Reconciliation{
		AttemptID:      a.id,
		CartID:         a.cart.ID,
		ProviderTxnRef: auth.ProviderTxnRef,
		Amount:         amount,
		Reason:         cause.Error(),
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "reconciliation record not persisted", "error", err)
	}

	return fatal
}

func (s *CheckoutService) notify(ctx context.Context, a *attempt, order domain.Order, req CheckoutRequest) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	err := s.notifier.OrderCommitted(nctx, port.OrderCommittedEvent{
		OrderID:   order.ID,
		OwnerID:   order.OwnerID,
		SlotID:    order.SlotID,
		Day:       req.Day,
		Window:    req.Window,
		Total:     order.Total,
		Lines:     order.Lines,
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "order committed notification failed", "order_id", order.ID, "error", err)
	}
}

func resultLabel(err error) string {
	var (
		fullErr     *domain.FullyBookedError
		declinedErr *domain.PaymentDeclinedError
		fatalErr    *domain.FatalReconciliationRequiredError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidPickupDay), errors.Is(err, domain.ErrInsufficientLeadTime):
		return "ineligible"
	case errors.As(err, &fullErr):
		return "fully_booked"
	case errors.As(err, &declinedErr):
		return "payment_declined"
	case errors.As(err, &fatalErr):
		return "reconciliation_required"
	case errors.Is(err, domain.ErrCartAlreadyCheckedOut), errors.Is(err, domain.ErrCheckoutInProgress):
		return "duplicate"
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrCartNotFound), errors.Is(err, domain.ErrInvalidInput):
		return "rejected"
	default:
		return "error"
	}
}
