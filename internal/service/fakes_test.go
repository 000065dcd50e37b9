package service_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/port"
)

var (
	errGuardLost   = errors.New("checkout guard lost")
	errCartChanged = errors.New("cart lines changed during checkout")
)

type slotKey struct {
	day    domain.Day
	window domain.PickupWindow
}

// memStore keeps carts, slots, reservations and orders behind one mutex so the
// conditional updates behave like the single-row updates of the database.
type memStore struct {
	mu sync.Mutex

	carts        map[uuid.UUID]*domain.Cart
	cartsByOwner map[string]uuid.UUID

	slots        map[uuid.UUID]*domain.Slot
	slotsByKey   map[slotKey]uuid.UUID
	reservations map[uuid.UUID]*domain.Reservation

	orders          map[uuid.UUID]domain.Order
	reconciliations []port.Reconciliation
	commitErr       error
	now             func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		carts:        make(map[uuid.UUID]*domain.Cart),
		cartsByOwner: make(map[string]uuid.UUID),
		slots:        make(map[uuid.UUID]*domain.Slot),
		slotsByKey:   make(map[slotKey]uuid.UUID),
		reservations: make(map[uuid.UUID]*domain.Reservation),
		orders:       make(map[uuid.UUID]domain.Order),
		now:          time.Now,
	}
}

func cloneCart(c *domain.Cart) domain.Cart {
	out := *c
	out.Lines = slices.Clone(c.Lines)
	return out
}

// cart repository

type memCarts struct{ *memStore }

func (m memCarts) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.cartsByOwner[ownerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(m.carts[id]), nil
}

func (m memCarts) GetCartByID(_ context.Context, cartID uuid.UUID) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (m memCarts) EnsureCart(_ context.Context, ownerID string, guest bool) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.cartsByOwner[ownerID]; ok {
		return cloneCart(m.carts[id]), nil
	}

	c := &domain.Cart{ID: uuid.New(), OwnerID: ownerID, Guest: guest, CreatedAt: m.now()}
	m.carts[c.ID] = c
	m.cartsByOwner[ownerID] = c.ID

	return cloneCart(c), nil
}

func (m memCarts) UpsertLine(_ context.Context, cartID uuid.UUID, line domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.carts[cartID]
	if c.CheckoutAttempt != nil {
		return domain.ErrCheckoutInProgress
	}
	c.CheckedOutAt = nil

	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity = line.Quantity
			c.Lines[i].UnitPrice = line.UnitPrice
			return nil
		}
	}
	c.Lines = append(c.Lines, line)

	return nil
}

func (m memCarts) DeleteLine(_ context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.carts[cartID]
	if c.CheckoutAttempt != nil {
		return false, domain.ErrCheckoutInProgress
	}
	n := len(c.Lines)
	c.Lines = slices.DeleteFunc(c.Lines, func(l domain.CartLine) bool { return l.ProductID == productID })

	return len(c.Lines) < n, nil
}

func (m memCarts) AcquireCheckout(_ context.Context, cartID, attemptID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok || c.CheckoutAttempt != nil {
		return false, nil
	}
	c.CheckoutAttempt = &attemptID

	return true, nil
}

func (m memCarts) ReleaseCheckout(_ context.Context, cartID, attemptID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.carts[cartID]; ok && c.CheckoutAttempt != nil && *c.CheckoutAttempt == attemptID {
		c.CheckoutAttempt = nil
	}

	return nil
}

func (m memCarts) ReleaseStaleCheckouts(_ context.Context, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, c := range m.carts {
		if c.CheckoutAttempt != nil {
			c.CheckoutAttempt = nil
			n++
		}
	}

	return n, nil
}

// claimingCarts takes the checkout guard right after EnsureCart has read the cart,
// the way a checkout starting between the read and the line write would.
type claimingCarts struct {
	memCarts
	attemptID uuid.UUID
}

func (c claimingCarts) EnsureCart(ctx context.Context, ownerID string, guest bool) (domain.Cart, error) {
	cart, err := c.memCarts.EnsureCart(ctx, ownerID, guest)
	if err != nil {
		return domain.Cart{}, err
	}

	if _, err := c.AcquireCheckout(ctx, cart.ID, c.attemptID); err != nil {
		return domain.Cart{}, err
	}

	return cart, nil
}

// slot repository

type memSlots struct{ *memStore }

func (m memSlots) ResolveOrCreate(_ context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.slotLocked(day, window), nil
}

func (m *memStore) slotLocked(day domain.Day, window domain.PickupWindow) *domain.Slot {
	key := slotKey{day: day, window: window}
	if id, ok := m.slotsByKey[key]; ok {
		return m.slots[id]
	}

	s := &domain.Slot{ID: uuid.New(), Day: day, Window: window, Capacity: domain.SlotCapacity, CreatedAt: m.now()}
	m.slots[s.ID] = s
	m.slotsByKey[key] = s.ID

	return s
}

func (m memSlots) Find(_ context.Context, day domain.Day, window domain.PickupWindow) (domain.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.slotsByKey[slotKey{day: day, window: window}]
	if !ok {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	return *m.slots[id], nil
}

func (m memSlots) Get(_ context.Context, slotID uuid.UUID) (domain.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[slotID]
	if !ok {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	return *s, nil
}

func (m memSlots) TryReserve(_ context.Context, slotID, cartID uuid.UUID) (domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[slotID]
	if !ok {
		return domain.Reservation{}, domain.ErrSlotNotFound
	}
	if s.Booked >= s.Capacity {
		return domain.Reservation{}, &domain.FullyBookedError{SlotID: slotID}
	}
	s.Booked++

	r := &domain.Reservation{ID: uuid.New(), SlotID: slotID, CartID: cartID, Status: domain.ReservationHeld, CreatedAt: m.now()}
	m.reservations[r.ID] = r

	return *r, nil
}

func (m memSlots) Release(_ context.Context, reservationID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[reservationID]
	if !ok || r.Status != domain.ReservationHeld {
		return false, nil
	}
	r.Status = domain.ReservationReleased
	m.slots[r.SlotID].Booked--

	return true, nil
}

func (m memSlots) ListStaleReservations(_ context.Context, olderThan time.Time, limit int) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, r := range m.reservations {
		if r.Status == domain.ReservationHeld && r.CreatedAt.Before(olderThan) && len(out) < limit {
			out = append(out, *r)
		}
	}

	return out, nil
}

// checkout store

type memCheckoutStore struct{ *memStore }

func (m memCheckoutStore) Commit(_ context.Context, req port.CommitRequest) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.commitErr != nil {
		return domain.Order{}, m.commitErr
	}

	c, ok := m.carts[req.CartID]
	if !ok {
		return domain.Order{}, domain.ErrCartNotFound
	}
	if c.CheckoutAttempt == nil || *c.CheckoutAttempt != req.AttemptID {
		if c.CheckedOutAt != nil {
			return domain.Order{}, domain.ErrCartAlreadyCheckedOut
		}
		return domain.Order{}, errGuardLost
	}
	if len(c.Lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	if !sameLines(c.Lines, req.Lines) {
		return domain.Order{}, errCartChanged
	}

	r := m.reservations[req.ReservationID]
	if r == nil || r.Status != domain.ReservationHeld {
		return domain.Order{}, errors.New("reservation not held")
	}
	r.Status = domain.ReservationCommitted

	now := m.now()
	c.Lines = nil
	c.CheckedOutAt = &now
	c.CheckoutAttempt = nil

	order := domain.Order{
		ID:        req.OrderID,
		CartID:    req.CartID,
		OwnerID:   req.OwnerID,
		SlotID:    req.SlotID,
		AttemptID: req.AttemptID,
		Total:     req.Total,
		Lines:     req.Lines,
		Payment:   req.Payment,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
	}
	m.orders[order.ID] = order

	return order, nil
}

func sameLines(stored []domain.CartLine, ordered []domain.OrderLine) bool {
	if len(stored) != len(ordered) {
		return false
	}

	qty := make(map[uuid.UUID]int, len(ordered))
	for _, l := range ordered {
		qty[l.ProductID] = l.Quantity
	}
	for _, l := range stored {
		if q, ok := qty[l.ProductID]; !ok || q != l.Quantity {
			return false
		}
	}

	return true
}

func (m memCheckoutStore) RecordReconciliation(_ context.Context, rec port.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reconciliations = append(m.reconciliations, rec)
	return nil
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// collaborators

type memCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
}

func (c *memCatalog) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrUnknownProduct
	}
	return p, nil
}

func (c *memCatalog) put(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

type paymentsMock struct {
	mu       sync.Mutex
	requests []port.AuthorizationRequest
	fn       func(ctx context.Context, req port.AuthorizationRequest) (port.Authorization, error)
}

func (p *paymentsMock) Authorize(ctx context.Context, req port.AuthorizationRequest) (port.Authorization, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.fn != nil {
		return p.fn(ctx, req)
	}
	return port.Authorization{Approved: true, ProviderTxnRef: "txn-" + req.Reference.String()}, nil
}

func (p *paymentsMock) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type notifierMock struct {
	mu     sync.Mutex
	events []port.OrderCommittedEvent
	err    error
}

func (n *notifierMock) OrderCommitted(_ context.Context, event port.OrderCommittedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, event)
	return n.err
}
