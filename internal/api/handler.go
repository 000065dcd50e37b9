package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/metrics"
	"github.com/nikolayk812/pickup-checkout/internal/service"
)

const (
	CustomerHeader = "X-Customer-ID"
	SessionHeader  = "X-Session-ID"

	guestOwnerPrefix = "guest:"
	maxBodyBytes     = 1 << 20
)

type cartService interface {
	AddOrIncrement(ctx context.Context, owner domain.Owner, productID uuid.UUID, qty int) (domain.CartTotals, error)
	SetQuantity(ctx context.Context, owner domain.Owner, productID uuid.UUID, qty int) (domain.CartTotals, error)
	Remove(ctx context.Context, owner domain.Owner, productID uuid.UUID) (domain.CartTotals, error)
	Get(ctx context.Context, owner domain.Owner) (domain.Cart, domain.CartTotals, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (domain.Order, error)
}

type slotChecker interface {
	CheckSlot(ctx context.Context, day domain.Day, window domain.PickupWindow, now time.Time) (domain.SlotAvailability, error)
}

type orderReader interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
}

type Handler struct {
	carts    cartService
	checkout checkoutService
	slots    slotChecker
	orders   orderReader
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	timeout  time.Duration
}

func NewHandler(carts cartService, checkout checkoutService, slots slotChecker, orders orderReader, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		carts:    carts,
		checkout: checkout,
		slots:    slots,
		orders:   orders,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		timeout:  30 * time.Second,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})

	r.Get("/slots/{day}/{window}", h.CheckSlot)
	r.Post("/checkout", h.Checkout)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{orderID}", h.GetOrder)
	})

	return r
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	totals, err := h.carts.AddOrIncrement(r.Context(), owner, productID, req.Quantity)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, mapTotalsToDTO(totals))
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	var req SetQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	totals, err := h.carts.SetQuantity(r.Context(), owner, productID, req.Quantity)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, mapTotalsToDTO(totals))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	totals, err := h.carts.Remove(r.Context(), owner, productID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, mapTotalsToDTO(totals))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	cart, totals, err := h.carts.Get(r.Context(), owner)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, mapCartToDTO(cart, totals))
}

func (h *Handler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	day, err := domain.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	window, err := domain.ParsePickupWindow(chi.URLParam(r, "window"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	availability, err := h.slots.CheckSlot(r.Context(), day, window, h.now())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SlotAvailabilityDTO{
		Day:       day.String(),
		Window:    string(window),
		Available: availability.Available,
		Remaining: availability.Remaining,
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req CheckoutRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cart_id must be a UUID")
		return
	}

	day, err := domain.ParseDay(req.Day)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	window, err := domain.ParsePickupWindow(req.Window)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		Owner:  owner,
		CartID: cartID,
		Day:    day,
		Window: window,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapOrderToDTO(order))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// other owners' orders are indistinguishable from missing ones
	if order.OwnerID != owner.ID {
		h.handleError(w, r, domain.ErrOrderNotFound)
		return
	}

	respondJSON(w, http.StatusOK, mapOrderToDTO(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrdersByOwner(r.Context(), owner.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrderToDTO(o))
	}

	respondJSON(w, http.StatusOK, out)
}

// ownerFromRequest prefers the customer id; a session id makes the caller a guest.
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (domain.Owner, bool) {
	if id := strings.TrimSpace(r.Header.Get(CustomerHeader)); id != "" {
		return domain.Owner{ID: id}, true
	}

	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return domain.Owner{ID: guestOwnerPrefix + id, Guest: true}, true
	}

	respondError(w, http.StatusUnauthorized, "unauthorized",
		fmt.Sprintf("either %s or %s header is required", CustomerHeader, SessionHeader))
	return domain.Owner{}, false
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", name+" must be a UUID")
		return uuid.Nil, false
	}

	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body is too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}

	return true
}
