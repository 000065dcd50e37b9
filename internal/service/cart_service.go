package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/metrics"
	"github.com/nikolayk812/pickup-checkout/internal/port"
	"golang.org/x/text/currency"
)

// CartService maintains cart lines and enforces the per-cart quantity cap on every mutation.
type CartService struct {
	repo     port.CartRepository
	catalog  port.Catalog
	currency currency.Unit
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewCartService(repo port.CartRepository, catalog port.Catalog, cur currency.Unit, m *metrics.Metrics, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		catalog:  catalog,
		currency: cur,
		metrics:  m,
		logger:   logger,
	}
}

func (s *CartService) AddOrIncrement(ctx context.Context, owner domain.Owner, productID uuid.UUID, qty int) (domain.CartTotals, error) {
	return s.mutate(ctx, owner, productID, qty, func(existing int) int {
		return existing + qty
	})
}

func (s *CartService) SetQuantity(ctx context.Context, owner domain.Owner, productID uuid.UUID, qty int) (domain.CartTotals, error) {
	return s.mutate(ctx, owner, productID, qty, func(int) int {
		return qty
	})
}

// Remove is idempotent: removing an absent product, or from an absent cart, succeeds.
func (s *CartService) Remove(ctx context.Context, owner domain.Owner, productID uuid.UUID) (domain.CartTotals, error) {
	if owner.ID == "" {
		return domain.CartTotals{}, fmt.Errorf("%w: owner is empty", domain.ErrInvalidInput)
	}

	cart, err := s.repo.GetCart(ctx, owner.ID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.CartTotals{Subtotal: domain.ZeroMoney(s.currency)}, nil
	}
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("repo.GetCart: %w", err)
	}

	if cart.CheckoutAttempt != nil {
		return domain.CartTotals{}, s.reject(domain.ErrCheckoutInProgress, "checkout_in_progress")
	}

	_, err = s.repo.DeleteLine(ctx, cart.ID, productID)
	if errors.Is(err, domain.ErrCheckoutInProgress) {
		return domain.CartTotals{}, s.reject(err, "checkout_in_progress")
	}
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("repo.DeleteLine: %w", err)
	}

	return s.Totals(ctx, owner)
}

// Get returns the owner's cart with effective prices applied.
func (s *CartService) Get(ctx context.Context, owner domain.Owner) (domain.Cart, domain.CartTotals, error) {
	if owner.ID == "" {
		return domain.Cart{}, domain.CartTotals{}, fmt.Errorf("%w: owner is empty", domain.ErrInvalidInput)
	}

	cart, err := s.repo.GetCart(ctx, owner.ID)
	if errors.Is(err, domain.ErrCartNotFound) {
		empty := domain.Cart{OwnerID: owner.ID, Guest: owner.Guest}
		return empty, domain.CartTotals{Subtotal: domain.ZeroMoney(s.currency)}, nil
	}
	if err != nil {
		return domain.Cart{}, domain.CartTotals{}, fmt.Errorf("repo.GetCart: %w", err)
	}

	priced, err := s.Priced(ctx, cart)
	if err != nil {
		return domain.Cart{}, domain.CartTotals{}, err
	}

	totals, err := priced.Totals(domain.ZeroMoney(s.currency))
	if err != nil {
		return domain.Cart{}, domain.CartTotals{}, fmt.Errorf("cart.Totals: %w", err)
	}

	return priced, totals, nil
}

func (s *CartService) Totals(ctx context.Context, owner domain.Owner) (domain.CartTotals, error) {
	_, totals, err := s.Get(ctx, owner)
	return totals, err
}

// Priced applies the price each line is charged at: guest carts hold no snapshot
// until commit and are re-priced against the live catalog, other carts keep theirs.
func (s *CartService) Priced(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if !cart.Guest {
		return cart, nil
	}

	lines := make([]domain.CartLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		product, err := s.catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("catalog.GetProduct[%s]: %w", l.ProductID, err)
		}

		l.UnitPrice = product.Price
		lines = append(lines, l)
	}

	cart.Lines = lines

	return cart, nil
}

func (s *CartService) mutate(ctx context.Context, owner domain.Owner, productID uuid.UUID, qty int, newQuantity func(existing int) int) (domain.CartTotals, error) {
	if owner.ID == "" {
		return domain.CartTotals{}, fmt.Errorf("%w: owner is empty", domain.ErrInvalidInput)
	}
	if qty <= 0 {
		return domain.CartTotals{}, s.reject(domain.ErrInvalidQuantity, "invalid_quantity")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrUnknownProduct) {
		return domain.CartTotals{}, s.reject(err, "unknown_product")
	}
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}
	if product.Price.Currency != s.currency {
		return domain.CartTotals{}, fmt.Errorf("%w: product %s is priced in %s", domain.ErrInvalidInput, productID, product.Price.Currency)
	}

	if qty > product.Stock {
		return domain.CartTotals{}, s.reject(domain.ErrOutOfStock, "out_of_stock")
	}

	cart, err := s.repo.EnsureCart(ctx, owner.ID, owner.Guest)
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("repo.EnsureCart: %w", err)
	}

	if cart.CheckoutAttempt != nil {
		return domain.CartTotals{}, s.reject(domain.ErrCheckoutInProgress, "checkout_in_progress")
	}

	existing := 0
	if l, ok := cart.Line(productID); ok {
		existing = l.Quantity
	}

	newQty := newQuantity(existing)
	if err := cart.CheckCapacity(productID, newQty); err != nil {
		return domain.CartTotals{}, s.reject(err, "cart_full")
	}

	err = s.repo.UpsertLine(ctx, cart.ID, domain.CartLine{
		ProductID: productID,
		Quantity:  newQty,
		UnitPrice: product.Price,
	})
	// the guard may have been taken after EnsureCart read the cart
	if errors.Is(err, domain.ErrCheckoutInProgress) {
		return domain.CartTotals{}, s.reject(err, "checkout_in_progress")
	}
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("repo.UpsertLine: %w", err)
	}

	return s.Totals(ctx, owner)
}

func (s *CartService) reject(err error, reason string) error {
	s.metrics.CartRejections.WithLabelValues(reason).Inc()
	return err
}
