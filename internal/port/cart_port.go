package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type CartRepository interface {
	// GetCart returns domain.ErrCartNotFound when the owner never added anything.
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	GetCartByID(ctx context.Context, cartID uuid.UUID) (domain.Cart, error)
	// EnsureCart creates the owner's cart on first use and returns it either way.
	EnsureCart(ctx context.Context, ownerID string, guest bool) (domain.Cart, error)
	UpsertLine(ctx context.Context, cartID uuid.UUID, line domain.CartLine) error
	DeleteLine(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error)

	// AcquireCheckout marks the cart as held by attemptID; false when another attempt holds it.
	AcquireCheckout(ctx context.Context, cartID, attemptID uuid.UUID) (bool, error)
	ReleaseCheckout(ctx context.Context, cartID, attemptID uuid.UUID) error
	ReleaseStaleCheckouts(ctx context.Context, startedBefore time.Time) (int64, error)
}
