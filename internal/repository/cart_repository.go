package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pickup-checkout/internal/db"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/nikolayk812/pickup-checkout/internal/port"
)

type cartRepository struct {
	querier
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{querier: newQuerier(pool)}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	dbCart, err := r.q.GetCartByOwner(ctx, ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartByOwner: %w", err)
	}

	return r.loadLines(ctx, r.q, dbCart)
}

func (r *cartRepository) GetCartByID(ctx context.Context, cartID uuid.UUID) (domain.Cart, error) {
	dbCart, err := r.q.GetCartByID(ctx, cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartByID: %w", err)
	}

	return r.loadLines(ctx, r.q, dbCart)
}

func (r *cartRepository) EnsureCart(ctx context.Context, ownerID string, guest bool) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	err := r.q.EnsureCart(ctx, db.EnsureCartParams{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Guest:   guest,
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.EnsureCart: %w", err)
	}

	return r.GetCart(ctx, ownerID)
}

func (r *cartRepository) UpsertLine(ctx context.Context, cartID uuid.UUID, line domain.CartLine) error {
	if line.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	return inTx(ctx, r.querier, func(q *db.Queries) error {
		if err := lockOpenCart(ctx, q, cartID); err != nil {
			return err
		}

		err := q.UpsertCartItem(ctx, db.UpsertCartItemParams{
			CartID:        cartID,
			ProductID:     line.ProductID,
			Quantity:      int32(line.Quantity),
			PriceAmount:   line.UnitPrice.Amount,
			PriceCurrency: line.UnitPrice.Currency.String(),
		})
		if err != nil {
			return fmt.Errorf("q.UpsertCartItem: %w", err)
		}

		// a fresh selection means the cart is no longer the remains of a checkout
		if err := q.ResetCheckedOut(ctx, cartID); err != nil {
			return fmt.Errorf("q.ResetCheckedOut: %w", err)
		}

		return nil
	})
}

func (r *cartRepository) DeleteLine(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error) {
	return withTx(ctx, r.querier, func(q *db.Queries) (bool, error) {
		if err := lockOpenCart(ctx, q, cartID); err != nil {
			return false, err
		}

		rowsAffected, err := q.DeleteCartItem(ctx, db.DeleteCartItemParams{
			CartID:    cartID,
			ProductID: productID,
		})
		if err != nil {
			return false, fmt.Errorf("q.DeleteCartItem: %w", err)
		}

		return rowsAffected > 0, nil
	})
}

// lockOpenCart holds the cart row until the caller's transaction ends and
// refuses carts claimed by a checkout attempt.
func lockOpenCart(ctx context.Context, q *db.Queries, cartID uuid.UUID) error {
	cart, err := q.LockCart(ctx, cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCartNotFound
	}
	if err != nil {
		return fmt.Errorf("q.LockCart: %w", err)
	}

	if cart.CheckoutAttempt != nil {
		return domain.ErrCheckoutInProgress
	}

	return nil
}

func (r *cartRepository) AcquireCheckout(ctx context.Context, cartID, attemptID uuid.UUID) (bool, error) {
	rowsAffected, err := r.q.AcquireCheckout(ctx, db.AcquireCheckoutParams{
		ID:              cartID,
		CheckoutAttempt: &attemptID,
	})
	if err != nil {
		return false, fmt.Errorf("q.AcquireCheckout: %w", err)
	}

	return rowsAffected == 1, nil
}

func (r *cartRepository) ReleaseCheckout(ctx context.Context, cartID, attemptID uuid.UUID) error {
	_, err := r.q.ReleaseCheckout(ctx, db.ReleaseCheckoutParams{
		ID:              cartID,
		CheckoutAttempt: &attemptID,
	})
	if err != nil {
		return fmt.Errorf("q.ReleaseCheckout: %w", err)
	}

	return nil
}

func (r *cartRepository) ReleaseStaleCheckouts(ctx context.Context, startedBefore time.Time) (int64, error) {
	n, err := r.q.ReleaseStaleCheckouts(ctx, &startedBefore)
	if err != nil {
		return 0, fmt.Errorf("q.ReleaseStaleCheckouts: %w", err)
	}

	return n, nil
}

func (r *cartRepository) loadLines(ctx context.Context, q *db.Queries, dbCart db.Cart) (domain.Cart, error) {
	rows, err := q.GetCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
	}

	lines, err := mapCartItemRowsToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemRowsToDomain: %w", err)
	}

	return domain.Cart{
		ID:              dbCart.ID,
		OwnerID:         dbCart.OwnerID,
		Guest:           dbCart.Guest,
		Lines:           lines,
		CreatedAt:       dbCart.CreatedAt,
		CheckedOutAt:    dbCart.CheckedOutAt,
		CheckoutAttempt: dbCart.CheckoutAttempt,
	}, nil
}

func mapCartItemRowToDomain(row db.GetCartItemsRow) (domain.CartLine, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.CartLine{}, err
	}

	return domain.CartLine{
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		UnitPrice: price,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func mapCartItemRowsToDomain(rows []db.GetCartItemsRow) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	for _, row := range rows {
		line, err := mapCartItemRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemRowToDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}
