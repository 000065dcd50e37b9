package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pickup-checkout/internal/db"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type ProductRepository struct {
	querier
}

func NewProduct(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{querier: newQuerier(pool)}
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrUnknownProduct
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapMoney: %w", err)
	}

	return domain.Product{
		ID:    row.ID,
		Name:  row.Name,
		Price: price,
		Stock: int(row.Stock),
	}, nil
}

// SaveProduct seeds or overwrites a catalog entry.
func (r *ProductRepository) SaveProduct(ctx context.Context, p domain.Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("stock is negative")
	}

	err := r.q.UpsertProduct(ctx, db.UpsertProductParams{
		ID:            p.ID,
		Name:          p.Name,
		PriceAmount:   p.Price.Amount,
		PriceCurrency: p.Price.Currency.String(),
		Stock:         int32(p.Stock),
	})
	if err != nil {
		return fmt.Errorf("q.UpsertProduct: %w", err)
	}

	return nil
}
