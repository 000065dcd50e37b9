package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pickup-checkout/internal/db"
)

// querier is shared by every repository.
type querier struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func newQuerier(pool *pgxpool.Pool) querier {
	return querier{q: db.New(pool), pool: pool}
}

func withTx[T any](ctx context.Context, qr querier, fn func(q *db.Queries) (T, error)) (_ T, txErr error) {
	var zero T

	tx, err := qr.pool.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("pool.Begin: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(qr.q.WithTx(tx))
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

func inTx(ctx context.Context, qr querier, fn func(q *db.Queries) error) error {
	_, err := withTx(ctx, qr, func(q *db.Queries) (struct{}, error) {
		return struct{}{}, fn(q)
	})
	return err
}
