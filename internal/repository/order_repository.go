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

var (
	errCheckoutGuardLost   = errors.New("checkout guard is no longer held by this attempt")
	errReservationNotHeld  = errors.New("slot reservation is no longer held")
	errOrderTotalsMismatch = errors.New("order total does not match its lines")
	errCartChanged         = errors.New("cart lines changed during checkout")
)

type orderRepository struct {
	querier
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{querier: newQuerier(pool)}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	row, err := r.q.GetOrder(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	lineRows, err := r.q.GetOrderLines(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderLines: %w", err)
	}

	order, err := mapGetOrderRowToDomain(row, lineRows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapGetOrderRowToDomain: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	ids, err := r.q.ListOrderIDsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrderIDsByOwner: %w", err)
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := r.GetOrder(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("GetOrder[%s]: %w", id, err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return err
	}

	rowsAffected, err := r.q.UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
		OrderID: orderID,
		Status:  string(status),
	})
	if err != nil {
		return fmt.Errorf("q.UpdateOrderStatus: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

type checkoutStore struct {
	querier
}

func NewCheckoutStore(pool *pgxpool.Pool) port.CheckoutStore {
	return &checkoutStore{querier: newQuerier(pool)}
}

func (s *checkoutStore) Commit(ctx context.Context, req port.CommitRequest) (domain.Order, error) {
	if len(req.Lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	total := domain.ZeroMoney(req.Total.Currency)
	for _, l := range req.Lines {
		var err error
		if total, err = total.Add(l.UnitPrice.Times(l.Quantity)); err != nil {
			return domain.Order{}, fmt.Errorf("line %s: %w", l.ProductID, err)
		}
	}
	if !total.Equal(req.Total) {
		return domain.Order{}, fmt.Errorf("%w: %s != %s", errOrderTotalsMismatch, total, req.Total)
	}

	return withTx(ctx, s.querier, func(q *db.Queries) (domain.Order, error) {
		cart, err := q.LockCart(ctx, req.CartID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrCartNotFound
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.LockCart: %w", err)
		}

		if cart.CheckoutAttempt == nil || *cart.CheckoutAttempt != req.AttemptID {
			if cart.CheckedOutAt != nil {
				return domain.Order{}, domain.ErrCartAlreadyCheckedOut
			}
			return domain.Order{}, errCheckoutGuardLost
		}

		items, err := q.GetCartItems(ctx, req.CartID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.GetCartItems: %w", err)
		}
		if len(items) == 0 {
			return domain.Order{}, domain.ErrEmptyCart
		}
		if err := matchLockedLines(items, req.Lines); err != nil {
			return domain.Order{}, err
		}

		err = q.InsertOrder(ctx, db.InsertOrderParams{
			ID:            req.OrderID,
			CartID:        req.CartID,
			OwnerID:       req.OwnerID,
			SlotID:        req.SlotID,
			AttemptID:     req.AttemptID,
			TotalAmount:   req.Total.Amount,
			TotalCurrency: req.Total.Currency.String(),
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.InsertOrder: %w", err)
		}

		for _, l := range req.Lines {
			err := q.InsertOrderLine(ctx, db.InsertOrderLineParams{
				OrderID:       req.OrderID,
				ProductID:     l.ProductID,
				Quantity:      int32(l.Quantity),
				PriceAmount:   l.UnitPrice.Amount,
				PriceCurrency: l.UnitPrice.Currency.String(),
			})
			if err != nil {
				return domain.Order{}, fmt.Errorf("q.InsertOrderLine[%s]: %w", l.ProductID, err)
			}
		}

		err = q.InsertPayment(ctx, db.InsertPaymentParams{
			OrderID:        req.OrderID,
			Amount:         req.Payment.Amount.Amount,
			Currency:       req.Payment.Amount.Currency.String(),
			ProviderTxnRef: req.Payment.ProviderTxnRef,
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.InsertPayment: %w", err)
		}

		err = q.InsertOrderStatus(ctx, db.InsertOrderStatusParams{
			OrderID: req.OrderID,
			Status:  string(domain.OrderStatusPending),
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.InsertOrderStatus: %w", err)
		}

		rowsAffected, err := q.CommitReservation(ctx, req.ReservationID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.CommitReservation: %w", err)
		}
		if rowsAffected == 0 {
			return domain.Order{}, errReservationNotHeld
		}

		if _, err := q.ClearCartItems(ctx, req.CartID); err != nil {
			return domain.Order{}, fmt.Errorf("q.ClearCartItems: %w", err)
		}

		rowsAffected, err = q.MarkCheckedOut(ctx, db.MarkCheckedOutParams{
			ID:              req.CartID,
			CheckoutAttempt: &req.AttemptID,
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.MarkCheckedOut: %w", err)
		}
		if rowsAffected == 0 {
			return domain.Order{}, errCheckoutGuardLost
		}

		now := time.Now()
		payment := req.Payment
		payment.CreatedAt = now

		return domain.Order{
			ID:        req.OrderID,
			CartID:    req.CartID,
			OwnerID:   req.OwnerID,
			SlotID:    req.SlotID,
			AttemptID: req.AttemptID,
			Total:     req.Total,
			Lines:     req.Lines,
			Payment:   payment,
			Status:    domain.OrderStatusPending,
			CreatedAt: now,
		}, nil
	})
}

func (s *checkoutStore) RecordReconciliation(ctx context.Context, rec port.Reconciliation) error {
	err := s.q.InsertReconciliation(ctx, db.InsertReconciliationParams{
		ID:             uuid.New(),
		AttemptID:      rec.AttemptID,
		CartID:         rec.CartID,
		ProviderTxnRef: rec.ProviderTxnRef,
		Amount:         rec.Amount.Amount,
		Currency:       rec.Amount.Currency.String(),
		Reason:         rec.Reason,
	})
	if err != nil {
		return fmt.Errorf("q.InsertReconciliation: %w", err)
	}

	return nil
}

func mapGetOrderRowToDomain(row db.GetOrderRow, lineRows []db.GetOrderLinesRow) (domain.Order, error) {
	total, err := mapMoney(row.TotalAmount, row.TotalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("total: %w", err)
	}

	paid, err := mapMoney(row.PaymentAmount, row.PaymentCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("payment: %w", err)
	}

	status, err := domain.ParseOrderStatus(row.Status)
	if err != nil {
		return domain.Order{}, err
	}

	lines := make([]domain.OrderLine, 0, len(lineRows))
	for _, lr := range lineRows {
		price, err := mapMoney(lr.PriceAmount, lr.PriceCurrency)
		if err != nil {
			return domain.Order{}, fmt.Errorf("line %s: %w", lr.ProductID, err)
		}

		lines = append(lines, domain.OrderLine{
			ProductID: lr.ProductID,
			Quantity:  int(lr.Quantity),
			UnitPrice: price,
		})
	}

	return domain.Order{
		ID:        row.ID,
		CartID:    row.CartID,
		OwnerID:   row.OwnerID,
		SlotID:    row.SlotID,
		AttemptID: row.AttemptID,
		Total:     total,
		Lines:     lines,
		Payment: domain.Payment{
			Amount:         paid,
			ProviderTxnRef: row.PaymentProviderTxnRef,
			CreatedAt:      row.PaymentCreatedAt,
		},
		Status:    status,
		CreatedAt: row.CreatedAt,
	}, nil
}

// matchLockedLines fails unless the locked cart holds exactly the lines being ordered.
func matchLockedLines(items []db.GetCartItemsRow, lines []domain.OrderLine) error {
	if len(items) != len(lines) {
		return fmt.Errorf("%w: %d lines in cart, %d ordered", errCartChanged, len(items), len(lines))
	}

	ordered := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		ordered[l.ProductID] = l.Quantity
	}

	for _, item := range items {
		qty, ok := ordered[item.ProductID]
		if !ok || qty != int(item.Quantity) {
			return fmt.Errorf("%w: product %s", errCartChanged, item.ProductID)
		}
	}

	return nil
}
