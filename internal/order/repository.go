package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pizzeria-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Settlement is the cashback movement booked together with an order.
type Settlement struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order, s Settlement) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatusTx(ctx context.Context, o *Order, to Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, code, customer_id, customer_name, phone, fulfillment, address,
	payment_method, change_for, notes, subtotal, delivery_fee, coupon_discount,
	cashback_applied, grand_total, coupon_code, cashback_earned, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var (
		o          Order
		customerID sql.NullString
		address    []byte
		changeFor  decimal.NullDecimal
	)
	err := row.Scan(
		&o.ID, &o.Code, &customerID, &o.CustomerName, &o.Phone, &o.Fulfillment, &address,
		&o.PaymentMethod, &changeFor, &o.Notes,
		&o.Totals.Subtotal, &o.Totals.DeliveryFee, &o.Totals.CouponDiscount,
		&o.Totals.CashbackApplied, &o.Totals.GrandTotal,
		&o.CouponCode, &o.CashbackEarned, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.CustomerID = customerID.String
	if changeFor.Valid {
		o.ChangeFor = &changeFor.Decimal
	}
	if len(address) > 0 {
		var a Address
		if err := json.Unmarshal(address, &a); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
		o.Address = &a
	}
	return &o, nil
}

func nullableJSON(a *Address) (any, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

// CreateOrderTx upserts the customer, books the cashback settlement and
// stores the order with its items atomically.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order, s Settlement) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", o.ID),
	)

	address, err := nullableJSON(o.Address)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// customer
	err = tx.QueryRowContext(ctx, `
		INSERT INTO customers (phone, name)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE
		SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id
	`, o.Phone, o.CustomerName).Scan(&o.CustomerID)
	if err != nil {
		log.Error("failed to upsert customer", zap.Error(err))
		return err
	}

	if s.Debit.IsPositive() {
		res, err := tx.ExecContext(ctx, `
			UPDATE customers
			SET cashback_balance = cashback_balance - $1, updated_at = NOW()
			WHERE id = $2 AND cashback_balance >= $1
		`, s.Debit, o.CustomerID)
		if err != nil {
			log.Error("failed to debit cashback", zap.Error(err))
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			log.Warn("cashback balance changed during checkout")
			return ErrInsufficientCashback
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, code, session_id, customer_id, customer_name, phone, fulfillment, address,
			payment_method, change_for, notes, subtotal, delivery_fee, coupon_discount,
			cashback_applied, grand_total, coupon_code, cashback_earned, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING created_at, updated_at
	`,
		o.ID, o.Code, o.SessionID, o.CustomerID, o.CustomerName, o.Phone, o.Fulfillment, address,
		o.PaymentMethod, nullableDecimal(o.ChangeFor), o.Notes,
		o.Totals.Subtotal, o.Totals.DeliveryFee, o.Totals.CouponDiscount,
		o.Totals.CashbackApplied, o.Totals.GrandTotal,
		o.CouponCode, o.CashbackEarned, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name, secondary_id, secondary_name,
				crust_name, addons, notes, quantity, unit_price, line_total, gift, line_no
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`,
			item.ID, o.ID, item.ProductID, item.ProductName, item.SecondaryID, item.SecondaryName,
			item.CrustName, pq.Array(item.Addons), item.Notes, item.Quantity,
			item.UnitPrice, item.LineTotal, item.Gift, i,
		)
		if err != nil {
			log.Error("failed to insert order item", zap.Int("item_index", i), zap.Error(err))
			return err
		}
	}

	if s.Credit.IsPositive() {
		_, err = tx.ExecContext(ctx, `
			UPDATE customers
			SET cashback_balance = cashback_balance + $1, updated_at = NOW()
			WHERE id = $2
		`, s.Credit, o.CustomerID)
		if err != nil {
			log.Error("failed to credit cashback", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order transaction committed", zap.Int("item_count", len(o.Items)))
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "ListOrders"))

	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (code ILIKE $%d OR customer_name ILIKE $%d OR phone LIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.DateFrom)
		argIndex++
	}
	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.DateTo)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *o)
	}

	return orders, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, secondary_id, secondary_name, crust_name,
			addons, notes, quantity, unit_price, line_total, gift
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.ProductName, &item.SecondaryID, &item.SecondaryName,
			&item.CrustName, pq.Array(&item.Addons), &item.Notes, &item.Quantity,
			&item.UnitPrice, &item.LineTotal, &item.Gift,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	return o, rows.Err()
}

// UpdateStatusTx moves o to the next status only if nobody else changed it
// first. Canceling refunds the debited cashback and claws back the earned one.
func (r *repository) UpdateStatusTx(ctx context.Context, o *Order, to Status) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatusTx"),
		zap.String("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, o.ID, o.Status)
	if err != nil {
		log.Error("failed to update status", zap.Error(err))
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return ErrStatusConflict
	}

	reversal := o.Totals.CashbackApplied.Sub(o.CashbackEarned)
	if to == StatusCanceled && o.CustomerID != "" && !reversal.IsZero() {
		_, err = tx.ExecContext(ctx, `
			UPDATE customers
			SET cashback_balance = GREATEST(cashback_balance + $1, 0), updated_at = NOW()
			WHERE id = $2
		`, reversal, o.CustomerID)
		if err != nil {
			log.Error("failed to reverse cashback", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}
