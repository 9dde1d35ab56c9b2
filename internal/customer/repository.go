package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pizzeria-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*Customer, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const customerColumns = `id, phone, name, cashback_balance, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (*Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.Phone, &c.Name, &c.CashbackBalance, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "ListCustomers"))

	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` WHERE name ILIKE $1 OR phone LIKE $1`
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		customers = append(customers, *c)
	}

	return customers, rows.Err()
}

// AdjustBalance adds delta (which may be negative) to the balance. The
// balance guard lives in the WHERE clause so concurrent debits cannot overdraw.
func (r *repository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `
		UPDATE customers
		SET cashback_balance = cashback_balance + $1, updated_at = NOW()
		WHERE id = $2 AND cashback_balance + $1 >= 0
		RETURNING `+customerColumns,
		delta, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNegativeBalance
	}
	return c, err
}
