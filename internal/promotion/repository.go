package promotion

import (
	"context"
	"database/sql"
	"errors"

	"pizzeria-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	ListCoupons(ctx context.Context) ([]Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	CreateCoupon(ctx context.Context, in CouponInput) (*Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error

	GetRule(ctx context.Context) (*GiftRule, error)
	SaveRule(ctx context.Context, rule GiftRule) (*GiftRule, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const couponColumns = `id, code, kind, value, active, expires_on, min_subtotal, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row scanner) (*Coupon, error) {
	var (
		c         Coupon
		expiresOn sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Code, &c.Kind, &c.Value, &c.Active, &expiresOn, &c.MinSubtotal, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if expiresOn.Valid {
		c.ExpiresOn = &expiresOn.Time
	}
	return &c, nil
}

// ---------- COUPONS ----------

func (r *repository) ListCoupons(ctx context.Context) ([]Coupon, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "ListCoupons"))

	rows, err := r.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var coupons []Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		coupons = append(coupons, *c)
	}

	return coupons, rows.Err()
}

func (r *repository) GetCouponByCode(ctx context.Context, code string) (*Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE UPPER(code) = UPPER($1)`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	return c, err
}

func dateArg(d *Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func (r *repository) CreateCoupon(ctx context.Context, in CouponInput) (*Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `
		INSERT INTO coupons (code, kind, value, active, expires_on, min_subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+couponColumns,
		in.Code, in.Kind, in.Value, in.Active, dateArg(in.ExpiresOn), in.MinSubtotal,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrCouponExists
		}
		logger.FromCtx(ctx).Error("failed to insert coupon", zap.String("code", in.Code), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *repository) SetCouponActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE coupons SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *repository) DeleteCoupon(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// ---------- GIFT RULE ----------

// GetRule returns the stored rule, or a disabled rule when none was saved yet.
func (r *repository) GetRule(ctx context.Context) (*GiftRule, error) {
	var rule GiftRule
	err := r.db.QueryRowContext(ctx, `
		SELECT enabled, min_value, product_ids, updated_at
		FROM promotion_rule
		WHERE id = 1
	`).Scan(&rule.Enabled, &rule.MinValue, pq.Array(&rule.ProductIDs), &rule.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return &GiftRule{MinValue: decimal.Zero, ProductIDs: []string{}}, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load promotion rule", zap.Error(err))
		return nil, err
	}
	return &rule, nil
}

func (r *repository) SaveRule(ctx context.Context, rule GiftRule) (*GiftRule, error) {
	var saved GiftRule
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO promotion_rule (id, enabled, min_value, product_ids, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
			min_value = EXCLUDED.min_value,
			product_ids = EXCLUDED.product_ids,
			updated_at = NOW()
		RETURNING enabled, min_value, product_ids, updated_at
	`, rule.Enabled, rule.MinValue, pq.Array(rule.ProductIDs)).
		Scan(&saved.Enabled, &saved.MinValue, pq.Array(&saved.ProductIDs), &saved.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to save promotion rule", zap.Error(err))
		return nil, err
	}
	return &saved, nil
}
