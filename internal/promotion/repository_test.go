package promotion

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"pizzeria-be/internal/pricing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var couponCols = []string{"id", "code", "kind", "value", "active", "expires_on", "min_subtotal", "created_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_ListCoupons(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	expires := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM coupons ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(couponCols).
			AddRow("c1", "PIZZA10", "percent", "10", true, expires, "0", now).
			AddRow("c2", "MENOS5", "fixed", "5.00", false, nil, "30.00", now))

	coupons, err := repo.ListCoupons(context.Background())

	require.NoError(t, err)
	require.Len(t, coupons, 2)
	assert.Equal(t, pricing.CouponPercent, coupons[0].Kind)
	require.NotNil(t, coupons[0].ExpiresOn)
	assert.True(t, expires.Equal(*coupons[0].ExpiresOn))
	assert.Nil(t, coupons[1].ExpiresOn)
	assert.True(t, coupons[1].MinSubtotal.Equal(decimal.NewFromInt(30)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetCouponByCode(t *testing.T) {
	repo, mock := newMockRepo(t)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM coupons WHERE UPPER\(code\) = UPPER\(\$1\)`).
			WithArgs("PIZZA10").
			WillReturnRows(sqlmock.NewRows(couponCols).
				AddRow("c1", "PIZZA10", "percent", "10", true, nil, "0", time.Now()))

		c, err := repo.GetCouponByCode(context.Background(), "PIZZA10")
		require.NoError(t, err)
		assert.Equal(t, "c1", c.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM coupons").
			WithArgs("NOPE").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetCouponByCode(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateCoupon(t *testing.T) {
	repo, mock := newMockRepo(t)
	in := CouponInput{Code: "PIZZA10", Kind: pricing.CouponPercent, Value: decimal.NewFromInt(10), Active: true}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO coupons").
			WithArgs("PIZZA10", pricing.CouponPercent, sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(couponCols).
				AddRow("c1", "PIZZA10", "percent", "10", true, nil, "0", time.Now()))

		c, err := repo.CreateCoupon(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "c1", c.ID)
	})

	t.Run("Expiry stored as calendar day", func(t *testing.T) {
		expires := NewDate(2026, time.December, 31)
		dated := in
		dated.ExpiresOn = &expires

		mock.ExpectQuery("INSERT INTO coupons").
			WithArgs("PIZZA10", pricing.CouponPercent, sqlmock.AnyArg(), true,
				time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(couponCols).
				AddRow("c3", "PIZZA10", "percent", "10", true, expires.Time, "0", time.Now()))

		c, err := repo.CreateCoupon(context.Background(), dated)
		require.NoError(t, err)
		require.NotNil(t, c.ExpiresOn)
		assert.True(t, expires.Time.Equal(*c.ExpiresOn))
	})

	t.Run("Duplicate code", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO coupons").
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.CreateCoupon(context.Background(), in)
		assert.ErrorIs(t, err, ErrCouponExists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetCouponActiveAndDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE coupons SET active = \\$1 WHERE id = \\$2").
		WithArgs(false, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE coupons SET active").
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM coupons WHERE id = \\$1").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM coupons").
		WithArgs("c9").
		WillReturnError(errors.New("db down"))

	assert.NoError(t, repo.SetCouponActive(context.Background(), "c1", false))
	assert.ErrorIs(t, repo.SetCouponActive(context.Background(), "missing", true), ErrCouponNotFound)
	assert.NoError(t, repo.DeleteCoupon(context.Background(), "c1"))
	assert.EqualError(t, repo.DeleteCoupon(context.Background(), "c9"), "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetRule(t *testing.T) {
	repo, mock := newMockRepo(t)

	t.Run("Stored", func(t *testing.T) {
		mock.ExpectQuery("SELECT enabled, min_value, product_ids, updated_at FROM promotion_rule WHERE id = 1").
			WillReturnRows(sqlmock.NewRows([]string{"enabled", "min_value", "product_ids", "updated_at"}).
				AddRow(true, "80.00", "{p-coke,p-guarana}", time.Now()))

		rule, err := repo.GetRule(context.Background())
		require.NoError(t, err)
		assert.True(t, rule.Enabled)
		assert.True(t, rule.MinValue.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, []string{"p-coke", "p-guarana"}, rule.ProductIDs)
	})

	t.Run("Never saved", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM promotion_rule").
			WillReturnError(sql.ErrNoRows)

		rule, err := repo.GetRule(context.Background())
		require.NoError(t, err)
		assert.False(t, rule.Enabled)
		assert.Empty(t, rule.ProductIDs)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveRule(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO promotion_rule (.+) ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs(true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"enabled", "min_value", "product_ids", "updated_at"}).
			AddRow(true, "80", "{p-coke}", time.Now()))

	saved, err := repo.SaveRule(context.Background(), GiftRule{
		Enabled:    true,
		MinValue:   decimal.NewFromInt(80),
		ProductIDs: []string{"p-coke"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"p-coke"}, saved.ProductIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
