package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NormalizeCode is the canonical (upper-case, trimmed) form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FindCoupon looks a code up case-insensitively.
func FindCoupon(coupons []Coupon, code string) (*Coupon, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, false
	}
	c, ok := lo.Find(coupons, func(c Coupon) bool { return NormalizeCode(c.Code) == code })
	if !ok {
		return nil, false
	}
	return &c, true
}

// Expired reports whether now is past the end of the expiration day. The
// calendar date is read in now's location, so callers pass the store clock.
func (c Coupon) Expired(now time.Time) bool {
	if c.ExpiresOn == nil {
		return false
	}
	y, m, d := c.ExpiresOn.Date()
	endOfDay := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return !now.Before(endOfDay)
}

// Discount computes the raw amount for a subtotal: percent is uncapped,
// fixed never exceeds the subtotal.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	value := nonNegative(c.Value)
	switch c.Kind {
	case CouponPercent:
		return subtotal.Mul(value).Div(hundred)
	case CouponFixed:
		return decimal.Min(value, subtotal)
	default:
		return decimal.Zero
	}
}

// CheckCoupon validates c against the subtotal and explains any rejection.
// A nil coupon means the code did not match anything.
func CheckCoupon(c *Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	switch {
	case c == nil:
		return decimal.Zero, ErrCouponNotFound
	case !c.Active:
		return decimal.Zero, ErrCouponInactive
	case c.Expired(now):
		return decimal.Zero, ErrCouponExpired
	case !subtotal.IsPositive():
		return decimal.Zero, ErrCouponNothingToDiscount
	case c.MinSubtotal.IsPositive() && subtotal.LessThan(c.MinSubtotal):
		return decimal.Zero, ErrCouponBelowMinimum
	}
	return c.Discount(subtotal), nil
}

// ValidateCoupon returns the discount for code, or zero when the coupon
// cannot be used. It never fails.
func ValidateCoupon(coupons []Coupon, code string, subtotal decimal.Decimal, now time.Time) decimal.Decimal {
	c, _ := FindCoupon(coupons, code)
	discount, err := CheckCoupon(c, subtotal, now)
	if err != nil {
		return decimal.Zero
	}
	return discount
}

// RevalidateCoupon re-checks an already-applied coupon after the cart changed.
func RevalidateCoupon(c *Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	discount, err := CheckCoupon(c, subtotal, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrCouponNoLongerValid, err)
	}
	return discount, nil
}
