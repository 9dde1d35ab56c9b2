package pricing

import (
	"errors"
	"fmt"
)

var (
	// -- Coupon --
	ErrInvalidCoupon           = errors.New("coupon invalid or expired")
	ErrCouponNotFound          = fmt.Errorf("%w: code not found", ErrInvalidCoupon)
	ErrCouponInactive          = fmt.Errorf("%w: coupon inactive", ErrInvalidCoupon)
	ErrCouponExpired           = fmt.Errorf("%w: coupon expired", ErrInvalidCoupon)
	ErrCouponBelowMinimum      = fmt.Errorf("%w: subtotal below coupon minimum", ErrInvalidCoupon)
	ErrCouponNothingToDiscount = fmt.Errorf("%w: nothing to discount", ErrInvalidCoupon)
	ErrCouponNoLongerValid     = errors.New("coupon no longer valid for this cart")

	// -- Promotion --
	ErrNoGiftInCart    = errors.New("cart has no promotional gift")
	ErrGiftNotEligible = errors.New("product is not an eligible gift")
)
