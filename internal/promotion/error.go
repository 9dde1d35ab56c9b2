package promotion

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidCode       = errors.New("coupon code cannot be empty")
	ErrInvalidKind       = errors.New("coupon kind must be percent or fixed")
	ErrInvalidValue      = errors.New("coupon value must be positive")
	ErrPercentOutOfRange = errors.New("percent coupon cannot exceed 100")
	ErrInvalidMinimum    = errors.New("minimum value must not be negative")
	ErrUnknownGift       = errors.New("gift product does not exist")

	// -- Resource State --
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExists   = errors.New("coupon code already exists")

	// -- Constants (External Systems) --
	pgUniqueViolation = "23505"
)
