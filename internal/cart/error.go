package cart

import (
	"errors"

	"pizzeria-be/internal/pricing"
)

var (
	// -- Session --
	ErrEmptySession = errors.New("cart session id is required")

	// -- Validation & Input --
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 50")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrHalfNotAllowed     = errors.New("these products cannot be combined as half-and-half")
	ErrModifierNotFound   = errors.New("modifier not found")
	ErrWrongModifierKind  = errors.New("modifier kind does not match its slot")
	ErrInvalidFulfillment = errors.New("fulfillment must be delivery or pickup")
	ErrPhoneRequired      = errors.New("phone is required to use cashback")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrGiftItemLocked   = errors.New("the free gift is managed by the promotion")
	ErrGiftNotEligible  = pricing.ErrGiftNotEligible
)
