package order

import "errors"

var (
	// -- Validation & Input --
	ErrEmptyCart            = errors.New("cart is empty")
	ErrNameRequired         = errors.New("customer name is required")
	ErrAddressRequired      = errors.New("street, number and neighborhood are required for delivery")
	ErrInvalidPaymentMethod = errors.New("payment method must be pix, card or cash")
	ErrInsufficientChange   = errors.New("change must cover the order total")
	ErrCashbackPhoneChanged = errors.New("cashback belongs to a different phone number")
	ErrCartChanged          = errors.New("cart changed, please review it before ordering")
	ErrInvalidStatus        = errors.New("unknown order status")

	// -- Resource State --
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidTransition    = errors.New("order cannot move to that status")
	ErrStatusConflict       = errors.New("order status was changed by someone else")
	ErrInsufficientCashback = errors.New("cashback balance is no longer sufficient")
)
