package customer

import "errors"

var (
	ErrInvalidPhone     = errors.New("phone must have 10 to 13 digits")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNegativeBalance  = errors.New("cashback balance cannot go below zero")
)
