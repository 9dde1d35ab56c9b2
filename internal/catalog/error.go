package catalog

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidName         = errors.New("name cannot be empty")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrCategoryRequired    = errors.New("category id is required")
	ErrInvalidModifierKind = errors.New("modifier kind must be crust or addon")

	// -- Resource State --
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrModifierNotFound = errors.New("modifier not found")
	ErrCategoryExists   = errors.New("category already exists")

	// -- Constants (External Systems) --
	pgUniqueViolation = "23505"
)
