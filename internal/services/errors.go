package services

import "errors"

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderNotFound is returned when no order matches the invoice and customer.
	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyPaid   = errors.New("order is already paid")
	// ErrPersistence wraps a failed order commit. The cart is left as it was.
	ErrPersistence = errors.New("order could not be saved")

	ErrProductNotFound  = errors.New("product not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameTaken        = errors.New("name already taken")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)
