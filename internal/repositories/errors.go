package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every lookup that finds no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique name is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrStatusMismatch is returned by a guarded status update whose expected
	// current status did not match.
	ErrStatusMismatch = errors.New("status mismatch")
	// ErrCartNotFound is returned by a checkout whose session has no stored cart,
	// usually because another checkout already consumed it.
	ErrCartNotFound = errors.New("cart not found")
)
