package domain

import "errors"

// Sentinel errors. The HTTP layer maps these to status codes with errors.Is,
// so wrapped variants carrying detail still match.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")

	ErrMedicineNotFound = errors.New("medicine not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrBillNotFound     = errors.New("bill not found")

	ErrInvalidRequest   = errors.New("invalid request")
	ErrNoValidSelection = errors.New("no valid lines in selection")

	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOrderFinalized guards the buckets of an order in a terminal status.
	ErrOrderFinalized = errors.New("order already finalized")

	// ErrConcurrencyConflict is returned when the optimistic version check
	// fails on write; callers should re-read and retry.
	ErrConcurrencyConflict = errors.New("order was modified concurrently")

	// ErrDuplicateRequest rejects a replayed reconciliation request id.
	ErrDuplicateRequest = errors.New("request already applied")
)
