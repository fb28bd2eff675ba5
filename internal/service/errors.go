package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the booking service. Handlers translate these
// into HTTP statuses; nothing below this package ever leaks a raw driver
// error to a caller.

// ErrNotFound reports that the reservation target (or the reservation
// itself, for administrative operations) does not exist. Never retried.
var ErrNotFound = errors.New("not found")

// ErrNoSeats reports that the requested quantity exceeds the remaining
// seats. This is a business outcome, not a transient fault, and is never
// retried automatically.
var ErrNoSeats = errors.New("not enough seats available")

// ErrTransaction wraps storage-layer failures (lock timeouts, lost
// connections, failed commits). No partial state persists when it is
// returned, so the whole operation is safe to run again from scratch.
var ErrTransaction = errors.New("reservation transaction failed")

// ValidationError reports malformed input rejected before any storage
// access. Reason is safe to show to the end user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func validationErr(reason string) error { return &ValidationError{Reason: reason} }

func txErr(err error) error { return fmt.Errorf("%w: %v", ErrTransaction, err) }
