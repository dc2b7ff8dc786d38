package apperr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds raised by the data layer. Handlers translate these to
// HTTP statuses; internal store error text never reaches callers.
var (
	// ErrNotFound covers both "entity absent" and "entity not owned by the
	// caller" — ownership checks and existence checks are deliberately the
	// same filter, so a miss on either looks identical.
	ErrNotFound = errors.New("not found")

	// ErrUnprocessable marks a semantically invalid request against
	// valid-shaped data (already reported, below accreditation, etc).
	ErrUnprocessable = errors.New("unprocessable entity")

	// ErrBadRequest marks a malformed token or payload.
	ErrBadRequest = errors.New("bad request")

	// ErrInternal marks a required downstream write that did not report
	// success. System fault, not caller error.
	ErrInternal = errors.New("internal server error")
)

// NotFound wraps ErrNotFound with context.
func NotFound(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Unprocessable wraps ErrUnprocessable with context.
func Unprocessable(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnprocessable)...)
}

// BadRequest wraps ErrBadRequest with context.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrBadRequest)...)
}

// Internal wraps ErrInternal with context.
func Internal(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternal)...)
}
