// Package apperr defines the error taxonomy shared by services and HTTP
// handlers.  Lower layers wrap one of these sentinels with context using
// fmt.Errorf("%w: ...") and the HTTP boundary maps them to status codes with
// errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrInvalidRange is returned when a date range is inverted or too long.
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized is returned when an authenticated caller may not act on a
	// specific resource, e.g. changing the status of someone else's booking.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller holds the wrong role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned for uniqueness violations such as a taken email.
	ErrConflict = errors.New("conflict")
	// ErrSlotUnavailable is returned when a booking falls outside mentor
	// availability or overlaps another active booking.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrInvalidTransition is returned for booking status changes the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid transition")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Wrap annotates a sentinel with a human readable message.
func Wrap(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// Message returns the text after the sentinel prefix, falling back to the
// full error string.  It is what clients receive in the "message" field.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range []error{
		ErrValidation, ErrInvalidRange, ErrUnauthenticated, ErrUnauthorized,
		ErrForbidden, ErrNotFound, ErrConflict, ErrSlotUnavailable, ErrInvalidTransition,
	} {
		if msg, ok := strings.CutPrefix(err.Error(), s.Error()+": "); ok {
			return msg
		}
	}
	return err.Error()
}
