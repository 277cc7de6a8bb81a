// Package apperr defines the error kinds returned by the service layer.
// Controllers match a kind with errors.Is and translate it to an HTTP status;
// services never map to HTTP themselves.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every error produced by a service wraps exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
)

func wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

// Conflict reports a uniqueness or at-most-one invariant violation.
func Conflict(format string, args ...interface{}) error {
	return wrap(ErrConflict, format, args...)
}

// InvalidState reports an operation that is not valid for the entity's
// current lifecycle state.
func InvalidState(format string, args ...interface{}) error {
	return wrap(ErrInvalidState, format, args...)
}

// InvalidArgument reports malformed input caught at the boundary.
func InvalidArgument(format string, args ...interface{}) error {
	return wrap(ErrInvalidArgument, format, args...)
}

// Unavailable reports a failed availability or capacity check.
func Unavailable(format string, args ...interface{}) error {
	return wrap(ErrUnavailable, format, args...)
}

// Unauthorized reports that the caller is not the required principal.
func Unauthorized(format string, args ...interface{}) error {
	return wrap(ErrUnauthorized, format, args...)
}
