package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals malformed caller input (nil list, missing id, bad body).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidCoordinates signals a latitude/longitude outside the valid range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrTooManyResults signals a request above the configured result cap.
	ErrTooManyResults = errors.New("too many results")
	// ErrHistoryUnavailable signals a failing history backend.
	ErrHistoryUnavailable = errors.New("history store unavailable")
)

// FieldError wraps ErrInvalidArgument with the offending field name.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidArgument }

// NewFieldError creates an invalid-argument error for a single field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
