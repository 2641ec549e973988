package models

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Services return these (possibly wrapped);
// the HTTP layer maps them to status codes.
var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is not the owner or author.
	ErrForbidden = errors.New("not authorized")

	// ErrValidation indicates a payload shape or constraint violation.
	ErrValidation = errors.New("validation failed")

	// ErrStoreFailure indicates an unexpected persistence error.
	ErrStoreFailure = errors.New("store failure")
)

// ValidationError wraps ErrValidation with a field-specific message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
