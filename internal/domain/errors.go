package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when a computation needs at least two
// data points and has fewer. Callers surface it distinctly from a
// legitimate empty result.
var ErrInsufficientData = errors.New("insufficient data")

// ErrNotFound is returned by repositories when an entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or out-of-range input. Inputs are
// rejected before computation, never silently clamped, except where a
// contract explicitly specifies clamping.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
