package kb

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a search or answer parameter fails validation.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError describes a rejected request parameter. Parameter errors
// are surfaced at the API boundary rather than silently clamped, so callers
// cannot get zero results without knowing why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
