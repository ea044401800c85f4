package event

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no event exists with the requested id.
	ErrNotFound = errors.New("event not found")

	// ErrForbidden is returned when an administrative action is not allowed
	// in the current environment.
	ErrForbidden = errors.New("action not permitted in this environment")
)

// ValidationError reports malformed or missing client input: a required
// field that is absent, or a date that does not parse as YYYY-MM-DD.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
