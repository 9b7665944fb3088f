package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidResult is the sentinel kind for malformed tournament results.
// Use errors.Is to detect it; errors.As recovers the *ValidationError with
// the offending field.
var ErrInvalidResult = errors.New("invalid tournament result")

// ValidationError names the field of a TournamentResult that violated the
// input contract. Malformed input is a contract violation by the supplying
// collaborator, never silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tournament result: field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidResult }

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
