package projectcontext

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by constructors, mutators, and the structured
// dictionary round-trip. Callers classify with errors.Is/errors.As — never
// by matching on Error() text.
var (
	// ErrInvalidPriorityMatrix is returned when speed+quality+cost does not
	// sum to 1.0 within the ±0.01 tolerance.
	ErrInvalidPriorityMatrix = errors.New("priority matrix must sum to 1.0 (±0.01)")

	// ErrInvalidRatio is returned when a [0,1]-bounded ratio field falls
	// outside its range.
	ErrInvalidRatio = errors.New("ratio field must be within [0,1]")

	// ErrInvalidLifecyclePhase is returned for an unrecognized lifecycle phase tag.
	ErrInvalidLifecyclePhase = errors.New("invalid lifecycle phase")

	// ErrInvalidDeadline is returned when a deadline is not strictly in the
	// future at construction time.
	ErrInvalidDeadline = errors.New("deadline must be in the future")

	// ErrUnknownField is returned by the sparse field-update path (CSM.Update)
	// when a field_updates key does not name a known ProjectContext field.
	ErrUnknownField = errors.New("unknown project context field")
)

// FieldError wraps a validation failure with the offending field name, the
// shape go-playground/validator-style errors follow in the rest of this
// corpus without pulling in the dependency for a single invariant check.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a FieldError wrapping one of the sentinel errors above.
func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
