package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidYAML indicates the configuration document failed to parse.
	ErrInvalidYAML = errors.New("config: invalid YAML syntax")

	// ErrValidationFailed indicates the merged configuration failed validation.
	ErrValidationFailed = errors.New("config: validation failed")
)

// ValidationError wraps a single field-level validation failure, in the
// shape of the rest of the module's typed field errors
// (projectcontext.FieldError): a field name plus the underlying sentinel,
// so callers can errors.Is/As instead of string-matching.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: field %q: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err with the offending field name.
func NewValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// LoadError wraps a configuration loading failure with the file it
// occurred on.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(file string, err error) error {
	return &LoadError{File: file, Err: err}
}
