package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks input rejected before any storage access.
	ErrValidation = errors.New("validation failed")

	// ErrCodeNotFound is returned by MatchCountryNames for an unregistered code.
	// It is distinct from a registered code with zero matching names.
	ErrCodeNotFound = errors.New("iso code not found")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request.
// errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// errOrNil returns e when it holds at least one field error.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
