package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals an unknown identifier.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable signals that the text generator is unconfigured or failing.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrStore signals a failed store round-trip.
	ErrStore = errors.New("store error")
	// ErrTooLarge signals a request body over the accepted size.
	ErrTooLarge = errors.New("request body too large")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every offending field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a field failure.
func (e *ValidationError) Add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends the fields of another validation error, if err is one.
func (e *ValidationError) Merge(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		e.Fields = append(e.Fields, ve.Fields...)
	}
}

// Err returns nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// StoreError wraps a store failure with the operation that failed.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
