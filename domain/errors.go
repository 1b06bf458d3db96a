package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError wraps a sentinel with a human-readable detail.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid returns a ValidationError for a rejected input.
func Invalid(format string, args ...any) error {
	return &ValidationError{Err: ErrValidation, Details: fmt.Sprintf(format, args...)}
}

// NotFound returns an error for a missing entity reference.
func NotFound(entity string, id any) error {
	return &ValidationError{Err: ErrNotFound, Details: fmt.Sprintf("%s %v not found", entity, id)}
}

// Persistence wraps a store failure; the cause stays reachable via errors.Is/As.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}
