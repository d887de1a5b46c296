// Package xerrors holds the error taxonomy shared by the quotation engine,
// the stores and the HTTP layer.
package xerrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports malformed or missing input. It is raised before
// any computation starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid is shorthand for a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CalculationError reports a failed arithmetic precondition inside a
// calculation stage. Err carries the originating cause.
type CalculationError struct {
	Stage   string
	Message string
	Err     error
}

func (e *CalculationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s calculation failed: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s calculation failed: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

// Calculation wraps err into a CalculationError for stage. An error that is
// already a CalculationError is returned unchanged so the innermost stage
// name survives.
func Calculation(stage, message string, err error) error {
	var ce *CalculationError
	if errors.As(err, &ce) {
		return err
	}
	return &CalculationError{Stage: stage, Message: message, Err: err}
}

// Wrap adds context to an error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCalculation reports whether err is or wraps a CalculationError.
func IsCalculation(err error) bool {
	var ce *CalculationError
	return errors.As(err, &ce)
}
