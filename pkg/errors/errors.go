// Package errors provides custom error types for the reconciliation engine.
// These errors enable programmatic error checking by the dashboard layer,
// which must distinguish fatal configuration problems from per-record data
// issues that are surfaced as diagnostics instead of failures.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the reconciliation engine
var (
	// ErrConfig indicates invalid or contradictory configuration.
	// Configuration errors are fatal and abort a run before any scoring.
	ErrConfig = errors.New("invalid configuration")

	// ErrData indicates a data-level problem with an input batch.
	ErrData = errors.New("invalid data")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that a run was canceled before completing
	ErrCanceled = errors.New("operation canceled")
)

// ConfigError represents a fatal configuration error. It aborts the run
// before any pair is scored.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// DataError represents a problem with a specific record or batch.
// Unlike ConfigError, a DataError for an individual record excludes that
// record with a recorded warning; it never aborts the whole run.
type DataError struct {
	Side    string // "A" or "B"
	Key     string // source key when known
	Message string
	Err     error
}

// Error implements the error interface
func (e *DataError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("data error on side %s for record %s: %s", e.Side, e.Key, e.Message)
	case e.Side != "":
		return fmt.Sprintf("data error on side %s: %s", e.Side, e.Message)
	default:
		return fmt.Sprintf("data error: %s", e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *DataError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DataError) Is(target error) bool {
	return target == ErrData
}

// NewDataError creates a new DataError
func NewDataError(side, key, message string) *DataError {
	return &DataError{Side: side, Key: key, Message: message}
}

// ValidationError represents a validation failure on a single field
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Helper functions for error checking

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsDataError checks if an error is a data error
func IsDataError(err error) bool {
	return errors.Is(err, ErrData)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// WrapConfig wraps an error as a ConfigError
func WrapConfig(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigError(component, err.Error(), err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
