// Package errs provides the error types shared by the probe harness.
// Case-level failures are data (see model.Outcome); the types here cover
// configuration problems, malformed case tables and the run-level verdict.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidInput indicates a malformed case table or flag value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates the request never produced a usable response.
	ErrTransport = errors.New("transport failure")

	// ErrTimeout indicates the round-trip exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrUnexpectedStatus indicates the service answered with an unexpected HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrAPIKeyRequired indicates no provider API key could be resolved.
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrNotFullyPassing is returned by commands whose run had failing cases.
	ErrNotFullyPassing = errors.New("not all checks passed")
)

// ValidationError represents a malformed test case.
type ValidationError struct {
	Case    string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Case != "" {
		return fmt.Sprintf("invalid case %q: field %s: %s", e.Case, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid case: field %s: %s", e.Field, e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(caseName, field, message string) *ValidationError {
	return &ValidationError{Case: caseName, Field: field, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var msg string
	if e.Component != "" {
		msg = fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	} else {
		msg = fmt.Sprintf("configuration error: %s", e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// HTTPStatusError is a response whose status differs from the expected one.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is implements errors.Is support.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// TransportError wraps a failure to obtain a response at all.
type TransportError struct {
	Endpoint string
	Timeout  bool
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *TransportError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	return e.Timeout && target == ErrTimeout
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is, or wraps, a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
