package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when caller input is missing or not allowed.
	// This is usually wrapped in a ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork is returned when fetching a document fails at the transport
	// level or with a non-2xx status.
	ErrNetwork = errors.New("network error")

	// ErrEmptyStructure is returned when extraction yields zero usable blocks.
	ErrEmptyStructure = errors.New("document contains no usable content")

	// ErrAnnotator is returned when the enrichment step fails.
	ErrAnnotator = errors.New("annotator error")

	// ErrAnnotatorTimeout is returned when the enrichment step exceeds its
	// deadline. It wraps ErrAnnotator.
	ErrAnnotatorTimeout = fmt.Errorf("%w: timed out", ErrAnnotator)

	// ErrTaskNotFound is returned when a task identifier is unknown.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUnauthorized is returned when a request is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes which input precondition failed.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is used as the underlying error.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", e.Err, e.Field, e.Message)
}

// Unwrap returns the underlying error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NetworkError carries the cause of a failed fetch. StatusCode is zero for
// transport failures.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetching %s: HTTP status %d", ErrNetwork, e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: fetching %s: %v", ErrNetwork, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: fetching %s", ErrNetwork, e.URL)
}

// Unwrap returns both the network sentinel and the cause.
func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}
	return []error{ErrNetwork, e.Err}
}
