package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/baike-api/internal/domain"
)

// Common errors returned by the generation package and its backends
var (
	// ErrInvalidResponse is returned when the model reply is missing or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model refuses the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when a backend or template configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrNotConfigured is returned by the placeholder completer used when no
	// credentials are configured
	ErrNotConfigured = errors.New("language model is not configured")
)

// TimeoutError reports that a model call exceeded its deadline.
type TimeoutError struct {
	Op    string
	After time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

// Unwrap exposes the annotator timeout sentinel and the context cause.
func (e *TimeoutError) Unwrap() []error {
	return []error{domain.ErrAnnotatorTimeout, context.DeadlineExceeded}
}

// classify converts a completer failure into the annotator error taxonomy.
func classify(op string, timeout time.Duration, callCtx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, After: timeout}
	}
	return fmt.Errorf("%w: %s failed: %w", domain.ErrAnnotator, op, err)
}
