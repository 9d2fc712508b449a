package generation

import (
	"context"
	"fmt"
)

// Prompt is a single-turn request to a language model.
type Prompt struct {
	System string
	User   string
}

// Completer sends a prompt to a language model and returns the reply text.
// Implementations must honor ctx cancellation and must not retry.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt Prompt) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// Unconfigured returns a Completer that fails every call with
// ErrNotConfigured, naming the reason.
func Unconfigured(reason string) Completer {
	return CompleterFunc(func(context.Context, Prompt) (string, error) {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, reason)
	})
}
