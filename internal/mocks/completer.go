package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/baike-api/internal/generation"
)

// MockCompleter implements generation.Completer for testing
type MockCompleter struct {
	// CompleteFn allows test cases to mock the Complete behavior
	CompleteFn func(ctx context.Context, prompt generation.Prompt) (string, error)

	// Default response values
	Reply string
	Err   error

	mu      sync.Mutex
	prompts []generation.Prompt
}

// Complete implements the generation.Completer interface
func (m *MockCompleter) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, prompt)
	}
	return m.Reply, m.Err
}

// Prompts returns a copy of every prompt received so far.
func (m *MockCompleter) Prompts() []generation.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Prompt(nil), m.prompts...)
}

// CallCount returns how many times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// NewMockCompleterWithReply creates a MockCompleter that returns reply
func NewMockCompleterWithReply(reply string) *MockCompleter {
	return &MockCompleter{Reply: reply}
}

// NewMockCompleterWithError creates a MockCompleter that fails with err
func NewMockCompleterWithError(err error) *MockCompleter {
	return &MockCompleter{Err: err}
}
