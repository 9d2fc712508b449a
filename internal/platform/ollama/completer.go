// Package ollama provides a generation.Completer backed by a local Ollama
// server. No API key is required.
package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/generation"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:11434"

// Completer implements generation.Completer over the Ollama chat API.
type Completer struct {
	client      *api.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// New creates a Completer. httpClient may be nil.
func New(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) (*Completer, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid ollama base URL %q", generation.ErrInvalidConfig, raw)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Completer{
		client:      api.NewClient(base, httpClient),
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "ollama", "model", cfg.ModelName),
	}, nil
}

// Complete sends prompt as a non-streaming chat request.
func (c *Completer) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	var messages []api.Message
	if prompt.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: prompt.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt.User})

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{"temperature": c.temperature},
	}

	var b strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		if resp.Done {
			c.logger.DebugContext(ctx, "ollama chat finished",
				"done_reason", resp.DoneReason,
				"eval_count", resp.EvalCount)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty reply", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}
