// Package openai provides a generation.Completer for OpenAI-compatible chat
// completion endpoints.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/generation"
)

// ChatClient is the subset of *openai.Client used by Completer.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Completer implements generation.Completer over a chat completion endpoint.
type Completer struct {
	client      ChatClient
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// New creates a Completer. BaseURL may point at any OpenAI-compatible server.
func New(cfg config.LLMConfig, logger *slog.Logger) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return NewWithClient(openai.NewClientWithConfig(clientConfig), cfg, logger), nil
}

// NewWithClient creates a Completer around an existing chat client.
func NewWithClient(client ChatClient, cfg config.LLMConfig, logger *slog.Logger) *Completer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Completer{
		client:      client,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "openai", "model", cfg.ModelName),
	}
}

// Complete sends prompt as one system and one user message.
func (c *Completer) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	var messages []openai.ChatCompletionMessage
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.User,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", generation.ErrContentBlocked
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: empty reply", generation.ErrInvalidResponse)
	}

	c.logger.DebugContext(ctx, "chat completion finished",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return choice.Message.Content, nil
}
