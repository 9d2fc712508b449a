package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/generation"
	"google.golang.org/genai"
)

// modelsAPI is the subset of *genai.Models used by Completer.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Completer implements generation.Completer using the Gemini API.
type Completer struct {
	models      modelsAPI
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// New creates a Completer from the LLM configuration.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return newWithModels(client.Models, cfg, logger), nil
}

func newWithModels(models modelsAPI, cfg config.LLMConfig, logger *slog.Logger) *Completer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Completer{
		models:      models,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "gemini", "model", cfg.ModelName),
	}
}

// Complete sends prompt as a single-turn request and returns the reply text.
func (c *Completer) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	temperature := c.temperature
	req := &genai.GenerateContentConfig{Temperature: &temperature}
	if prompt.System != "" {
		req.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}}
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt.User}},
	}}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text, err := replyText(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "Gemini reply rejected", "error", err)
		return "", err
	}

	c.logger.DebugContext(ctx, "Gemini call finished",
		"duration_ms", time.Since(start).Milliseconds(),
		"reply_length", len(text))
	return text, nil
}

func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty reply", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}
