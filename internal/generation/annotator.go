package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/baike-api/internal/domain"
)

type articleData struct {
	Title string
	Text  string
}

// Annotator marks learner-relevant terms in article text through a Completer.
type Annotator struct {
	completer Completer
	tmpl      *template.Template
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAnnotator creates an Annotator. promptPath overrides the embedded
// article template when non-empty. A non-positive timeout disables the
// per-call bound.
func NewAnnotator(completer Completer, promptPath string, timeout time.Duration, logger *slog.Logger) (*Annotator, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	tmpl, err := LoadTemplate(promptPath, ArticleTemplate)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{
		completer: completer,
		tmpl:      tmpl,
		timeout:   timeout,
		logger:    logger.With("component", "annotator"),
	}, nil
}

// Annotate returns text with terms marked. Failures wrap domain.ErrAnnotator;
// deadline expiry is a *TimeoutError wrapping domain.ErrAnnotatorTimeout.
func (a *Annotator) Annotate(ctx context.Context, title, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: article text is empty", domain.ErrAnnotator)
	}

	prompt, err := render(a.tmpl, articleData{Title: title, Text: text})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAnnotator, err)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := a.completer.Complete(callCtx, prompt)
	if err != nil {
		a.logger.WarnContext(ctx, "annotation failed",
			"title", title,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", classify("annotation", a.timeout, callCtx, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: %w: empty annotation", domain.ErrAnnotator, ErrInvalidResponse)
	}

	a.logger.InfoContext(ctx, "annotation finished",
		"title", title,
		"input_len", len(text),
		"output_len", len(reply),
		"duration_ms", time.Since(start).Milliseconds())
	return reply, nil
}
