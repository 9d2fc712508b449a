package generation

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/baike-api/internal/domain"
)

// Placeholders used when a reply line is missing.
const (
	DefinitionNotParsed = "Could not parse definition."
	ExampleNotParsed    = "Could not parse example."
)

var (
	pinyinLine     = regexp.MustCompile(`(?i)^1\.\s*Pinyin:\s*`)
	definitionLine = regexp.MustCompile(`(?i)^2\.\s*Definition:\s*`)
	exampleLine    = regexp.MustCompile(`(?i)^3\.\s*Example sentence:\s*`)
)

type definitionData struct {
	Term    string
	Line    string
	Article string
}

// Definer looks up a single term in the context of an article.
type Definer struct {
	completer Completer
	tmpl      *template.Template
	timeout   time.Duration
	logger    *slog.Logger
}

// NewDefiner creates a Definer. promptPath overrides the embedded definition
// template when non-empty.
func NewDefiner(completer Completer, promptPath string, timeout time.Duration, logger *slog.Logger) (*Definer, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	tmpl, err := LoadTemplate(promptPath, DefinitionTemplate)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Definer{
		completer: completer,
		tmpl:      tmpl,
		timeout:   timeout,
		logger:    logger.With("component", "definer"),
	}, nil
}

// Define returns pinyin, a definition and an example for term. line is the
// annotated line the term appears in and article the full text; both are
// optional.
func (d *Definer) Define(ctx context.Context, term, line, article string) (domain.TermDefinition, error) {
	term = strings.TrimSpace(term)
	prompt, err := render(d.tmpl, definitionData{
		Term:    term,
		Line:    CleanLine(line),
		Article: article,
	})
	if err != nil {
		return domain.TermDefinition{}, fmt.Errorf("%w: %w", domain.ErrAnnotator, err)
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	reply, err := d.completer.Complete(callCtx, prompt)
	if err != nil {
		d.logger.WarnContext(ctx, "definition lookup failed", "term", term, "error", err)
		return domain.TermDefinition{}, classify("definition lookup", d.timeout, callCtx, err)
	}

	def := ParseDefinition(reply)
	def.Term = term
	return def, nil
}

// ParseDefinition reads the numbered Pinyin, Definition and Example sentence
// lines of a reply. Missing lines keep their placeholders.
func ParseDefinition(reply string) domain.TermDefinition {
	def := domain.TermDefinition{
		Definition: DefinitionNotParsed,
		Example:    ExampleNotParsed,
	}
	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case pinyinLine.MatchString(line):
			def.Pinyin = strings.TrimSpace(pinyinLine.ReplaceAllString(line, ""))
		case definitionLine.MatchString(line):
			def.Definition = strings.TrimSpace(definitionLine.ReplaceAllString(line, ""))
		case exampleLine.MatchString(line):
			def.Example = strings.TrimSpace(exampleLine.ReplaceAllString(line, ""))
		}
	}
	return def
}
