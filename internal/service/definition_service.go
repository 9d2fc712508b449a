package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/baike-api/internal/domain"
)

// MaxTermLength bounds the term accepted by DefinitionService, in runes.
const MaxTermLength = 64

// DefinitionQuery is a term with optional context.
type DefinitionQuery struct {
	Term string
	// Line is the annotated line the term was selected from.
	Line string
	// Article is the full article text.
	Article string
}

// DefinitionService looks up individual terms.
type DefinitionService struct {
	definer Definer
	logger  *slog.Logger
}

// NewDefinitionService creates a DefinitionService.
func NewDefinitionService(definer Definer, logger *slog.Logger) *DefinitionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefinitionService{definer: definer, logger: logger.With("component", "definition_service")}
}

// Define validates q and returns the definition of its term.
func (s *DefinitionService) Define(ctx context.Context, q DefinitionQuery) (domain.TermDefinition, error) {
	term := strings.Trim(strings.TrimSpace(q.Term), "<>")
	if term == "" {
		return domain.TermDefinition{}, domain.NewValidationError("term", "is required", nil)
	}
	if utf8.RuneCountInString(term) > MaxTermLength {
		return domain.TermDefinition{}, domain.NewValidationError("term", "is too long", nil)
	}

	def, err := s.definer.Define(ctx, term, q.Line, q.Article)
	if err != nil {
		return domain.TermDefinition{}, err
	}
	s.logger.DebugContext(ctx, "term defined", "term", term)
	return def, nil
}
