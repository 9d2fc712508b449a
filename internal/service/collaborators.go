package service

import (
	"context"

	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/fetch"
	"github.com/phrazzld/baike-api/internal/task"
)

// Fetcher retrieves a document body.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Extractor turns markup into a title, classified blocks and full text.
type Extractor interface {
	Extract(raw string) domain.ExtractionResult
	Title(raw string) string
	FullText(raw string) string
}

// Annotator marks terms in article text.
type Annotator interface {
	Annotate(ctx context.Context, title, text string) (string, error)
}

// Definer looks up one term in the context of an article.
type Definer interface {
	Define(ctx context.Context, term, line, article string) (domain.TermDefinition, error)
}

// Launcher detaches a unit of work.
type Launcher interface {
	Launch(w task.Work)
}
