package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/redact"
	"github.com/phrazzld/baike-api/internal/task"
)

// Submission is the immediate answer to an enrichment request.
type Submission struct {
	ID     string
	Title  string
	Status task.Status
}

// EnrichmentService registers enrichment tasks and runs them in the background.
type EnrichmentService struct {
	policy    *URLPolicy
	fetcher   Fetcher
	extractor Extractor
	annotator Annotator
	store     task.Store
	launcher  Launcher
	logger    *slog.Logger
}

// EnrichmentDeps groups the collaborators of an EnrichmentService.
type EnrichmentDeps struct {
	Policy    *URLPolicy
	Fetcher   Fetcher
	Extractor Extractor
	Annotator Annotator
	Store     task.Store
	Launcher  Launcher
}

// NewEnrichmentService creates an EnrichmentService.
func NewEnrichmentService(deps EnrichmentDeps, logger *slog.Logger) *EnrichmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentService{
		policy:    deps.Policy,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		annotator: deps.Annotator,
		store:     deps.Store,
		launcher:  deps.Launcher,
		logger:    logger.With("component", "enrichment_service"),
	}
}

// Submit validates url, fetches it, reads its title and registers a pending
// task whose annotation runs in the background. It returns without waiting
// for the annotation.
func (s *EnrichmentService) Submit(ctx context.Context, url string) (Submission, error) {
	if err := s.policy.Check(url); err != nil {
		return Submission{}, err
	}

	resp, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return Submission{}, err
	}

	body := resp.Body
	title := s.extractor.Title(body)
	id := s.store.Create()

	log := s.logger.With("task_id", id, "url", url)
	log.InfoContext(ctx, "enrichment task submitted", "title", title)

	s.launcher.Launch(task.Work{
		ID: id,
		Execute: func(ctx context.Context) (string, error) {
			text := s.extractor.FullText(body)
			annotated, err := s.annotator.Annotate(ctx, title, text)
			if err != nil {
				return "", errors.New(redact.Error(err))
			}
			return annotated, nil
		},
	})

	return Submission{ID: id, Title: title, Status: task.StatusPending}, nil
}

// Poll returns a snapshot of the task. Unknown ids wrap domain.ErrTaskNotFound.
func (s *EnrichmentService) Poll(ctx context.Context, id string) (task.Task, error) {
	if strings.TrimSpace(id) == "" {
		return task.Task{}, domain.NewValidationError("id", "is required", nil)
	}
	return s.store.Get(id)
}
