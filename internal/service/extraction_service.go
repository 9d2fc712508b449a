package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/baike-api/internal/domain"
)

// ExtractionService runs the synchronous url-to-structure pipeline.
type ExtractionService struct {
	policy    *URLPolicy
	fetcher   Fetcher
	extractor Extractor
	logger    *slog.Logger
}

// NewExtractionService creates an ExtractionService.
func NewExtractionService(policy *URLPolicy, fetcher Fetcher, extractor Extractor, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{
		policy:    policy,
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger.With("component", "extraction_service"),
	}
}

// Run validates url, fetches it and extracts its structure. Fetch errors are
// returned unchanged; a document without blocks is an *EmptyStructureError.
func (s *ExtractionService) Run(ctx context.Context, url string) (domain.ExtractionResult, error) {
	if err := s.policy.Check(url); err != nil {
		return domain.ExtractionResult{}, err
	}

	resp, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	result := s.extractor.Extract(resp.Body)
	if len(result.Blocks) == 0 {
		s.logger.WarnContext(ctx, "document yielded no content blocks",
			"url", url,
			"title", result.Title)
		return domain.ExtractionResult{}, &EmptyStructureError{URL: url, Title: result.Title}
	}

	s.logger.InfoContext(ctx, "document extracted",
		"url", url,
		"title", result.Title,
		"blocks", len(result.Blocks),
		"cached", resp.Cached)
	return result, nil
}
