package api

import (
	"time"

	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/generation"
)

// URLRequest is the body of the extraction and enrichment endpoints.
type URLRequest struct {
	URL string `json:"url" validate:"required"`
}

// BlockResponse is one classified block.
type BlockResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// ExtractResponse is the synchronous extraction result.
type ExtractResponse struct {
	Title  string          `json:"title"`
	Blocks []BlockResponse `json:"blocks"`
}

// EnrichmentAcceptedResponse answers a submitted enrichment with 202.
type EnrichmentAcceptedResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// EnrichmentResponse is the polled state of an enrichment task. Result and
// Article are present only once completed; Error only once failed.
type EnrichmentResponse struct {
	ID        string                       `json:"id"`
	Status    string                       `json:"status"`
	Result    string                       `json:"result,omitempty"`
	Error     string                       `json:"error,omitempty"`
	Article   *generation.AnnotatedArticle `json:"article,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// DefinitionRequest asks for the definition of a term. Line is the annotated
// line the term was picked from and Context the full article text.
type DefinitionRequest struct {
	Term    string `json:"term"    validate:"required,max=64"`
	Line    string `json:"line"    validate:"max=4000"`
	Context string `json:"context" validate:"max=200000"`
}

// DefinitionResponse is the definition of a single term.
type DefinitionResponse struct {
	Term       string `json:"term"`
	Pinyin     string `json:"pinyin"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

func toExtractResponse(result domain.ExtractionResult) ExtractResponse {
	blocks := make([]BlockResponse, len(result.Blocks))
	for i, b := range result.Blocks {
		blocks[i] = BlockResponse{Kind: string(b.Kind), Text: b.Text}
	}
	return ExtractResponse{Title: result.Title, Blocks: blocks}
}

func toDefinitionResponse(def domain.TermDefinition) DefinitionResponse {
	return DefinitionResponse{
		Term:       def.Term,
		Pinyin:     def.Pinyin,
		Definition: def.Definition,
		Example:    def.Example,
	}
}
