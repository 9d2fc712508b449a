package mcpserver

import (
	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/generation"
)

// ExtractArgs is the input for the extract_article tool.
type ExtractArgs struct {
	URL string `json:"url" jsonschema:"Article URL on the allowed encyclopedia host"`
}

// ExtractOutput is the title and classified blocks of an article.
type ExtractOutput struct {
	Title  string                `json:"title"`
	Blocks []domain.ContentBlock `json:"blocks"`
}

// SubmitArgs is the input for the submit_enrichment tool.
type SubmitArgs struct {
	URL string `json:"url" jsonschema:"Article URL to annotate in the background"`
}

// SubmitOutput identifies the registered enrichment task.
type SubmitOutput struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// CheckArgs is the input for the check_enrichment tool.
type CheckArgs struct {
	ID string `json:"id" jsonschema:"Task ID returned by submit_enrichment"`
}

// CheckOutput is the polled state of an enrichment task. Article is present
// only once the task completed.
type CheckOutput struct {
	ID      string                       `json:"id"`
	Status  string                       `json:"status"`
	Error   string                       `json:"error,omitempty"`
	Article *generation.AnnotatedArticle `json:"article,omitempty"`
}

// DefineArgs is the input for the define_term tool.
type DefineArgs struct {
	Term    string `json:"term"              jsonschema:"Term to define, usually one marked in an annotated article"`
	Line    string `json:"line,omitempty"    jsonschema:"Line of the article the term appears in"`
	Context string `json:"context,omitempty" jsonschema:"Full article text for context"`
}

// DefineOutput is the definition of a single term.
type DefineOutput = domain.TermDefinition
