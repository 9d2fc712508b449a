package domain

import "strings"

// TitleNotFound is the title reported when no title marker matches.
const TitleNotFound = "Title Not Found"

// BlockKind classifies a block of extracted content.
type BlockKind string

// Possible block kinds
const (
	BlockKindHeading    BlockKind = "heading"
	BlockKindSubheading BlockKind = "subheading"
	BlockKindText       BlockKind = "text"
)

// ContentBlock is one classified piece of document content.
// Text is never empty after trimming.
type ContentBlock struct {
	Kind BlockKind `json:"kind" yaml:"kind"`
	Text string    `json:"text" yaml:"text"`
}

// ExtractionResult holds the title and blocks of a document in document order.
type ExtractionResult struct {
	Title  string         `json:"title"  yaml:"title"`
	Blocks []ContentBlock `json:"blocks" yaml:"blocks"`
}

// PlainText joins the block texts with newlines.
func (r *ExtractionResult) PlainText() string {
	var sb strings.Builder
	for i, b := range r.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

// TermDefinition is the result of looking up a single term in the context
// of an article.
type TermDefinition struct {
	Term       string `json:"term"       yaml:"term"`
	Pinyin     string `json:"pinyin"     yaml:"pinyin"`
	Definition string `json:"definition" yaml:"definition"`
	Example    string `json:"example"    yaml:"example"`
}
