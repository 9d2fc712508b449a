package extract

import (
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/phrazzld/baike-api/internal/domain"
)

// Config describes the markup conventions of the source site.
type Config struct {
	// TitleClasses lists the class names marking the article title on an
	// <h1>, in order of preference. The site has used more than one.
	TitleClasses []string

	// TagAttr is the semantic tag attribute marking structural elements.
	TagAttr string

	// LevelAttr is the attribute holding a numeric heading depth.
	LevelAttr string

	// RefTag is the TagAttr value of citation markers, which are skipped.
	RefTag string

	// TrailingMarker is the UI label the site appends to headings; block
	// text is cut at its first occurrence.
	TrailingMarker string
}

// DefaultConfig returns the conventions of the current Baidu Baike markup.
func DefaultConfig() Config {
	return Config{
		TitleClasses:   []string{"lemmaTitle_pDdQb", "lemmaTitle_DVaY1"},
		TagAttr:        "data-tag",
		LevelAttr:      "data-level",
		RefTag:         "ref",
		TrailingMarker: "播报编辑",
	}
}

// Extractor classifies document content. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	cfg    Config
	parser Parser
	logger *slog.Logger
}

// New creates an Extractor backed by the goquery parser.
func New(cfg Config, logger *slog.Logger) *Extractor {
	return NewWithParser(cfg, GoqueryParser{}, logger)
}

// NewWithParser creates an Extractor backed by the given parser.
func NewWithParser(cfg Config, parser Parser, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		parser: parser,
		logger: logger.With("component", "extractor"),
	}
}

// Extract parses raw markup and returns its title and classified blocks in
// document order. It never fails; a document without qualifying elements
// yields an empty block list.
func (e *Extractor) Extract(raw string) domain.ExtractionResult {
	tree := e.parser.Parse(raw)
	return domain.ExtractionResult{
		Title:  e.title(tree),
		Blocks: e.blocks(tree),
	}
}

// Title returns only the document title, or domain.TitleNotFound.
func (e *Extractor) Title(raw string) string {
	return e.title(e.parser.Parse(raw))
}

// FullText returns all readable text of the document, not only classified
// blocks, with the trailing UI marker removed.
func (e *Extractor) FullText(raw string) string {
	text := e.parser.Parse(raw).FlatText()
	if e.cfg.TrailingMarker != "" {
		text = strings.ReplaceAll(text, e.cfg.TrailingMarker, "")
	}
	return norm.NFC.String(normalizeWhitespace(text))
}

func (e *Extractor) title(tree Tree) string {
	for _, class := range e.cfg.TitleClasses {
		node, ok := tree.FirstWithClass("h1", class)
		if !ok {
			continue
		}
		if title := strings.TrimSpace(node.Text()); title != "" {
			return title
		}
	}
	return domain.TitleNotFound
}

func (e *Extractor) blocks(tree Tree) []domain.ContentBlock {
	blocks := []domain.ContentBlock{}
	for _, node := range tree.FindByAttr(e.cfg.TagAttr) {
		tag, _ := node.Attr(e.cfg.TagAttr)
		if strings.TrimSpace(tag) == e.cfg.RefTag {
			continue
		}

		text := e.truncate(node.Text())
		if text == "" {
			continue
		}

		blocks = append(blocks, domain.ContentBlock{
			Kind: e.classify(node),
			Text: text,
		})
	}
	return blocks
}

// classify maps the level attribute to a block kind: absent or invalid is
// text, 1 is a heading and anything deeper is a subheading.
func (e *Extractor) classify(node Node) domain.BlockKind {
	raw, ok := node.Attr(e.cfg.LevelAttr)
	if !ok {
		return domain.BlockKindText
	}

	level, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		e.logger.Warn("non-numeric level attribute, treating block as text",
			"attr", e.cfg.LevelAttr,
			"value", raw)
		return domain.BlockKindText
	}

	switch {
	case level == 1:
		return domain.BlockKindHeading
	case level > 1:
		return domain.BlockKindSubheading
	default:
		e.logger.Warn("level attribute out of range, treating block as text",
			"attr", e.cfg.LevelAttr,
			"value", level)
		return domain.BlockKindText
	}
}

func (e *Extractor) truncate(text string) string {
	if e.cfg.TrailingMarker != "" {
		if idx := strings.Index(text, e.cfg.TrailingMarker); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
