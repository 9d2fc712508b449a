package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is a single element of a parsed markup tree.
type Node interface {
	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)

	// Text returns the flattened text content of the element and its descendants.
	Text() string
}

// Tree is the navigation capability the extractor needs from a markup parser.
type Tree interface {
	// FindByAttr returns every element carrying attr, in document order.
	FindByAttr(attr string) []Node

	// FirstWithClass returns the first element named tag that has class.
	FirstWithClass(tag, class string) (Node, bool)

	// FlatText returns the readable text of the whole document with block
	// boundaries preserved as line breaks.
	FlatText() string
}

// Parser builds a Tree from raw markup. Implementations must not fail on
// malformed markup.
type Parser interface {
	Parse(raw string) Tree
}

// GoqueryParser parses markup with goquery (golang.org/x/net/html underneath).
type GoqueryParser struct{}

// Parse implements Parser. Unreadable input yields an empty tree.
func (GoqueryParser) Parse(raw string) Tree {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return goqueryTree{}
	}
	return goqueryTree{doc: doc}
}

type goqueryTree struct {
	doc *goquery.Document
}

func (t goqueryTree) FindByAttr(attr string) []Node {
	if t.doc == nil || attr == "" {
		return nil
	}
	var nodes []Node
	t.doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, selectionNode{s: s})
	})
	return nodes
}

func (t goqueryTree) FirstWithClass(tag, class string) (Node, bool) {
	if t.doc == nil || class == "" {
		return nil, false
	}
	var found *goquery.Selection
	t.doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass(class) {
			found = s
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return selectionNode{s: found}, true
}

func (t goqueryTree) FlatText() string {
	if t.doc == nil || len(t.doc.Nodes) == 0 {
		return ""
	}
	return flattenNode(t.doc.Nodes[0])
}

type selectionNode struct {
	s *goquery.Selection
}

func (n selectionNode) Attr(name string) (string, bool) {
	return n.s.Attr(name)
}

func (n selectionNode) Text() string {
	return n.s.Text()
}
