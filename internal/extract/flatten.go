package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// flattenNode collects the readable text below n, preferring <body> when
// present. Scripts, styles and similar non-content containers are skipped and
// block-level elements are separated by line breaks.
func flattenNode(n *html.Node) string {
	root := findFirst(n, "body")
	if root == nil {
		root = n
	}
	var b strings.Builder
	collectText(&b, root)
	return normalizeWhitespace(b.String())
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "iframe", "svg":
			return
		case "br", "hr", "p", "div", "li", "tr", "section", "article",
			"h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "div", "li", "tr", "section", "article",
			"h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd":
			b.WriteString("\n")
		}
	}
}

// normalizeWhitespace trims every line, collapses runs of spaces and drops
// blank lines.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" {
			continue
		}
		out = append(out, collapsed)
	}
	return strings.Join(out, "\n")
}
