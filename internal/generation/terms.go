package generation

import "strings"

// AnnotatedArticle is an annotation reply split into its layout.
type AnnotatedArticle struct {
	Title  string   `json:"title"  yaml:"title"`
	Author string   `json:"author" yaml:"author"`
	Body   string   `json:"body"   yaml:"body"`
	Terms  []string `json:"terms"  yaml:"terms"`
}

// ParseAnnotated splits an annotation reply into title, author and body
// lines. The first non-empty line is the title and the next line the author.
func ParseAnnotated(reply string) AnnotatedArticle {
	lines := strings.Split(reply, "\n")
	first := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = i
			break
		}
	}
	if first < 0 {
		return AnnotatedArticle{Terms: []string{}}
	}

	article := AnnotatedArticle{Title: strings.TrimSpace(lines[first])}
	if first+1 < len(lines) {
		article.Author = strings.TrimSpace(lines[first+1])
	}
	if first+2 < len(lines) {
		article.Body = strings.TrimSpace(strings.Join(lines[first+2:], "\n"))
	}
	article.Terms = Terms(article.Body)
	return article
}

// Terms returns the distinct terms marked with angle brackets, in order of
// first appearance.
func Terms(annotated string) []string {
	terms := []string{}
	seen := make(map[string]bool)

	rest := annotated
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open+1:], '>')
		if end < 0 {
			break
		}
		term := strings.TrimSpace(rest[open+1 : open+1+end])
		rest = rest[open+1+end+1:]

		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}

// CleanLine removes term markers and spaces from an annotated line so it can
// be quoted as context.
func CleanLine(line string) string {
	line = strings.NewReplacer("<", "", ">", "", " ", "").Replace(line)
	return strings.TrimSpace(line)
}
