package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Default template files
const (
	ArticleTemplate    = "prompts/article.tmpl"
	DefinitionTemplate = "prompts/definition.tmpl"
)

// LoadTemplate parses the template at path, or the embedded default when
// path is empty. A template must define "system" and "user".
func LoadTemplate(path, fallback string) (*template.Template, error) {
	var (
		content []byte
		err     error
		name    = fallback
	)
	if path != "" {
		name = path
		content, err = os.ReadFile(path)
	} else {
		content, err = promptFS.ReadFile(fallback)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template %s: %v", ErrInvalidConfig, name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template %s: %v", ErrInvalidConfig, name, err)
	}
	for _, block := range []string{"system", "user"} {
		if tmpl.Lookup(block) == nil {
			return nil, fmt.Errorf("%w: prompt template %s does not define %q", ErrInvalidConfig, name, block)
		}
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data any) (Prompt, error) {
	var system, user bytes.Buffer
	if err := tmpl.ExecuteTemplate(&system, "system", data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render system prompt: %w", err)
	}
	if err := tmpl.ExecuteTemplate(&user, "user", data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render user prompt: %w", err)
	}
	return Prompt{
		System: strings.TrimSpace(system.String()),
		User:   strings.TrimSpace(user.String()),
	}, nil
}
