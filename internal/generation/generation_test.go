package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/baike-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnnotator_Annotate(t *testing.T) {
	t.Parallel()

	var got Prompt
	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		got = p
		return "  长城\n百度百科\n<长城>是古代的<防御>工程。\n", nil
	})

	a, err := NewAnnotator(completer, "", time.Second, testLogger())
	require.NoError(t, err)

	out, err := a.Annotate(context.Background(), "长城", "长城是古代的防御工程。")
	require.NoError(t, err)

	assert.Equal(t, "长城\n百度百科\n<长城>是古代的<防御>工程。", out)
	assert.Contains(t, got.System, "angle brackets")
	assert.Equal(t, "长城\n\n长城是古代的防御工程。", got.User)
}

func TestAnnotator_Timeout(t *testing.T) {
	t.Parallel()

	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	a, err := NewAnnotator(completer, "", 20*time.Millisecond, testLogger())
	require.NoError(t, err)

	_, err = a.Annotate(context.Background(), "t", "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAnnotatorTimeout)
	assert.ErrorIs(t, err, domain.ErrAnnotator)
	assert.Equal(t, "annotation timed out after 20ms", err.Error())
}

func TestAnnotator_TimeoutReportedEvenWhenBackendHidesCause(t *testing.T) {
	t.Parallel()

	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		<-ctx.Done()
		return "", errors.New("rpc error: request aborted")
	})

	a, err := NewAnnotator(completer, "", 10*time.Millisecond, testLogger())
	require.NoError(t, err)

	_, err = a.Annotate(context.Background(), "t", "text")
	assert.ErrorIs(t, err, domain.ErrAnnotatorTimeout)
}

func TestAnnotator_Failures(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("503 service unavailable")

	tests := []struct {
		name    string
		reply   string
		err     error
		text    string
		wantMsg string
	}{
		{name: "backend error", err: backendErr, text: "x", wantMsg: "annotator error: annotation failed: 503 service unavailable"},
		{name: "blank reply", reply: " \n ", text: "x", wantMsg: "empty annotation"},
		{name: "blank input", text: "   ", wantMsg: "article text is empty"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
				calls.Add(1)
				return tc.reply, tc.err
			})
			a, err := NewAnnotator(completer, "", time.Second, testLogger())
			require.NoError(t, err)

			_, err = a.Annotate(context.Background(), "t", tc.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrAnnotator)
			assert.NotErrorIs(t, err, domain.ErrAnnotatorTimeout)
			assert.Contains(t, err.Error(), tc.wantMsg)
			if tc.err != nil {
				assert.ErrorIs(t, err, backendErr)
			}
			if tc.name == "blank input" {
				assert.Equal(t, int32(0), calls.Load())
			}
		})
	}
}

func TestAnnotator_Cancelled(t *testing.T) {
	t.Parallel()

	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		return "", ctx.Err()
	})
	a, err := NewAnnotator(completer, "", time.Minute, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Annotate(ctx, "t", "text")
	assert.ErrorIs(t, err, domain.ErrAnnotator)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrAnnotatorTimeout)
}

func TestAnnotator_CustomTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "article.tmpl")
	content := `{{define "system"}}mark terms{{end}}{{define "user"}}[{{.Title}}] {{.Text}}{{end}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var got Prompt
	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		got = p
		return "ok", nil
	})

	a, err := NewAnnotator(completer, path, 0, testLogger())
	require.NoError(t, err)

	_, err = a.Annotate(context.Background(), "黄河", "正文")
	require.NoError(t, err)
	assert.Equal(t, Prompt{System: "mark terms", User: "[黄河] 正文"}, got)
}

func TestLoadTemplate_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	missingUser := filepath.Join(dir, "missing.tmpl")
	require.NoError(t, os.WriteFile(missingUser, []byte(`{{define "system"}}x{{end}}`), 0o600))
	_, err := LoadTemplate(missingUser, ArticleTemplate)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `does not define "user"`)

	broken := filepath.Join(dir, "broken.tmpl")
	require.NoError(t, os.WriteFile(broken, []byte(`{{define "system"}}`), 0o600))
	_, err = LoadTemplate(broken, ArticleTemplate)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadTemplate(filepath.Join(dir, "absent.tmpl"), ArticleTemplate)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewAnnotator(nil, "", time.Second, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		want  domain.TermDefinition
	}{
		{
			name:  "complete reply",
			reply: "1. Pinyin: fáng yù\n2. Definition: defense\n3. Example sentence: 城墙用于防御。",
			want:  domain.TermDefinition{Pinyin: "fáng yù", Definition: "defense", Example: "城墙用于防御。"},
		},
		{
			name:  "case and spacing",
			reply: "  1.pinyin:   cháng chéng  \n\n 2.  DEFINITION: the Great Wall\n3. example sentence: 我去过长城。",
			want:  domain.TermDefinition{Pinyin: "cháng chéng", Definition: "the Great Wall", Example: "我去过长城。"},
		},
		{
			name:  "missing lines",
			reply: "Sorry, I cannot help with that.",
			want:  domain.TermDefinition{Definition: DefinitionNotParsed, Example: ExampleNotParsed},
		},
		{
			name:  "only pinyin",
			reply: "1. Pinyin: hé",
			want:  domain.TermDefinition{Pinyin: "hé", Definition: DefinitionNotParsed, Example: ExampleNotParsed},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDefinition(tc.reply))
		})
	}
}

func TestDefiner_Define(t *testing.T) {
	t.Parallel()

	var got Prompt
	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		got = p
		return "1. Pinyin: fáng yù\n2. Definition: defense\n3. Example sentence: 防御工事。", nil
	})

	d, err := NewDefiner(completer, "", time.Second, testLogger())
	require.NoError(t, err)

	def, err := d.Define(context.Background(), " 防御 ", "<长城> 是 <防御> 工程", "长城是防御工程。")
	require.NoError(t, err)

	assert.Equal(t, domain.TermDefinition{
		Term:       "防御",
		Pinyin:     "fáng yù",
		Definition: "defense",
		Example:    "防御工事。",
	}, def)
	assert.Contains(t, got.User, "Term: 防御")
	assert.Contains(t, got.User, "Sentence where it appears: 长城是防御工程")
	assert.Contains(t, got.User, "Full article for context:\n长城是防御工程。")
	assert.Contains(t, got.System, "1. Pinyin:")
}

func TestDefiner_Timeout(t *testing.T) {
	t.Parallel()

	completer := CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	d, err := NewDefiner(completer, "", 10*time.Millisecond, testLogger())
	require.NoError(t, err)

	_, err = d.Define(context.Background(), "防御", "", "")
	assert.ErrorIs(t, err, domain.ErrAnnotatorTimeout)
	assert.Equal(t, "definition lookup timed out after 10ms", err.Error())
}

func TestTerms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"长城", "防御", "工程"}, Terms("<长城>是<防御><工程>，<长城>很长。< >"))
	assert.Equal(t, []string{}, Terms("没有标记"))
	assert.Equal(t, []string{"a"}, Terms("<a> <unterminated"))
}

func TestParseAnnotated(t *testing.T) {
	t.Parallel()

	got := ParseAnnotated("\n\n长城\n百度百科\n<长城>是古代<防御>工程。\n第二段<长城>。\n")
	assert.Equal(t, AnnotatedArticle{
		Title:  "长城",
		Author: "百度百科",
		Body:   "<长城>是古代<防御>工程。\n第二段<长城>。",
		Terms:  []string{"长城", "防御"},
	}, got)

	assert.Equal(t, AnnotatedArticle{Title: "only", Terms: []string{}}, ParseAnnotated("only"))
	assert.Equal(t, AnnotatedArticle{Terms: []string{}}, ParseAnnotated("  \n "))
}

func TestCleanLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "长城是防御工程", CleanLine(" <长城> 是 <防御> 工程 "))
}

func TestUnconfigured(t *testing.T) {
	t.Parallel()

	_, err := Unconfigured("llm.api_key is empty").Complete(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "llm.api_key is empty")
}
