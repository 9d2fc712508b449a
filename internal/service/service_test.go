package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/extract"
	"github.com/phrazzld/baike-api/internal/fetch"
	"github.com/phrazzld/baike-api/internal/task"
)

const allowedPrefix = "https://baike.baidu.com/item/"

const articleMarkup = `<html><body>
<h1 class="title-marker">长城</h1>
<div data-tag="header" data-level="1">历史沿革播报编辑</div>
<div data-tag="paragraph">长城是古代中国的<b>防御</b>工程。<sup data-tag="ref">[1]</sup></div>
<div data-tag="header" data-level="2">春秋战国播报编辑</div>
<div data-tag="paragraph">诸侯各自修筑长城。</div>
</body></html>`

const emptyMarkup = `<h1 class="title-marker">测试标题</h1>` +
	`<div data-tag="para" data-level="1">播报编辑 正文</div>`

// MockFetcher is a testify mock of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Get(ctx context.Context, url string) (*fetch.Response, error) {
	args := m.Called(ctx, url)
	resp, _ := args.Get(0).(*fetch.Response)
	return resp, args.Error(1)
}

func fetcherReturning(url, body string) *MockFetcher {
	f := &MockFetcher{}
	f.On("Get", mock.Anything, url).Return(&fetch.Response{URL: url, StatusCode: 200, Body: body}, nil)
	return f
}

// annotatorFunc adapts a function to the Annotator interface.
type annotatorFunc func(ctx context.Context, title, text string) (string, error)

func (f annotatorFunc) Annotate(ctx context.Context, title, text string) (string, error) {
	return f(ctx, title, text)
}

type definerFunc func(ctx context.Context, term, line, article string) (domain.TermDefinition, error)

func (f definerFunc) Define(ctx context.Context, term, line, article string) (domain.TermDefinition, error) {
	return f(ctx, term, line, article)
}

// recordingLauncher runs nothing and remembers what was launched.
type recordingLauncher struct {
	mu    sync.Mutex
	works []task.Work
}

func (l *recordingLauncher) Launch(w task.Work) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.works = append(l.works, w)
}

func (l *recordingLauncher) launched() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.works)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExtractor() *extract.Extractor {
	cfg := extract.DefaultConfig()
	cfg.TitleClasses = []string{"title-marker"}
	return extract.New(cfg, testLogger())
}

func testPolicy() *URLPolicy {
	return NewURLPolicy([]string{allowedPrefix})
}

func waitForTerminal(t *testing.T, store task.Store, id string) task.Task {
	t.Helper()
	var got task.Task
	require.Eventually(t, func() bool {
		tk, err := store.Get(id)
		if err != nil {
			return false
		}
		got = tk
		return tk.Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond)
	return got
}
