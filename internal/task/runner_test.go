package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func waitForTerminal(t *testing.T, store Store, id string) Task {
	t.Helper()

	var got Task
	require.Eventually(t, func() bool {
		var err error
		got, err = store.Get(id)
		return err == nil && got.Status.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestRunner_Launch_Success(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())
	defer runner.Stop()

	id := store.Create()
	runner.Launch(Work{
		ID: id,
		Execute: func(ctx context.Context) (string, error) {
			return "annotated", nil
		},
	})

	got := waitForTerminal(t, store, id)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "annotated", got.Result)
	assert.Empty(t, got.Error)
}

func TestRunner_Launch_Error(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())
	defer runner.Stop()

	id := store.Create()
	runner.Launch(Work{
		ID: id,
		Execute: func(ctx context.Context) (string, error) {
			return "partial", errors.New("annotator unavailable")
		},
	})

	got := waitForTerminal(t, store, id)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "annotator unavailable", got.Error)
	assert.Empty(t, got.Result)
}

func TestRunner_Launch_PanicIsContained(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())
	defer runner.Stop()

	panicking := store.Create()
	healthy := store.Create()

	runner.Launch(Work{
		ID: panicking,
		Execute: func(ctx context.Context) (string, error) {
			panic("nil map write")
		},
	})
	runner.Launch(Work{
		ID: healthy,
		Execute: func(ctx context.Context) (string, error) {
			return "fine", nil
		},
	})

	got := waitForTerminal(t, store, panicking)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "nil map write")

	got = waitForTerminal(t, store, healthy)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestRunner_Launch_NilExecute(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())
	defer runner.Stop()

	id := store.Create()
	runner.Launch(Work{ID: id})

	got := waitForTerminal(t, store, id)
	assert.Equal(t, StatusFailed, got.Status)
}

func TestRunner_SlowTaskDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())

	release := make(chan struct{})
	slow := store.Create()
	runner.Launch(Work{
		ID: slow,
		Execute: func(ctx context.Context) (string, error) {
			<-release
			return "slow", nil
		},
	})

	fast := store.Create()
	runner.Launch(Work{
		ID: fast,
		Execute: func(ctx context.Context) (string, error) {
			return "fast", nil
		},
	})

	got := waitForTerminal(t, store, fast)
	assert.Equal(t, StatusCompleted, got.Status)

	pending, err := store.Get(slow)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, pending.Status)

	close(release)
	got = waitForTerminal(t, store, slow)
	assert.Equal(t, "slow", got.Result)
	runner.Stop()
}

func TestRunner_MaxConcurrent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{MaxConcurrent: 1}, setupTestLogger())
	defer runner.Stop()

	var running, peak atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 3)

	work := func(ctx context.Context) (string, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		started <- struct{}{}
		<-release
		running.Add(-1)
		return "ok", nil
	}

	ids := []string{store.Create(), store.Create(), store.Create()}
	for _, id := range ids {
		runner.Launch(Work{ID: id, Execute: work})
	}

	<-started
	select {
	case <-started:
		t.Fatal("second unit started while the only slot was taken")
	case <-time.After(50 * time.Millisecond):
	}

	pendingCount := 0
	for _, id := range ids {
		got, err := store.Get(id)
		require.NoError(t, err)
		if got.Status == StatusPending {
			pendingCount++
		}
	}
	assert.Equal(t, 3, pendingCount)

	close(release)
	for _, id := range ids {
		got := waitForTerminal(t, store, id)
		assert.Equal(t, StatusCompleted, got.Status)
	}
	assert.Equal(t, int32(1), peak.Load())
}

func TestRunner_StopCancelsInFlight(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())

	started := make(chan struct{})
	id := store.Create()
	runner.Launch(Work{
		ID: id,
		Execute: func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	<-started
	runner.Stop()

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, context.Canceled.Error())

	// second stop is a no-op
	runner.Stop()
}

func TestRunner_StopReleasesWaitingUnits(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{MaxConcurrent: 1}, setupTestLogger())

	started := make(chan struct{})
	first := store.Create()
	runner.Launch(Work{
		ID: first,
		Execute: func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		},
	})
	<-started

	waiting := store.Create()
	runner.Launch(Work{
		ID: waiting,
		Execute: func(ctx context.Context) (string, error) {
			return "never", nil
		},
	})

	runner.Stop()

	got, err := store.Get(waiting)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, ErrRunnerStopped.Error(), got.Error)
}

func TestRunner_LaunchAfterStop(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())
	runner.Stop()

	var executed atomic.Bool
	id := store.Create()
	runner.Launch(Work{
		ID: id,
		Execute: func(ctx context.Context) (string, error) {
			executed.Store(true)
			return "", nil
		},
	})

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.False(t, executed.Load())
}

func TestRunner_RecordFailureIsLogged(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	var completeCalls atomic.Int32
	store.CompleteFn = func(id, result string) error {
		completeCalls.Add(1)
		return errors.New("store unavailable")
	}

	runner := NewRunner(store, RunnerConfig{}, setupTestLogger())
	id := store.Create()
	runner.Launch(Work{
		ID: id,
		Execute: func(ctx context.Context) (string, error) {
			return "ok", nil
		},
	})
	runner.Stop()

	assert.Equal(t, int32(1), completeCalls.Load())
	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestRunner_EvictExpired(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{Retention: time.Hour, SweepInterval: time.Hour}, setupTestLogger())
	defer runner.Stop()

	id := store.Create()
	require.NoError(t, store.Complete(id, "done"))
	pending := store.Create()

	assert.Equal(t, 0, runner.evictExpired())

	runner.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, runner.evictExpired())

	_, err := store.Get(id)
	assert.Error(t, err)
	_, err = store.Get(pending)
	assert.NoError(t, err)
}

func TestRunner_SweeperEvicts(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	runner := NewRunner(store, RunnerConfig{
		Retention:     10 * time.Millisecond,
		SweepInterval: 5 * time.Millisecond,
	}, setupTestLogger())
	defer runner.Stop()

	id := store.Create()
	require.NoError(t, store.Complete(id, "done"))

	assert.Eventually(t, func() bool {
		_, err := store.Get(id)
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)
}
