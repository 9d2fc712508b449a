package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// ErrRunnerStopped is recorded for units of work that never got to run
// because the runner was stopped.
var ErrRunnerStopped = errors.New("task runner stopped")

// Work is a detached unit of work whose outcome is recorded against ID.
type Work struct {
	// ID is the store identifier the outcome is recorded against
	ID string

	// Execute produces the task result. The context is cancelled when the
	// runner stops.
	Execute func(ctx context.Context) (string, error)
}

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// MaxConcurrent caps how many units of work execute at once.
	// Zero or negative means unbounded. Units waiting for a slot stay pending.
	MaxConcurrent int

	// Retention is how long terminal tasks are kept before eviction.
	// Zero disables eviction.
	Retention time.Duration

	// SweepInterval defines how often to evict expired tasks.
	// If zero, defaults to one minute
	SweepInterval time.Duration
}

// Runner launches units of work in the background and records their terminal
// state in a Store. Failures inside a unit, panics included, never escape it.
type Runner struct {
	store  Store
	config RunnerConfig
	logger *slog.Logger
	sem    chan struct{}
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewRunner creates a Runner and starts its eviction sweeper when retention
// is configured.
func NewRunner(store Store, config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		store:  store,
		config: config,
		logger: logger.With("component", "task_runner"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	if config.MaxConcurrent > 0 {
		r.sem = make(chan struct{}, config.MaxConcurrent)
	}

	if config.Retention > 0 {
		r.wg.Add(1)
		go r.sweep()
	}
	return r
}

// Launch detaches w and returns immediately. After Stop, w is recorded as
// failed without being executed.
func (r *Runner) Launch(w Work) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		r.record(w.ID, "", ErrRunnerStopped)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(w)
}

// Stop cancels in-flight units of work and waits for each of them to record
// its terminal state. It is safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Runner) run(w Work) {
	defer r.wg.Done()

	if r.sem != nil {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-r.ctx.Done():
			r.record(w.ID, "", ErrRunnerStopped)
			return
		}
		// a slot freed by a cancelled unit does not start new work
		if r.ctx.Err() != nil {
			r.record(w.ID, "", ErrRunnerStopped)
			return
		}
	}

	start := time.Now()
	result, err := r.execute(w)
	r.logger.Debug("unit of work finished",
		"task_id", w.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"failed", err != nil)
	r.record(w.ID, result, err)
}

// execute is the outermost boundary of a unit of work.
func (r *Runner) execute(w Work) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("unit of work panicked",
				"task_id", w.ID,
				"panic", p,
				"stack", string(debug.Stack()))
			result = ""
			err = fmt.Errorf("unexpected failure during background work: %v", p)
		}
	}()

	if w.Execute == nil {
		return "", errors.New("unit of work has nothing to execute")
	}
	return w.Execute(r.ctx)
}

func (r *Runner) record(id, result string, err error) {
	logger := r.logger.With("task_id", id)

	var recordErr error
	if err != nil {
		logger.Warn("task failed", "error", err)
		recordErr = r.store.Fail(id, err.Error())
	} else {
		logger.Info("task completed", "result_len", len(result))
		recordErr = r.store.Complete(id, result)
	}
	if recordErr != nil {
		logger.Error("failed to record task outcome", "error", recordErr)
	}
}

// sweep periodically evicts terminal tasks older than the retention period
func (r *Runner) sweep() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.evictExpired()
		}
	}
}

func (r *Runner) evictExpired() int {
	removed := r.store.EvictTerminalBefore(r.now().UTC().Add(-r.config.Retention))
	if removed > 0 {
		r.logger.Info("evicted expired tasks", "count", removed)
	}
	return removed
}
