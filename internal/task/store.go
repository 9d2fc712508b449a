package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/baike-api/internal/domain"
)

// MemoryStore is a process-lifetime Store guarded by a single lock.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*Task),
		now:   time.Now,
	}
}

// Create implements Store.
func (s *MemoryStore) Create() string {
	id := uuid.NewString()
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[id] = &Task{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Complete implements Store.
func (s *MemoryStore) Complete(id, result string) error {
	return s.transition(id, StatusCompleted, result, "")
}

// Fail implements Store.
func (s *MemoryStore) Fail(id, message string) error {
	return s.transition(id, StatusFailed, "", message)
}

func (s *MemoryStore) transition(id string, status Status, result, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, id, t.Status)
	}

	t.Status = status
	t.Result = result
	t.Error = message
	t.UpdatedAt = s.now().UTC()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return *t, nil
}

// EvictTerminalBefore implements Store.
func (s *MemoryStore) EvictTerminalBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.tasks {
		if t.Status.IsTerminal() && t.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked tasks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
