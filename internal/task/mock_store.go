package task

import "time"

// MockStore implements Store for testing. Unset function fields delegate to
// an internal MemoryStore.
type MockStore struct {
	*MemoryStore

	CreateFn   func() string
	CompleteFn func(id, result string) error
	FailFn     func(id, message string) error
	GetFn      func(id string) (Task, error)
	EvictFn    func(cutoff time.Time) int
}

var _ Store = (*MockStore)(nil)

// NewMockStore creates a MockStore backed by an empty MemoryStore.
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: NewMemoryStore()}
}

// Create implements Store.
func (m *MockStore) Create() string {
	if m.CreateFn != nil {
		return m.CreateFn()
	}
	return m.MemoryStore.Create()
}

// Complete implements Store.
func (m *MockStore) Complete(id, result string) error {
	if m.CompleteFn != nil {
		return m.CompleteFn(id, result)
	}
	return m.MemoryStore.Complete(id, result)
}

// Fail implements Store.
func (m *MockStore) Fail(id, message string) error {
	if m.FailFn != nil {
		return m.FailFn(id, message)
	}
	return m.MemoryStore.Fail(id, message)
}

// Get implements Store.
func (m *MockStore) Get(id string) (Task, error) {
	if m.GetFn != nil {
		return m.GetFn(id)
	}
	return m.MemoryStore.Get(id)
}

// EvictTerminalBefore implements Store.
func (m *MockStore) EvictTerminalBefore(cutoff time.Time) int {
	if m.EvictFn != nil {
		return m.EvictFn(cutoff)
	}
	return m.MemoryStore.EvictTerminalBefore(cutoff)
}
