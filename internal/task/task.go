package task

import (
	"errors"
	"time"
)

// Status represents the current state of a task
type Status string

// Possible task status values
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ErrAlreadyTerminal is returned when a terminal task is updated again.
var ErrAlreadyTerminal = errors.New("task already in a terminal state")

// Task is a snapshot of a task record. Result is set only when Status is
// StatusCompleted; Error only when Status is StatusFailed.
type Task struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the registry of task state.
// All methods are safe for concurrent use.
type Store interface {
	// Create allocates a fresh identifier and records a pending task.
	Create() string

	// Complete moves a pending task to StatusCompleted with result.
	// Returns domain.ErrTaskNotFound for an unknown id.
	Complete(id, result string) error

	// Fail moves a pending task to StatusFailed with a human-readable message.
	// Returns domain.ErrTaskNotFound for an unknown id.
	Fail(id, message string) error

	// Get returns a snapshot of the task, or domain.ErrTaskNotFound.
	Get(id string) (Task, error)

	// EvictTerminalBefore removes terminal tasks last updated before cutoff
	// and returns how many were removed. Pending tasks are never evicted.
	EvictTerminalBefore(cutoff time.Time) int
}
