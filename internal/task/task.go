package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle stage of a task. Tasks only move forward:
// pending, then processing, then completed or failed.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether s is a final status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskTypeGeneration turns one selection into flashcards delivered to a tab.
const TaskTypeGeneration = "generation"

// Task is a unit of work run by the WorkerPool. Tasks are in-memory only and
// run at most once.
type Task interface {
	ID() uuid.UUID
	Type() string

	// Payload is a JSON summary for logs. It must not carry user text.
	Payload() []byte

	Status() TaskStatus
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consuming side of a queue.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producing side of a queue. Enqueue fails with
// ErrQueueFull or ErrQueueClosed rather than block.
type TaskQueueWriter interface {
	Enqueue(task Task) error
	Close()
}

// statusTracker is the concurrency-safe status shared by Task
// implementations. The zero value is pending.
type statusTracker struct {
	mu     sync.Mutex
	status TaskStatus
}

// Status implements part of Task.
func (s *statusTracker) Status() TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == "" {
		return TaskStatusPending
	}
	return s.status
}

// begin moves a pending task to processing. It reports false if the task has
// already started.
func (s *statusTracker) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != "" && s.status != TaskStatusPending {
		return false
	}
	s.status = TaskStatusProcessing
	return true
}

// end records the outcome of err.
func (s *statusTracker) end(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = TaskStatusFailed
		return
	}
	s.status = TaskStatusCompleted
}
