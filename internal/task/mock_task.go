package task

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTask is a Task for tests. ExecuteFn defaults to success.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	ExecuteFn   func(ctx context.Context) error

	statusTracker
	executed atomic.Int32
}

// NewMockTask creates a pending MockTask.
func NewMockTask(taskType string) *MockTask {
	return &MockTask{
		TaskID:      uuid.New(),
		TaskType:    taskType,
		TaskPayload: []byte(`{}`),
	}
}

// ID returns the task's unique identifier
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Payload returns the task data as a byte slice
func (t *MockTask) Payload() []byte {
	return t.TaskPayload
}

// Executions reports how many times Execute ran.
func (t *MockTask) Executions() int {
	return int(t.executed.Load())
}

// Execute runs ExecuteFn and records the outcome in Status. Unlike real
// tasks it may run more than once.
func (t *MockTask) Execute(ctx context.Context) error {
	t.executed.Add(1)
	t.begin()
	var err error
	if t.ExecuteFn != nil {
		err = t.ExecuteFn(ctx)
	}
	t.end(err)
	return err
}
