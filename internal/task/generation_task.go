package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-maker/internal/domain"
)

// Common errors
var (
	ErrNilInvoker = errors.New("invoker cannot be nil")
	ErrNilLogger  = errors.New("logger cannot be nil")
	ErrStarted    = errors.New("task already started")
)

// Invoker runs one generation request end to end.
type Invoker interface {
	Invoke(ctx context.Context, req domain.GenerationRequest) error
}

// generationPayload is what Payload reports. The selection itself is
// summarised by its length.
type generationPayload struct {
	InvocationID uuid.UUID      `json:"invocation_id"`
	TabID        int            `json:"tab_id"`
	Trigger      domain.Trigger `json:"trigger"`
	TextLength   int            `json:"text_length"`
}

// GenerationTask implements the Task interface for one invocation.
type GenerationTask struct {
	id      uuid.UUID
	req     domain.GenerationRequest
	invoker Invoker
	logger  *slog.Logger

	statusTracker
}

// NewGenerationTask creates a task for req. The task ID is the invocation ID.
func NewGenerationTask(req domain.GenerationRequest, invoker Invoker, logger *slog.Logger) (*GenerationTask, error) {
	if invoker == nil {
		return nil, ErrNilInvoker
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if req.SourceText == "" {
		return nil, domain.ErrEmptySourceText
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	return &GenerationTask{
		id:      req.ID,
		req:     req,
		invoker: invoker,
		logger:  logger.With("task_type", TaskTypeGeneration, "invocation_id", req.ID),
	}, nil
}

// ID returns the task's unique identifier
func (t *GenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *GenerationTask) Type() string {
	return TaskTypeGeneration
}

// Payload returns the task data as a byte slice
func (t *GenerationTask) Payload() []byte {
	data, err := json.Marshal(generationPayload{
		InvocationID: t.id,
		TabID:        t.req.TabID,
		Trigger:      t.req.Trigger,
		TextLength:   len(t.req.SourceText),
	})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Execute runs the invocation once. Failures are already reported by the
// invoker; the error is returned so the pool can count it.
func (t *GenerationTask) Execute(ctx context.Context) error {
	if !t.begin() {
		return ErrStarted
	}
	err := t.invoker.Invoke(ctx, t.req)
	t.end(err)
	return err
}

// GenerationTaskFactory creates GenerationTasks sharing one invoker.
type GenerationTaskFactory struct {
	invoker Invoker
	logger  *slog.Logger
}

// NewGenerationTaskFactory creates a factory.
func NewGenerationTaskFactory(invoker Invoker, logger *slog.Logger) (*GenerationTaskFactory, error) {
	if invoker == nil {
		return nil, ErrNilInvoker
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &GenerationTaskFactory{invoker: invoker, logger: logger}, nil
}

// CreateTask creates a task for req.
func (f *GenerationTaskFactory) CreateTask(req domain.GenerationRequest) (Task, error) {
	return NewGenerationTask(req, f.invoker, f.logger)
}
