package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/events"
)

// TaskFactory creates a task for a generation request.
type TaskFactory interface {
	CreateTask(req domain.GenerationRequest) (Task, error)
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to turn generation.requested events into queued tasks.
type TaskFactoryEventHandler struct {
	taskFactory TaskFactory
	queue       TaskQueueWriter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and enqueues them on queue.
func NewTaskFactoryEventHandler(
	taskFactory TaskFactory,
	queue TaskQueueWriter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		queue:       queue,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent decodes the request carried by a generation.requested event,
// creates its task and enqueues it. Other event types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeGenerationRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var req domain.GenerationRequest
	if err := event.UnmarshalPayload(&req); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if strings.TrimSpace(req.SourceText) == "" {
		return fmt.Errorf("invalid generation request: %w", domain.ErrEmptySourceText)
	}

	task, err := h.taskFactory.CreateTask(req)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"invocation_id", req.ID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.queue.Enqueue(task); err != nil {
		h.logger.Warn("failed to enqueue task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	h.logger.Info("generation task enqueued",
		"task_id", task.ID(),
		"tab_id", req.TabID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
