package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the daemon.
const (
	// TypeGenerationRequested is emitted by the local API when the user
	// invokes the tool on a selection. Its payload is a domain.GenerationRequest.
	TypeGenerationRequested = "generation.requested"

	// TypeInvocationFinished is emitted by the coordinator when an invocation
	// reaches DONE or FAILED. Its payload is an InvocationFinished.
	TypeInvocationFinished = "invocation.finished"
)

// Event is a typed notification with a JSON payload. Payloads are serialised
// so emitters and handlers share no types beyond this package.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type selects the handler and the payload shape
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// InvocationFinished describes the end of one invocation.
type InvocationFinished struct {
	InvocationID uuid.UUID `json:"invocation_id"`
	TabID        int       `json:"tab_id"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
	States       []string  `json:"states"`
	Final        string    `json:"final"`
	FailedIn     string    `json:"failed_in,omitempty"`
	Error        string    `json:"error,omitempty"`
	Diagnosis    string    `json:"diagnosis,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
}

// EventHandler defines an interface for components that can handle events.
// Handlers receive every emitted event and ignore types they do not handle.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
