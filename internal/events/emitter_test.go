package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustEvent(t *testing.T, eventType string) *Event {
	t.Helper()
	event, err := NewEvent(eventType, map[string]string{"key": "value"})
	require.NoError(t, err)
	return event
}

func TestEmitWithoutSubscribers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	assert.NoError(t, emitter.EmitEvent(context.Background(), mustEvent(t, TypeGenerationRequested)))
}

func TestSubscribeFiltersByType(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	requests := &MockEventHandler{}
	finished := &MockEventHandler{}
	all := &MockEventHandler{}
	emitter.Subscribe(requests, TypeGenerationRequested)
	emitter.Subscribe(finished, TypeInvocationFinished)
	emitter.RegisterHandler(all)

	req := mustEvent(t, TypeGenerationRequested)
	require.NoError(t, emitter.EmitEvent(context.Background(), req))
	require.NoError(t, emitter.EmitEvent(context.Background(), mustEvent(t, TypeInvocationFinished)))
	require.NoError(t, emitter.EmitEvent(context.Background(), mustEvent(t, "other")))

	assert.Equal(t, 1, requests.HandledCount)
	assert.Same(t, req, requests.LastEvent)
	assert.Equal(t, 1, finished.HandledCount)
	assert.Equal(t, 3, all.HandledCount)
}

func TestEmitContinuesPastFailingHandlers(t *testing.T) {
	t.Parallel()

	errFirst := errors.New("first failed")
	errLast := errors.New("last failed")

	emitter := NewInMemoryEventEmitter(discardLogger())
	first := &MockEventHandler{HandlerError: errFirst}
	middle := &MockEventHandler{}
	last := &MockEventHandler{HandlerError: errLast}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(middle)
	emitter.RegisterHandler(last)

	err := emitter.EmitEvent(context.Background(), mustEvent(t, TypeInvocationFinished))
	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errLast)

	for _, h := range []*MockEventHandler{first, middle, last} {
		assert.Equal(t, 1, h.HandledCount)
	}
}

func TestSubscribeCopiesTypes(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	h := &MockEventHandler{}
	types := []string{TypeInvocationFinished}
	emitter.Subscribe(h, types...)
	types[0] = TypeGenerationRequested

	require.NoError(t, emitter.EmitEvent(context.Background(), mustEvent(t, TypeInvocationFinished)))
	assert.Equal(t, 1, h.HandledCount)
}
