package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-maker/internal/api/shared"
	"github.com/phrazzld/flashcard-maker/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationLookup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// The generate endpoint's event feeds the history as it would in the server.
	w := f.do(t, http.MethodPost, "/api/generate", GenerateRequest{Text: "Paris is the capital of France."})
	require.Equal(t, http.StatusAccepted, w.Code)
	accepted := decode[GenerateResponse](t, w)

	require.Len(t, f.emitter.events, 1)
	require.NoError(t, f.history.HandleEvent(context.Background(), f.emitter.events[0]))

	w = f.do(t, http.MethodGet, "/api/invocations/"+accepted.InvocationID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[events.InvocationRecord](t, w)
	assert.Equal(t, events.InvocationPending, rec.Status)

	id, err := uuid.Parse(accepted.InvocationID)
	require.NoError(t, err)
	finished, err := events.NewEvent(events.TypeInvocationFinished, events.InvocationFinished{
		InvocationID: id,
		TabID:        0,
		States:       []string{"IDLE", "CONFIG_CHECK", "FAILED"},
		Final:        "FAILED",
		FailedIn:     "CONFIG_CHECK",
		Diagnosis:    "Choose a provider, model and API key in the settings.",
	})
	require.NoError(t, err)
	require.NoError(t, f.history.HandleEvent(context.Background(), finished))

	w = f.do(t, http.MethodGet, "/api/invocations/"+accepted.InvocationID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rec = decode[events.InvocationRecord](t, w)
	assert.Equal(t, events.InvocationFailed, rec.Status)
	require.NotNil(t, rec.Result)
	assert.Equal(t, "Choose a provider, model and API key in the settings.", rec.Result.Diagnosis)

	w = f.do(t, http.MethodGet, "/api/invocations?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[InvocationListResponse](t, w)
	require.Len(t, list.Invocations, 1)
	assert.Equal(t, id, list.Invocations[0].InvocationID)
}

func TestInvocationLookupErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"malformed id", "/api/invocations/not-a-uuid", http.StatusBadRequest},
		{"unknown id", "/api/invocations/" + uuid.NewString(), http.StatusNotFound},
		{"bad limit", "/api/invocations?limit=-1", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.want, w.Code)
			assert.NotEmpty(t, decode[shared.ErrorResponse](t, w).Error)
		})
	}
}
