package notesink_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/phrazzld/flashcard-maker/internal/notesink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnki struct {
	mu       sync.Mutex
	requests []map[string]any

	status int
	reply  map[string]string // action -> raw JSON response
}

func (f *fakeAnki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, body)
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	action, _ := body["action"].(string)
	reply, ok := f.reply[action]
	if !ok && action == "version" {
		reply = `{"result":6,"error":null}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(reply))
}

func (f *fakeAnki) last() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFake(t *testing.T, fake *fakeAnki) *notesink.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return notesink.NewClient(notesink.WithURL(srv.URL), notesink.WithHTTPClient(srv.Client()))
}

func TestListDecks(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{
		"deckNames": `{"result":["Default","Biology"],"error":null}`,
	}}
	c := newFake(t, fake)

	decks, err := c.ListDecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Biology"}, decks)

	req := fake.last()
	assert.Equal(t, "deckNames", req["action"])
	assert.Equal(t, float64(notesink.ProtocolVersion), req["version"])
	assert.NotContains(t, req, "params")
}

func TestListDecksEmptyIsNotUnreachable(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{"deckNames": `{"result":[],"error":null}`}}
	decks, err := newFake(t, fake).ListDecks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, decks)
	assert.Empty(t, decks)
}

func TestListDecksFailures(t *testing.T) {
	t.Parallel()

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		decks, err := notesink.NewClient(notesink.WithURL(url)).ListDecks(context.Background())
		assert.Nil(t, decks)
		assert.ErrorIs(t, err, notesink.ErrUnavailable)
	})

	t.Run("non-success status", func(t *testing.T) {
		t.Parallel()
		decks, err := newFake(t, &fakeAnki{status: http.StatusForbidden}).ListDecks(context.Background())
		assert.Nil(t, decks)
		assert.ErrorIs(t, err, notesink.ErrUnavailable)
	})

	t.Run("error field", func(t *testing.T) {
		t.Parallel()
		fake := &fakeAnki{reply: map[string]string{"deckNames": `{"result":null,"error":"collection is not available"}`}}
		decks, err := newFake(t, fake).ListDecks(context.Background())
		assert.Nil(t, decks)

		assert.ErrorIs(t, err, notesink.ErrUnavailable)
		var se *notesink.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "deckNames", se.Action)
		assert.Equal(t, "collection is not available", se.Error())
	})
}

func TestAddNote(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{"addNote": `{"result":1496198395707,"error":null}`}}
	c := newFake(t, fake)

	id, err := c.AddNote(context.Background(), "Biology", "What is ATP?", "Energy currency")
	require.NoError(t, err)
	assert.Equal(t, int64(1496198395707), id)

	req := fake.last()
	assert.Equal(t, "addNote", req["action"])
	params := req["params"].(map[string]any)
	n := params["note"].(map[string]any)
	assert.Equal(t, "Biology", n["deckName"])
	assert.Equal(t, "Basic", n["modelName"])
	assert.Equal(t, map[string]any{"Front": "What is ATP?", "Back": "Energy currency"}, n["fields"])
	assert.Equal(t, []any{"web-generated"}, n["tags"])
	assert.Equal(t, map[string]any{"allowDuplicate": false}, n["options"])
}

func TestAddNoteProbesVersionFirst(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{"addNote": `{"result":7,"error":null}`}}
	_, err := newFake(t, fake).AddNote(context.Background(), "Default", "f", "b")
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.requests, 2)
	assert.Equal(t, "version", fake.requests[0]["action"])
	assert.Equal(t, "addNote", fake.requests[1]["action"])
}

func TestAddNoteUnavailableWhenVersionFails(t *testing.T) {
	t.Parallel()

	tests := map[string]*fakeAnki{
		"service error": {reply: map[string]string{
			"version": `{"result":null,"error":"collection is not available"}`,
			"addNote": `{"result":7,"error":null}`,
		}},
		"non-success status": {status: http.StatusServiceUnavailable},
	}

	for name, fake := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			id, err := newFake(t, fake).AddNote(context.Background(), "Default", "f", "b")
			assert.Zero(t, id)
			assert.ErrorIs(t, err, notesink.ErrUnavailable)

			fake.mu.Lock()
			defer fake.mu.Unlock()
			require.Len(t, fake.requests, 1)
			assert.Equal(t, "version", fake.requests[0]["action"])
		})
	}
}

func TestAddNoteDuplicateSurfacesServiceText(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{"addNote": `{"result":null,"error":"cannot create note because it is a duplicate"}`}}
	_, err := newFake(t, fake).AddNote(context.Background(), "Default", "front", "back")

	var se *notesink.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "addNote", se.Action)
	assert.Equal(t, "cannot create note because it is a duplicate", err.Error())
	assert.NotErrorIs(t, err, notesink.ErrUnavailable)
}

func TestAddNoteOptions(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{"addNote": `{"result":7,"error":null}`}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := notesink.NewClient(
		notesink.WithURL(srv.URL+"/"),
		notesink.WithModelName("Basic (and reversed card)"),
		notesink.WithTags([]string{"a", "b"}),
	)
	_, err := c.AddNote(context.Background(), "Default", "f", "b")
	require.NoError(t, err)

	n := fake.last()["params"].(map[string]any)["note"].(map[string]any)
	assert.Equal(t, "Basic (and reversed card)", n["modelName"])
	assert.Equal(t, []any{"a", "b"}, n["tags"])
}

func TestAddNoteValidation(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{}
	c := newFake(t, fake)

	_, err := c.AddNote(context.Background(), " ", "f", "b")
	assert.ErrorIs(t, err, notesink.ErrInvalidNote)
	_, err = c.AddNote(context.Background(), "Default", "", "b")
	assert.ErrorIs(t, err, notesink.ErrInvalidNote)

	fake.mu.Lock()
	assert.Empty(t, fake.requests)
	fake.mu.Unlock()
}

func TestVersion(t *testing.T) {
	t.Parallel()

	fake := &fakeAnki{reply: map[string]string{"version": `{"result":6,"error":null}`}}
	v, err := newFake(t, fake).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}
