package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/flashcard-maker/internal/browser"
	"github.com/phrazzld/flashcard-maker/internal/events"
	"github.com/phrazzld/flashcard-maker/internal/platform/logger"
	"github.com/phrazzld/flashcard-maker/internal/review"
	"github.com/phrazzld/flashcard-maker/internal/settings"
	"github.com/stretchr/testify/require"
)

// fakeSink is a notesink.Sink with overridable behaviour.
type fakeSink struct {
	ListDecksFn func(ctx context.Context) ([]string, error)
	AddNoteFn   func(ctx context.Context, deck, front, back string) (int64, error)

	mu    sync.Mutex
	added []string
}

func (f *fakeSink) ListDecks(ctx context.Context) ([]string, error) {
	if f.ListDecksFn != nil {
		return f.ListDecksFn(ctx)
	}
	return []string{"Default", "Geography"}, nil
}

func (f *fakeSink) AddNote(ctx context.Context, deck, front, back string) (int64, error) {
	f.mu.Lock()
	f.added = append(f.added, deck+"|"+front)
	f.mu.Unlock()
	if f.AddNoteFn != nil {
		return f.AddNoteFn(ctx, deck, front, back)
	}
	return 1, nil
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	err    error
	mu     sync.Mutex
	events []*events.Event
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

type fixture struct {
	router   *chi.Mux
	registry *browser.Registry
	bundle   *review.Bundle
	sink     *fakeSink
	emitter  *recordingEmitter
	hub      *PanelHub
	history  *events.History
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	registry := browser.NewRegistry(log)
	hub := NewPanelHub(registry, log)
	sink := &fakeSink{}
	bundle := review.NewBundle(sink,
		review.WithLogger(log),
		review.WithConfirmDelay(time.Hour),
		review.WithNotifier(hub.Publish))
	emitter := &recordingEmitter{}
	history := events.NewHistory(10)

	store, err := settings.NewFileStore(t.TempDir()+"/settings.yaml", log)
	require.NoError(t, err)

	gen := NewGenerationHandler(emitter, log)
	tabs := NewTabHandler(registry, log)
	st := NewSettingsHandler(store, log)
	inv := NewInvocationHandler(history, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", gen.Generate)
		r.Post("/preview", gen.Preview)
		r.Get("/settings", st.Get)
		r.Put("/settings", st.Put)
		r.Route("/tabs", tabs.Routes)
		r.Get("/invocations", inv.List)
		r.Get("/invocations/{id}", inv.Get)
	})
	r.Get("/tabs/{id}/panel", tabs.PanelHTML)
	r.Get("/ws/tabs/{id}", hub.ServeWS)

	return &fixture{router: r, registry: registry, bundle: bundle, sink: sink, emitter: emitter, hub: hub, history: history}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// deliver opens a panel on tabID the way the coordinator does and waits for
// its deck list.
func (f *fixture) deliver(t *testing.T, tabID int, raw string) *review.Panel {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, f.registry.Inject(ctx, tabID, f.bundle))
	_, err := f.registry.SendMessage(ctx, tabID, browser.Deliver(raw))
	require.NoError(t, err)

	page, err := f.registry.Page(tabID)
	require.NoError(t, err)
	p, ok := review.PanelFor(page)
	require.True(t, ok)

	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, p.WaitDecks(wctx))
	return p
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
