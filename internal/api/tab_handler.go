package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/flashcard-maker/internal/api/shared"
	"github.com/phrazzld/flashcard-maker/internal/browser"
	"github.com/phrazzld/flashcard-maker/internal/review"
)

// TabHost is the part of the tab registry the API drives.
type TabHost interface {
	OpenTab(url string, active bool) browser.Tab
	ActivateTab(id int) error
	CloseTab(id int) error
	Tabs() []browser.Tab
	Tab(id int) (browser.Tab, error)
	Page(id int) (*browser.Page, error)
}

// OpenTabRequest is the body of POST /api/tabs.
type OpenTabRequest struct {
	URL    string `json:"url" validate:"required"`
	Active bool   `json:"active"`
}

// EditCardRequest is the body of PUT .../cards/{cardID}.
type EditCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// SelectDeckRequest is the body of PUT .../panel/deck.
type SelectDeckRequest struct {
	Deck string `json:"deck" validate:"required"`
}

// TabHandler serves the tab and review panel endpoints.
type TabHandler struct {
	host   TabHost
	logger *slog.Logger
}

// NewTabHandler creates a TabHandler.
func NewTabHandler(host TabHost, logger *slog.Logger) *TabHandler {
	return &TabHandler{host: host, logger: logger.With("component", "tab_handler")}
}

// Routes mounts the tab endpoints on r.
func (h *TabHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Open)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Close)
		r.Post("/activate", h.Activate)

		r.Route("/panel", func(r chi.Router) {
			r.Get("/", h.PanelJSON)
			r.Delete("/", h.ClosePanel)
			r.Put("/deck", h.SelectDeck)
			r.Put("/cards/{cardID}", h.EditCard)
			r.Post("/cards/{cardID}/flip", h.FlipCard)
			r.Post("/cards/{cardID}/commit", h.CommitCard)
		})
	})
}

// List handles GET /api/tabs.
func (h *TabHandler) List(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.host.Tabs())
}

// Open handles POST /api/tabs.
func (h *TabHandler) Open(w http.ResponseWriter, r *http.Request) {
	var body OpenTabRequest
	if err := decodeAndValidate(r, &body); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, h.host.OpenTab(body.URL, body.Active))
}

// Get handles GET /api/tabs/{id}.
func (h *TabHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	tab, err := h.host.Tab(id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tab)
}

// Activate handles POST /api/tabs/{id}/activate.
func (h *TabHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.withTab(w, r, h.host.ActivateTab)
}

// Close handles DELETE /api/tabs/{id}. Any panel on the tab goes with it.
func (h *TabHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.withTab(w, r, h.host.CloseTab)
}

func (h *TabHandler) withTab(w http.ResponseWriter, r *http.Request, fn func(int) error) {
	id, err := pathInt(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := fn(id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// panel returns the live panel on the tab named in the path.
func (h *TabHandler) panel(r *http.Request) (*review.Panel, error) {
	id, err := pathInt(r, "id")
	if err != nil {
		return nil, err
	}
	page, err := h.host.Page(id)
	if err != nil {
		return nil, err
	}
	p, ok := review.PanelFor(page)
	if !ok {
		return nil, ErrNoPanel
	}
	return p, nil
}

// PanelJSON handles GET /api/tabs/{id}/panel.
func (h *TabHandler) PanelJSON(w http.ResponseWriter, r *http.Request) {
	p, err := h.panel(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p.Snapshot())
}

// PanelHTML handles GET /tabs/{id}/panel, the rendered panel.
func (h *TabHandler) PanelHTML(w http.ResponseWriter, r *http.Request) {
	p, err := h.panel(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return p.Render(out)
	})
}

// panelAction runs fn against the panel and responds with the new snapshot.
func (h *TabHandler) panelAction(w http.ResponseWriter, r *http.Request, fn func(*review.Panel) error) {
	p, err := h.panel(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := fn(p); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p.Snapshot())
}

// FlipCard handles POST .../cards/{cardID}/flip.
func (h *TabHandler) FlipCard(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, func(p *review.Panel) error {
		return p.Flip(chi.URLParam(r, "cardID"))
	})
}

// EditCard handles PUT .../cards/{cardID}.
func (h *TabHandler) EditCard(w http.ResponseWriter, r *http.Request) {
	var body EditCardRequest
	if err := decodeAndValidate(r, &body); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	h.panelAction(w, r, func(p *review.Panel) error {
		return p.Edit(chi.URLParam(r, "cardID"), body.Front, body.Back)
	})
}

// SelectDeck handles PUT .../panel/deck.
func (h *TabHandler) SelectDeck(w http.ResponseWriter, r *http.Request) {
	var body SelectDeckRequest
	if err := decodeAndValidate(r, &body); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	h.panelAction(w, r, func(p *review.Panel) error {
		return p.SelectDeck(body.Deck)
	})
}

// CommitCard handles POST .../cards/{cardID}/commit. A service failure
// answers 502 with the service's own text; the card stays in the panel in
// its error state.
func (h *TabHandler) CommitCard(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, func(p *review.Panel) error {
		return p.Commit(r.Context(), chi.URLParam(r, "cardID"))
	})
}

// ClosePanel handles DELETE /api/tabs/{id}/panel.
func (h *TabHandler) ClosePanel(w http.ResponseWriter, r *http.Request) {
	p, err := h.panel(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	p.Close()
	w.WriteHeader(http.StatusNoContent)
}
