package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/flashcard-maker/internal/api"
	apiMiddleware "github.com/phrazzld/flashcard-maker/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	generationHandler := api.NewGenerationHandler(app.eventEmitter, app.logger)
	settingsHandler := api.NewSettingsHandler(app.settings, app.logger)
	tabHandler := api.NewTabHandler(app.browser, app.logger)
	invocationHandler := api.NewInvocationHandler(app.history, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", generationHandler.Generate)
		r.Post("/preview", generationHandler.Preview)

		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Put)

		r.Get("/invocations", invocationHandler.List)
		r.Get("/invocations/{id}", invocationHandler.Get)

		r.Route("/tabs", tabHandler.Routes)
	})

	// Rendered panel and its live updates.
	r.Get("/tabs/{id}/panel", tabHandler.PanelHTML)
	r.Get("/ws/tabs/{id}", app.hub.ServeWS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
