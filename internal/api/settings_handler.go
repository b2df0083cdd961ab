package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashcard-maker/internal/api/shared"
	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/settings"
)

// SettingsStore reads and updates the provider configuration.
type SettingsStore interface {
	Load(ctx context.Context) (domain.Configuration, error)
	Save(ctx context.Context, u settings.Update) (domain.Configuration, error)
}

// ProviderOption lists the models offered for one provider.
type ProviderOption struct {
	Name   string         `json:"name"`
	Models []domain.Model `json:"models"`
}

// SettingsResponse never includes the API key itself.
type SettingsResponse struct {
	Provider  string           `json:"provider"`
	Model     string           `json:"model"`
	APIKeySet bool             `json:"api_key_set"`
	Providers []ProviderOption `json:"providers"`
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	store  SettingsStore
	logger *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(store SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger.With("component", "settings_handler")}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Load(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toSettingsResponse(cfg))
}

// Put handles PUT /api/settings. Omitted fields keep their value.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var u settings.Update
	if err := decodeAndValidate(r, &u); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	cfg, err := h.store.Save(r.Context(), u)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toSettingsResponse(cfg))
}

func toSettingsResponse(cfg domain.Configuration) SettingsResponse {
	providers := domain.Providers()
	options := make([]ProviderOption, 0, len(providers))
	for _, p := range providers {
		options = append(options, ProviderOption{Name: string(p), Models: p.Models()})
	}
	return SettingsResponse{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKeySet: cfg.APIKey != "",
		Providers: options,
	}
}
