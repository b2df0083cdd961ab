package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashcard-maker/internal/api/shared"
	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/events"
	"github.com/phrazzld/flashcard-maker/internal/parser"
	"github.com/phrazzld/flashcard-maker/internal/platform/logger"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Text    string `json:"text" validate:"required"`
	TabID   *int   `json:"tab_id,omitempty" validate:"omitempty,gte=0"`
	Trigger string `json:"trigger,omitempty" validate:"omitempty,oneof=context_menu hotkey"`
}

// GenerateResponse carries the ID used to correlate logs, events and the
// eventual panel.
type GenerateResponse struct {
	InvocationID string `json:"invocation_id"`
}

// PreviewRequest is the body of POST /api/preview.
type PreviewRequest struct {
	Raw string `json:"raw"`
}

// PreviewResponse lists the cards the parser would produce from Raw.
type PreviewResponse struct {
	Cards []domain.Flashcard `json:"cards"`
	Count int                `json:"count"`
}

// GenerationHandler accepts selections and hands them to the background
// pipeline.
type GenerationHandler struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewGenerationHandler creates a GenerationHandler.
func NewGenerationHandler(emitter events.EventEmitter, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		emitter: emitter,
		logger:  logger.With("component", "generation_handler"),
	}
}

// Generate handles POST /api/generate. The invocation runs in the
// background; the response only acknowledges it.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var body GenerateRequest
	if err := decodeAndValidate(r, &body); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	tabID := domain.NoTab
	if body.TabID != nil {
		tabID = *body.TabID
	}

	req, err := domain.NewGenerationRequest(body.Text, tabID, domain.Trigger(body.Trigger))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	event, err := events.NewEvent(events.TypeGenerationRequested, req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("generation accepted",
		"invocation_id", req.ID,
		"tab_id", req.TabID,
		"trigger", req.Trigger,
		"text_length", len(req.SourceText))

	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{InvocationID: req.ID.String()})
}

// Preview handles POST /api/preview. It runs the response parser on raw model
// output so malformed lines can be diagnosed without a provider call.
func (h *GenerationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var body PreviewRequest
	if err := decodeAndValidate(r, &body); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	cards := parser.Parse(body.Raw)
	shared.RespondWithJSON(w, r, http.StatusOK, PreviewResponse{Cards: cards, Count: len(cards)})
}
