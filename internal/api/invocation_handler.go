package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-maker/internal/api/shared"
	"github.com/phrazzld/flashcard-maker/internal/events"
)

// defaultInvocationLimit caps GET /api/invocations without a limit.
const defaultInvocationLimit = 20

// InvocationHistory looks up recent invocation outcomes.
type InvocationHistory interface {
	Get(id uuid.UUID) (events.InvocationRecord, bool)
	Recent(limit int) []events.InvocationRecord
}

// InvocationListResponse is the body of GET /api/invocations.
type InvocationListResponse struct {
	Invocations []events.InvocationRecord `json:"invocations"`
}

// InvocationHandler reports how accepted generation requests ended. A failed
// record carries the diagnosis text shown to the user.
type InvocationHandler struct {
	history InvocationHistory
	logger  *slog.Logger
}

// NewInvocationHandler creates an InvocationHandler.
func NewInvocationHandler(history InvocationHistory, logger *slog.Logger) *InvocationHandler {
	return &InvocationHandler{
		history: history,
		logger:  logger.With("component", "invocation_handler"),
	}
}

// Get handles GET /api/invocations/{id}.
func (h *InvocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	rec, ok := h.history.Get(id)
	if !ok {
		HandleAPIError(w, r, ErrNoInvocation)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}

// List handles GET /api/invocations?limit=N, newest first.
func (h *InvocationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultInvocationLimit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, InvocationListResponse{
		Invocations: h.history.Recent(limit),
	})
}
