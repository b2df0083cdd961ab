package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoTab marks a request whose originating tab is unknown. The coordinator then
// falls back to the active tab.
const NoTab = -1

// Trigger names how the user invoked generation.
type Trigger string

const (
	TriggerContextMenu Trigger = "context_menu"
	TriggerHotkey      Trigger = "hotkey"
)

// GenerationRequest is created when the user invokes the tool on a selection.
// It is consumed once and never persisted.
type GenerationRequest struct {
	ID          uuid.UUID `json:"id"`
	SourceText  string    `json:"source_text"`
	TabID       int       `json:"tab_id"`
	Trigger     Trigger   `json:"trigger"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewGenerationRequest validates the selection and assigns an invocation ID.
// A negative tabID is normalised to NoTab.
func NewGenerationRequest(text string, tabID int, trigger Trigger) (GenerationRequest, error) {
	if strings.TrimSpace(text) == "" {
		return GenerationRequest{}, ErrEmptySourceText
	}
	if tabID < 0 {
		tabID = NoTab
	}
	switch trigger {
	case "":
		trigger = TriggerContextMenu
	case TriggerContextMenu, TriggerHotkey:
	default:
		return GenerationRequest{}, fmt.Errorf("%w: unknown trigger %q", ErrValidation, trigger)
	}

	return GenerationRequest{
		ID:          uuid.New(),
		SourceText:  text,
		TabID:       tabID,
		Trigger:     trigger,
		RequestedAt: time.Now().UTC(),
	}, nil
}
