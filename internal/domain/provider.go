package domain

import (
	"fmt"
	"strings"
)

// Provider identifies an LLM vendor. The set is closed: adding a vendor means
// adding a constant here, a catalogue entry, and a client mapping.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderOpenAI Provider = "openai"
)

// Model is a selectable model offered for a provider.
type Model struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var catalogue = map[Provider][]Model{
	ProviderGoogle: {
		{ID: "gemini-2.5-flash", Label: "Gemini 2.5-Flash"},
		{ID: "gemini-2.5-pro", Label: "Gemini 2.5-Pro"},
	},
	ProviderOpenAI: {
		{ID: "gpt-4.1", Label: "GPT-4.1"},
		{ID: "gpt-o3", Label: "GPT o3"},
	},
}

// Providers returns every supported provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderOpenAI}
}

// ParseProvider converts a stored provider tag into a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := catalogue[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return p, nil
}

// Models returns the models offered for p, or nil for an unknown provider.
func (p Provider) Models() []Model {
	models, ok := catalogue[p]
	if !ok {
		return nil
	}
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Known reports whether p is part of the catalogue.
func (p Provider) Known() bool {
	_, ok := catalogue[p]
	return ok
}

// Offers reports whether model is in p's catalogue.
func (p Provider) Offers(model string) bool {
	for _, m := range catalogue[p] {
		if m.ID == model {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (p Provider) String() string {
	return string(p)
}
