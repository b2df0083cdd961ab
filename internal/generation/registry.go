package generation

import (
	"fmt"

	"github.com/phrazzld/flashcard-maker/internal/domain"
)

// Registry maps each provider to its client. The set of providers is closed;
// lookups for anything else fail with ErrUnsupportedProvider.
type Registry struct {
	clients map[domain.Provider]Client
}

// NewRegistry builds a Registry from clients. Keys outside the provider
// catalogue are rejected.
func NewRegistry(clients map[domain.Provider]Client) (*Registry, error) {
	r := &Registry{clients: make(map[domain.Provider]Client, len(clients))}
	for p, c := range clients {
		if !p.Known() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
		}
		if c == nil {
			return nil, fmt.Errorf("%w: nil client for %s", ErrInvalidConfig, p)
		}
		r.clients[p] = c
	}
	return r, nil
}

// Lookup returns the client registered for provider.
func (r *Registry) Lookup(provider domain.Provider) (Client, error) {
	c, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(provider))
	}
	return c, nil
}
