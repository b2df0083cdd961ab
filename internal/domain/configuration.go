package domain

import (
	"fmt"
	"strings"
)

// Configuration is the provider selection owned by the settings collaborator.
// The coordinator reads it once per invocation and never writes it.
type Configuration struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"-"`
}

// Validate returns ErrNotConfigured naming every blank field.
func (c Configuration) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Provider) == "" {
		missing = append(missing, "provider")
	}
	if strings.TrimSpace(c.Model) == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}
