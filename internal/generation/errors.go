package generation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/flashcard-maker/internal/domain"
)

// Common errors returned by the generation package
var (
	// ErrProvider is returned when the provider cannot be reached or answers
	// with a non-success status
	ErrProvider = errors.New("provider request failed")

	// ErrUnsupportedProvider is returned when no client is registered for the
	// configured provider
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrEmptyOutput is returned when a provider answers successfully but the
	// output carries no usable text
	ErrEmptyOutput = errors.New("provider returned no output")

	// ErrInvalidConfig is returned when a client is constructed with unusable settings
	ErrInvalidConfig = errors.New("invalid provider client configuration")
)

// ProviderError describes a failed provider call. StatusCode is zero for
// transport failures. Body holds the provider's error text, already redacted.
type ProviderError struct {
	Provider   domain.Provider
	Model      string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrProvider, e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" responded %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrProvider and the underlying cause.
func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProvider}
	}
	return []error{ErrProvider, e.Err}
}
