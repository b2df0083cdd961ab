package coordinator

import (
	"errors"
	"fmt"

	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/generation"
)

// ConfigurationError means provider, model or API key is missing, or the
// settings could not be read. It is raised before any network I/O.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnsupportedProviderError means the configured provider has no client.
type UnsupportedProviderError struct {
	Provider string
	Err      error
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.Provider)
}

func (e *UnsupportedProviderError) Unwrap() error { return e.Err }

// EmptyOutputError means the provider answered successfully with no usable
// output.
type EmptyOutputError struct {
	Provider domain.Provider
	Model    string
}

func (e *EmptyOutputError) Error() string {
	return fmt.Sprintf("%s/%s returned no output", e.Provider, e.Model)
}

func (e *EmptyOutputError) Unwrap() error { return generation.ErrEmptyOutput }

// NoTargetTabError means neither the originating tab nor an active tab exists.
type NoTargetTabError struct {
	Err error
}

func (e *NoTargetTabError) Error() string {
	return fmt.Sprintf("no target tab: %v", e.Err)
}

func (e *NoTargetTabError) Unwrap() error { return e.Err }

// DeliveryKind separates pages that cannot be reached from other failures.
type DeliveryKind int

const (
	// DeliveryUnreachable covers restricted pages, closed tabs, pages without
	// a listener and unanswered probes.
	DeliveryUnreachable DeliveryKind = iota + 1
	// DeliveryUnexpected covers everything else.
	DeliveryUnexpected
)

func (k DeliveryKind) String() string {
	switch k {
	case DeliveryUnreachable:
		return "unreachable"
	case DeliveryUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// DeliveryError means the review runtime could not be injected, did not
// acknowledge the probe, or did not accept the payload.
type DeliveryError struct {
	Kind  DeliveryKind
	State State
	TabID int
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to tab %d failed in %s (%s): %v", e.TabID, e.State, e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ErrBadHandshake is the cause of a DeliveryError when the page replied to
// the probe with something other than pong.
var ErrBadHandshake = errors.New("content script did not respond correctly")

// Diagnose returns the user-facing explanation for an invocation error.
func Diagnose(err error) string {
	if err == nil {
		return ""
	}

	var (
		cfgErr      *ConfigurationError
		unsupported *UnsupportedProviderError
		providerErr *generation.ProviderError
		emptyErr    *EmptyOutputError
		noTabErr    *NoTargetTabError
		deliveryErr *DeliveryError
	)

	switch {
	case errors.As(err, &cfgErr):
		return "Flashcard Maker is not configured. Choose a provider and a model and enter an API key in the settings."
	case errors.As(err, &unsupported):
		return fmt.Sprintf("The provider %q is not supported. Choose another provider in the settings.", unsupported.Provider)
	case errors.As(err, &providerErr):
		if providerErr.StatusCode != 0 {
			return fmt.Sprintf("The %s request failed with status %d. Check your API key and model.",
				providerErr.Provider, providerErr.StatusCode)
		}
		return fmt.Sprintf("Could not reach %s. Check your network connection.", providerErr.Provider)
	case errors.As(err, &emptyErr):
		return "The model returned no output. Try again or select different text."
	case errors.As(err, &noTabErr):
		return "No browser tab is available to show the flashcards."
	case errors.As(err, &deliveryErr) && deliveryErr.Kind == DeliveryUnreachable:
		return "Could not connect to the webpage. This is often due to a page's security policy or a special browser page. Try a different page."
	case errors.As(err, &deliveryErr):
		return "An unexpected error occurred while delivering the flashcards."
	default:
		return "An unexpected error occurred."
	}
}
