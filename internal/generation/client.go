package generation

import (
	"context"
	"strings"
)

// NoAnswer is the text a client returns when the provider responds
// successfully but the expected output path is absent.
const NoAnswer = "(no answer)"

// Client sends one generation request to a hosted model.
type Client interface {
	// Generate builds the flashcard prompt from text and returns the model's
	// raw output. Exactly one network request is made. A 2xx response whose
	// output path is missing yields NoAnswer and a nil error.
	Generate(ctx context.Context, text, apiKey, model string) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, text, apiKey, model string) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, text, apiKey, model string) (string, error) {
	return f(ctx, text, apiKey, model)
}

// IsEmptyOutput reports whether raw carries no usable output.
func IsEmptyOutput(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == NoAnswer
}
