package generation_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	google := generation.ClientFunc(func(ctx context.Context, text, apiKey, model string) (string, error) {
		return "google:" + text, nil
	})

	reg, err := generation.NewRegistry(map[domain.Provider]generation.Client{
		domain.ProviderGoogle: google,
	})
	require.NoError(t, err)

	c, err := reg.Lookup(domain.ProviderGoogle)
	require.NoError(t, err)
	out, err := c.Generate(context.Background(), "x", "k", "m")
	require.NoError(t, err)
	assert.Equal(t, "google:x", out)

	_, err = reg.Lookup(domain.ProviderOpenAI)
	assert.ErrorIs(t, err, generation.ErrUnsupportedProvider)

	_, err = reg.Lookup("anthropic")
	assert.ErrorIs(t, err, generation.ErrUnsupportedProvider)
}

func TestNewRegistryRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	noop := generation.ClientFunc(func(context.Context, string, string, string) (string, error) { return "", nil })

	_, err := generation.NewRegistry(map[domain.Provider]generation.Client{"anthropic": noop})
	assert.ErrorIs(t, err, generation.ErrUnsupportedProvider)

	_, err = generation.NewRegistry(map[domain.Provider]generation.Client{domain.ProviderOpenAI: nil})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestIsEmptyOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"  \n", true},
		{generation.NoAnswer, true},
		{" (no answer)\n", true},
		{`{"question":"q","answer":"a"}`, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, generation.IsEmptyOutput(tc.raw), "raw=%q", tc.raw)
	}
}

func TestProviderError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	transport := &generation.ProviderError{Provider: domain.ProviderGoogle, Err: cause}
	assert.ErrorIs(t, transport, generation.ErrProvider)
	assert.ErrorIs(t, transport, cause)
	assert.Equal(t, "provider request failed: google: connection refused", transport.Error())

	status := &generation.ProviderError{
		Provider:   domain.ProviderOpenAI,
		StatusCode: http.StatusUnauthorized,
		Body:       "invalid api key",
	}
	assert.ErrorIs(t, status, generation.ErrProvider)
	assert.Equal(t, "provider request failed: openai responded 401: invalid api key", status.Error())

	var pe *generation.ProviderError
	wrapped := errors.Join(errors.New("ctx"), status)
	require.ErrorAs(t, wrapped, &pe)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
}
