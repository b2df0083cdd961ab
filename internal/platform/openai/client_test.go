package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/flashcard-maker/internal/generation"
	"github.com/phrazzld/flashcard-maker/internal/platform/logger"
	"github.com/phrazzld/flashcard-maker/internal/platform/metrics"
	"github.com/phrazzld/flashcard-maker/internal/platform/openai"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "sk-test-0123456789abcdefghij"

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newClient(t *testing.T, baseURL string, m *metrics.Metrics) (*openai.Client, *logger.TestLogBuffer) {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	c, err := openai.NewClient(log, m, openai.Config{BaseURL: baseURL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c, buf
}

func TestGenerateSendsSingleUserMessage(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var got chatRequest
	var auth, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"question\":\"Q\",\"answer\":\"A\"}"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	m := metrics.New()
	c, buf := newClient(t, srv.URL+"/v1", m)

	out, err := c.Generate(context.Background(), "Water boils at 100 C at sea level.", testKey, "gpt-4.1")
	require.NoError(t, err)

	assert.Equal(t, `{"question":"Q","answer":"A"}`, out)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer "+testKey, auth)
	assert.Equal(t, "gpt-4.1", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Water boils at 100 C at sea level.")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("openai", "gpt-4.1", "success")))
	assert.NotContains(t, buf.String(), testKey)
}

func TestGenerateWithoutChoicesYieldsNoAnswer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c, _ := newClient(t, srv.URL, nil)
	out, err := c.Generate(context.Background(), "text", testKey, "gpt-o3")
	require.NoError(t, err)
	assert.Equal(t, generation.NoAnswer, out)
}

func TestGenerateNon2xxIsProviderError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided: sk-test-0123456789abcdefghij.","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	m := metrics.New()
	c, _ := newClient(t, srv.URL, m)

	_, err := c.Generate(context.Background(), "text", testKey, "gpt-4.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrProvider)

	var pe *generation.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.NotContains(t, pe.Body, testKey)
	assert.Contains(t, pe.Body, "Incorrect API key provided")

	assert.Equal(t, int32(1), calls.Load(), "exactly one attempt")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("openai", "gpt-4.1", "error")))
}

func TestGenerateTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := newClient(t, url, nil)
	_, err := c.Generate(context.Background(), "text", testKey, "gpt-4.1")
	assert.ErrorIs(t, err, generation.ErrProvider)
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	log, _ := logger.GetTestLogger(t)

	_, err := openai.NewClient(nil, nil, openai.Config{BaseURL: "http://x"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = openai.NewClient(log, nil, openai.Config{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
