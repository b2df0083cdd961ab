// Package openai implements generation.Client against the OpenAI chat
// completions API using github.com/sashabaranov/go-openai.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/generation"
	"github.com/phrazzld/flashcard-maker/internal/platform/metrics"
	"github.com/phrazzld/flashcard-maker/internal/prompt"
	"github.com/phrazzld/flashcard-maker/internal/redact"
	goopenai "github.com/sashabaranov/go-openai"
)

// Config holds the transport settings for the OpenAI client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.openai.com/v1.
	BaseURL string

	// Timeout bounds a single request. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements generation.Client for OpenAI.
type Client struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	baseURL    string
	httpClient *http.Client
}

var _ generation.Client = (*Client)(nil)

// NewClient creates an OpenAI client. m may be nil.
func NewClient(logger *slog.Logger, m *metrics.Metrics, cfg Config) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", generation.ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		logger:     logger.With("component", "openai"),
		metrics:    m,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}, nil
}

// Generate sends the flashcard prompt for text as a single user message and
// returns the content of the first choice, or generation.NoAnswer when absent.
func (c *Client) Generate(ctx context.Context, text, apiKey, model string) (string, error) {
	p, err := prompt.Build(text)
	if err != nil {
		return "", err
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	clientConfig.BaseURL = c.baseURL
	clientConfig.HTTPClient = c.httpClient
	client := goopenai.NewClientWithConfig(clientConfig)

	c.logger.DebugContext(ctx, "sending generation request",
		"model", model,
		"prompt_length", len(p))

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: p},
		},
	})
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveProvider(string(domain.ProviderOpenAI), model, "error", elapsed)
		return "", wrapError(model, err)
	}

	raw := generation.NoAnswer
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		raw = resp.Choices[0].Message.Content
	}

	c.metrics.ObserveProvider(string(domain.ProviderOpenAI), model, "success", elapsed)
	c.logger.DebugContext(ctx, "generation response received",
		"model", model,
		"duration_ms", elapsed.Milliseconds(),
		"total_tokens", resp.Usage.TotalTokens,
		"raw_output", redact.String(raw))

	return raw, nil
}

func wrapError(model string, err error) error {
	pe := &generation.ProviderError{
		Provider: domain.ProviderOpenAI,
		Model:    model,
		Err:      err,
	}

	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
		pe.Body = redact.String(apiErr.Message)
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
		pe.Body = redact.Error(reqErr)
	default:
		pe.Body = redact.Error(err)
	}

	return pe
}
