package gemini

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
	"google.golang.org/genai"
)

// Config holds the transport settings for the Gemini client.
type Config struct {
	// BaseURL overrides the Gemini endpoint. Empty uses the SDK default.
	BaseURL string

	// Timeout bounds a single request. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements generation.Client for Google Gemini.
type Client struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	baseURL    string
	httpClient *http.Client
}

var _ generation.Client = (*Client)(nil)

// NewClient creates a Gemini client. m may be nil.
func NewClient(logger *slog.Logger, m *metrics.Metrics, cfg Config) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		logger:     logger.With("component", "gemini"),
		metrics:    m,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}, nil
}

// Generate sends the flashcard prompt for text to model and returns the raw
// text of the first candidate, or generation.NoAnswer when it is absent.
func (c *Client) Generate(ctx context.Context, text, apiKey, model string) (string, error) {
	p, err := prompt.Build(text)
	if err != nil {
		return "", err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return "", &generation.ProviderError{
			Provider: domain.ProviderGoogle,
			Model:    model,
			Body:     redact.Error(err),
			Err:      err,
		}
	}

	c.logger.DebugContext(ctx, "sending generation request",
		"model", model,
		"prompt_length", len(p))

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(p), nil)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveProvider(string(domain.ProviderGoogle), model, "error", elapsed)
		return "", c.wrapError(model, err)
	}

	raw := firstCandidateText(resp)
	c.metrics.ObserveProvider(string(domain.ProviderGoogle), model, "success", elapsed)
	c.logger.DebugContext(ctx, "generation response received",
		"model", model,
		"duration_ms", elapsed.Milliseconds(),
		"raw_output", redact.String(raw))

	return raw, nil
}

func (c *Client) wrapError(model string, err error) error {
	pe := &generation.ProviderError{
		Provider: domain.ProviderGoogle,
		Model:    model,
		Err:      err,
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.Code
		pe.Body = redact.String(apiErr.Message)
	} else {
		pe.Body = redact.Error(err)
	}

	return pe
}

// firstCandidateText follows candidates[0].content.parts[0].text.
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return generation.NoAnswer
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return generation.NoAnswer
	}
	part := cand.Content.Parts[0]
	if part == nil || part.Text == "" {
		return generation.NoAnswer
	}
	return part.Text
}
