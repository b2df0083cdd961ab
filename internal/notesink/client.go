package notesink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/flashcard-maker/internal/redact"
)

const (
	// ProtocolVersion is the AnkiConnect API version sent with every request.
	ProtocolVersion = 6

	DefaultURL       = "http://127.0.0.1:8765"
	DefaultModelName = "Basic"
	DefaultTimeout   = 10 * time.Second
)

// DefaultTags are attached to every note added through the client.
var DefaultTags = []string{"web-generated"}

// Sink is the capability the review panel needs from the note service.
type Sink interface {
	ListDecks(ctx context.Context) ([]string, error)
	AddNote(ctx context.Context, deck, front, back string) (int64, error)
}

// Client talks to AnkiConnect over HTTP.
type Client struct {
	url        string
	modelName  string
	tags       []string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Sink = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithURL sets the service endpoint.
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithModelName sets the note type used by AddNote.
func WithModelName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.modelName = name
		}
	}
}

// WithTags sets the tags attached to added notes.
func WithTags(tags []string) Option {
	return func(c *Client) {
		c.tags = append([]string(nil), tags...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client with the default endpoint, note type and tags.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:        DefaultURL,
		modelName:  DefaultModelName,
		tags:       append([]string(nil), DefaultTags...),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "notesink")
	return c
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

type note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Options   noteOptions       `json:"options"`
}

type noteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// ListDecks returns the deck names known to the service. Any failure means
// the service is unreachable for the caller's purposes; an empty slice with a
// nil error means the service is up but has no decks.
func (c *Client) ListDecks(ctx context.Context) ([]string, error) {
	var decks []string
	if err := c.invoke(ctx, "deckNames", nil, &decks); err != nil {
		return nil, unavailable(err)
	}
	if decks == nil {
		decks = []string{}
	}
	return decks, nil
}

// AddNote adds one Basic note to deck and returns its note ID. The service is
// probed with Version first; if that fails nothing is sent and the error wraps
// ErrUnavailable. Duplicates are rejected by the service and surface as
// *ServiceError.
func (c *Client) AddNote(ctx context.Context, deck, front, back string) (int64, error) {
	if strings.TrimSpace(deck) == "" {
		return 0, fmt.Errorf("%w: deck name cannot be empty", ErrInvalidNote)
	}
	if strings.TrimSpace(front) == "" || strings.TrimSpace(back) == "" {
		return 0, fmt.Errorf("%w: front and back cannot be empty", ErrInvalidNote)
	}

	if _, err := c.Version(ctx); err != nil {
		return 0, unavailable(err)
	}

	params := map[string]any{
		"note": note{
			DeckName:  deck,
			ModelName: c.modelName,
			Fields:    map[string]string{"Front": front, "Back": back},
			Tags:      c.tags,
			Options:   noteOptions{AllowDuplicate: false},
		},
	}

	var id int64
	if err := c.invoke(ctx, "addNote", params, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Version probes the service and returns its API version.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.invoke(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// unavailable makes err match ErrUnavailable while keeping any *ServiceError
// reachable through errors.As.
func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *Client) invoke(ctx context.Context, action string, params any, result any) error {
	payload, err := json.Marshal(request{Action: action, Version: ProtocolVersion, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "note service request failed",
			"action", action,
			"error", redact.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WarnContext(ctx, "note service returned non-success status",
			"action", action,
			"status", resp.StatusCode)
		return fmt.Errorf("%w: %s: status %d: %s", ErrUnavailable, action, resp.StatusCode,
			strings.TrimSpace(string(body)))
	}

	var env response
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrUnavailable, action, err)
	}

	if env.Error != nil && *env.Error != "" {
		c.logger.InfoContext(ctx, "note service rejected request",
			"action", action,
			"service_error", *env.Error)
		return &ServiceError{Action: action, Message: *env.Error}
	}

	if result != nil && len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("%w: %s: decode result: %v", ErrUnavailable, action, err)
		}
	}

	return nil
}
