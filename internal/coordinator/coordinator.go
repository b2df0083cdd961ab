package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-maker/internal/browser"
	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/events"
	"github.com/phrazzld/flashcard-maker/internal/generation"
	"github.com/phrazzld/flashcard-maker/internal/platform/logger"
	"github.com/phrazzld/flashcard-maker/internal/platform/metrics"
	"github.com/phrazzld/flashcard-maker/internal/redact"
	"github.com/phrazzld/flashcard-maker/internal/settings"
)

// DefaultHandshakeTimeout bounds the wait for the page's pong.
const DefaultHandshakeTimeout = 5 * time.Second

// Config tunes the coordinator.
type Config struct {
	// HandshakeTimeout bounds the probe's reply wait. Zero uses the default.
	HandshakeTimeout time.Duration
}

// Dependencies are the collaborators of a Coordinator. Metrics and Events
// may be nil.
type Dependencies struct {
	Settings  settings.Reader
	Providers *generation.Registry
	Host      browser.Host
	Bundle    browser.Bundle
	Metrics   *metrics.Metrics
	Events    events.EventEmitter
}

// Result records how one invocation went.
type Result struct {
	InvocationID uuid.UUID
	TabID        int
	States       []State
	Final        State
	Err          error
}

// Coordinator runs invocations.
type Coordinator struct {
	deps             Dependencies
	handshakeTimeout time.Duration
	logger           *slog.Logger
}

// New creates a Coordinator.
func New(deps Dependencies, cfg Config, log *slog.Logger) (*Coordinator, error) {
	switch {
	case deps.Settings == nil:
		return nil, errors.New("coordinator: settings reader cannot be nil")
	case deps.Providers == nil:
		return nil, errors.New("coordinator: provider registry cannot be nil")
	case deps.Host == nil:
		return nil, errors.New("coordinator: browser host cannot be nil")
	case deps.Bundle == nil:
		return nil, errors.New("coordinator: review bundle cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	return &Coordinator{
		deps:             deps,
		handshakeTimeout: timeout,
		logger:           log.With("component", "coordinator"),
	}, nil
}

// invocation is the mutable state of one Run.
type invocation struct {
	req    domain.GenerationRequest
	states []State
	tabID  int
	cfg    domain.Configuration
	raw    string
	log    *slog.Logger
}

func (inv *invocation) enter(s State) {
	inv.states = append(inv.states, s)
	inv.log.Debug("invocation state", "state", s)
}

func (inv *invocation) current() State {
	return inv.states[len(inv.states)-1]
}

// Run drives req through the state machine. It never panics on a failed
// step; the error is returned in the Result.
func (c *Coordinator) Run(ctx context.Context, req domain.GenerationRequest) Result {
	start := time.Now()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	log := logger.FromContextOrDefault(ctx, c.logger).With(
		"invocation_id", req.ID,
		"origin_tab_id", req.TabID,
		"trigger", req.Trigger)

	inv := &invocation{req: req, states: []State{StateIdle}, tabID: req.TabID, log: log}

	err := c.run(ctx, inv)

	failedIn := State("")
	if err != nil {
		failedIn = inv.current()
		inv.enter(StateFailed)
	} else {
		inv.enter(StateDone)
	}

	res := Result{
		InvocationID: req.ID,
		TabID:        inv.tabID,
		States:       inv.states,
		Final:        inv.current(),
		Err:          err,
	}
	c.finish(ctx, inv, res, failedIn, time.Since(start))
	return res
}

// Invoke runs req and returns only its error.
func (c *Coordinator) Invoke(ctx context.Context, req domain.GenerationRequest) error {
	return c.Run(ctx, req).Err
}

func (c *Coordinator) run(ctx context.Context, inv *invocation) error {
	inv.enter(StateConfigCheck)
	cfg, err := c.deps.Settings.Load(ctx)
	if err != nil {
		return &ConfigurationError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigurationError{Err: err}
	}
	inv.cfg = cfg
	inv.log = inv.log.With("provider", cfg.Provider, "model", cfg.Model)

	inv.enter(StateProviderCall)
	raw, err := c.generate(ctx, inv)
	if err != nil {
		return err
	}
	inv.raw = raw

	inv.enter(StateInject)
	tabID, err := c.deps.Host.ResolveTab(ctx, inv.req.TabID)
	if err != nil {
		return &NoTargetTabError{Err: err}
	}
	inv.tabID = tabID
	inv.log = inv.log.With("tab_id", tabID)
	if err := c.deps.Host.Inject(ctx, tabID, c.deps.Bundle); err != nil {
		return c.deliveryError(StateInject, tabID, err)
	}

	inv.enter(StateHandshake)
	if err := c.handshake(ctx, tabID); err != nil {
		return err
	}

	inv.enter(StateDeliver)
	if _, err := c.deps.Host.SendMessage(ctx, tabID, browser.Deliver(raw)); err != nil {
		return c.deliveryError(StateDeliver, tabID, err)
	}

	return nil
}

func (c *Coordinator) generate(ctx context.Context, inv *invocation) (string, error) {
	provider, err := domain.ParseProvider(inv.cfg.Provider)
	if err != nil {
		return "", &UnsupportedProviderError{Provider: inv.cfg.Provider, Err: err}
	}
	client, err := c.deps.Providers.Lookup(provider)
	if err != nil {
		return "", &UnsupportedProviderError{Provider: inv.cfg.Provider, Err: err}
	}

	raw, err := client.Generate(ctx, inv.req.SourceText, inv.cfg.APIKey, inv.cfg.Model)
	if err != nil {
		var pe *generation.ProviderError
		if errors.As(err, &pe) {
			return "", err
		}
		return "", &generation.ProviderError{
			Provider: provider,
			Model:    inv.cfg.Model,
			Body:     redact.Error(err),
			Err:      err,
		}
	}

	if generation.IsEmptyOutput(raw) {
		return "", &EmptyOutputError{Provider: provider, Model: inv.cfg.Model}
	}
	return raw, nil
}

// handshake sends the probe and requires a pong within the timeout. An
// unanswered probe is treated like a page that cannot be reached.
func (c *Coordinator) handshake(ctx context.Context, tabID int) error {
	hctx, cancel := context.WithTimeout(ctx, c.handshakeTimeout)
	defer cancel()

	reply, err := c.deps.Host.SendMessage(hctx, tabID, browser.Ping())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return &DeliveryError{
				Kind:  DeliveryUnreachable,
				State: StateHandshake,
				TabID: tabID,
				Err:   fmt.Errorf("no reply within %s: %w", c.handshakeTimeout, err),
			}
		}
		return c.deliveryError(StateHandshake, tabID, err)
	}
	if !reply.IsPong() {
		return &DeliveryError{
			Kind:  DeliveryUnexpected,
			State: StateHandshake,
			TabID: tabID,
			Err:   fmt.Errorf("%w: status %q", ErrBadHandshake, reply.Status),
		}
	}
	return nil
}

func (c *Coordinator) deliveryError(state State, tabID int, err error) error {
	kind := DeliveryUnexpected
	if browser.IsUnreachable(err) {
		kind = DeliveryUnreachable
	}
	return &DeliveryError{Kind: kind, State: state, TabID: tabID, Err: err}
}

func (c *Coordinator) finish(ctx context.Context, inv *invocation, res Result, failedIn State, elapsed time.Duration) {
	states := make([]string, len(res.States))
	for i, s := range res.States {
		states[i] = string(s)
	}

	outcome := "done"
	if res.Err != nil {
		outcome = "failed"
	}
	c.deps.Metrics.ObserveInvocation(outcome, string(failedIn))

	payload := events.InvocationFinished{
		InvocationID: res.InvocationID,
		TabID:        res.TabID,
		Provider:     inv.cfg.Provider,
		Model:        inv.cfg.Model,
		States:       states,
		Final:        string(res.Final),
		FailedIn:     string(failedIn),
		DurationMS:   elapsed.Milliseconds(),
	}

	if res.Err != nil {
		payload.Error = redact.Error(res.Err)
		payload.Diagnosis = Diagnose(res.Err)

		level := slog.LevelWarn
		var de *DeliveryError
		if errors.As(res.Err, &de) && de.Kind == DeliveryUnexpected {
			level = slog.LevelError
		}
		var pe *generation.ProviderError
		if errors.As(res.Err, &pe) {
			level = slog.LevelError
		}
		inv.log.Log(ctx, level, "invocation failed",
			"failed_in", failedIn,
			"error", payload.Error,
			"diagnosis", payload.Diagnosis,
			"duration_ms", payload.DurationMS)
	} else {
		inv.log.InfoContext(ctx, "invocation delivered",
			"raw_length", len(inv.raw),
			"duration_ms", payload.DurationMS)
	}

	if c.deps.Events == nil {
		return
	}
	event, err := events.NewEvent(events.TypeInvocationFinished, payload)
	if err != nil {
		inv.log.ErrorContext(ctx, "failed to build invocation event", "error", err)
		return
	}
	if err := c.deps.Events.EmitEvent(ctx, event); err != nil {
		inv.log.WarnContext(ctx, "invocation event handler failed", "error", err)
	}
}
