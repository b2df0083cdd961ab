package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/flashcard-maker/internal/browser"
	"github.com/phrazzld/flashcard-maker/internal/notesink"
	"github.com/phrazzld/flashcard-maker/internal/parser"
	"github.com/phrazzld/flashcard-maker/internal/platform/metrics"
)

const (
	// BundleName identifies the review runtime among a page's bundles.
	BundleName = "review-runtime"

	// PanelMarker is the page slot holding the current panel.
	PanelMarker = "anki-flash-ui"

	// DefaultConfirmDelay is how long a sent card stays visible.
	DefaultConfirmDelay = 2 * time.Second
)

// Bundle injects the review runtime into pages.
type Bundle struct {
	sink         notesink.Sink
	confirmDelay time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	notify       Notifier
}

var _ browser.Bundle = (*Bundle)(nil)

// BundleOption configures a Bundle.
type BundleOption func(*Bundle)

// WithConfirmDelay sets how long a sent card stays before it is removed.
func WithConfirmDelay(d time.Duration) BundleOption {
	return func(b *Bundle) {
		if d >= 0 {
			b.confirmDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BundleOption {
	return func(b *Bundle) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink for commit outcomes.
func WithMetrics(m *metrics.Metrics) BundleOption {
	return func(b *Bundle) {
		b.metrics = m
	}
}

// WithNotifier registers a callback for every panel change.
func WithNotifier(n Notifier) BundleOption {
	return func(b *Bundle) {
		b.notify = n
	}
}

// NewBundle creates the review runtime backed by sink.
func NewBundle(sink notesink.Sink, opts ...BundleOption) *Bundle {
	b := &Bundle{
		sink:         sink,
		confirmDelay: DefaultConfirmDelay,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "review")
	return b
}

// Name implements browser.Bundle.
func (b *Bundle) Name() string {
	return BundleName
}

// Install implements browser.Bundle.
func (b *Bundle) Install(page *browser.Page) {
	page.AddListener(func(ctx context.Context, msg browser.Message) (browser.Reply, bool) {
		if msg.IsPing() {
			return browser.Reply{Status: browser.StatusPong}, true
		}

		raw, ok := msg.Payload()
		if !ok {
			return browser.Reply{}, false
		}

		b.open(ctx, page, raw)
		return browser.Reply{}, true
	})
}

func (b *Bundle) open(ctx context.Context, page *browser.Page, raw string) *Panel {
	cards := parser.Parse(raw)

	panel := newPanel(b, page.TabID(), cards, func(p *Panel) {
		page.RemoveElement(PanelMarker, p)
	})
	page.ReplaceElement(PanelMarker, panel)

	b.logger.InfoContext(ctx, "review panel opened",
		"tab_id", page.TabID(),
		"panel_id", panel.ID(),
		"cards", len(cards))
	panel.publish(panel.Snapshot())

	// The sender's context ends once delivery returns; deck loading must not.
	go panel.loadDecks(context.WithoutCancel(ctx))

	return panel
}

// PanelFor returns the panel currently mounted in page.
func PanelFor(page *browser.Page) (*Panel, bool) {
	el, ok := page.Element(PanelMarker)
	if !ok {
		return nil, false
	}
	panel, ok := el.(*Panel)
	return panel, ok
}
