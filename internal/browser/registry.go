package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Host is the browser capability the coordinator drives.
type Host interface {
	// ResolveTab returns origin when it names a known tab, otherwise the
	// active tab. It fails with ErrNoTargetTab when neither exists.
	ResolveTab(ctx context.Context, origin int) (int, error)

	// Inject installs b into the tab's page. Injecting a bundle the page
	// already carries is a no-op.
	Inject(ctx context.Context, tabID int, b Bundle) error

	// SendMessage delivers msg to the tab's page and waits for its reply or
	// for ctx to end.
	SendMessage(ctx context.Context, tabID int, msg Message) (Reply, error)
}

// Tab describes one browser tab.
type Tab struct {
	ID         int    `json:"id"`
	URL        string `json:"url"`
	Active     bool   `json:"active"`
	Restricted bool   `json:"restricted"`
	Closed     bool   `json:"closed"`
}

type tabEntry struct {
	id     int
	url    string
	closed bool
	page   *Page
}

// Registry is an in-memory Host. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int
	tabs   map[int]*tabEntry
	active int
}

var _ Host = (*Registry)(nil)

// NewRegistry creates an empty registry with no active tab.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger.With("component", "browser"),
		tabs:   make(map[int]*tabEntry),
		active: -1,
	}
}

// OpenTab adds a tab for url and returns it. A tab opened with active set
// becomes the active tab; the first tab is always active.
func (r *Registry) OpenTab(url string, active bool) Tab {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.tabs[id] = &tabEntry{id: id, url: url, page: newPage(id, url)}
	if active || r.active < 0 {
		r.active = id
	}

	r.logger.Debug("tab opened", "tab_id", id, "active", r.active == id)
	return r.describe(r.tabs[id])
}

// ActivateTab makes id the active tab.
func (r *Registry) ActivateTab(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.lookup(id)
	if err != nil {
		return err
	}
	if t.closed {
		return fmt.Errorf("%w: %d", ErrTabClosed, id)
	}
	r.active = id
	return nil
}

// CloseTab closes id. Its page is torn down and later messages to it fail
// with ErrReceivingEndMissing.
func (r *Registry) CloseTab(id int) error {
	r.mu.Lock()
	t, err := r.lookup(id)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	t.closed = true
	if r.active == id {
		r.active = r.nextOpenLocked()
	}
	page := t.page
	r.mu.Unlock()

	page.close()
	r.logger.Debug("tab closed", "tab_id", id)
	return nil
}

// Tabs lists every open tab ordered by ID.
func (r *Registry) Tabs() []Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tab, 0, len(r.tabs))
	for _, t := range r.tabs {
		if t.closed {
			continue
		}
		out = append(out, r.describe(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tab returns the tab with id, including closed tabs.
func (r *Registry) Tab(id int) (Tab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, err := r.lookup(id)
	if err != nil {
		return Tab{}, err
	}
	return r.describe(t), nil
}

// Page returns the page of an open tab.
func (r *Registry) Page(id int) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if t.closed {
		return nil, fmt.Errorf("%w: %d", ErrTabClosed, id)
	}
	return t.page, nil
}

// ResolveTab implements Host.
func (r *Registry) ResolveTab(_ context.Context, origin int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if origin >= 0 {
		if _, ok := r.tabs[origin]; ok {
			return origin, nil
		}
	}
	if r.active >= 0 {
		return r.active, nil
	}
	return 0, ErrNoTargetTab
}

// Inject implements Host.
func (r *Registry) Inject(ctx context.Context, tabID int, b Bundle) error {
	r.mu.RLock()
	t, err := r.lookup(tabID)
	if err != nil {
		r.mu.RUnlock()
		return err
	}
	closed, url, page := t.closed, t.url, t.page
	r.mu.RUnlock()

	if closed {
		return fmt.Errorf("%w: %d", ErrTabClosed, tabID)
	}
	if IsRestrictedURL(url) {
		return fmt.Errorf("%w: %s", ErrRestrictedPage, url)
	}

	installed, err := page.install(b)
	if err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "bundle injected",
		"tab_id", tabID,
		"bundle", b.Name(),
		"newly_installed", installed)
	return nil
}

// SendMessage implements Host. Dispatch runs on its own goroutine so a slow
// listener cannot outlive ctx.
func (r *Registry) SendMessage(ctx context.Context, tabID int, msg Message) (Reply, error) {
	r.mu.RLock()
	t, ok := r.tabs[tabID]
	var page *Page
	unreachable := !ok || t.closed || IsRestrictedURL(t.url)
	if ok {
		page = t.page
	}
	r.mu.RUnlock()

	if unreachable {
		return Reply{}, ErrReceivingEndMissing
	}

	type result struct {
		reply Reply
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := page.Dispatch(ctx, msg)
		done <- result{reply, err}
	}()

	select {
	case res := <-done:
		return res.reply, res.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func (r *Registry) lookup(id int) (*tabEntry, error) {
	t, ok := r.tabs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTabNotFound, id)
	}
	return t, nil
}

func (r *Registry) describe(t *tabEntry) Tab {
	return Tab{
		ID:         t.id,
		URL:        t.url,
		Active:     !t.closed && r.active == t.id,
		Restricted: IsRestrictedURL(t.url),
		Closed:     t.closed,
	}
}

// nextOpenLocked picks the lowest open tab ID, or -1.
func (r *Registry) nextOpenLocked() int {
	next := -1
	for id, t := range r.tabs {
		if t.closed {
			continue
		}
		if next < 0 || id < next {
			next = id
		}
	}
	return next
}
