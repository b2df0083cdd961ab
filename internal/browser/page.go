package browser

import (
	"context"
	"sync"
)

// Listener receives messages sent to a page. It returns the reply and true
// when it handled the message, or false to let later listeners see it.
type Listener func(ctx context.Context, msg Message) (Reply, bool)

// Bundle is a runtime that can be injected into a page. Install is called at
// most once per page for a given Name.
type Bundle interface {
	Name() string
	Install(p *Page)
}

// Element is something mounted in a page under an identity marker.
// Detach is called when the element is replaced, removed or its page closes.
type Element interface {
	Detach()
}

// Page is the content context of one tab.
type Page struct {
	tabID int

	mu        sync.Mutex
	url       string
	listeners []Listener
	bundles   map[string]struct{}
	elements  map[string]Element
	closed    bool
}

func newPage(tabID int, url string) *Page {
	return &Page{
		tabID:    tabID,
		url:      url,
		bundles:  make(map[string]struct{}),
		elements: make(map[string]Element),
	}
}

// TabID returns the ID of the tab owning the page.
func (p *Page) TabID() int {
	return p.tabID
}

// URL returns the page address.
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// AddListener registers l for messages sent to the page.
func (p *Page) AddListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// HasBundle reports whether a bundle named name has been installed.
func (p *Page) HasBundle(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.bundles[name]
	return ok
}

// install runs b.Install unless a bundle of the same name is already present.
// It reports whether the bundle was newly installed.
func (p *Page) install(b Bundle) (bool, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false, ErrTabClosed
	}
	if _, ok := p.bundles[b.Name()]; ok {
		p.mu.Unlock()
		return false, nil
	}
	p.bundles[b.Name()] = struct{}{}
	p.mu.Unlock()

	b.Install(p)
	return true, nil
}

// Dispatch delivers msg to the page's listeners in registration order and
// returns the first reply. A page without listeners fails with
// ErrReceivingEndMissing; a message no listener handles gets an empty reply.
func (p *Page) Dispatch(ctx context.Context, msg Message) (Reply, error) {
	p.mu.Lock()
	if p.closed || len(p.listeners) == 0 {
		p.mu.Unlock()
		return Reply{}, ErrReceivingEndMissing
	}
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, l := range listeners {
		if reply, ok := l(ctx, msg); ok {
			return reply, nil
		}
	}
	return Reply{}, nil
}

// ReplaceElement mounts el under marker, detaching whatever was mounted
// there before. At most one element exists per marker.
func (p *Page) ReplaceElement(marker string, el Element) {
	p.mu.Lock()
	old := p.elements[marker]
	if p.closed {
		p.mu.Unlock()
		el.Detach()
		return
	}
	p.elements[marker] = el
	p.mu.Unlock()

	if old != nil {
		old.Detach()
	}
}

// RemoveElement detaches and removes the element under marker, if present.
// When el is non-nil the element is only removed if it is still el.
func (p *Page) RemoveElement(marker string, el Element) bool {
	p.mu.Lock()
	cur, ok := p.elements[marker]
	if !ok || (el != nil && cur != el) {
		p.mu.Unlock()
		return false
	}
	delete(p.elements, marker)
	p.mu.Unlock()

	cur.Detach()
	return true
}

// Element returns the element mounted under marker.
func (p *Page) Element(marker string) (Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[marker]
	return el, ok
}

// close tears the page down. Listeners are dropped and every element is
// detached.
func (p *Page) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.listeners = nil
	elements := p.elements
	p.elements = make(map[string]Element)
	p.mu.Unlock()

	for _, el := range elements {
		el.Detach()
	}
}
