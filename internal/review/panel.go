package review

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/notesink"
	"github.com/phrazzld/flashcard-maker/internal/platform/metrics"
)

// CardState is the commit state of one card.
type CardState string

const (
	CardIdle    CardState = "idle"
	CardSending CardState = "sending"
	CardSent    CardState = "sent"
	CardError   CardState = "error"
)

// DeckState is the state of the deck selector.
type DeckState string

const (
	DecksLoading     DeckState = "loading"
	DecksReady       DeckState = "ready"
	DecksUnreachable DeckState = "unreachable"
)

// Card is one reviewable flashcard.
type Card struct {
	ID      string    `json:"id"`
	Front   string    `json:"front"`
	Back    string    `json:"back"`
	Flipped bool      `json:"flipped"`
	State   CardState `json:"state"`
	Error   string    `json:"error,omitempty"`
}

// Snapshot is a point-in-time copy of a panel.
type Snapshot struct {
	ID           string    `json:"id"`
	TabID        int       `json:"tab_id"`
	Cards        []Card    `json:"cards"`
	DeckState    DeckState `json:"deck_state"`
	Decks        []string  `json:"decks"`
	SelectedDeck string    `json:"selected_deck"`
	Closed       bool      `json:"closed"`
	Version      uint64    `json:"version"`
}

// Notifier is told about every panel change.
type Notifier func(snap Snapshot)

// Panel holds the cards delivered to one tab.
type Panel struct {
	id           string
	tabID        int
	sink         notesink.Sink
	confirmDelay time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	notify       Notifier
	remove       func(*Panel)

	mu        sync.Mutex
	cards     []*Card
	deckState DeckState
	decks     []string
	selected  string
	closed    bool
	version   uint64
	timers    map[string]*time.Timer
	decksDone chan struct{}
}

func newPanel(b *Bundle, tabID int, cards []domain.Flashcard, remove func(*Panel)) *Panel {
	p := &Panel{
		id:           uuid.NewString(),
		tabID:        tabID,
		sink:         b.sink,
		confirmDelay: b.confirmDelay,
		logger:       b.logger.With("tab_id", tabID),
		metrics:      b.metrics,
		notify:       b.notify,
		remove:       remove,
		cards:        make([]*Card, 0, len(cards)),
		deckState:    DecksLoading,
		timers:       make(map[string]*time.Timer),
		decksDone:    make(chan struct{}),
	}
	for _, c := range cards {
		p.cards = append(p.cards, &Card{
			ID:    uuid.NewString(),
			Front: c.Front,
			Back:  c.Back,
			State: CardIdle,
		})
	}
	return p
}

// ID identifies this panel instance.
func (p *Panel) ID() string {
	return p.id
}

// loadDecks fetches the deck list once. A failure leaves the selector in the
// unreachable state, which is distinct from an empty list.
func (p *Panel) loadDecks(ctx context.Context) {
	defer close(p.decksDone)

	decks, err := p.sink.ListDecks(ctx)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.deckState = DecksUnreachable
		p.decks = nil
		p.logger.WarnContext(ctx, "deck list unavailable", "error", err)
	} else {
		p.deckState = DecksReady
		p.decks = append([]string{}, decks...)
		if len(p.decks) > 0 {
			p.selected = p.decks[0]
		}
	}
	snap := p.changedLocked()
	p.mu.Unlock()

	p.publish(snap)
}

// WaitDecks blocks until the deck list has loaded or failed.
func (p *Panel) WaitDecks(ctx context.Context) error {
	select {
	case <-p.decksDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flip toggles which side of a card is shown.
func (p *Panel) Flip(cardID string) error {
	p.mu.Lock()
	card, err := p.cardLocked(cardID)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	card.Flipped = !card.Flipped
	snap := p.changedLocked()
	p.mu.Unlock()

	p.publish(snap)
	return nil
}

// Edit replaces the text of a card that is not being sent.
func (p *Panel) Edit(cardID, front, back string) error {
	edited, err := domain.NewFlashcard(front, back)
	if err != nil {
		return err
	}

	p.mu.Lock()
	card, err := p.cardLocked(cardID)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if card.State == CardSending || card.State == CardSent {
		p.mu.Unlock()
		return ErrCardBusy
	}
	card.Front, card.Back = edited.Front, edited.Back
	snap := p.changedLocked()
	p.mu.Unlock()

	p.publish(snap)
	return nil
}

// SelectDeck chooses the deck commits go to. The name must be one the note
// service listed.
func (p *Panel) SelectDeck(name string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPanelClosed
	}
	if p.deckState != DecksReady {
		p.mu.Unlock()
		return ErrDecksUnavailable
	}
	if !slices.Contains(p.decks, name) {
		p.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownDeck, name)
	}
	p.selected = name
	snap := p.changedLocked()
	p.mu.Unlock()

	p.publish(snap)
	return nil
}

// Commit sends one card to the selected deck. Without a valid deck the
// commit is rejected before any call to the note service. On success the card
// shows as sent and disappears after the confirmation delay; on failure it
// stays in the list marked with the service's error text and can be retried.
func (p *Panel) Commit(ctx context.Context, cardID string) error {
	p.mu.Lock()
	card, err := p.cardLocked(cardID)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if card.State == CardSending || card.State == CardSent {
		p.mu.Unlock()
		return ErrCardBusy
	}
	deck := p.selected
	if p.deckState != DecksReady || deck == "" || !slices.Contains(p.decks, deck) {
		p.mu.Unlock()
		p.metrics.ObserveCommit("rejected")
		return ErrNoDeckSelected
	}
	card.State = CardSending
	card.Error = ""
	front, back := card.Front, card.Back
	snap := p.changedLocked()
	p.mu.Unlock()
	p.publish(snap)

	noteID, sendErr := p.sink.AddNote(ctx, deck, front, back)

	p.mu.Lock()
	// The panel may have been closed while the request was in flight.
	card, err = p.cardLocked(cardID)
	if err != nil {
		p.mu.Unlock()
		if sendErr != nil {
			return fmt.Errorf("%w: %w", ErrCommitFailed, sendErr)
		}
		return nil
	}
	if sendErr != nil {
		card.State = CardError
		card.Error = sendErr.Error()
		snap = p.changedLocked()
		p.mu.Unlock()
		p.publish(snap)

		p.metrics.ObserveCommit("error")
		p.logger.InfoContext(ctx, "flashcard commit failed",
			"card_id", cardID,
			"deck", deck,
			"error", sendErr)
		return fmt.Errorf("%w: %w", ErrCommitFailed, sendErr)
	}

	card.State = CardSent
	p.timers[cardID] = time.AfterFunc(p.confirmDelay, func() { p.dropCard(cardID) })
	snap = p.changedLocked()
	p.mu.Unlock()
	p.publish(snap)

	p.metrics.ObserveCommit("sent")
	p.logger.InfoContext(ctx, "flashcard committed",
		"card_id", cardID,
		"deck", deck,
		"note_id", noteID)
	return nil
}

func (p *Panel) dropCard(cardID string) {
	p.mu.Lock()
	delete(p.timers, cardID)
	if p.closed {
		p.mu.Unlock()
		return
	}
	i := slices.IndexFunc(p.cards, func(c *Card) bool { return c.ID == cardID })
	if i < 0 {
		p.mu.Unlock()
		return
	}
	p.cards = slices.Delete(p.cards, i, i+1)
	snap := p.changedLocked()
	p.mu.Unlock()

	p.publish(snap)
}

// Close removes the panel from its page and discards all remaining cards.
func (p *Panel) Close() {
	if p.remove != nil {
		p.remove(p)
		return
	}
	p.Detach()
}

// Detach implements browser.Element. It is called when the panel is closed,
// replaced by a newer delivery, or its tab goes away.
func (p *Panel) Detach() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cards = nil
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
	snap := p.changedLocked()
	p.mu.Unlock()

	p.publish(snap)
}

// Snapshot returns a copy of the panel's current state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Closed reports whether the panel has been closed or replaced.
func (p *Panel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Panel) cardLocked(cardID string) (*Card, error) {
	if p.closed {
		return nil, ErrPanelClosed
	}
	for _, c := range p.cards {
		if c.ID == cardID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
}

func (p *Panel) changedLocked() Snapshot {
	p.version++
	return p.snapshotLocked()
}

func (p *Panel) snapshotLocked() Snapshot {
	cards := make([]Card, 0, len(p.cards))
	for _, c := range p.cards {
		cards = append(cards, *c)
	}
	var decks []string
	if p.decks != nil {
		decks = append([]string{}, p.decks...)
	}
	return Snapshot{
		ID:           p.id,
		TabID:        p.tabID,
		Cards:        cards,
		DeckState:    p.deckState,
		Decks:        decks,
		SelectedDeck: p.selected,
		Closed:       p.closed,
		Version:      p.version,
	}
}

func (p *Panel) publish(snap Snapshot) {
	if p.notify != nil {
		p.notify(snap)
	}
}
