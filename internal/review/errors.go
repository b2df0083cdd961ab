package review

import "errors"

var (
	// ErrNoDeckSelected is returned when a card is committed before a deck
	// from the loaded list has been chosen.
	ErrNoDeckSelected = errors.New("no deck selected")

	// ErrUnknownDeck is returned when selecting a deck the service did not list.
	ErrUnknownDeck = errors.New("unknown deck")

	// ErrDecksUnavailable is returned when selecting a deck before the deck
	// list loaded or after loading failed.
	ErrDecksUnavailable = errors.New("deck list not available")

	// ErrCardNotFound is returned for an unknown card ID.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardBusy is returned when a card is being sent or was already sent.
	ErrCardBusy = errors.New("card is being sent")

	// ErrCommitFailed wraps the note service's failure for a commit.
	ErrCommitFailed = errors.New("commit failed")

	// ErrPanelClosed is returned for operations on a closed panel.
	ErrPanelClosed = errors.New("panel closed")
)
