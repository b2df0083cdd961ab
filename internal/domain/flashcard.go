package domain

import "strings"

// Flashcard is a front/back study pair produced by the response parser.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// NewFlashcard trims both sides and rejects a card with a blank side.
func NewFlashcard(front, back string) (Flashcard, error) {
	card := Flashcard{
		Front: strings.TrimSpace(front),
		Back:  strings.TrimSpace(back),
	}
	if err := card.Validate(); err != nil {
		return Flashcard{}, err
	}
	return card, nil
}

// Validate checks that both sides carry text.
func (f Flashcard) Validate() error {
	if strings.TrimSpace(f.Front) == "" || strings.TrimSpace(f.Back) == "" {
		return ErrEmptyCardSide
	}
	return nil
}
