package domain

import (
	"testing"
)

func TestNewFlashcard(t *testing.T) {
	t.Parallel()

	card, err := NewFlashcard("  Capital of France?  ", "\tParis\n")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.Front != "Capital of France?" {
		t.Errorf("Expected trimmed front, got %q", card.Front)
	}

	if card.Back != "Paris" {
		t.Errorf("Expected trimmed back, got %q", card.Back)
	}

	// Blank sides are rejected
	_, err = NewFlashcard("   ", "Paris")
	if err != ErrEmptyCardSide {
		t.Errorf("Expected error %v, got %v", ErrEmptyCardSide, err)
	}

	_, err = NewFlashcard("Capital of France?", "")
	if err != ErrEmptyCardSide {
		t.Errorf("Expected error %v, got %v", ErrEmptyCardSide, err)
	}
}
