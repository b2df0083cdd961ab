// Package parser turns raw model output into flashcards.
//
// The expected input is JSON Lines, one {"question": ..., "answer": ...}
// record per line, optionally wrapped in a fenced code block. Parsing never
// fails: lines that are blank, not JSON, or missing either field are dropped,
// and an empty result simply means no cards were generated.
package parser

import (
	"encoding/json"
	"strings"

	"github.com/phrazzld/flashcard-maker/internal/domain"
)

const fence = "```"

type record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Parse decodes raw into cards in input line order.
func Parse(raw string) []domain.Flashcard {
	body := stripFences(raw)

	cards := make([]domain.Flashcard, 0)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] != '{' {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}

		card, err := domain.NewFlashcard(rec.Question, rec.Answer)
		if err != nil {
			continue
		}
		cards = append(cards, card)
	}

	return cards
}

// stripFences removes a leading ``` line (with an optional language tag such
// as json or jsonl) and a trailing ``` line. Fences elsewhere are left alone
// and later discarded as non-record lines.
func stripFences(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, fence) {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, fence)
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)

	return s
}

// Format serialises cards as JSON Lines in the same shape Parse accepts.
func Format(cards []domain.Flashcard) string {
	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteByte('\n')
		}
		// Marshalling a struct of two strings cannot fail.
		data, _ := json.Marshal(record{Question: c.Front, Answer: c.Back})
		b.Write(data)
	}
	return b.String()
}
