package prompt

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrEmptyText is returned when Build is given blank source text.
var ErrEmptyText = errors.New("source text cannot be empty")

//go:embed flashcards.tmpl
var templateText string

// Parsed once at init; a broken embedded template is a programming error.
var flashcardTemplate = template.Must(template.New("flashcards").Parse(templateText))

type promptData struct {
	SourceText string
}

// Build renders the flashcard prompt around sourceText. The text is embedded
// unmodified; a selection that itself contains ``` may confuse the model.
func Build(sourceText string) (string, error) {
	if strings.TrimSpace(sourceText) == "" {
		return "", ErrEmptyText
	}

	var buf bytes.Buffer
	if err := flashcardTemplate.Execute(&buf, promptData{SourceText: sourceText}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
