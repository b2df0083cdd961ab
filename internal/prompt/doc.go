// Package prompt renders the instruction text sent to a language model when a
// selection is turned into flashcards.
//
// The selected text is placed verbatim inside a triple-backtick block. The
// surrounding instructions ask the model to answer with JSON Lines records,
// one {"question": ..., "answer": ...} object per line, inside a single fenced
// block and nothing else. internal/parser consumes that format.
package prompt
