// Package domain contains the core entities of the flashcard pipeline: the
// provider configuration read from settings, the generation request created
// when the user invokes the tool on a selection, and the flashcards and decks
// that flow towards the note service. It is independent of any transport,
// provider SDK or browser host.
package domain
