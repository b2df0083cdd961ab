// Package review is the page-side runtime that shows generated flashcards
// for review.
//
// Bundle is injected into a tab's page. It answers the liveness probe and,
// when a flashcards payload arrives, parses it and mounts a fresh Panel in
// the page's single panel slot, detaching any previous panel. The panel loads
// the deck list from the note service in the background and lets the user
// flip, edit and commit cards one at a time. Closing the panel discards every
// card that was not committed.
package review
