// Package events provides a small in-process event bus.
//
// The local API emits generation.requested when the user asks for flashcards;
// a handler in the task package turns it into a queued generation task. The
// coordinator emits invocation.finished when an invocation ends. History
// subscribes to both so clients can poll an invocation's outcome.
package events
