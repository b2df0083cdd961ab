// Package coordinator runs one flashcard invocation from selection to page.
//
// Each invocation walks a fixed state machine:
//
//	IDLE → CONFIG_CHECK → PROVIDER_CALL → INJECT → HANDSHAKE → DELIVER → DONE
//
// and any failure ends it in FAILED. Nothing is retried. Failures are logged
// with a user-facing diagnosis (see Diagnose), counted, and reported through
// an invocation.finished event; the page shows nothing for them.
//
// Invocations share no state, so concurrent invocations for the same tab may
// race. The later delivery replaces the earlier panel.
package coordinator
