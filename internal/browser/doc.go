// Package browser models the browser host the daemon drives: a set of tabs,
// each with a page context that can have runtime bundles injected into it and
// exchange small tagged messages with the daemon.
//
// Registry is the in-process implementation of Host. Pages on restricted URLs
// (browser-internal pages and the extension store) refuse injection and
// messaging, and a closed tab behaves like a page the user navigated away
// from: later messages fail with ErrReceivingEndMissing.
package browser
