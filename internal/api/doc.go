// Package api is the daemon's local HTTP surface. It accepts generation
// requests and reports how they ended, exposes the settings, lets a client
// open and drive simulated browser tabs and the review panels delivered to
// them, and streams panel changes over websockets. Handlers translate HTTP to
// the internal packages and map their errors to status codes without leaking
// internal details.
package api
