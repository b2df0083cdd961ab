// Package task runs generation requests in the background. Requests arrive
// as generation.requested events, become tasks on a bounded in-memory queue
// and are executed by a small worker pool, so the HTTP handler that accepted
// the request never blocks on the provider.
package task
