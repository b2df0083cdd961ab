// Package notesink is a client for AnkiConnect, the local HTTP service that
// adds notes to a running Anki instance.
//
// Every call is a single POST of {action, version, params} to a fixed local
// endpoint. The service answers {result, error}, where exactly one of the two
// is meaningful. Failures are split into ErrUnavailable (the service could not
// be reached or answered with a non-2xx status) and *ServiceError (the
// service answered with an error message, for example a duplicate note).
package notesink
