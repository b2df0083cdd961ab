package notesink

import "errors"

var (
	// ErrUnavailable is returned when the service cannot be reached or
	// responds with a non-success HTTP status.
	ErrUnavailable = errors.New("note service unavailable")

	// ErrInvalidNote is returned when a note is missing its deck or a side.
	ErrInvalidNote = errors.New("invalid note")
)

// ServiceError carries the error text returned by the service. Error returns
// that text unchanged so it can be shown to the user as is.
type ServiceError struct {
	Action  string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
