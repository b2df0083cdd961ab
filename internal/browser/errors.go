package browser

import "errors"

var (
	// ErrReceivingEndMissing is returned when a message is sent to a tab whose
	// page has no listener to receive it.
	ErrReceivingEndMissing = errors.New("could not establish connection: receiving end does not exist")

	// ErrRestrictedPage is returned when injecting into a page the host does
	// not allow scripts on.
	ErrRestrictedPage = errors.New("cannot access contents of restricted page")

	// ErrTabNotFound is returned for an unknown tab ID.
	ErrTabNotFound = errors.New("no tab with id")

	// ErrTabClosed is returned when operating on a tab that has been closed.
	ErrTabClosed = errors.New("tab was closed")

	// ErrNoTargetTab is returned when neither the originating tab nor an
	// active tab can be resolved.
	ErrNoTargetTab = errors.New("no target tab")
)

// IsUnreachable reports whether err means the page cannot be reached at all,
// as opposed to an unexpected failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrReceivingEndMissing) ||
		errors.Is(err, ErrRestrictedPage) ||
		errors.Is(err, ErrTabClosed)
}
