package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/flashcard-maker/internal/api/shared"
	"github.com/phrazzld/flashcard-maker/internal/browser"
	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/notesink"
	"github.com/phrazzld/flashcard-maker/internal/review"
	"github.com/phrazzld/flashcard-maker/internal/task"
)

// Errors raised by the HTTP layer itself.
var (
	ErrInvalidPathParam = errors.New("invalid path parameter")
	ErrNoPanel          = errors.New("no review panel on tab")
	ErrInvalidBody      = errors.New("invalid request body")
	ErrNoInvocation     = errors.New("invocation not found")
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPathParam),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptySourceText),
		errors.Is(err, domain.ErrEmptyCardSide),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrUnknownModel),
		errors.Is(err, review.ErrNoDeckSelected),
		errors.Is(err, review.ErrUnknownDeck),
		errors.Is(err, notesink.ErrInvalidNote):
		return http.StatusBadRequest

	case errors.Is(err, browser.ErrTabNotFound),
		errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, ErrNoPanel),
		errors.Is(err, ErrNoInvocation):
		return http.StatusNotFound

	case errors.Is(err, browser.ErrTabClosed),
		errors.Is(err, review.ErrCardBusy),
		errors.Is(err, review.ErrPanelClosed),
		errors.Is(err, review.ErrDecksUnavailable):
		return http.StatusConflict

	case errors.Is(err, task.ErrQueueFull):
		return http.StatusTooManyRequests

	case errors.Is(err, review.ErrCommitFailed),
		errors.Is(err, notesink.ErrUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		validationErrs validator.ValidationErrors
		serviceErr     *notesink.ServiceError
	)

	switch {
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, ErrInvalidBody):
		return "Invalid request format"
	case errors.Is(err, ErrInvalidPathParam):
		return "Invalid path parameter"
	case errors.Is(err, domain.ErrEmptySourceText):
		return "Select some text first"
	case errors.Is(err, domain.ErrEmptyCardSide):
		return "Both sides of a card need text"
	case errors.Is(err, domain.ErrUnknownProvider):
		return "Unknown provider"
	case errors.Is(err, domain.ErrUnknownModel):
		return "Model is not offered by the selected provider"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid settings"
	case errors.Is(err, review.ErrNoDeckSelected):
		return "Please select a valid deck"
	case errors.Is(err, review.ErrUnknownDeck):
		return "Unknown deck"
	case errors.Is(err, browser.ErrTabNotFound):
		return "Tab not found"
	case errors.Is(err, browser.ErrTabClosed):
		return "Tab is closed"
	case errors.Is(err, review.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, ErrNoPanel):
		return "No flashcards on this tab"
	case errors.Is(err, ErrNoInvocation):
		return "Unknown or expired invocation"
	case errors.Is(err, review.ErrCardBusy):
		return "Card is being sent"
	case errors.Is(err, review.ErrPanelClosed):
		return "Panel is closed"
	case errors.Is(err, review.ErrDecksUnavailable):
		return "Deck list is not available"
	case errors.Is(err, task.ErrQueueFull):
		return "Too many requests in progress, try again shortly"
	case errors.Is(err, task.ErrQueueClosed):
		return "Server is shutting down"
	case errors.As(err, &serviceErr):
		// AnkiConnect's own text is what the user needs to act on.
		return serviceErr.Message
	case errors.Is(err, notesink.ErrUnavailable):
		return "Could not reach Anki. Is Anki running with AnkiConnect installed?"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "too small"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if status == http.StatusBadGateway {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
