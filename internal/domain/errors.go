package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrNotConfigured is returned when provider, model or API key is missing.
	ErrNotConfigured = errors.New("extension not configured")

	// ErrUnknownProvider is returned when a provider name is not part of the catalogue.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownModel is returned when a model is not offered by the selected provider.
	ErrUnknownModel = errors.New("unknown model for provider")

	// ErrEmptySourceText is returned when a generation request carries no text.
	ErrEmptySourceText = errors.New("source text cannot be empty")

	// ErrEmptyCardSide is returned when a flashcard front or back is blank.
	ErrEmptyCardSide = errors.New("flashcard front and back cannot be empty")
)
