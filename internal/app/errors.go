package app

import "errors"

var (
	// ErrEmptyQuestion rejects whitespace-only submissions.
	ErrEmptyQuestion = errors.New("question required")
	// ErrBusy rejects a second submit while a generation request is in flight.
	ErrBusy = errors.New("a request is already in flight")
)

// FallbackAnswer is the fixed user-visible string returned when the
// generation request fails for any reason.
const FallbackAnswer = "Sorry, I could not generate a response."
