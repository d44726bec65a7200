package orchestrator

import "errors"

// Errors surfaced to the user. Transcript-side failures (invalid URL,
// missing captions, provider errors) are defined in the transcript package;
// these cover session preconditions and the model call.
var (
	// ErrNotConfigured is returned when ask is called before a credential
	// and transcript are set. No remote call is attempted.
	ErrNotConfigured = errors.New("session not configured")

	// ErrUpstream is returned when the model call fails or the stream
	// breaks mid-response.
	ErrUpstream = errors.New("upstream model failure")

	// ErrTimeout is returned when a remote call exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
)
