package pipeline

import "errors"

// Error kinds for one pipeline run. The orchestrator translates every
// component failure into exactly one of these; the HTTP layer maps them to
// status codes without inspecting anything else.
var (
	// ErrInvalidArgument covers empty or whitespace-only input. Client
	// fault, never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadySimplified means the gate labeled the input as plain
	// language already. A legitimate business outcome, not a system fault.
	ErrAlreadySimplified = errors.New("input text is PLS already")

	// ErrModelUnavailable means a collaborator model could not be reached.
	// Fatal for the request; no automatic retry.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrGenerationFailed means the generation collaborator returned an
	// empty summary. Fatal; retries are left to the caller.
	ErrGenerationFailed = errors.New("generation failed")
)
