package llm

import (
	"context"
	"errors"
)

// ErrShortCompletion reports a completion that ended below the configured
// minimum token floor. The request produced output, but not enough of it
// to count as a usable summary.
var ErrShortCompletion = errors.New("completion shorter than minimum token floor")

// Generator is the minimal generation interface to allow pluggable providers.
// It takes a chat-style system/user message pair and returns the generated text.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
