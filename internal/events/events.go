package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pls-engine/internal/retry"
)

// EventType enumerates published event categories.
type EventType string

// TypeEvaluated is emitted after a pipeline run reaches the scored state.
const TypeEvaluated EventType = "evaluated"

// Event is a fire-and-forget notification about a completed pipeline run.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	Payload   []byte    `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Publisher exposes a minimal contract to emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
// Event delivery is telemetry: callers log the final error and move on.
func PublishWithRetry(ctx context.Context, p Publisher, event Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, event); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
