package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NewNATS constructs a thin NATS-based publisher.
func NewNATS(nc *nats.Conn) Publisher {
	return &natsPublisher{nc: nc}
}

type natsPublisher struct {
	nc *nats.Conn
}

func (p *natsPublisher) Publish(_ context.Context, event Event) error {
	if event.Type == "" {
		return errors.New("event type required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish("pls."+string(event.Type), body)
}

func (p *natsPublisher) Close() error {
	p.nc.Close()
	return nil
}
