package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Emitter is what the ingestion pipeline emits events through.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Publisher captures ingestion events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	stamp(&event)
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.List(ctx, limit)
}

// ChannelEmitter hands events to a background Worker. Emit drops nothing:
// it blocks if the inbox is full, and returns the context error if the
// caller is cancelled first.
type ChannelEmitter struct {
	inbox chan<- Event
}

func NewChannelEmitter(inbox chan<- Event) *ChannelEmitter {
	return &ChannelEmitter{inbox: inbox}
}

func (c *ChannelEmitter) Emit(ctx context.Context, event Event) error {
	stamp(&event)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.inbox <- event:
		return nil
	}
}

func stamp(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
}

var (
	_ Emitter = (*Publisher)(nil)
	_ Emitter = (*ChannelEmitter)(nil)
)
