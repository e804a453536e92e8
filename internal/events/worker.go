package events

import (
	"context"
	"log/slog"
)

// Worker consumes ingestion events from a channel and persists them. A
// failed append is logged and skipped so one bad write does not stall
// the whole ingestion run.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("append ingest event", "event_id", event.ID, "error", err)
			}
		}
	}
}
