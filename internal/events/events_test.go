package events

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherStampsEvents(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), Event{Type: TypeProcessed, FilePath: "a.pdf"})
	require.NoError(t, err)

	got, err := pub.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
	assert.Equal(t, TypeProcessed, got[0].Type)
}

func TestPublisherKeepsExistingID(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), Event{ID: "fixed", Type: TypeSkipped})
	require.NoError(t, err)

	got, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fixed", got[0].ID)
}

func TestMemoryStoreListReturnsLastN(t *testing.T) {
	store := NewMemoryStore()
	for _, path := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(context.Background(), Event{ID: path, FilePath: path}))
	}

	got, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestChannelEmitterDeliversToWorker(t *testing.T) {
	store := NewMemoryStore()
	inbox := make(chan Event, 4)
	worker := NewWorker(store, inbox, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	emitter := NewChannelEmitter(inbox)
	require.NoError(t, emitter.Emit(ctx, Event{Type: TypeFailed, FilePath: "bad.pdf", Detail: "extract"}))

	require.Eventually(t, func() bool {
		got, err := store.List(context.Background(), 10)
		return err == nil && len(got) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestChannelEmitterCancelled(t *testing.T) {
	inbox := make(chan Event) // unbuffered, nobody reading
	emitter := NewChannelEmitter(inbox)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emitter.Emit(ctx, Event{Type: TypeProcessed})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite("file:events_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	first := Event{
		ID:          "ev-1",
		Type:        TypeProcessed,
		FilePath:    "docs/report.pdf",
		FolderID:    "folder-1",
		ContentHash: "abc123",
		Timestamp:   time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, store.Append(context.Background(), first))
	require.NoError(t, store.Append(context.Background(), Event{
		ID:        "ev-2",
		Type:      TypeFailed,
		FilePath:  "docs/broken.pdf",
		Detail:    "no text layer",
		Timestamp: time.Now().UTC(),
	}))

	got, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "ev-2", got[0].ID)
	assert.Equal(t, "no text layer", got[0].Detail)
	assert.Equal(t, first.ContentHash, got[1].ContentHash)
}
