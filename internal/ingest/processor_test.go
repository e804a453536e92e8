package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vero/internal/embed"
	"vero/internal/events"
	"vero/internal/index"
	"vero/internal/ingest/catalog"
	"vero/internal/vectorstore"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(string) (string, error) {
	return f.text, f.err
}

type processorHarness struct {
	processor *Processor
	vectors   *vectorstore.Store
	keyword   *index.Keyword
	catalog   *catalog.Catalog
	sink      *events.MemoryStore
}

func newProcessorHarness(t *testing.T, extractor Extractor) processorHarness {
	t.Helper()
	dir := t.TempDir()

	vectors, err := vectorstore.Open(filepath.Join(dir, "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vectors.Close() })

	keyword, err := index.OpenKeyword("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = keyword.Close() })

	cat, err := catalog.Open(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })

	sink := events.NewMemoryStore()
	p := NewProcessor(
		embed.NewLocal(),
		vectors,
		cat,
		slog.New(slog.DiscardHandler),
		WithKeywordIndexer(keyword),
		WithEmitter(events.NewPublisher(sink)),
		WithExtractor(extractor),
	)
	return processorHarness{processor: p, vectors: vectors, keyword: keyword, catalog: cat, sink: sink}
}

func writePDF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func lastEvent(t *testing.T, sink *events.MemoryStore) events.Event {
	t.Helper()
	got, err := sink.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	return got[0]
}

func TestProcessIndexesDocument(t *testing.T) {
	h := newProcessorHarness(t, fakeExtractor{text: "quarterly revenue grew while churn stayed flat"})
	path := writePDF(t, "report.pdf", "%PDF-1.4 fake body")

	indexed, err := h.processor.Process(context.Background(), path, "report.pdf", "fs:test", "")
	require.NoError(t, err)
	assert.True(t, indexed)

	count, err := h.vectors.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, count)

	kwCount, err := h.keyword.Count()
	require.NoError(t, err)
	assert.Positive(t, kwCount)

	hash, err := HashFileContent(path)
	require.NoError(t, err)
	done, err := h.catalog.IsProcessed(context.Background(), hash)
	require.NoError(t, err)
	assert.True(t, done)

	event := lastEvent(t, h.sink)
	assert.Equal(t, events.TypeProcessed, event.Type)
	assert.Equal(t, "report.pdf", event.FilePath)
	assert.Equal(t, hash, event.ContentHash)
}

func TestProcessSkipsDuplicateContent(t *testing.T) {
	h := newProcessorHarness(t, fakeExtractor{text: "the same document twice"})
	first := writePDF(t, "one.pdf", "identical bytes")
	second := writePDF(t, "two.pdf", "identical bytes")

	indexed, err := h.processor.Process(context.Background(), first, "one.pdf", "fs:test", "")
	require.NoError(t, err)
	require.True(t, indexed)

	indexed, err = h.processor.Process(context.Background(), second, "two.pdf", "fs:test", "")
	require.NoError(t, err)
	assert.False(t, indexed)

	event := lastEvent(t, h.sink)
	assert.Equal(t, events.TypeSkipped, event.Type)
	assert.Equal(t, "two.pdf", event.FilePath)
}

func TestProcessRejectsNonPDF(t *testing.T) {
	h := newProcessorHarness(t, fakeExtractor{text: "irrelevant"})
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := h.processor.Process(context.Background(), path, "notes.txt", "fs:test", "")
	require.Error(t, err)
	assert.Equal(t, events.TypeFailed, lastEvent(t, h.sink).Type)
}

func TestProcessExtractFailure(t *testing.T) {
	h := newProcessorHarness(t, fakeExtractor{err: errors.New("corrupt xref table")})
	path := writePDF(t, "broken.pdf", "not really a pdf")

	_, err := h.processor.Process(context.Background(), path, "broken.pdf", "fs:test", "")
	require.Error(t, err)

	event := lastEvent(t, h.sink)
	assert.Equal(t, events.TypeFailed, event.Type)
	assert.Contains(t, event.Detail, "corrupt xref table")

	// Nothing was indexed or cataloged.
	count, err := h.vectors.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProcessEmptyTextFails(t *testing.T) {
	h := newProcessorHarness(t, fakeExtractor{text: "   \n  "})
	path := writePDF(t, "blank.pdf", "pdf with no text layer")

	_, err := h.processor.Process(context.Background(), path, "blank.pdf", "fs:test", "")
	require.Error(t, err)
	assert.Equal(t, events.TypeFailed, lastEvent(t, h.sink).Type)
}
