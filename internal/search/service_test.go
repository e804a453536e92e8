package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vero/internal/embed"
	"vero/internal/index"
	"vero/internal/vectorstore"
	dErrors "vero/pkg/domain-errors"
)

type fakeVectors struct {
	results []vectorstore.Result
	chunks  map[string]vectorstore.Chunk
	err     error
	gotK    int
}

func (f *fakeVectors) Search(_ context.Context, _ []float32, k int) ([]vectorstore.Result, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeVectors) GetByIDs(_ context.Context, ids []string) (map[string]vectorstore.Chunk, error) {
	out := make(map[string]vectorstore.Chunk)
	for _, id := range ids {
		if c, ok := f.chunks[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type fakeKeyword struct {
	hits []index.Hit
	err  error
}

func (f *fakeKeyword) Search(context.Context, string, int) ([]index.Hit, error) {
	return f.hits, f.err
}

type memoryCache struct {
	entries map[string][]Chunk
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string][]Chunk{}} }

func (m *memoryCache) Get(_ context.Context, query string, topK int) ([]Chunk, bool) {
	c, ok := m.entries[cacheKey(query, topK)]
	return c, ok
}

func (m *memoryCache) Set(_ context.Context, query string, topK int, results []Chunk) {
	m.entries[cacheKey(query, topK)] = results
}

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestSearch_ReturnsVectorResults(t *testing.T) {
	vectors := &fakeVectors{results: []vectorstore.Result{
		{Chunk: vectorstore.Chunk{ID: "a", Text: "first", Source: "drive", FileName: "a.pdf"}, Score: 0.9},
		{Chunk: vectorstore.Chunk{ID: "b", Text: "second", Source: "drive", FileName: "b.pdf"}, Score: 0.5},
	}}
	svc := New(testLogger(), embed.NewLocal(), vectors)

	results, err := svc.Search(context.Background(), "bakra beverage", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, "a.pdf", results[0].FileName)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_EmptyQueryIsBadRequest(t *testing.T) {
	svc := New(testLogger(), embed.NewLocal(), &fakeVectors{})

	_, err := svc.Search(context.Background(), "   ", 3)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestSearch_TopKDefaultsAndClamps(t *testing.T) {
	vectors := &fakeVectors{}
	svc := New(testLogger(), embed.NewLocal(), vectors)

	_, err := svc.Search(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, vectors.gotK)

	_, err = svc.Search(context.Background(), "query", 500)
	require.NoError(t, err)
	assert.Equal(t, MaxTopK, vectors.gotK)
}

func TestSearch_NormalizesTextToNFKC(t *testing.T) {
	// U+FB01 is the "fi" ligature; NFKC expands it to "fi".
	vectors := &fakeVectors{results: []vectorstore.Result{
		{Chunk: vectorstore.Chunk{ID: "a", Text: "ﬁnancial report"}, Score: 0.8},
	}}
	svc := New(testLogger(), embed.NewLocal(), vectors)

	results, err := svc.Search(context.Background(), "report", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "financial report", results[0].Text)
}

func TestSearch_BlendsKeywordHits(t *testing.T) {
	vectors := &fakeVectors{
		results: []vectorstore.Result{
			{Chunk: vectorstore.Chunk{ID: "a", Text: "vector hit"}, Score: 0.4},
		},
		chunks: map[string]vectorstore.Chunk{
			"kw": {ID: "kw", Text: "keyword only hit", FileName: "kw.pdf"},
		},
	}
	keyword := &fakeKeyword{hits: []index.Hit{
		{ID: "a", Score: 2.0},
		{ID: "kw", Score: 1.0},
	}}
	svc := New(testLogger(), embed.NewLocal(), vectors, WithKeyword(keyword))

	results, err := svc.Search(context.Background(), "hit", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// "a" gets both vector and keyword mass, so it outranks the
	// keyword-only chunk.
	assert.Equal(t, "vector hit", results[0].Text)
	assert.Equal(t, "keyword only hit", results[1].Text)
}

func TestSearch_KeywordFailureIsNotFatal(t *testing.T) {
	vectors := &fakeVectors{results: []vectorstore.Result{
		{Chunk: vectorstore.Chunk{ID: "a", Text: "survivor"}, Score: 0.7},
	}}
	keyword := &fakeKeyword{err: errors.New("index corrupted")}
	svc := New(testLogger(), embed.NewLocal(), vectors, WithKeyword(keyword))

	results, err := svc.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "survivor", results[0].Text)
}

func TestSearch_VectorFailureIsInternal(t *testing.T) {
	vectors := &fakeVectors{err: errors.New("db locked")}
	svc := New(testLogger(), embed.NewLocal(), vectors)

	_, err := svc.Search(context.Background(), "query", 3)
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
}

func TestSearch_ServesFromCache(t *testing.T) {
	vectors := &fakeVectors{results: []vectorstore.Result{
		{Chunk: vectorstore.Chunk{ID: "a", Text: "fresh"}, Score: 0.9},
	}}
	cache := newMemoryCache()
	svc := New(testLogger(), embed.NewLocal(), vectors, WithCache(cache))

	first, err := svc.Search(context.Background(), "cached query", 3)
	require.NoError(t, err)

	// Change the backing data; the cached answer must win.
	vectors.results = []vectorstore.Result{
		{Chunk: vectorstore.Chunk{ID: "b", Text: "stale"}, Score: 0.9},
	}
	second, err := svc.Search(context.Background(), "cached query", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearch_EmptyStoreReturnsEmptyNotError(t *testing.T) {
	svc := New(testLogger(), embed.NewLocal(), &fakeVectors{})

	results, err := svc.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}
