// Package search implements retrieval over the ingested corpus: embed the
// query, rank chunks by vector similarity, blend in keyword hits, and return
// NFKC-normalized text.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"vero/internal/embed"
	"vero/internal/index"
	"vero/internal/platform/metrics"
	"vero/internal/vectorstore"
	dErrors "vero/pkg/domain-errors"
)

const (
	// DefaultTopK mirrors the API default when top_k is omitted.
	DefaultTopK = 3
	// MaxTopK caps how many chunks one request may ask for.
	MaxTopK = 50

	vectorWeight  = 0.7
	keywordWeight = 0.3
)

// Chunk is one search result returned to callers.
type Chunk struct {
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	FileName string  `json:"file_name"`
	Score    float64 `json:"score"`
}

// VectorSearcher is the slice of vectorstore.Store the service needs.
type VectorSearcher interface {
	Search(ctx context.Context, query []float32, k int) ([]vectorstore.Result, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]vectorstore.Chunk, error)
}

// KeywordSearcher is the slice of index.Keyword the service needs.
type KeywordSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]index.Hit, error)
}

// Cache stores finished result sets. Implementations must be safe for
// concurrent use; failures should degrade to a miss, never an error.
type Cache interface {
	Get(ctx context.Context, query string, topK int) ([]Chunk, bool)
	Set(ctx context.Context, query string, topK int, results []Chunk)
}

// Service answers search queries. Keyword index, cache, and metrics are
// optional collaborators; nil disables them.
type Service struct {
	logger  *slog.Logger
	embed   embed.Embedder
	vectors VectorSearcher
	keyword KeywordSearcher
	cache   Cache
	metrics *metrics.Metrics
}

// New creates a search Service.
func New(logger *slog.Logger, embedder embed.Embedder, vectors VectorSearcher, opts ...Option) *Service {
	s := &Service{
		logger:  logger,
		embed:   embedder,
		vectors: vectors,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Option configures a Service.
type Option func(*Service)

// WithKeyword enables hybrid retrieval through a keyword index.
func WithKeyword(k KeywordSearcher) Option {
	return func(s *Service) { s.keyword = k }
}

// WithCache enables result caching.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Search returns the topK chunks most relevant to query. topK values
// outside [1, MaxTopK] are defaulted or clamped rather than rejected;
// an empty query is a bad request.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]Chunk, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		s.countSearch("bad_request")
		return nil, dErrors.New(dErrors.CodeBadRequest, "query must not be empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, query, topK); ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			s.countSearch("cache_hit")
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
	}

	results, err := s.retrieve(ctx, query, topK)
	if err != nil {
		s.countSearch("error")
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, query, topK, results)
	}
	if s.metrics != nil {
		s.metrics.SearchDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}
	s.countSearch("ok")
	return results, nil
}

type fusedHit struct {
	chunk vectorstore.Chunk
	score float64
}

func (s *Service) retrieve(ctx context.Context, query string, topK int) ([]Chunk, error) {
	embStart := time.Now()
	vecs, err := s.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "embed query", err)
	}
	if s.metrics != nil {
		s.metrics.EmbedDurationMs.Observe(float64(time.Since(embStart).Microseconds()) / 1000.0)
	}

	vecResults, err := s.vectors.Search(ctx, vecs[0], topK)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "vector search", err)
	}

	fused := make(map[string]*fusedHit, topK*2)
	for _, r := range vecResults {
		fused[r.Chunk.ID] = &fusedHit{chunk: r.Chunk, score: vectorWeight * clamp01(r.Score)}
	}

	if s.keyword != nil {
		if err := s.blendKeywordHits(ctx, query, topK, fused); err != nil {
			// Keyword recall is best effort; vector results alone are a
			// valid answer.
			s.logger.WarnContext(ctx, "keyword search failed", "error", err.Error())
		}
	}

	ranked := make([]fusedHit, 0, len(fused))
	for _, h := range fused {
		ranked = append(ranked, *h)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]Chunk, 0, len(ranked))
	for _, h := range ranked {
		out = append(out, Chunk{
			Text:     norm.NFKC.String(h.chunk.Text),
			Source:   h.chunk.Source,
			FileName: h.chunk.FileName,
			Score:    h.score,
		})
	}
	return out, nil
}

func (s *Service) blendKeywordHits(ctx context.Context, query string, topK int, fused map[string]*fusedHit) error {
	hits, err := s.keyword.Search(ctx, query, topK)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return nil
	}

	// Bleve scores are unbounded; normalize against the best hit.
	maxScore := hits[0].Score
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	if maxScore == 0 {
		return nil
	}

	missing := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := fused[h.ID]; !ok {
			missing = append(missing, h.ID)
		}
	}
	chunks, err := s.vectors.GetByIDs(ctx, missing)
	if err != nil {
		return err
	}

	for _, h := range hits {
		contribution := keywordWeight * (h.Score / maxScore)
		if existing, ok := fused[h.ID]; ok {
			existing.score += contribution
			continue
		}
		chunk, ok := chunks[h.ID]
		if !ok {
			// Indexed but no longer stored; skip rather than fail.
			continue
		}
		fused[h.ID] = &fusedHit{chunk: chunk, score: contribution}
	}
	return nil
}

func (s *Service) countSearch(outcome string) {
	if s.metrics != nil {
		s.metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
