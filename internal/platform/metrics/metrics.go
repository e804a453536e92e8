package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SearchesTotal     *prometheus.CounterVec
	SearchDurationMs  prometheus.Histogram
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
	DocumentsIngested prometheus.Counter
	DocumentsSkipped  prometheus.Counter
	DocumentsFailed   prometheus.Counter
	ChunksIndexed     prometheus.Counter
	EmbedDurationMs   prometheus.Histogram
	RequestLatencyMs  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vero_searches_total",
			Help: "Total search requests by outcome",
		}, []string{"outcome"}),
		SearchDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vero_search_duration_ms",
			Help:    "End to end search latency in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vero_search_cache_hits_total",
			Help: "Search responses served from the result cache",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vero_search_cache_misses_total",
			Help: "Search requests that missed the result cache",
		}),
		DocumentsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vero_documents_ingested_total",
			Help: "Documents processed end to end by the loader",
		}),
		DocumentsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vero_documents_skipped_total",
			Help: "Documents skipped because their content hash was already cataloged",
		}),
		DocumentsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vero_documents_failed_total",
			Help: "Documents whose ingestion failed",
		}),
		ChunksIndexed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vero_chunks_indexed_total",
			Help: "Chunks written to the vector store",
		}),
		EmbedDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vero_embed_duration_ms",
			Help:    "Embedding backend latency in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		RequestLatencyMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vero_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds by route",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"route", "status"}),
	}
}
