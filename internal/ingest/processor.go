package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vero/internal/embed"
	"vero/internal/events"
	"vero/internal/index"
	"vero/internal/ingest/catalog"
	"vero/internal/platform/metrics"
	"vero/internal/vectorstore"
)

// embedBatchSize bounds how many chunk texts go to the embedding backend
// in one call.
const embedBatchSize = 32

// Vectors is the slice of the vector store the processor writes to.
type Vectors interface {
	Add(ctx context.Context, chunks []vectorstore.Chunk) error
}

// KeywordIndexer is the slice of the keyword index the processor writes to.
type KeywordIndexer interface {
	Index(entries []index.Entry) error
}

// Catalog tracks which content hashes have already been ingested.
type Catalog interface {
	IsProcessed(ctx context.Context, contentHash string) (bool, error)
	MarkProcessed(ctx context.Context, filePath, folderID, contentHash string) error
}

// Processor ingests one document end to end: hash, dedup check, text
// extraction, chunking, embedding and indexing.
type Processor struct {
	extractor Extractor
	chunker   Chunker
	embedder  embed.Embedder
	vectors   Vectors
	keyword   KeywordIndexer
	catalog   Catalog
	events    events.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type ProcessorOption func(*Processor)

func WithKeywordIndexer(k KeywordIndexer) ProcessorOption {
	return func(p *Processor) { p.keyword = k }
}

func WithEmitter(e events.Emitter) ProcessorOption {
	return func(p *Processor) { p.events = e }
}

func WithMetrics(m *metrics.Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

func WithExtractor(e Extractor) ProcessorOption {
	return func(p *Processor) { p.extractor = e }
}

func NewProcessor(
	embedder embed.Embedder,
	vectors Vectors,
	catalog Catalog,
	logger *slog.Logger,
	opts ...ProcessorOption,
) *Processor {
	p := &Processor{
		extractor: PDFExtractor{},
		chunker:   NewChunker(),
		embedder:  embedder,
		vectors:   vectors,
		catalog:   catalog,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process ingests the file at path. It returns true when the document was
// indexed and false when it was skipped as a duplicate. The document id is
// the file's content hash, so re-uploads of identical content converge on
// the same chunks regardless of file name.
func (p *Processor) Process(ctx context.Context, path, fileName, sourceName, folderID string) (bool, error) {
	if fileName == "" {
		fileName = filepath.Base(path)
	}

	hash, err := HashFileContent(path)
	if err != nil {
		return false, p.fail(ctx, fileName, folderID, "", fmt.Errorf("hash file: %w", err))
	}

	done, err := p.catalog.IsProcessed(ctx, hash)
	if err != nil {
		return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("check catalog: %w", err))
	}
	if done {
		p.logger.Info("skipping already ingested document", "file", fileName, "content_hash", hash)
		if p.metrics != nil {
			p.metrics.DocumentsSkipped.Inc()
		}
		p.emit(ctx, events.Event{Type: events.TypeSkipped, FilePath: fileName, FolderID: folderID, ContentHash: hash})
		return false, nil
	}

	text, err := p.extractor.Extract(path)
	if err != nil {
		return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("extract text: %w", err))
	}
	pieces := p.chunker.Split(text)
	if len(pieces) == 0 {
		return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("document %s has no extractable text", fileName))
	}

	chunks := make([]vectorstore.Chunk, 0, len(pieces))
	entries := make([]index.Entry, 0, len(pieces))
	for start := 0; start < len(pieces); start += embedBatchSize {
		end := min(start+embedBatchSize, len(pieces))
		batch := pieces[start:end]

		embedStart := time.Now()
		vecs, err := p.embedder.Embed(ctx, batch)
		if err != nil {
			return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("embed chunks: %w", err))
		}
		if p.metrics != nil {
			p.metrics.EmbedDurationMs.Observe(float64(time.Since(embedStart).Milliseconds()))
		}

		for i, vec := range vecs {
			id := fmt.Sprintf("%s:%d", hash, start+i)
			chunks = append(chunks, vectorstore.Chunk{
				ID:          id,
				DocumentID:  hash,
				Text:        batch[i],
				Source:      sourceName,
				FileName:    fileName,
				ContentHash: hash,
				Embedding:   vec,
			})
			entries = append(entries, index.Entry{
				ID:         id,
				DocumentID: hash,
				FileName:   fileName,
				Text:       batch[i],
			})
		}
	}

	if err := p.vectors.Add(ctx, chunks); err != nil {
		return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("store vectors: %w", err))
	}
	if p.keyword != nil {
		if err := p.keyword.Index(entries); err != nil {
			return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("index keywords: %w", err))
		}
	}
	if err := p.catalog.MarkProcessed(ctx, fileName, folderID, hash); err != nil {
		return false, p.fail(ctx, fileName, folderID, hash, fmt.Errorf("mark processed: %w", err))
	}

	p.logger.Info("document ingested", "file", fileName, "chunks", len(chunks), "content_hash", hash)
	if p.metrics != nil {
		p.metrics.DocumentsIngested.Inc()
		p.metrics.ChunksIndexed.Add(float64(len(chunks)))
	}
	p.emit(ctx, events.Event{Type: events.TypeProcessed, FilePath: fileName, FolderID: folderID, ContentHash: hash})
	return true, nil
}

func (p *Processor) fail(ctx context.Context, fileName, folderID, hash string, err error) error {
	if p.metrics != nil {
		p.metrics.DocumentsFailed.Inc()
	}
	p.emit(ctx, events.Event{
		Type:        events.TypeFailed,
		FilePath:    fileName,
		FolderID:    folderID,
		ContentHash: hash,
		Detail:      err.Error(),
	})
	return err
}

func (p *Processor) emit(ctx context.Context, event events.Event) {
	if p.events == nil {
		return
	}
	if err := p.events.Emit(ctx, event); err != nil {
		p.logger.Warn("emit ingest event", "type", string(event.Type), "error", err)
	}
}

// HashFileContent validates the file looks like a PDF and returns its
// SHA-256 content hash.
func HashFileContent(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	return catalog.HashFile(path)
}
