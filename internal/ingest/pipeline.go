package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"vero/internal/source"
)

// Summary totals one ingestion run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Pipeline runs a Processor over everything a Source lists, with bounded
// parallelism. Per-file failures are counted and logged, not fatal; a run
// only errors when the source itself cannot be listed.
type Pipeline struct {
	processor *Processor
	source    source.Source
	folderID  string
	workers   int
	logger    *slog.Logger
}

func NewPipeline(processor *Processor, src source.Source, folderID string, workers int, logger *slog.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		processor: processor,
		source:    src,
		folderID:  folderID,
		workers:   workers,
		logger:    logger,
	}
}

func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	files, err := p.source.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list source %s: %w", p.source.Name(), err)
	}
	p.logger.Info("ingestion run starting", "source", p.source.Name(), "files", len(files), "workers", p.workers)

	var (
		mu      sync.Mutex
		summary Summary
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome := p.runOne(ctx, file)
			mu.Lock()
			switch outcome {
			case outcomeProcessed:
				summary.Processed++
			case outcomeSkipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	p.logger.Info("ingestion run finished",
		"processed", summary.Processed, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeProcessed
	outcomeSkipped
)

func (p *Pipeline) runOne(ctx context.Context, file source.File) outcome {
	path, cleanup, err := p.source.Fetch(ctx, file)
	if err != nil {
		p.logger.Error("fetch document", "file", file.Name, "error", err)
		return outcomeFailed
	}
	defer cleanup()

	indexed, err := p.processor.Process(ctx, path, file.Name, p.source.Name(), p.folderID)
	if err != nil {
		p.logger.Error("process document", "file", file.Name, "error", err)
		return outcomeFailed
	}
	if !indexed {
		return outcomeSkipped
	}
	return outcomeProcessed
}
