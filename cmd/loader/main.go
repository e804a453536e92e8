package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"vero/internal/embed"
	"vero/internal/events"
	"vero/internal/index"
	"vero/internal/ingest"
	"vero/internal/ingest/catalog"
	"vero/internal/platform/config"
	"vero/internal/platform/logger"
	"vero/internal/source"
	"vero/internal/vectorstore"
)

// main runs one ingestion pass over a document source and exits. It shares
// the embedded databases with the server, so runs happen while the server
// is stopped or against a fresh data dir that is swapped in afterwards.
func main() {
	var (
		sourceKind = flag.String("source", "dir", "document source: dir or drive")
		dir        = flag.String("dir", "./documents", "directory of PDFs when -source=dir")
	)
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("create data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	var (
		src      source.Source
		folderID string
		err      error
	)
	switch *sourceKind {
	case "dir":
		src = source.NewFS(*dir)
	case "drive":
		src, err = source.NewDrive(ctx, cfg.Drive)
		if err != nil {
			log.Error("create drive source", "error", err)
			os.Exit(1)
		}
		folderID = cfg.Drive.FolderID
	default:
		fmt.Fprintf(os.Stderr, "unknown source %q (want dir or drive)\n", *sourceKind)
		os.Exit(2)
	}

	vectors, err := vectorstore.Open(filepath.Join(cfg.DataDir, "vectors.db"))
	if err != nil {
		log.Error("open vector store", "error", err)
		os.Exit(1)
	}
	defer vectors.Close()

	keyword, err := index.OpenKeyword(filepath.Join(cfg.DataDir, "keyword.bleve"))
	if err != nil {
		log.Error("open keyword index", "error", err)
		os.Exit(1)
	}
	defer keyword.Close()

	cat, err := catalog.Open(filepath.Join(cfg.DataDir, "catalog.db"))
	if err != nil {
		log.Error("open catalog", "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	eventStore, err := events.OpenSQLite(filepath.Join(cfg.DataDir, "events.db"))
	if err != nil {
		log.Error("open event store", "error", err)
		os.Exit(1)
	}
	defer eventStore.Close()

	inbox := make(chan events.Event, 64)
	worker := events.NewWorker(eventStore, inbox, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = worker.Run(context.Background())
	}()

	processor := ingest.NewProcessor(
		embed.FromConfig(cfg.Embed),
		vectors,
		cat,
		log,
		ingest.WithKeywordIndexer(keyword),
		ingest.WithEmitter(events.NewChannelEmitter(inbox)),
	)
	pipeline := ingest.NewPipeline(processor, src, folderID, cfg.IngestWorkers, log)

	summary, err := pipeline.Run(ctx)

	// No more emitters; close the inbox so the worker drains and exits.
	close(inbox)
	<-workerDone

	if err != nil {
		log.Error("ingestion run failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("processed=%d skipped=%d failed=%d\n", summary.Processed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
