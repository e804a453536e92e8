package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"vero/internal/embed"
	"vero/internal/index"
	"vero/internal/mcpserver"
	"vero/internal/platform/config"
	"vero/internal/platform/logger"
	"vero/internal/search"
	"vero/internal/vectorstore"
)

const serverVersion = "1.0.0"

// main runs the MCP tool server over stdio against the same embedded
// indexes the HTTP backend serves from. Logs go to stderr so stdout
// stays clean for the protocol.
func main() {
	cfg := config.FromEnv()
	log := logger.NewStderr()

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

	svc := search.New(log, embed.FromConfig(cfg.Embed), vectors, search.WithKeyword(keyword))
	server := mcpserver.New("vero-document-search", serverVersion, svc, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
