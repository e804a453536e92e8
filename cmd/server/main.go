package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"vero/internal/embed"
	"vero/internal/index"
	"vero/internal/platform/config"
	"vero/internal/platform/httpserver"
	"vero/internal/platform/logger"
	"vero/internal/platform/metrics"
	platformredis "vero/internal/platform/redis"
	"vero/internal/search"
	searchhandler "vero/internal/search/handler"
	httptransport "vero/internal/transport/http"
	"vero/internal/vectorstore"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	showVersion := flag.Bool("version", false, "print build and dependency versions, then exit")
	flag.Parse()
	if *showVersion {
		printVersion()
		return
	}

	cfg := config.FromEnv()
	log := logger.New()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("create data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
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

	m := metrics.New()
	embedder := embed.FromConfig(cfg.Embed)

	opts := []search.Option{
		search.WithKeyword(keyword),
		search.WithMetrics(m),
	}
	checks := []searchhandler.HealthCheck{
		{Name: "vectorstore", Check: vectors.Health},
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, search.WithCache(search.NewRedisCache(redisClient, log, config.SearchCacheTTL)))
		checks = append(checks, searchhandler.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	svc := search.New(log, embedder, vectors, opts...)
	handler := searchhandler.New(svc, log, m, checks...)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting vero backend", "addr", cfg.Addr, "data_dir", cfg.DataDir)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// printVersion reports the module versions baked into the binary, so
// operators can inspect what a running container actually ships.
func printVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Println("vero-backend (no build info)")
		return
	}
	fmt.Printf("vero-backend %s (go %s)\n", info.Main.Version, info.GoVersion)
	for _, dep := range info.Deps {
		fmt.Printf("  %s %s\n", dep.Path, dep.Version)
	}
}
