package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/templatizer/internal/api"
	"github.com/dgallion1/templatizer/internal/config"
	"github.com/dgallion1/templatizer/internal/contextstore"
	"github.com/dgallion1/templatizer/internal/customize"
	"github.com/dgallion1/templatizer/internal/fetch"
	"github.com/dgallion1/templatizer/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize stores.
	contexts, err := contextstore.Open(cfg.ContextDB)
	if err != nil {
		log.Error("open context database", "path", cfg.ContextDB, "error", err)
		os.Exit(1)
	}

	loader := &customize.Loader{
		Fetch: fetch.Options{
			Timeout:    cfg.FetchTimeout,
			Retries:    cfg.FetchRetries,
			Cache:      fetch.NewCache(cfg.FetchCacheSize, cfg.FetchCacheTTL),
			Log:        log,
			AllowLocal: cfg.SourceRoot != "",
			LocalRoot:  cfg.SourceRoot,
			S3: fetch.S3Config{
				Endpoint:  cfg.S3Endpoint,
				Region:    cfg.S3Region,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
				UseSSL:    cfg.S3UseSSL,
			},
		},
		Options: customize.Options{
			ManifestName: cfg.ManifestName,
			Concurrency:  cfg.FetchConcurrency,
			Log:          log,
		},
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, loader, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, loader, contexts, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		contexts.Close()
	}()

	log.Info("starting templatizer", "port", cfg.Port, "workers", cfg.WorkerCount, "local_sources", cfg.SourceRoot != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
