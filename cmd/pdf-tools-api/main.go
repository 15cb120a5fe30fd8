// Package main provides the PDF tools API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/config"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pdf"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/retention"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/storage"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/tools"
)

func main() {
	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage_root", cfg.Storage.Root).
		Msg("Starting PDF tools API")

	policy := cfg.RetentionPolicy()

	store, err := storage.NewArtifactStore(cfg.Storage.Root, policy.Categories, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize artifact storage")
		os.Exit(1)
	}

	svc, err := tools.NewService(tools.Config{
		Store:  store,
		Logger: logger,
		Compress: pdf.CompressOptions{
			DPI:          cfg.Compress.DPI,
			MaxDimension: cfg.Compress.MaxDimension,
			JPEGQuality:  cfg.Compress.JPEGQuality,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize tools service")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := retention.NewScheduler(store.Root(), policy, logger)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	router := NewRouter(logger, AppConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		PublicBaseURL:  cfg.Server.PublicBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, svc, store)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
		stop()
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	<-schedulerDone
	logger.Info().Msg("Server stopped")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
