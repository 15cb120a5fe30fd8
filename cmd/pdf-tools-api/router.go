// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/pdf-tools/cmd/pdf-tools-api/handlers"
	"github.com/spherical-ai/spherical/libs/pdf-tools/cmd/pdf-tools-api/middleware"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/storage"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/tools"
)

var _ handlers.Tools = (*tools.Service)(nil)

// AppConfig holds the router's settings.
type AppConfig struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	PublicBaseURL  string
	MaxUploadBytes int64
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg AppConfig, svc handlers.Tools, store *storage.ArtifactStore) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"pdf-tools"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for _, c := range domain.AllCategories() {
			if !dirExists(store.Dir(c)) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"not ready","missing":"` + c.Dir + `"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	pdfHandler := handlers.NewPDFHandler(logger, svc, cfg.PublicBaseURL, cfg.MaxUploadBytes)
	fileHandler := handlers.NewFileHandler(logger, store)

	// Operation routes share one limiter. They are registered flat rather than
	// under a /pdf sub-router because the convert category is also served from /pdf/.
	limited := r.With(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	limited.Post("/pdf/merge", pdfHandler.Merge)
	limited.Post("/pdf/compress", pdfHandler.Compress)
	limited.Post("/pdf/split", pdfHandler.Split)
	limited.Post("/pdf/JpgToPdf", pdfHandler.JpgToPdf)
	limited.Post("/pdf/protect", pdfHandler.Protect)

	// Artifact downloads, one read-only route per category directory
	for _, c := range domain.AllCategories() {
		r.Get("/"+c.Dir+"/{name}", fileHandler.Serve(c))
	}

	return r
}
