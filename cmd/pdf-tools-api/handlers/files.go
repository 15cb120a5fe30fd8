package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/storage"
)

// FileHandler serves persisted artifacts read-only.
type FileHandler struct {
	logger *observability.Logger
	store  *storage.ArtifactStore
}

// NewFileHandler creates a new file handler.
func NewFileHandler(logger *observability.Logger, store *storage.ArtifactStore) *FileHandler {
	return &FileHandler{logger: logger, store: store}
}

// Serve returns the handler for GET /{dir}/{name} of category c.
func (h *FileHandler) Serve(c domain.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		f, err := h.store.Open(c, name)
		if err != nil {
			// expired, never existed, or not a valid artifact name
			h.logger.WithContext(r.Context()).Debug().
				Str("category", c.Name).
				Str("name", name).
				Err(err).
				Msg("Artifact not found")
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || !info.Mode().IsRegular() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}
