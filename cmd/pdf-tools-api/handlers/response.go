// Package handlers provides HTTP handlers for the PDF tools API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
)

// ArtifactResponse is returned by every successful operation.
type ArtifactResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

// CompressResponse adds size accounting to ArtifactResponse.
type CompressResponse struct {
	ArtifactResponse
	OriginalSize     int64   `json:"originalSize"`
	CompressedSize   int64   `json:"compressedSize"`
	CompressionRatio float64 `json:"compressionRatio"`
}

// SplitResponse adds the output page count to ArtifactResponse.
type SplitResponse struct {
	ArtifactResponse
	OutputPages int `json:"outputPages"`
}

// ErrorResponse is returned by every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(w http.ResponseWriter, logger *observability.Logger, err error) {
	status := http.StatusInternalServerError
	message := "An error occurred while processing the request"

	var de *domain.DomainError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
		message = domain.Message(err)
		logger.Warn().Err(err).Msg("Request rejected")
	case errors.As(err, &de):
		message = de.Message
		logger.Error().Stack().Err(err).Msg("Request failed")
	default:
		logger.Error().Err(err).Msg("Request failed")
	}

	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}
