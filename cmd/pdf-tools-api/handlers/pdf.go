package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pagerange"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/storage"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/tools"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// Tools is the set of document operations the handler exposes.
type Tools interface {
	Merge(ctx context.Context, files [][]byte) (*tools.Result, error)
	Split(ctx context.Context, file []byte, aliases pagerange.Aliases) (*tools.Result, error)
	Compress(ctx context.Context, file []byte) (*tools.Result, error)
	ConvertImages(ctx context.Context, images [][]byte, orientation string) (*tools.Result, error)
	Protect(ctx context.Context, file []byte, password string) (*tools.Result, error)
}

// PDFHandler handles the /pdf routes.
type PDFHandler struct {
	logger        *observability.Logger
	tools         Tools
	publicBaseURL string
	maxUpload     int64
}

// NewPDFHandler creates a new PDF handler. An empty publicBaseURL derives
// download URLs from the request.
func NewPDFHandler(logger *observability.Logger, t Tools, publicBaseURL string, maxUpload int64) *PDFHandler {
	return &PDFHandler{
		logger:        logger,
		tools:         t,
		publicBaseURL: publicBaseURL,
		maxUpload:     maxUpload,
	}
}

// Merge handles POST /pdf/merge.
func (h *PDFHandler) Merge(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context()).WithOperation("merge")
	if err := h.parseForm(w, r); err != nil {
		writeError(w, log, err)
		return
	}

	files, err := formFiles(r, "files")
	if err != nil {
		writeError(w, log, err)
		return
	}

	res, err := h.tools.Merge(r.Context(), files)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.artifactResponse(r, res))
}

// Compress handles POST /pdf/compress.
func (h *PDFHandler) Compress(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context()).WithOperation("compress")
	if err := h.parseForm(w, r); err != nil {
		writeError(w, log, err)
		return
	}

	file, err := formFile(r, "file")
	if err != nil {
		writeError(w, log, err)
		return
	}
	if len(file) == 0 {
		writeError(w, log, domain.ValidationError("Please upload a PDF file", domain.ErrMissingDocument))
		return
	}

	res, err := h.tools.Compress(r.Context(), file)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, CompressResponse{
		ArtifactResponse: h.artifactResponse(r, res),
		OriginalSize:     res.OriginalSize,
		CompressedSize:   res.CompressedSize,
		CompressionRatio: res.CompressionRatio,
	})
}

// Split handles POST /pdf/split. The mode and sizeLimitMB fields are
// accepted and ignored.
func (h *PDFHandler) Split(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context()).WithOperation("split")
	if err := h.parseForm(w, r); err != nil {
		writeError(w, log, err)
		return
	}

	file, err := formFile(r, "file")
	if err != nil {
		writeError(w, log, err)
		return
	}

	aliases := pagerange.Aliases{
		Pages:         r.FormValue("pages"),
		Ranges:        r.FormValue("ranges"),
		SelectedPages: r.FormValue("selectedPages"),
	}

	res, err := h.tools.Split(r.Context(), file, aliases)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, SplitResponse{
		ArtifactResponse: h.artifactResponse(r, res),
		OutputPages:      res.OutputPages,
	})
}

// JpgToPdf handles POST /pdf/JpgToPdf.
func (h *PDFHandler) JpgToPdf(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context()).WithOperation("convert")
	if err := h.parseForm(w, r); err != nil {
		writeError(w, log, err)
		return
	}

	images, err := formFiles(r, "files")
	if err != nil {
		writeError(w, log, err)
		return
	}

	res, err := h.tools.ConvertImages(r.Context(), images, r.FormValue("orientation"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.artifactResponse(r, res))
}

// Protect handles POST /pdf/protect.
func (h *PDFHandler) Protect(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context()).WithOperation("protect")
	if err := h.parseForm(w, r); err != nil {
		writeError(w, log, err)
		return
	}

	file, err := formFile(r, "file")
	if err != nil {
		writeError(w, log, err)
		return
	}

	res, err := h.tools.Protect(r.Context(), file, r.FormValue("password"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.artifactResponse(r, res))
}

func (h *PDFHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ValidationError(fmt.Sprintf("Upload exceeds the %d MB limit", h.maxUpload>>20), err)
		}
		return domain.ValidationError("Invalid multipart form", err)
	}
	return nil
}

func (h *PDFHandler) artifactResponse(r *http.Request, res *tools.Result) ArtifactResponse {
	return ArtifactResponse{
		Success:     true,
		DownloadURL: storage.URL(h.baseURL(r), res.Artifact),
		Filename:    res.Artifact.Name,
	}
}

func (h *PDFHandler) baseURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}

// formFile reads the first file uploaded under field. A missing field yields nil.
func formFile(r *http.Request, field string) ([]byte, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return readUpload(headers[0])
}

// formFiles reads every file uploaded under field, in upload order.
func formFiles(r *http.Request, field string) ([][]byte, error) {
	headers := r.MultipartForm.File[field]
	out := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, domain.ValidationError(fmt.Sprintf("Failed to read upload %q", fh.Filename), err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ValidationError(fmt.Sprintf("Failed to read upload %q", fh.Filename), err)
	}
	return data, nil
}
