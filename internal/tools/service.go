// Package tools runs one document transformation per call and persists its
// output as an artifact.
package tools

import (
	"context"
	"time"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pagerange"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pdf"
)

// Store persists produced documents.
type Store interface {
	Persist(ctx context.Context, c domain.Category, data []byte) (domain.Artifact, error)
}

// Result describes a persisted output.
type Result struct {
	Artifact         domain.Artifact
	OutputPages      int
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
}

// Service exposes the document operations.
type Service struct {
	store      Store
	logger     *observability.Logger
	assembler  *pdf.Assembler
	splitter   *pdf.Splitter
	compressor *pdf.Compressor
	converter  *pdf.ImageConverter
	protector  *pdf.Protector
}

// Config holds the service dependencies. A nil Renderer uses MuPDF.
type Config struct {
	Store    Store
	Logger   *observability.Logger
	Renderer pdf.PageRenderer
	Compress pdf.CompressOptions
}

// NewService creates a new Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, domain.ConfigError("artifact store is required", nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.Nop()
	}

	compressor, err := pdf.NewCompressor(cfg.Renderer, cfg.Compress)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:      cfg.Store,
		logger:     logger.WithComponent("tools"),
		assembler:  pdf.NewAssembler(),
		splitter:   pdf.NewSplitter(),
		compressor: compressor,
		converter:  pdf.NewImageConverter(),
		protector:  pdf.NewProtector(),
	}, nil
}

// Merge concatenates files in order.
func (s *Service) Merge(ctx context.Context, files [][]byte) (*Result, error) {
	log := s.logger.WithContext(ctx).WithOperation("merge")
	start := time.Now()

	if len(files) < 2 {
		return nil, domain.ValidationError("Please upload at least 2 files", domain.ErrInsufficientInputs)
	}

	docs, err := pdf.OpenAll(ctx, files)
	if err != nil {
		return nil, err
	}

	out, err := s.assembler.Merge(ctx, docs)
	if err != nil {
		return nil, err
	}

	res, err := s.persist(ctx, domain.CategoryMerge, out)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("inputs", len(files)).
		Int("pages", out.PageCount()).
		Artifact(res.Artifact).
		Since(start).
		Msg("Merged PDFs")
	return res, nil
}

// Split extracts the pages named by the first non-empty alias.
func (s *Service) Split(ctx context.Context, file []byte, aliases pagerange.Aliases) (*Result, error) {
	log := s.logger.WithContext(ctx).WithOperation("split")
	start := time.Now()

	if len(file) == 0 {
		return nil, domain.ValidationError("Please upload a PDF file", domain.ErrMissingDocument)
	}

	parsed, err := aliases.Parse()
	if err != nil {
		return nil, err
	}
	if len(parsed.Dropped) > 0 {
		log.Debug().Strs("dropped", parsed.Dropped).Msg("Ignored malformed page tokens")
	}

	doc, err := pdf.Open(file)
	if err != nil {
		return nil, err
	}

	out, err := s.splitter.Split(ctx, doc, parsed.Pages)
	if err != nil {
		return nil, err
	}

	res, err := s.persist(ctx, domain.CategorySplit, out)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("source_pages", doc.PageCount()).
		Int("pages", out.PageCount()).
		Artifact(res.Artifact).
		Since(start).
		Msg("Split PDF")
	return res, nil
}

// Compress rasterizes file at the configured resolution.
func (s *Service) Compress(ctx context.Context, file []byte) (*Result, error) {
	return s.CompressWithProgress(ctx, file, nil)
}

// CompressWithProgress is Compress with a per-page callback.
func (s *Service) CompressWithProgress(ctx context.Context, file []byte, onPage func(done, total int)) (*Result, error) {
	log := s.logger.WithContext(ctx).WithOperation("compress")
	start := time.Now()

	doc, err := pdf.Open(file)
	if err != nil {
		return nil, err
	}

	compressor := s.compressor
	if onPage != nil {
		compressor = compressor.WithProgress(onPage)
	}

	cr, err := compressor.Compress(ctx, doc)
	if err != nil {
		return nil, err
	}

	res, err := s.persist(ctx, domain.CategoryCompress, cr.Output)
	if err != nil {
		return nil, err
	}
	res.OriginalSize = cr.OriginalSize
	res.CompressedSize = cr.CompressedSize
	res.CompressionRatio = cr.CompressionRatio

	log.Info().
		Int("pages", cr.Output.PageCount()).
		Int64("original_size", cr.OriginalSize).
		Int64("compressed_size", cr.CompressedSize).
		Float64("ratio", cr.CompressionRatio).
		Artifact(res.Artifact).
		Since(start).
		Msg("Compressed PDF")
	return res, nil
}

// ConvertImages builds a document with one page per non-empty image.
func (s *Service) ConvertImages(ctx context.Context, images [][]byte, orientation string) (*Result, error) {
	log := s.logger.WithContext(ctx).WithOperation("convert")
	start := time.Now()

	o := domain.ParseOrientation(orientation)
	out, err := s.converter.Convert(ctx, images, o)
	if err != nil {
		return nil, err
	}

	res, err := s.persist(ctx, domain.CategoryConvert, out)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("images", len(images)).
		Int("pages", out.PageCount()).
		Str("orientation", string(o)).
		Artifact(res.Artifact).
		Since(start).
		Msg("Converted images to PDF")
	return res, nil
}

// Protect encrypts file with password.
func (s *Service) Protect(ctx context.Context, file []byte, password string) (*Result, error) {
	log := s.logger.WithContext(ctx).WithOperation("protect")
	start := time.Now()

	if len(file) == 0 {
		return nil, domain.ValidationError("File and password are required", domain.ErrMissingDocument)
	}
	if password == "" {
		return nil, domain.ValidationError("File and password are required", domain.ErrMissingSecret)
	}

	doc, err := pdf.Open(file)
	if err != nil {
		return nil, err
	}

	out, err := s.protector.Protect(ctx, doc, password)
	if err != nil {
		return nil, err
	}

	res, err := s.persist(ctx, domain.CategoryProtect, out)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("pages", out.PageCount()).
		Artifact(res.Artifact).
		Since(start).
		Msg("Protected PDF")
	return res, nil
}

func (s *Service) persist(ctx context.Context, c domain.Category, out *pdf.Output) (*Result, error) {
	a, err := s.store.Persist(ctx, c, out.Bytes())
	if err != nil {
		return nil, err
	}
	return &Result{Artifact: a, OutputPages: out.PageCount()}, nil
}
