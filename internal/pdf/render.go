package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// PageRenderer rasterizes the pages of a document.
type PageRenderer interface {
	// Load prepares a document for rendering. The returned Rasterizer must be closed.
	Load(data []byte) (Rasterizer, error)
}

// Rasterizer renders the pages of one loaded document.
type Rasterizer interface {
	PageCount() int
	// Render renders page n (1-based) at the given resolution.
	Render(n int, dpi float64) (image.Image, error)
	Close() error
}

// FitzRenderer implements PageRenderer using MuPDF through go-fitz.
type FitzRenderer struct{}

// NewFitzRenderer creates a new MuPDF backed renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// Load opens data with MuPDF.
func (r *FitzRenderer) Load(data []byte) (Rasterizer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.ProcessingError("Failed to open PDF for rendering", err)
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, domain.ValidationError("PDF has no pages", nil)
	}
	return &fitzRasterizer{doc: doc}, nil
}

type fitzRasterizer struct {
	doc *fitz.Document
}

func (f *fitzRasterizer) PageCount() int {
	return f.doc.NumPage()
}

func (f *fitzRasterizer) Render(n int, dpi float64) (image.Image, error) {
	img, err := f.doc.ImageDPI(n-1, dpi)
	if err != nil {
		return nil, domain.ProcessingError(fmt.Sprintf("Failed to render page %d", n), err)
	}
	return img, nil
}

func (f *fitzRasterizer) Close() error {
	return f.doc.Close()
}

// renderAll renders every page of data in order, honoring cancellation between
// pages. The renderer must see exactly want pages.
func renderAll(ctx context.Context, r PageRenderer, data []byte, want int, dpi float64, each func(n int, img image.Image) error) error {
	rz, err := r.Load(data)
	if err != nil {
		return err
	}
	defer rz.Close()

	if got := rz.PageCount(); got != want {
		return domain.ProcessingError("Renderer page count does not match the document",
			fmt.Errorf("renderer reported %d pages, document has %d", got, want))
	}

	for n := 1; n <= rz.PageCount(); n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		img, err := rz.Render(n, dpi)
		if err != nil {
			return err
		}
		if err := each(n, img); err != nil {
			return err
		}
	}
	return nil
}
