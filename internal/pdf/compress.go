package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// CompressOptions configures raster compression.
type CompressOptions struct {
	DPI          int
	MaxDimension int
	JPEGQuality  int
	// OnPage, when set, is called after each page is rebuilt.
	OnPage func(done, total int)
}

// DefaultCompressOptions returns 150 DPI, 1500 px and quality 75.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{DPI: 150, MaxDimension: 1500, JPEGQuality: 75}
}

// CompressResult is a compressed document with its size accounting.
type CompressResult struct {
	Output           *Output
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
}

// Compressor rebuilds every page of a document as a single JPEG image.
type Compressor struct {
	renderer PageRenderer
	opts     CompressOptions
}

// NewCompressor creates a Compressor. A nil renderer uses MuPDF.
func NewCompressor(renderer PageRenderer, opts CompressOptions) (*Compressor, error) {
	if renderer == nil {
		renderer = NewFitzRenderer()
	}
	if err := ValidateDPI(opts.DPI); err != nil {
		return nil, err
	}
	if err := ValidateQuality(opts.JPEGQuality); err != nil {
		return nil, err
	}
	if opts.MaxDimension < 1 {
		return nil, domain.ValidationError(fmt.Sprintf("max dimension must be positive, got %d", opts.MaxDimension), nil)
	}
	return &Compressor{renderer: renderer, opts: opts}, nil
}

// WithProgress returns a copy of c that reports each finished page to onPage.
func (c *Compressor) WithProgress(onPage func(done, total int)) *Compressor {
	cp := *c
	cp.opts.OnPage = onPage
	return &cp
}

// Compress rasterizes doc. Any page failure fails the whole operation.
func (c *Compressor) Compress(ctx context.Context, doc *Document) (*CompressResult, error) {
	total := doc.PageCount()
	var out []byte

	err := renderAll(ctx, c.renderer, doc.Bytes(), total, float64(c.opts.DPI), func(n int, img image.Image) error {
		size, _ := doc.PageSize(n)

		w, h := RasterSize(size, c.opts.DPI, c.opts.MaxDimension)
		img = resize(img, w, h)

		var jpg bytes.Buffer
		if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: c.opts.JPEGQuality}); err != nil {
			return domain.ProcessingError(fmt.Sprintf("Failed to encode page %d", n), err)
		}

		// Relative scale 1.0 fits the image to the page box. The raster
		// keeps the page aspect ratio, so it fills the page.
		next, err := appendImagePage(out, &jpg, size, "position:c, scalefactor:1.0 rel")
		if err != nil {
			return domain.ProcessingError(fmt.Sprintf("Failed to rebuild page %d", n), err)
		}
		out = next

		if c.opts.OnPage != nil {
			c.opts.OnPage(n, total)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err = stripMetadata(out)
	if err != nil {
		return nil, domain.ProcessingError("Failed to clear document metadata", err)
	}

	return &CompressResult{
		Output:           &Output{data: out, pageCount: total},
		OriginalSize:     doc.Size(),
		CompressedSize:   int64(len(out)),
		CompressionRatio: CompressionRatio(doc.Size(), int64(len(out))),
	}, nil
}

// RasterSize returns the pixel size page renders to at dpi, downscaled
// uniformly so neither side exceeds maxDimension.
func RasterSize(page domain.PageSize, dpi, maxDimension int) (int, int) {
	w := math.Round(page.Width * float64(dpi) / 72)
	h := math.Round(page.Height * float64(dpi) / 72)

	if larger := math.Max(w, h); larger > float64(maxDimension) {
		scale := float64(maxDimension) / larger
		w = math.Round(w * scale)
		h = math.Round(h * scale)
	}

	return max(int(w), 1), max(int(h), 1)
}

// CompressionRatio returns output/input rounded to two decimals.
func CompressionRatio(inputSize, outputSize int64) float64 {
	if inputSize <= 0 {
		return 0
	}
	return math.Round(float64(outputSize)/float64(inputSize)*100) / 100
}

func resize(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// appendImagePage adds one page of the given size holding img to the document in
// prev, or starts a new document when prev is empty.
func appendImagePage(prev []byte, img io.Reader, size domain.PageSize, placement string) ([]byte, error) {
	desc := fmt.Sprintf("dimensions:%s %s, %s", formatPoints(size.Width), formatPoints(size.Height), placement)
	imp, err := api.Import(desc, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("import description %q: %w", desc, err)
	}

	var rs io.ReadSeeker
	if len(prev) > 0 {
		rs = bytes.NewReader(prev)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(rs, &buf, []io.Reader{img}, imp, newConfiguration()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripMetadata drops the document information dictionary.
func stripMetadata(data []byte) ([]byte, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, err
	}

	ctx.Info = nil
	ctx.Title = ""
	ctx.Author = ""
	ctx.Subject = ""
	ctx.Keywords = ""
	ctx.Creator = ""

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
