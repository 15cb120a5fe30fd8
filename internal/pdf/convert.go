package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// Only formats the document engine can embed have decoders registered, so an
// unsupported upload fails as undecodable rather than during import.

// maxConcurrentDecodes bounds how many image headers are decoded at once.
const maxConcurrentDecodes = 8

// ImageConverter builds a document with one page per image.
type ImageConverter struct{}

// NewImageConverter creates a new ImageConverter.
func NewImageConverter() *ImageConverter {
	return &ImageConverter{}
}

type imageLayout struct {
	data []byte
	page domain.PageSize
}

// Convert places each non-empty image, at its natural size (1 px = 1 pt),
// centered on its own page. Empty images are skipped.
func (c *ImageConverter) Convert(ctx context.Context, images [][]byte, orientation domain.Orientation) (*Output, error) {
	layouts := make([]*imageLayout, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDecodes)
	for i, data := range images {
		if len(data) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				return domain.ValidationError(fmt.Sprintf("Image %d could not be decoded", i+1), err)
			}
			layouts[i] = &imageLayout{data: data, page: PageSizeForImage(cfg.Width, cfg.Height, orientation)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []byte
	pages := 0
	for _, l := range layouts {
		if l == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := appendImagePage(out, bytes.NewReader(l.data), l.page, "position:c, scalefactor:1.0 abs")
		if err != nil {
			return nil, domain.ProcessingError(fmt.Sprintf("Failed to add image %d", pages+1), err)
		}
		out = next
		pages++
	}

	if pages == 0 {
		return nil, domain.ValidationError("No images uploaded", domain.ErrNoImages)
	}

	return &Output{data: out, pageCount: pages}, nil
}

// PageSizeForImage returns the page an image of w×h pixels is drawn on.
// One pixel is one point; density recorded in JFIF or pHYs headers is not
// consulted. Landscape pages put the longer side horizontally.
func PageSizeForImage(w, h int, orientation domain.Orientation) domain.PageSize {
	fw, fh := float64(w), float64(h)
	if orientation == domain.OrientationLandscape {
		return domain.PageSize{Width: max(fw, fh), Height: min(fw, fh)}
	}
	return domain.PageSize{Width: fw, Height: fh}
}
