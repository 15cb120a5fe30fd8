// Package pdf implements the page-level document transformations: merge,
// split, raster compression, image conversion, and protection.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	model.ConfigPath = "disable"
}

// newConfiguration returns the pdfcpu configuration used for every operation.
// Validation is relaxed; many uploaded documents are slightly malformed.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Document is an opened source document. Its bytes are never modified.
type Document struct {
	data  []byte
	sizes []domain.PageSize
}

// Open parses data far enough to know the page count and page sizes.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, domain.ValidationError("Please upload a PDF file", domain.ErrMissingDocument)
	}
	if err := ValidatePDFBytes(data); err != nil {
		return nil, err
	}

	dims, err := api.PageDims(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, domain.ValidationError("Invalid PDF file", err)
	}
	if len(dims) == 0 {
		return nil, domain.ValidationError("PDF has no pages", nil)
	}

	sizes := make([]domain.PageSize, len(dims))
	for i, d := range dims {
		sizes[i] = domain.PageSize{Width: d.Width, Height: d.Height}
	}

	return &Document{data: data, sizes: sizes}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.sizes)
}

// PageSize returns the physical size of page n (1-based).
func (d *Document) PageSize(n int) (domain.PageSize, error) {
	if n < 1 || n > len(d.sizes) {
		return domain.PageSize{}, fmt.Errorf("page %d out of range (1-%d)", n, len(d.sizes))
	}
	return d.sizes[n-1], nil
}

// Bytes returns the raw document. Callers must not modify it.
func (d *Document) Bytes() []byte {
	return d.data
}

// Size returns the document size in bytes.
func (d *Document) Size() int64 {
	return int64(len(d.data))
}

func (d *Document) reader() *bytes.Reader {
	return bytes.NewReader(d.data)
}

// Output is a serialized result document.
type Output struct {
	data      []byte
	pageCount int
}

// Bytes returns the serialized document.
func (o *Output) Bytes() []byte {
	return o.data
}

// PageCount returns the number of pages in the output.
func (o *Output) PageCount() int {
	return o.pageCount
}

// Size returns the output size in bytes.
func (o *Output) Size() int64 {
	return int64(len(o.data))
}
