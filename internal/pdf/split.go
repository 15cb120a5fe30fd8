package pdf

import (
	"bytes"
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pagerange"
)

// Splitter extracts a page selection into a new document.
type Splitter struct{}

// NewSplitter creates a new Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split copies the selected pages, ascending, into a new document.
// Pages beyond the end of doc are skipped.
func (s *Splitter) Split(ctx context.Context, doc *Document, sel pagerange.Selection) (*Output, error) {
	pages := sel.Within(doc.PageCount())
	if len(pages) == 0 {
		return nil, domain.ValidationError("No valid pages specified", domain.ErrSelectionEmpty)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Trim keeps pages in document order, which is the ascending order we need.
	var buf bytes.Buffer
	if err := api.Trim(doc.reader(), &buf, pages.Strings(), newConfiguration()); err != nil {
		return nil, domain.ProcessingError("Failed to split PDF", err)
	}

	return &Output{data: buf.Bytes(), pageCount: len(pages)}, nil
}
