package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// maxConcurrentOpens bounds how many inputs are parsed at once.
const maxConcurrentOpens = 4

// Assembler concatenates documents.
type Assembler struct{}

// NewAssembler creates a new Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// OpenAll opens each input concurrently. The result keeps input order.
func OpenAll(ctx context.Context, inputs [][]byte) ([]*Document, error) {
	docs := make([]*Document, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOpens)
	for i, data := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Open(data)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Merge appends every page of every document, in input order, to a new document.
func (a *Assembler) Merge(ctx context.Context, docs []*Document) (*Output, error) {
	if len(docs) < 2 {
		return nil, domain.ValidationError("Please upload at least 2 files", domain.ErrInsufficientInputs)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	readers := make([]io.ReadSeeker, len(docs))
	total := 0
	for i, d := range docs {
		readers[i] = d.reader()
		total += d.PageCount()
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, newConfiguration()); err != nil {
		return nil, domain.ProcessingError("Failed to merge PDFs", err)
	}

	return &Output{data: buf.Bytes(), pageCount: total}, nil
}
