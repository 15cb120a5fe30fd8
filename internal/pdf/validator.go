package pdf

import (
	"bytes"
	"fmt"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// pdfHeaderWindow is how far into the file the %PDF- marker may appear.
// Readers tolerate leading junk, and so do we.
const pdfHeaderWindow = 1024

// ValidatePDFBytes checks that data looks like a PDF before handing it to the parser.
func ValidatePDFBytes(data []byte) error {
	window := data
	if len(window) > pdfHeaderWindow {
		window = window[:pdfHeaderWindow]
	}
	if !bytes.Contains(window, []byte("%PDF-")) {
		return domain.ValidationError("File is not a PDF", nil)
	}
	return nil
}

// ValidateQuality validates a JPEG quality parameter.
func ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return domain.ValidationError(fmt.Sprintf("quality must be between 1 and 100, got %d", quality), nil)
	}
	return nil
}

// ValidateDPI validates a rendering resolution.
func ValidateDPI(dpi int) error {
	if dpi < 10 || dpi > 1200 {
		return domain.ValidationError(fmt.Sprintf("dpi must be between 10 and 1200, got %d", dpi), nil)
	}
	return nil
}
