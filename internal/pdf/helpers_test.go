package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// pngImage returns a solid w×h PNG.
func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fixturePDF builds a document with one page per size. Pages are identified
// in assertions by their distinct sizes.
func fixturePDF(t *testing.T, sizes ...[2]int) []byte {
	t.Helper()
	images := make([][]byte, len(sizes))
	for i, s := range sizes {
		images[i] = pngImage(t, s[0], s[1])
	}
	out, err := NewImageConverter().Convert(context.Background(), images, domain.OrientationPortrait)
	require.NoError(t, err)
	return out.Bytes()
}

func openFixture(t *testing.T, sizes ...[2]int) *Document {
	t.Helper()
	doc, err := Open(fixturePDF(t, sizes...))
	require.NoError(t, err)
	return doc
}

// pageSizes returns the sizes of every page in data.
func pageSizes(t *testing.T, data []byte) []domain.PageSize {
	t.Helper()
	doc, err := Open(data)
	require.NoError(t, err)
	sizes := make([]domain.PageSize, doc.PageCount())
	for i := range sizes {
		sizes[i], err = doc.PageSize(i + 1)
		require.NoError(t, err)
	}
	return sizes
}

func requireSizes(t *testing.T, want [][2]int, got []domain.PageSize) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		require.InDelta(t, float64(w[0]), got[i].Width, 0.5, "page %d width", i+1)
		require.InDelta(t, float64(w[1]), got[i].Height, 0.5, "page %d height", i+1)
	}
}
