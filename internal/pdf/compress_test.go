package pdf

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// fakeRenderer renders every page as a fixed-size blank image.
type fakeRenderer struct {
	pages   int
	failOn  int
	dpiSeen []float64
}

func (f *fakeRenderer) Load(data []byte) (Rasterizer, error) {
	return &fakeRasterizer{r: f}, nil
}

type fakeRasterizer struct {
	r *fakeRenderer
}

func (f *fakeRasterizer) PageCount() int { return f.r.pages }

func (f *fakeRasterizer) Render(n int, dpi float64) (image.Image, error) {
	f.r.dpiSeen = append(f.r.dpiSeen, dpi)
	if n == f.r.failOn {
		return nil, errors.New("render failed")
	}
	return image.NewRGBA(image.Rect(0, 0, 64, 64)), nil
}

func (f *fakeRasterizer) Close() error { return nil }

func TestRasterSize(t *testing.T) {
	tests := []struct {
		name  string
		page  domain.PageSize
		dpi   int
		max   int
		wantW int
		wantH int
	}{
		{"small page unscaled", domain.PageSize{Width: 144, Height: 72}, 150, 1500, 300, 150},
		{"letter downscaled on height", domain.PageSize{Width: 612, Height: 792}, 150, 1500, 1159, 1500},
		{"landscape downscaled on width", domain.PageSize{Width: 792, Height: 612}, 150, 1500, 1500, 1159},
		{"exactly at limit", domain.PageSize{Width: 720, Height: 360}, 150, 1500, 1500, 750},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := RasterSize(tc.page, tc.dpi, tc.max)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestCompressionRatio(t *testing.T) {
	assert.Equal(t, 0.5, CompressionRatio(1000, 500))
	assert.Equal(t, 0.33, CompressionRatio(300, 100))
	assert.Equal(t, 1.25, CompressionRatio(400, 500))
	assert.Equal(t, 0.0, CompressionRatio(0, 500))
}

func TestCompress_KeepsPageCountAndSizes(t *testing.T) {
	sizes := [][2]int{{200, 100}, {120, 240}, {150, 150}}
	doc := openFixture(t, sizes...)

	renderer := &fakeRenderer{pages: 3}
	var progress []int
	opts := DefaultCompressOptions()
	opts.OnPage = func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	}

	c, err := NewCompressor(renderer, opts)
	require.NoError(t, err)

	res, err := c.Compress(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Output.PageCount())
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, []float64{150, 150, 150}, renderer.dpiSeen)
	requireSizes(t, sizes, pageSizes(t, res.Output.Bytes()))

	assert.Equal(t, doc.Size(), res.OriginalSize)
	assert.Equal(t, int64(len(res.Output.Bytes())), res.CompressedSize)
	assert.Equal(t, CompressionRatio(res.OriginalSize, res.CompressedSize), res.CompressionRatio)
	assert.NotContains(t, string(res.Output.Bytes()), "/Author")
	assert.NotContains(t, string(res.Output.Bytes()), "/Title")
}

func TestCompress_PageFailureFailsWholeDocument(t *testing.T) {
	doc := openFixture(t, [2]int{100, 100}, [2]int{100, 100})

	c, err := NewCompressor(&fakeRenderer{pages: 2, failOn: 2}, DefaultCompressOptions())
	require.NoError(t, err)

	res, err := c.Compress(context.Background(), doc)
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestCompress_RendererPageCountMismatch(t *testing.T) {
	doc := openFixture(t, [2]int{100, 100}, [2]int{110, 100}, [2]int{120, 100})

	for _, pages := range []int{1, 4} {
		c, err := NewCompressor(&fakeRenderer{pages: pages}, DefaultCompressOptions())
		require.NoError(t, err)

		res, err := c.Compress(context.Background(), doc)
		require.Error(t, err, "renderer pages %d", pages)
		assert.Nil(t, res)
		assert.Equal(t, domain.ErrorTypeProcessing, domain.TypeOf(err))
	}
}

func TestCompress_Cancelled(t *testing.T) {
	doc := openFixture(t, [2]int{100, 100})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := NewCompressor(&fakeRenderer{pages: 1}, DefaultCompressOptions())
	require.NoError(t, err)

	_, err = c.Compress(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCompressor_RejectsBadOptions(t *testing.T) {
	_, err := NewCompressor(&fakeRenderer{}, CompressOptions{DPI: 150, MaxDimension: 1500, JPEGQuality: 0})
	assert.Error(t, err)

	_, err = NewCompressor(&fakeRenderer{}, CompressOptions{DPI: 150, MaxDimension: 0, JPEGQuality: 75})
	assert.Error(t, err)
}
