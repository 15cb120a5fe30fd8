package pdf

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

func TestPageSizeForImage(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		orientation domain.Orientation
		want        domain.PageSize
	}{
		{"portrait keeps tall image", 100, 200, domain.OrientationPortrait, domain.PageSize{Width: 100, Height: 200}},
		{"portrait keeps wide image", 300, 100, domain.OrientationPortrait, domain.PageSize{Width: 300, Height: 100}},
		{"landscape turns tall page wide", 100, 200, domain.OrientationLandscape, domain.PageSize{Width: 200, Height: 100}},
		{"landscape keeps wide page", 300, 100, domain.OrientationLandscape, domain.PageSize{Width: 300, Height: 100}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PageSizeForImage(tc.w, tc.h, tc.orientation))
		})
	}
}

func TestConvert_OnePagePerImage(t *testing.T) {
	images := [][]byte{pngImage(t, 80, 160), nil, pngImage(t, 240, 120), {}}

	out, err := NewImageConverter().Convert(context.Background(), images, domain.OrientationPortrait)
	require.NoError(t, err)

	assert.Equal(t, 2, out.PageCount())
	requireSizes(t, [][2]int{{80, 160}, {240, 120}}, pageSizes(t, out.Bytes()))
}

func TestConvert_Landscape(t *testing.T) {
	images := [][]byte{pngImage(t, 80, 160), pngImage(t, 240, 120)}

	out, err := NewImageConverter().Convert(context.Background(), images, domain.ParseOrientation("LANDSCAPE"))
	require.NoError(t, err)

	requireSizes(t, [][2]int{{160, 80}, {240, 120}}, pageSizes(t, out.Bytes()))
}

func TestConvert_NoImages(t *testing.T) {
	for _, images := range [][][]byte{nil, {nil, {}}} {
		_, err := NewImageConverter().Convert(context.Background(), images, domain.OrientationPortrait)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNoImages))
	}
}

func TestConvert_UndecodableImage(t *testing.T) {
	images := [][]byte{pngImage(t, 10, 10), []byte("not an image")}

	_, err := NewImageConverter().Convert(context.Background(), images, domain.OrientationPortrait)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, domain.Message(err), "Image 2")
}

// withDensity inserts a pHYs chunk declaring dpi right after the PNG header.
func withDensity(png []byte, dpi int) []byte {
	ppm := uint32(float64(dpi)/0.0254 + 0.5)
	data := make([]byte, 9)
	binary.BigEndian.PutUint32(data[0:], ppm)
	binary.BigEndian.PutUint32(data[4:], ppm)
	data[8] = 1 // meters

	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	const afterIHDR = 8 + 4 + 4 + 13 + 4
	out := append([]byte{}, png[:afterIHDR]...)
	out = append(out, chunk...)
	return append(out, png[afterIHDR:]...)
}

func TestConvert_IgnoresEmbeddedDensity(t *testing.T) {
	images := [][]byte{withDensity(pngImage(t, 300, 150), 300)}

	out, err := NewImageConverter().Convert(context.Background(), images, domain.OrientationPortrait)
	require.NoError(t, err)

	requireSizes(t, [][2]int{{300, 150}}, pageSizes(t, out.Bytes()))
}
