package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Chain(t *testing.T) {
	err := fmt.Errorf("split: %w", ValidationError("No valid pages specified", ErrSelectionEmpty))

	assert.True(t, errors.Is(err, ErrSelectionEmpty))
	assert.True(t, IsValidation(err))
	assert.Equal(t, "No valid pages specified", Message(err))
	assert.Contains(t, err.Error(), "[validation]")
}

func TestDomainError_ProcessingKeepsCause(t *testing.T) {
	cause := errors.New("render failed")
	err := ProcessingError("Failed to compress PDF", cause)

	assert.Equal(t, ErrorTypeProcessing, TypeOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsValidation(err))
}

func TestTypeOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, ErrorType(""), TypeOf(err))
	assert.Equal(t, "boom", Message(err))
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in   string
		want Orientation
	}{
		{"landscape", OrientationLandscape},
		{"LANDSCAPE", OrientationLandscape},
		{" Landscape ", OrientationLandscape},
		{"portrait", OrientationPortrait},
		{"", OrientationPortrait},
		{"sideways", OrientationPortrait},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseOrientation(tc.in))
		})
	}
}

func TestCategoryByName(t *testing.T) {
	c, err := CategoryByName("convert")
	assert.NoError(t, err)
	assert.Equal(t, "pdf", c.Dir)
	assert.Equal(t, "jpgToPdf", c.Prefix)

	_, err = CategoryByName("rotate")
	assert.Error(t, err)
}

func TestArtifact_Path(t *testing.T) {
	a := Artifact{Category: CategorySplit, Name: "split_abc.pdf"}
	assert.Equal(t, "/split/split_abc.pdf", a.Path())
}
