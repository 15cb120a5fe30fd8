package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pagerange"
)

func fivePageDoc(t *testing.T) *Document {
	return openFixture(t, [2]int{101, 100}, [2]int{102, 100}, [2]int{103, 100}, [2]int{104, 100}, [2]int{105, 100})
}

func TestSplit(t *testing.T) {
	doc := fivePageDoc(t)

	tests := []struct {
		name string
		expr string
		want [][2]int
	}{
		{"single page", "3", [][2]int{{103, 100}}},
		{"unordered list comes out ascending", "4,1", [][2]int{{101, 100}, {104, 100}}},
		{"range", "2-4", [][2]int{{102, 100}, {103, 100}, {104, 100}}},
		{"out of range pages skipped", "5,9,12-14", [][2]int{{105, 100}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel, err := pagerange.Parse(tc.expr)
			require.NoError(t, err)

			out, err := NewSplitter().Split(context.Background(), doc, sel)
			require.NoError(t, err)
			assert.Equal(t, len(tc.want), out.PageCount())
			requireSizes(t, tc.want, pageSizes(t, out.Bytes()))
		})
	}
}

func TestSplit_NothingQualifies(t *testing.T) {
	doc := fivePageDoc(t)

	_, err := NewSplitter().Split(context.Background(), doc, pagerange.Selection{6, 7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSelectionEmpty))
}
