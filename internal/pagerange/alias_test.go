package pagerange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

func TestAliases_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		aliases    Aliases
		wantSource Source
		wantRaw    string
	}{
		{"pages wins", Aliases{Pages: "1", Ranges: "2", SelectedPages: "[3]"}, SourcePages, "1"},
		{"ranges when pages blank", Aliases{Pages: "  ", Ranges: "2-4", SelectedPages: "[3]"}, SourceRanges, "2-4"},
		{"json last", Aliases{SelectedPages: "[4, 2, 9]"}, SourceSelectedPages, "4,2,9"},
		{"empty json list falls through", Aliases{SelectedPages: "[]", Ranges: ""}, SourceNone, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := tc.aliases.Resolve()
			if tc.wantSource == SourceNone {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSource, expr.Source)
			assert.Equal(t, tc.wantRaw, expr.Raw)
		})
	}
}

func TestAliases_InvalidJSON(t *testing.T) {
	_, err := Aliases{SelectedPages: "[1, two]"}.Resolve()
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Invalid selectedPages format", domain.Message(err))
}

func TestAliases_InvalidJSONIgnoredWhenHigherPriorityPresent(t *testing.T) {
	expr, err := Aliases{Ranges: "1-2", SelectedPages: "not json"}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, SourceRanges, expr.Source)
}

func TestAliases_Parse(t *testing.T) {
	res, err := Aliases{SelectedPages: "[5,1,5,-2]"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, Selection{1, 5}, res.Pages)
	assert.Equal(t, []string{"-2"}, res.Dropped)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "pages", SourcePages.String())
	assert.Equal(t, "selectedPages", SourceSelectedPages.String())
	assert.Equal(t, "none", SourceNone.String())
}
