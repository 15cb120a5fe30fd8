package pagerange

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// Source names which request field an expression came from.
type Source int

const (
	SourceNone Source = iota
	SourcePages
	SourceRanges
	SourceSelectedPages
)

func (s Source) String() string {
	switch s {
	case SourcePages:
		return "pages"
	case SourceRanges:
		return "ranges"
	case SourceSelectedPages:
		return "selectedPages"
	default:
		return "none"
	}
}

// Expression is one resolved page selection alias.
type Expression struct {
	Source Source
	Raw    string
}

// Aliases holds the three accepted spellings of a page selection.
// SelectedPages is a JSON array of integers.
type Aliases struct {
	Pages         string
	Ranges        string
	SelectedPages string
}

// Resolve picks the first non-blank alias in priority order
// pages > ranges > selectedPages and returns it in comma-list form.
func (a Aliases) Resolve() (Expression, error) {
	candidates := []struct {
		source Source
		raw    string
	}{
		{SourcePages, a.Pages},
		{SourceRanges, a.Ranges},
		{SourceSelectedPages, a.SelectedPages},
	}

	for _, c := range candidates {
		if strings.TrimSpace(c.raw) == "" {
			continue
		}
		if c.source != SourceSelectedPages {
			return Expression{Source: c.source, Raw: c.raw}, nil
		}

		var pages []int
		if err := json.Unmarshal([]byte(c.raw), &pages); err != nil {
			return Expression{}, domain.ValidationError("Invalid selectedPages format", err)
		}
		if len(pages) == 0 {
			continue
		}
		parts := make([]string, len(pages))
		for i, p := range pages {
			parts[i] = strconv.Itoa(p)
		}
		return Expression{Source: c.source, Raw: strings.Join(parts, ",")}, nil
	}

	return Expression{}, domain.ValidationError("Please provide pages, ranges, or selectedPages", domain.ErrSelectionEmpty)
}

// Parse resolves the aliases and parses the winning expression.
func (a Aliases) Parse() (Result, error) {
	expr, err := a.Resolve()
	if err != nil {
		return Result{}, err
	}
	return ParseDetailed(expr.Raw)
}
