// Package pagerange parses page selection expressions such as "1-3,5,7-8".
package pagerange

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// MaxPageIndex bounds range expansion. Indices above it are discarded.
const MaxPageIndex = 100000

// Selection is a sorted, deduplicated set of 1-based page indices.
type Selection []int

// Strings formats the selection for engines that take page numbers as text.
func (s Selection) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = strconv.Itoa(p)
	}
	return out
}

// Within returns the indices that exist in a document with pageCount pages.
func (s Selection) Within(pageCount int) Selection {
	out := make(Selection, 0, len(s))
	for _, p := range s {
		if p <= pageCount {
			out = append(out, p)
		}
	}
	return out
}

// Result is a parsed selection plus the tokens that were discarded.
type Result struct {
	Pages   Selection
	Dropped []string
}

// Parse turns an expression into a Selection. Tokens that are not a positive
// integer or a valid "start-end" pair are discarded without error; only an
// empty result fails.
func Parse(expr string) (Selection, error) {
	res, err := ParseDetailed(expr)
	if err != nil {
		return nil, err
	}
	return res.Pages, nil
}

// ParseDetailed is Parse that also reports the discarded tokens.
func ParseDetailed(expr string) (Result, error) {
	seen := make(map[int]struct{})
	var dropped []string

	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !addToken(tok, seen) {
			dropped = append(dropped, tok)
		}
	}

	if len(seen) == 0 {
		return Result{Dropped: dropped}, domain.ValidationError("No valid pages specified", domain.ErrSelectionEmpty)
	}

	pages := make(Selection, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	return Result{Pages: pages, Dropped: dropped}, nil
}

// addToken adds the pages named by tok. For ranges only the first two
// dash-separated fields count, so "1-3-5" selects 1 through 3.
func addToken(tok string, seen map[int]struct{}) bool {
	if parts := strings.Split(tok, "-"); len(parts) > 1 {
		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return false
		}
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return false
		}
		if start <= 0 || end < start || start > MaxPageIndex {
			return false
		}
		end = min(end, MaxPageIndex)
		for i := start; i <= end; i++ {
			seen[i] = struct{}{}
		}
		return true
	}

	page, err := strconv.Atoi(tok)
	if err != nil || page <= 0 || page > MaxPageIndex {
		return false
	}
	seen[page] = struct{}{}
	return true
}
