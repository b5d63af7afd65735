package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/bookvault/bookvault-server/internal/domain"
	"golang.org/x/text/cases"
)

// MergeCategoryCounts normalises raw per-category counts from a backend:
// blank categories become domain.CategoryUnknown, duplicates are summed,
// zero counts are dropped and the result is sorted by category name.
func MergeCategoryCounts(raw []domain.CategoryCount) []domain.CategoryCount {
	totals := make(map[string]int64, len(raw))
	for _, c := range raw {
		name := strings.TrimSpace(c.Category)
		if name == "" {
			name = domain.CategoryUnknown
		}
		totals[name] += c.Count
	}

	out := make([]domain.CategoryCount, 0, len(totals))
	for name, count := range totals {
		if count > 0 {
			out = append(out, domain.CategoryCount{Category: name, Count: count})
		}
	}
	slices.SortFunc(out, func(a, b domain.CategoryCount) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Fold returns the case-folded form of s used for case-insensitive
// substring search. A new caser is built per call; cases.Caser is not safe
// for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}
