// Package pipeline derives the visible list of a screen from a fetched
// snapshot and the screen's FilterState.
package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"localpro/browse/internal/models"
)

// Apply returns the items that satisfy every active predicate of f, ordered
// by f.Sort. Ordering is stable; the input slice is never modified.
func Apply(items []models.Listing, f models.FilterState) []models.Listing {
	visible := make([]models.Listing, 0, len(items))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for i := range items {
		if matches(&items[i], f, q) {
			visible = append(visible, items[i])
		}
	}

	if less := Comparator(f.Sort); less != nil {
		slices.SortStableFunc(visible, func(a, b models.Listing) int {
			return less(&a, &b)
		})
	}
	return visible
}

// Matches reports whether item satisfies every active predicate of f.
func Matches(item *models.Listing, f models.FilterState) bool {
	return matches(item, f, strings.ToLower(strings.TrimSpace(f.Query)))
}

func matches(item *models.Listing, f models.FilterState, lowerQuery string) bool {
	if !models.IsUnset(f.Status) && !strings.EqualFold(item.Status, strings.TrimSpace(f.Status)) {
		return false
	}
	if !models.IsUnset(f.Category) && !strings.EqualFold(item.Category, strings.TrimSpace(f.Category)) {
		return false
	}
	if f.InStock != nil {
		if item.InStock == nil || *item.InStock != *f.InStock {
			return false
		}
	}
	if lowerQuery != "" && !containsFold(lowerQuery, item.Title, item.Description, item.Name) {
		return false
	}
	return true
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// Comparator returns the three-way comparator for a sort mode, or nil when
// the mode keeps the source order.
func Comparator(mode models.SortMode) func(a, b *models.Listing) int {
	switch mode {
	case models.SortPriceAsc:
		return func(a, b *models.Listing) int {
			return cmp.Compare(a.PriceValue(), b.PriceValue())
		}
	case models.SortPriceDesc:
		return func(a, b *models.Listing) int {
			return cmp.Compare(b.PriceValue(), a.PriceValue())
		}
	case models.SortNewest:
		return func(a, b *models.Listing) int {
			return b.Timestamp().Compare(a.Timestamp())
		}
	case models.SortRating:
		return func(a, b *models.Listing) int { return 0 }
	default:
		return nil
	}
}
