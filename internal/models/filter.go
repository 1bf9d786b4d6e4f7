package models

import "strings"

// SortMode selects the comparator applied to a list view.
type SortMode string

const (
	SortNone      SortMode = ""
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNewest    SortMode = "newest"
	SortRating    SortMode = "rating" // not implemented by the catalog; keeps source order
)

// FilterAll is the UI value meaning "do not filter on this field".
const FilterAll = "all"

// FilterState is the transient set of filter/sort selections of one screen.
// Zero values mean the predicate is not applied. It is never persisted.
type FilterState struct {
	Status   string   `json:"status,omitempty"`
	Category string   `json:"category,omitempty"`
	Query    string   `json:"query,omitempty"`
	Sort     SortMode `json:"sort,omitempty"`
	InStock  *bool    `json:"in_stock,omitempty"`
}

// IsUnset reports whether a status/category selection should be skipped.
func IsUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, FilterAll)
}

// FetchFilter is the optional filter bag accepted by the listing fetch call.
type FetchFilter struct {
	OwnerID  string
	Status   string
	Category string
	Search   string
	Sort     SortMode
	Page     int // 1-based
	Limit    int
}

// FetchFilterFrom derives the server-side filter bag from a screen's state.
func FetchFilterFrom(f FilterState, ownerID string) FetchFilter {
	ff := FetchFilter{
		OwnerID: ownerID,
		Search:  strings.TrimSpace(f.Query),
		Sort:    f.Sort,
	}
	if !IsUnset(f.Status) {
		ff.Status = f.Status
	}
	if !IsUnset(f.Category) {
		ff.Category = f.Category
	}
	return ff
}
