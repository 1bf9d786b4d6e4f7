package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"localpro/browse/internal/models"
)

func price(v float64) *float64 { return &v }
func flag(v bool) *bool        { return &v }

func ids(items []models.Listing) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestApply_PriceSortIsStable(t *testing.T) {
	items := []models.Listing{
		{ID: "1", Price: price(10)},
		{ID: "2", Price: price(5)},
		{ID: "3", Price: price(10)},
	}

	asc := Apply(items, models.FilterState{Sort: models.SortPriceAsc})
	assert.Equal(t, []string{"2", "1", "3"}, ids(asc))

	desc := Apply(items, models.FilterState{Sort: models.SortPriceDesc})
	assert.Equal(t, []string{"1", "3", "2"}, ids(desc))

	// source untouched
	assert.Equal(t, []string{"1", "2", "3"}, ids(items))
}

func TestApply_AscThenDescReversesDistinctPrices(t *testing.T) {
	items := []models.Listing{
		{ID: "a", Price: price(7)},
		{ID: "b", Price: price(1)},
		{ID: "c", Price: price(42)},
		{ID: "d", Price: price(3.5)},
	}

	asc := ids(Apply(items, models.FilterState{Sort: models.SortPriceAsc}))
	desc := ids(Apply(items, models.FilterState{Sort: models.SortPriceDesc}))

	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestApply_MissingPriceSortsAsZero(t *testing.T) {
	items := []models.Listing{
		{ID: "priced", Price: price(2)},
		{ID: "free"},
	}
	got := Apply(items, models.FilterState{Sort: models.SortPriceAsc})
	assert.Equal(t, []string{"free", "priced"}, ids(got))
}

func TestApply_NewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := base.Add(48 * time.Hour)
	items := []models.Listing{
		{ID: "old", CreatedAt: base},
		{ID: "booked", CreatedAt: base, ScheduledAt: &later},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
		{ID: "zero"},
	}
	got := Apply(items, models.FilterState{Sort: models.SortNewest})
	assert.Equal(t, []string{"booked", "mid", "old", "zero"}, ids(got))
}

func TestApply_RatingKeepsOrder(t *testing.T) {
	items := []models.Listing{{ID: "x", Rating: 1}, {ID: "y", Rating: 5}, {ID: "z", Rating: 3}}
	got := Apply(items, models.FilterState{Sort: models.SortRating})
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))

	got = Apply(items, models.FilterState{Sort: "popularity"})
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))
}

func TestApply_AllPredicateIsSkipped(t *testing.T) {
	items := []models.Listing{
		{ID: "1", Status: "open", Category: "plumbing"},
		{ID: "2", Status: "closed", Category: "plumbing"},
		{ID: "3", Status: "open", Category: "electrical"},
	}

	withAll := Apply(items, models.FilterState{Status: "all", Category: "plumbing"})
	withoutStatus := Apply(items, models.FilterState{Category: "plumbing"})
	assert.Equal(t, ids(withoutStatus), ids(withAll))
	assert.Equal(t, []string{"1", "2"}, ids(withAll))

	assert.Len(t, Apply(items, models.FilterState{Status: "ALL", Category: "All"}), 3)
}

func TestApply_CombinedPredicates(t *testing.T) {
	items := []models.Listing{
		{ID: "1", Title: "Cordless Drill", Category: "tools", InStock: flag(true), Price: price(80)},
		{ID: "2", Title: "Hammer drill", Category: "tools", InStock: flag(false), Price: price(120)},
		{ID: "3", Name: "Drill bits", Category: "accessories", InStock: flag(true), Price: price(10)},
		{ID: "4", Description: "heavy DRILL press", Category: "tools", InStock: flag(true), Price: price(300)},
		{ID: "5", Title: "Ladder", Category: "tools", InStock: flag(true), Price: price(60)},
		{ID: "6", Title: "drill without stock info", Category: "tools"},
	}

	got := Apply(items, models.FilterState{
		Category: "Tools",
		Query:    " drill ",
		InStock:  flag(true),
		Sort:     models.SortPriceDesc,
	})
	assert.Equal(t, []string{"4", "1"}, ids(got))
}

func TestApply_StatusIsCaseInsensitive(t *testing.T) {
	items := []models.Listing{{ID: "1", Status: "Pending"}, {ID: "2", Status: "confirmed"}}
	assert.Equal(t, []string{"1"}, ids(Apply(items, models.FilterState{Status: "pending"})))
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, models.FilterState{Query: "x", Sort: models.SortNewest})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_VisibleIsSubsetOfSource(t *testing.T) {
	items := []models.Listing{
		{ID: "1", Title: "Garden hose", Status: "active"},
		{ID: "2", Title: "Hose reel", Status: "sold"},
		{ID: "3", Title: "Rake", Status: "active"},
	}
	src := map[string]bool{}
	for _, it := range items {
		src[it.ID] = true
	}
	for _, f := range []models.FilterState{
		{}, {Query: "hose"}, {Status: "active"}, {Status: "active", Query: "HOSE"}, {Query: "nothing"},
	} {
		for _, it := range Apply(items, f) {
			assert.True(t, src[it.ID])
			assert.True(t, Matches(&it, f))
		}
	}
}
