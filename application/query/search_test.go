package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFiltersValidate(t *testing.T) {
	t.Run("empty filters valid", func(t *testing.T) {
		assert.NoError(t, SearchFilters{}.Validate())
	})

	t.Run("valid arrays", func(t *testing.T) {
		f := SearchFilters{
			States:      []string{"California", "Illinois"},
			PolicyTypes: []string{"Liability"},
			Compliance:  "TRUE",
		}
		assert.NoError(t, f.Validate())
	})

	t.Run("bad member rejected", func(t *testing.T) {
		err := SearchFilters{States: []string{"California", "Nevada"}}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid state value: Nevada")
	})

	t.Run("negative premium bound rejected", func(t *testing.T) {
		neg := -10.0
		err := SearchFilters{PremiumRange: &NumericRange{Min: &neg}}.Validate()
		assert.Error(t, err)
	})

	t.Run("bad date rejected", func(t *testing.T) {
		err := SearchFilters{DateRange: &DateRange{StartDateFrom: "2024/01/01"}}.Validate()
		assert.Error(t, err)
	})

	t.Run("bad compliance rejected", func(t *testing.T) {
		assert.Error(t, SearchFilters{Compliance: "yes"}.Validate())
	})
}

func TestSingleState(t *testing.T) {
	state, ok := SearchFilters{States: []string{"Illinois"}}.SingleState()
	assert.True(t, ok)
	assert.Equal(t, "Illinois", state)

	_, ok = SearchFilters{States: []string{"Illinois", "California"}}.SingleState()
	assert.False(t, ok)

	_, ok = SearchFilters{States: []string{"Illinois"}, Compliance: "TRUE"}.SingleState()
	assert.False(t, ok)

	_, ok = SearchFilters{}.SingleState()
	assert.False(t, ok)
}

func TestApplied(t *testing.T) {
	assert.Empty(t, SearchFilters{}.Applied())

	f := SearchFilters{
		States:       []string{"California"},
		RiskRatings:  []string{"High"},
		PremiumRange: &NumericRange{},
		Compliance:   "FALSE",
	}
	assert.Equal(t, []string{"states", "risk_ratings", "premium_range", "compliance"}, f.Applied())
}

func TestSearchFiltersApply(t *testing.T) {
	items := records()

	t.Run("array members OR within dimension", func(t *testing.T) {
		out := SearchFilters{PolicyTypes: []string{"Liability", "Collision"}}.Apply(items)
		assert.Len(t, out, 2)
	})

	t.Run("dimensions AND together", func(t *testing.T) {
		out := SearchFilters{
			States:      []string{"California"},
			RiskRatings: []string{"Medium"},
		}.Apply(items)
		require.Len(t, out, 1)
		assert.Equal(t, "a0000000-0000-4000-8000-000000000003", out[0].PolicyID)
	})

	t.Run("premium range", func(t *testing.T) {
		min := 2000.0
		out := SearchFilters{PremiumRange: &NumericRange{Min: &min}}.Apply(items)
		require.Len(t, out, 1)
		assert.Equal(t, "$2,400.50", out[0].PremiumAmount)
	})

	t.Run("compliance equality", func(t *testing.T) {
		out := SearchFilters{Compliance: "FALSE"}.Apply(items)
		require.Len(t, out, 1)
		assert.Equal(t, "Illinois", out[0].State)
	})
}

func TestSortRecords(t *testing.T) {
	items := records()

	t.Run("premium ascending compares numerically", func(t *testing.T) {
		out, ok := SortRecords(items, SortSpec{Field: "premium_amount", Order: "asc"})
		require.True(t, ok)
		assert.Equal(t, "$850", out[0].PremiumAmount)
		assert.Equal(t, "$2,400.50", out[2].PremiumAmount)
	})

	t.Run("premium descending", func(t *testing.T) {
		out, ok := SortRecords(items, SortSpec{Field: "premium_amount", Order: "desc"})
		require.True(t, ok)
		assert.Equal(t, "$2,400.50", out[0].PremiumAmount)
	})

	t.Run("start date ascending", func(t *testing.T) {
		out, ok := SortRecords(items, SortSpec{Field: "start_date"})
		require.True(t, ok)
		assert.Equal(t, "2023-06-15", out[0].StartDate)
	})

	t.Run("unknown field skips sorting", func(t *testing.T) {
		out, ok := SortRecords(items, SortSpec{Field: "notes"})
		assert.False(t, ok)
		assert.Equal(t, items, out)
	})

	t.Run("no field is a no-op", func(t *testing.T) {
		out, ok := SortRecords(items, SortSpec{})
		assert.True(t, ok)
		assert.Equal(t, items, out)
	})

	t.Run("input order untouched", func(t *testing.T) {
		_, _ = SortRecords(items, SortSpec{Field: "premium_amount", Order: "desc"})
		assert.Equal(t, "$1,200", items[0].PremiumAmount)
	})
}

func TestClamp(t *testing.T) {
	intp := func(v int) *int { return &v }

	limit, offset := PageRequest{}.Clamp()
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)

	limit, _ = PageRequest{Limit: intp(5000)}.Clamp()
	assert.Equal(t, 1000, limit)

	limit, offset = PageRequest{Limit: intp(-3), Offset: intp(-7)}.Clamp()
	assert.Equal(t, 0, limit)
	assert.Equal(t, 0, offset)

	limit, offset = PageRequest{Limit: intp(25), Offset: intp(50)}.Clamp()
	assert.Equal(t, 25, limit)
	assert.Equal(t, 50, offset)
}

func TestPaginate(t *testing.T) {
	items := records()

	t.Run("first page", func(t *testing.T) {
		page, total, hasMore := Paginate(items, 2, 0)
		assert.Len(t, page, 2)
		assert.Equal(t, 3, total)
		assert.True(t, hasMore)
	})

	t.Run("last page", func(t *testing.T) {
		page, total, hasMore := Paginate(items, 2, 2)
		assert.Len(t, page, 1)
		assert.Equal(t, 3, total)
		assert.False(t, hasMore)
	})

	t.Run("offset beyond end", func(t *testing.T) {
		page, total, hasMore := Paginate(items, 10, 99)
		assert.Empty(t, page)
		assert.Equal(t, 3, total)
		assert.False(t, hasMore)
	})

	t.Run("zero limit", func(t *testing.T) {
		page, _, hasMore := Paginate(items, 0, 0)
		assert.Empty(t, page)
		assert.True(t, hasMore)
	})
}
