package query

import (
	"net/url"
	"testing"

	"policyapi/domain/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []policy.Record {
	return []policy.Record{
		{
			PolicyID:      "a0000000-0000-4000-8000-000000000001",
			State:         "California",
			PolicyStatus:  "Active",
			PolicyType:    "Liability",
			VehicleType:   "Sedan",
			RiskRating:    "Low",
			IsCompliant:   "TRUE",
			PremiumAmount: "$1,200",
			CoverageLimit: "$50,000",
			StartDate:     "2024-01-01",
			EndDate:       "2024-12-31",
		},
		{
			PolicyID:      "a0000000-0000-4000-8000-000000000002",
			State:         "Illinois",
			PolicyStatus:  "Lapsed",
			PolicyType:    "Collision",
			VehicleType:   "Truck",
			RiskRating:    "High",
			IsCompliant:   "FALSE",
			PremiumAmount: "$850",
			CoverageLimit: "$25,000",
			StartDate:     "2023-06-15",
			EndDate:       "2024-06-14",
		},
		{
			PolicyID:      "a0000000-0000-4000-8000-000000000003",
			State:         "California",
			PolicyStatus:  "Active",
			PolicyType:    "Full Coverage",
			VehicleType:   "SUV",
			RiskRating:    "Medium",
			IsCompliant:   "TRUE",
			PremiumAmount: "$2,400.50",
			CoverageLimit: "$100,000",
			StartDate:     "2024-03-20",
		},
	}
}

func TestParseListFilters(t *testing.T) {
	t.Run("valid filters", func(t *testing.T) {
		f, err := ParseListFilters(url.Values{
			"state":         {"California"},
			"policy_status": {"Active"},
			"premium_min":   {"100"},
			"premium_max":   {"5000"},
			"start_date_from": {"2024-01-01"},
		})
		require.NoError(t, err)
		assert.Equal(t, "California", f.State)
		assert.Equal(t, "Active", f.PolicyStatus)
		require.NotNil(t, f.PremiumMin)
		assert.Equal(t, 100.0, *f.PremiumMin)
		assert.Equal(t, "2024-01-01", f.StartDateFrom)
	})

	t.Run("invalid enum", func(t *testing.T) {
		_, err := ParseListFilters(url.Values{"state": {"Texas"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid state value")
	})

	t.Run("invalid uuid", func(t *testing.T) {
		_, err := ParseListFilters(url.Values{"agent_id": {"abc"}})
		assert.Error(t, err)
	})

	t.Run("non-numeric bound", func(t *testing.T) {
		_, err := ParseListFilters(url.Values{"premium_min": {"cheap"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Must be a number")
	})

	t.Run("negative bound", func(t *testing.T) {
		_, err := ParseListFilters(url.Values{"premium_min": {"-5"}})
		assert.Error(t, err)
	})

	t.Run("bad date format", func(t *testing.T) {
		_, err := ParseListFilters(url.Values{"start_date_from": {"01/01/2024"}})
		assert.Error(t, err)
	})

	t.Run("unknown parameters ignored", func(t *testing.T) {
		f, err := ParseListFilters(url.Values{"sort_by": {"premium"}})
		require.NoError(t, err)
		assert.Equal(t, ListFilters{}, f)
	})
}

func TestOnlyStateFastPath(t *testing.T) {
	state, ok := ListFilters{State: "California"}.OnlyState()
	assert.True(t, ok)
	assert.Equal(t, "California", state)

	_, ok = ListFilters{State: "California", RiskRating: "Low"}.OnlyState()
	assert.False(t, ok)

	_, ok = ListFilters{}.OnlyState()
	assert.False(t, ok)

	min := 100.0
	_, ok = ListFilters{State: "California", PremiumMin: &min}.OnlyState()
	assert.False(t, ok)
}

func TestOnlyPolicyStatusFastPath(t *testing.T) {
	status, ok := ListFilters{PolicyStatus: "Active"}.OnlyPolicyStatus()
	assert.True(t, ok)
	assert.Equal(t, "Active", status)

	_, ok = ListFilters{PolicyStatus: "Active", State: "Illinois"}.OnlyPolicyStatus()
	assert.False(t, ok)
}

func TestListFiltersApply(t *testing.T) {
	items := records()

	t.Run("equality", func(t *testing.T) {
		out := ListFilters{State: "California"}.Apply(items)
		require.Len(t, out, 2)
		assert.Equal(t, "a0000000-0000-4000-8000-000000000001", out[0].PolicyID)
	})

	t.Run("combined filters AND", func(t *testing.T) {
		out := ListFilters{State: "California", VehicleType: "SUV"}.Apply(items)
		require.Len(t, out, 1)
		assert.Equal(t, "a0000000-0000-4000-8000-000000000003", out[0].PolicyID)
	})

	t.Run("premium range from currency strings", func(t *testing.T) {
		min, max := 1000.0, 2000.0
		out := ListFilters{PremiumMin: &min, PremiumMax: &max}.Apply(items)
		require.Len(t, out, 1)
		assert.Equal(t, "$1,200", out[0].PremiumAmount)
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		min := 850.0
		out := ListFilters{PremiumMin: &min}.Apply(items)
		assert.Len(t, out, 3)
	})

	t.Run("date lower bound excludes empty field", func(t *testing.T) {
		out := ListFilters{EndDateFrom: "2024-01-01"}.Apply(items)
		require.Len(t, out, 2)
		for _, r := range out {
			assert.NotEmpty(t, r.EndDate)
		}
	})

	t.Run("date upper bound includes empty field", func(t *testing.T) {
		out := ListFilters{EndDateTo: "2024-12-31"}.Apply(items)
		assert.Len(t, out, 3)
	})

	t.Run("no filters returns everything", func(t *testing.T) {
		assert.Len(t, ListFilters{}.Apply(items), 3)
	})
}
