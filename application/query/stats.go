package query

import (
	"math"

	"policyapi/domain/policy"
)

// Stats is the aggregate statistics response body.
type Stats struct {
	TotalPolicies  int      `json:"total_policies"`
	Summary        Summary  `json:"summary"`
	Averages       Averages `json:"averages"`
	Ranges         Ranges   `json:"ranges"`
	ComplianceRate float64  `json:"compliance_rate"`
}

// Summary holds counts grouped by each categorical dimension.
type Summary struct {
	ByState        map[string]int `json:"by_state"`
	ByPolicyType   map[string]int `json:"by_policy_type"`
	ByVehicleType  map[string]int `json:"by_vehicle_type"`
	ByPolicyStatus map[string]int `json:"by_policy_status"`
	ByRiskRating   map[string]int `json:"by_risk_rating"`
}

// Averages holds arithmetic means of the monetary fields.
type Averages struct {
	PremiumAmount float64 `json:"premium_amount"`
	CoverageLimit float64 `json:"coverage_limit"`
}

// MinMax is an observed value range. Zero on both ends when no records exist.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Ranges holds observed ranges of the monetary fields.
type Ranges struct {
	PremiumAmount MinMax `json:"premium_amount"`
	CoverageLimit MinMax `json:"coverage_limit"`
}

// ComputeStats aggregates the full record set. An empty set yields zeroes
// throughout; there is no division by zero.
func ComputeStats(items []policy.Record) Stats {
	stats := Stats{
		TotalPolicies: len(items),
		Summary: Summary{
			ByState:        countByField(items, func(r policy.Record) string { return r.State }),
			ByPolicyType:   countByField(items, func(r policy.Record) string { return r.PolicyType }),
			ByVehicleType:  countByField(items, func(r policy.Record) string { return r.VehicleType }),
			ByPolicyStatus: countByField(items, func(r policy.Record) string { return r.PolicyStatus }),
			ByRiskRating:   countByField(items, func(r policy.Record) string { return r.RiskRating }),
		},
	}

	premiums := currencyValues(items, func(r policy.Record) string { return r.PremiumAmount })
	coverages := currencyValues(items, func(r policy.Record) string { return r.CoverageLimit })

	stats.Averages.PremiumAmount = mean(premiums)
	stats.Averages.CoverageLimit = mean(coverages)
	stats.Ranges.PremiumAmount = minMax(premiums)
	stats.Ranges.CoverageLimit = minMax(coverages)

	if len(items) > 0 {
		compliant := 0
		for _, it := range items {
			if it.IsCompliant == "TRUE" {
				compliant++
			}
		}
		rate := float64(compliant) / float64(len(items)) * 100
		stats.ComplianceRate = math.Round(rate*100) / 100
	}

	return stats
}

func countByField(items []policy.Record, field func(policy.Record) string) map[string]int {
	result := make(map[string]int)
	for _, it := range items {
		value := field(it)
		if value == "" {
			value = "Unknown"
		}
		result[value]++
	}
	return result
}

// currencyValues parses a monetary field across the set. Unparseable values
// count as zero so one bad record cannot sink the aggregate.
func currencyValues(items []policy.Record, field func(policy.Record) string) []float64 {
	values := make([]float64, 0, len(items))
	for _, it := range items {
		v, err := policy.ParseCurrency(field(it))
		if err != nil {
			v = 0
		}
		values = append(values, v)
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minMax(values []float64) MinMax {
	if len(values) == 0 {
		return MinMax{}
	}
	m := MinMax{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < m.Min {
			m.Min = v
		}
		if v > m.Max {
			m.Max = v
		}
	}
	return m
}
