// Package query implements the pure filter/sort/pagination/stats engine that
// runs over policy records after they are read from the backing table.
package query

import (
	"math"
	"net/url"
	"strconv"

	"policyapi/domain/policy"
	apperrors "policyapi/pkg/errors"
)

// ListFilters is the flat single-field filter grammar of the list endpoint.
// All filters combine with AND semantics.
type ListFilters struct {
	State          string
	PolicyStatus   string
	PolicyType     string
	VehicleType    string
	RiskRating     string
	Deductible     string
	IsCompliant    string
	AgentID        string
	CustomerID     string
	ProductVersion string

	PremiumMin       *float64
	PremiumMax       *float64
	CoverageLimitMin *float64
	CoverageLimitMax *float64

	StartDateFrom string
	StartDateTo   string
	EndDateFrom   string
	EndDateTo     string
}

// ParseListFilters extracts and validates list filters from query parameters.
// Unrecognized parameters are ignored.
func ParseListFilters(values url.Values) (ListFilters, error) {
	var f ListFilters

	f.State = values.Get("state")
	if f.State != "" {
		if err := policy.ValidateEnum(f.State, policy.ValidStates, "state"); err != nil {
			return f, err
		}
	}
	f.PolicyStatus = values.Get("policy_status")
	if f.PolicyStatus != "" {
		if err := policy.ValidateEnum(f.PolicyStatus, policy.ValidPolicyStatuses, "policy_status"); err != nil {
			return f, err
		}
	}
	f.PolicyType = values.Get("policy_type")
	if f.PolicyType != "" {
		if err := policy.ValidateEnum(f.PolicyType, policy.ValidPolicyTypes, "policy_type"); err != nil {
			return f, err
		}
	}
	f.VehicleType = values.Get("vehicle_type")
	if f.VehicleType != "" {
		if err := policy.ValidateEnum(f.VehicleType, policy.ValidVehicleTypes, "vehicle_type"); err != nil {
			return f, err
		}
	}
	f.RiskRating = values.Get("risk_rating")
	if f.RiskRating != "" {
		if err := policy.ValidateEnum(f.RiskRating, policy.ValidRiskRatings, "risk_rating"); err != nil {
			return f, err
		}
	}
	f.IsCompliant = values.Get("is_compliant")
	if f.IsCompliant != "" {
		if err := policy.ValidateEnum(f.IsCompliant, policy.ValidComplianceValues, "is_compliant"); err != nil {
			return f, err
		}
	}
	f.AgentID = values.Get("agent_id")
	if f.AgentID != "" {
		if err := policy.ValidateUUID(f.AgentID, "agent_id"); err != nil {
			return f, err
		}
	}
	f.CustomerID = values.Get("customer_id")
	if f.CustomerID != "" {
		if err := policy.ValidateUUID(f.CustomerID, "customer_id"); err != nil {
			return f, err
		}
	}
	f.ProductVersion = values.Get("product_version")
	if f.ProductVersion != "" {
		if err := policy.ValidateVersion(f.ProductVersion, "product_version"); err != nil {
			return f, err
		}
	}
	f.Deductible = values.Get("deductible")

	var err error
	if f.PremiumMin, err = parseBound(values, "premium_min"); err != nil {
		return f, err
	}
	if f.PremiumMax, err = parseBound(values, "premium_max"); err != nil {
		return f, err
	}
	if f.CoverageLimitMin, err = parseBound(values, "coverage_limit_min"); err != nil {
		return f, err
	}
	if f.CoverageLimitMax, err = parseBound(values, "coverage_limit_max"); err != nil {
		return f, err
	}

	for _, d := range []struct {
		param string
		dst   *string
	}{
		{"start_date_from", &f.StartDateFrom},
		{"start_date_to", &f.StartDateTo},
		{"end_date_from", &f.EndDateFrom},
		{"end_date_to", &f.EndDateTo},
	} {
		if v := values.Get(d.param); v != "" {
			if err := policy.ValidateDate(v, d.param); err != nil {
				return f, err
			}
			*d.dst = v
		}
	}

	return f, nil
}

// parseBound parses a non-negative numeric range bound.
func parseBound(values url.Values, param string) (*float64, error) {
	raw := values.Get(param)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationErrorf("Invalid %s value: %s. Must be a number", param, raw)
	}
	zero := 0.0
	if err := policy.ValidateNumber(v, param, &zero, nil); err != nil {
		return nil, err
	}
	return &v, nil
}

// OnlyState reports whether state is the only filter dimension set, which
// allows the state index fast path.
func (f ListFilters) OnlyState() (string, bool) {
	if f.State == "" {
		return "", false
	}
	rest := f
	rest.State = ""
	if rest != (ListFilters{}) {
		return "", false
	}
	return f.State, true
}

// OnlyPolicyStatus reports whether policy_status is the only filter dimension
// set, which allows the status index fast path.
func (f ListFilters) OnlyPolicyStatus() (string, bool) {
	if f.PolicyStatus == "" {
		return "", false
	}
	rest := f
	rest.PolicyStatus = ""
	if rest != (ListFilters{}) {
		return "", false
	}
	return f.PolicyStatus, true
}

// Apply filters items down to the subset matching every set filter,
// preserving input order.
func (f ListFilters) Apply(items []policy.Record) []policy.Record {
	filtered := items

	filtered = filterEqual(filtered, f.State, func(r policy.Record) string { return r.State })
	filtered = filterEqual(filtered, f.PolicyStatus, func(r policy.Record) string { return r.PolicyStatus })
	filtered = filterEqual(filtered, f.PolicyType, func(r policy.Record) string { return r.PolicyType })
	filtered = filterEqual(filtered, f.VehicleType, func(r policy.Record) string { return r.VehicleType })
	filtered = filterEqual(filtered, f.RiskRating, func(r policy.Record) string { return r.RiskRating })
	filtered = filterEqual(filtered, f.Deductible, func(r policy.Record) string { return r.Deductible })
	filtered = filterEqual(filtered, f.IsCompliant, func(r policy.Record) string { return r.IsCompliant })
	filtered = filterEqual(filtered, f.AgentID, func(r policy.Record) string { return r.AgentID })
	filtered = filterEqual(filtered, f.CustomerID, func(r policy.Record) string { return r.CustomerID })
	filtered = filterEqual(filtered, f.ProductVersion, func(r policy.Record) string { return r.ProductVersion })

	if f.PremiumMin != nil || f.PremiumMax != nil {
		filtered = filterCurrencyRange(filtered, f.PremiumMin, f.PremiumMax,
			func(r policy.Record) string { return r.PremiumAmount })
	}
	if f.CoverageLimitMin != nil || f.CoverageLimitMax != nil {
		filtered = filterCurrencyRange(filtered, f.CoverageLimitMin, f.CoverageLimitMax,
			func(r policy.Record) string { return r.CoverageLimit })
	}

	filtered = filterDate(filtered, f.StartDateFrom, false, func(r policy.Record) string { return r.StartDate })
	filtered = filterDate(filtered, f.StartDateTo, true, func(r policy.Record) string { return r.StartDate })
	filtered = filterDate(filtered, f.EndDateFrom, false, func(r policy.Record) string { return r.EndDate })
	filtered = filterDate(filtered, f.EndDateTo, true, func(r policy.Record) string { return r.EndDate })

	return filtered
}

func filterEqual(items []policy.Record, want string, field func(policy.Record) string) []policy.Record {
	if want == "" {
		return items
	}
	out := make([]policy.Record, 0, len(items))
	for _, it := range items {
		if field(it) == want {
			out = append(out, it)
		}
	}
	return out
}

// filterCurrencyRange keeps items whose parsed amount falls inside the
// inclusive bounds. Items with unparseable amounts are excluded.
func filterCurrencyRange(items []policy.Record, min, max *float64, field func(policy.Record) string) []policy.Record {
	lo := 0.0
	if min != nil {
		lo = *min
	}
	hi := math.Inf(1)
	if max != nil {
		hi = *max
	}
	out := make([]policy.Record, 0, len(items))
	for _, it := range items {
		amount, err := policy.ParseCurrency(field(it))
		if err != nil {
			continue
		}
		if amount >= lo && amount <= hi {
			out = append(out, it)
		}
	}
	return out
}

// filterDate compares the fixed-width YYYY-MM-DD strings lexicographically,
// which orders correctly because the format is zero-padded.
func filterDate(items []policy.Record, bound string, upper bool, field func(policy.Record) string) []policy.Record {
	if bound == "" {
		return items
	}
	out := make([]policy.Record, 0, len(items))
	for _, it := range items {
		v := field(it)
		if upper {
			if v <= bound {
				out = append(out, it)
			}
		} else {
			if v >= bound {
				out = append(out, it)
			}
		}
	}
	return out
}
