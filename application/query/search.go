package query

import (
	"sort"

	"policyapi/domain/policy"
)

// SearchRequest is the advanced search body: nested filters with OR-semantics
// arrays, optional sort and pagination.
type SearchRequest struct {
	Filters    SearchFilters `json:"filters"`
	Sort       SortSpec      `json:"sort"`
	Pagination PageRequest   `json:"pagination"`
}

// SearchFilters is the nested filter grammar of the search endpoint. Each
// array matches when the record value is a member of the set; the arrays
// combine with AND semantics.
type SearchFilters struct {
	States         []string      `json:"states,omitempty"`
	PolicyTypes    []string      `json:"policy_types,omitempty"`
	VehicleTypes   []string      `json:"vehicle_types,omitempty"`
	PolicyStatuses []string      `json:"policy_statuses,omitempty"`
	RiskRatings    []string      `json:"risk_ratings,omitempty"`
	PremiumRange   *NumericRange `json:"premium_range,omitempty"`
	DateRange      *DateRange    `json:"date_range,omitempty"`
	Compliance     string        `json:"compliance,omitempty"`
}

// NumericRange is an inclusive numeric range with optional bounds.
type NumericRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// DateRange bounds the start and end date fields, inclusive on both sides.
type DateRange struct {
	StartDateFrom string `json:"start_date_from,omitempty"`
	StartDateTo   string `json:"start_date_to,omitempty"`
	EndDateFrom   string `json:"end_date_from,omitempty"`
	EndDateTo     string `json:"end_date_to,omitempty"`
}

// SortSpec selects a post-filter sort. An unknown field silently disables
// sorting.
type SortSpec struct {
	Field string `json:"field,omitempty"`
	Order string `json:"order,omitempty"`
}

// Validate checks every provided filter value against the field invariants.
func (f SearchFilters) Validate() error {
	for _, s := range f.States {
		if err := policy.ValidateEnum(s, policy.ValidStates, "state"); err != nil {
			return err
		}
	}
	for _, t := range f.PolicyTypes {
		if err := policy.ValidateEnum(t, policy.ValidPolicyTypes, "policy_type"); err != nil {
			return err
		}
	}
	for _, v := range f.VehicleTypes {
		if err := policy.ValidateEnum(v, policy.ValidVehicleTypes, "vehicle_type"); err != nil {
			return err
		}
	}
	for _, s := range f.PolicyStatuses {
		if err := policy.ValidateEnum(s, policy.ValidPolicyStatuses, "policy_status"); err != nil {
			return err
		}
	}
	for _, r := range f.RiskRatings {
		if err := policy.ValidateEnum(r, policy.ValidRiskRatings, "risk_rating"); err != nil {
			return err
		}
	}
	if f.PremiumRange != nil {
		zero := 0.0
		if f.PremiumRange.Min != nil {
			if err := policy.ValidateNumber(*f.PremiumRange.Min, "premium_min", &zero, nil); err != nil {
				return err
			}
		}
		if f.PremiumRange.Max != nil {
			if err := policy.ValidateNumber(*f.PremiumRange.Max, "premium_max", &zero, nil); err != nil {
				return err
			}
		}
	}
	if f.DateRange != nil {
		for _, d := range []struct{ name, value string }{
			{"start_date_from", f.DateRange.StartDateFrom},
			{"start_date_to", f.DateRange.StartDateTo},
			{"end_date_from", f.DateRange.EndDateFrom},
			{"end_date_to", f.DateRange.EndDateTo},
		} {
			if d.value != "" {
				if err := policy.ValidateDate(d.value, d.name); err != nil {
					return err
				}
			}
		}
	}
	if f.Compliance != "" {
		if err := policy.ValidateEnum(f.Compliance, policy.ValidComplianceValues, "compliance"); err != nil {
			return err
		}
	}
	return nil
}

// SingleState reports whether the filters consist of exactly one state and
// nothing else, which allows the state index fast path.
func (f SearchFilters) SingleState() (string, bool) {
	if len(f.States) != 1 {
		return "", false
	}
	if len(f.PolicyTypes) != 0 || len(f.VehicleTypes) != 0 ||
		len(f.PolicyStatuses) != 0 || len(f.RiskRatings) != 0 ||
		f.PremiumRange != nil || f.DateRange != nil || f.Compliance != "" {
		return "", false
	}
	return f.States[0], true
}

// Applied returns the names of the provided filter dimensions, for search
// response metadata.
func (f SearchFilters) Applied() []string {
	applied := []string{}
	if len(f.States) > 0 {
		applied = append(applied, "states")
	}
	if len(f.PolicyTypes) > 0 {
		applied = append(applied, "policy_types")
	}
	if len(f.VehicleTypes) > 0 {
		applied = append(applied, "vehicle_types")
	}
	if len(f.PolicyStatuses) > 0 {
		applied = append(applied, "policy_statuses")
	}
	if len(f.RiskRatings) > 0 {
		applied = append(applied, "risk_ratings")
	}
	if f.PremiumRange != nil {
		applied = append(applied, "premium_range")
	}
	if f.DateRange != nil {
		applied = append(applied, "date_range")
	}
	if f.Compliance != "" {
		applied = append(applied, "compliance")
	}
	return applied
}

// Apply filters items down to the matching subset, preserving input order.
func (f SearchFilters) Apply(items []policy.Record) []policy.Record {
	filtered := items

	filtered = filterMember(filtered, f.States, func(r policy.Record) string { return r.State })
	filtered = filterMember(filtered, f.PolicyTypes, func(r policy.Record) string { return r.PolicyType })
	filtered = filterMember(filtered, f.VehicleTypes, func(r policy.Record) string { return r.VehicleType })
	filtered = filterMember(filtered, f.PolicyStatuses, func(r policy.Record) string { return r.PolicyStatus })
	filtered = filterMember(filtered, f.RiskRatings, func(r policy.Record) string { return r.RiskRating })

	if f.PremiumRange != nil {
		filtered = filterCurrencyRange(filtered, f.PremiumRange.Min, f.PremiumRange.Max,
			func(r policy.Record) string { return r.PremiumAmount })
	}
	if f.DateRange != nil {
		filtered = filterDate(filtered, f.DateRange.StartDateFrom, false, func(r policy.Record) string { return r.StartDate })
		filtered = filterDate(filtered, f.DateRange.StartDateTo, true, func(r policy.Record) string { return r.StartDate })
		filtered = filterDate(filtered, f.DateRange.EndDateFrom, false, func(r policy.Record) string { return r.EndDate })
		filtered = filterDate(filtered, f.DateRange.EndDateTo, true, func(r policy.Record) string { return r.EndDate })
	}

	filtered = filterEqual(filtered, f.Compliance, func(r policy.Record) string { return r.IsCompliant })

	return filtered
}

func filterMember(items []policy.Record, want []string, field func(policy.Record) string) []policy.Record {
	if len(want) == 0 {
		return items
	}
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}
	out := make([]policy.Record, 0, len(items))
	for _, it := range items {
		if _, ok := set[field(it)]; ok {
			out = append(out, it)
		}
	}
	return out
}

// sortableFields are the only fields sort may target.
var sortableFields = map[string]bool{
	"premium_amount": true,
	"start_date":     true,
	"end_date":       true,
	"last_updated":   true,
}

// SortRecords returns a copy of items ordered by the sort spec. It reports
// false when the field is unknown and sorting was skipped. premium_amount
// compares numerically after currency parsing; the date fields compare as raw
// strings. Ties keep their original relative order.
func SortRecords(items []policy.Record, spec SortSpec) ([]policy.Record, bool) {
	if spec.Field == "" {
		return items, true
	}
	if !sortableFields[spec.Field] {
		return items, false
	}

	out := make([]policy.Record, len(items))
	copy(out, items)

	var less func(a, b policy.Record) bool
	if spec.Field == "premium_amount" {
		key := func(r policy.Record) float64 {
			v, err := policy.ParseCurrency(r.PremiumAmount)
			if err != nil {
				return 0
			}
			return v
		}
		less = func(a, b policy.Record) bool { return key(a) < key(b) }
	} else {
		key := func(r policy.Record) string {
			switch spec.Field {
			case "start_date":
				return r.StartDate
			case "end_date":
				return r.EndDate
			default:
				return r.LastUpdated
			}
		}
		less = func(a, b policy.Record) bool { return key(a) < key(b) }
	}

	descending := spec.Order == "desc"
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, true
}

// PageRequest carries optional pagination parameters.
type PageRequest struct {
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`
}

// Pagination defaults and bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Clamp resolves the request to concrete bounds: limit defaults to 100 and is
// capped at 1000, offset defaults to 0 and is floored at 0.
func (p PageRequest) Clamp() (limit, offset int) {
	limit = DefaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit < 0 {
		limit = 0
	}
	if p.Offset != nil {
		offset = *p.Offset
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Paginate slices items for the page and reports the pre-pagination total and
// whether more pages follow.
func Paginate(items []policy.Record, limit, offset int) (page []policy.Record, total int, hasMore bool) {
	total = len(items)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return items[start:end], total, offset+limit < total
}
