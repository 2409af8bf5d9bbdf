// Package policy holds the insurance policy record and its field invariants.
package policy

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Record represents one insurance policy as stored in the policy table.
//
// Monetary fields are currency strings ("$1,200") and date fields are
// fixed-width YYYY-MM-DD strings. The date format is what makes the
// lexicographic range comparisons in the query engine sound, so it is
// enforced at the boundary rather than converted to time.Time.
type Record struct {
	PolicyID       string `json:"policy_id" dynamodbav:"policy_id"`
	CustomerID     string `json:"customer_id" dynamodbav:"customer_id"`
	AgentID        string `json:"agent_id" dynamodbav:"agent_id"`
	PolicyType     string `json:"policy_type" dynamodbav:"policy_type"`
	VehicleType    string `json:"vehicle_type" dynamodbav:"vehicle_type"`
	PolicyStatus   string `json:"policy_status" dynamodbav:"policy_status"`
	PremiumAmount  string `json:"premium_amount,omitempty" dynamodbav:"premium_amount,omitempty"`
	Deductible     string `json:"deductible,omitempty" dynamodbav:"deductible,omitempty"`
	CoverageLimit  string `json:"coverage_limit,omitempty" dynamodbav:"coverage_limit,omitempty"`
	State          string `json:"state,omitempty" dynamodbav:"state,omitempty"`
	RiskRating     string `json:"risk_rating,omitempty" dynamodbav:"risk_rating,omitempty"`
	StartDate      string `json:"start_date,omitempty" dynamodbav:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty" dynamodbav:"end_date,omitempty"`
	LastUpdated    string `json:"last_updated,omitempty" dynamodbav:"last_updated,omitempty"`
	IsCompliant    string `json:"is_compliant,omitempty" dynamodbav:"is_compliant,omitempty"`
	ProductVersion string `json:"product_version,omitempty" dynamodbav:"product_version,omitempty"`
	Notes          string `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// Valid enum value sets.
var (
	ValidStates           = []string{"California", "Illinois"}
	ValidPolicyTypes      = []string{"Liability", "Collision", "Comprehensive", "Full Coverage"}
	ValidVehicleTypes     = []string{"Motorcycle", "SUV", "Sedan", "Truck"}
	ValidPolicyStatuses   = []string{"Active", "Lapsed", "Cancelled"}
	ValidRiskRatings      = []string{"Low", "Medium", "High"}
	ValidComplianceValues = []string{"TRUE", "FALSE"}
)

// DateLayout is the fixed-width date format used by every date field.
const DateLayout = "2006-01-02"

// sanitizePattern strips anything outside the permitted punctuation/alnum
// allowlist before a value is persisted. Letter and digit classes are
// Unicode-aware so accented names survive sanitization.
var sanitizePattern = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,;:@#$%^&*()\[\]{}|/<>'"=+!?]`)

// currencyPattern matches the characters stripped when parsing money strings.
var currencyPattern = regexp.MustCompile(`[$,]`)

// Sanitize strips disallowed characters from a single string value.
func Sanitize(value string) string {
	return sanitizePattern.ReplaceAllString(value, "")
}

// Sanitized returns a copy of the record with every field run through
// Sanitize. Validation always sees the raw input; only the persisted copy is
// sanitized.
func (r Record) Sanitized() Record {
	r.PolicyID = Sanitize(r.PolicyID)
	r.CustomerID = Sanitize(r.CustomerID)
	r.AgentID = Sanitize(r.AgentID)
	r.PolicyType = Sanitize(r.PolicyType)
	r.VehicleType = Sanitize(r.VehicleType)
	r.PolicyStatus = Sanitize(r.PolicyStatus)
	r.PremiumAmount = Sanitize(r.PremiumAmount)
	r.Deductible = Sanitize(r.Deductible)
	r.CoverageLimit = Sanitize(r.CoverageLimit)
	r.State = Sanitize(r.State)
	r.RiskRating = Sanitize(r.RiskRating)
	r.StartDate = Sanitize(r.StartDate)
	r.EndDate = Sanitize(r.EndDate)
	r.LastUpdated = Sanitize(r.LastUpdated)
	r.IsCompliant = Sanitize(r.IsCompliant)
	r.ProductVersion = Sanitize(r.ProductVersion)
	r.Notes = Sanitize(r.Notes)
	return r
}

// ParseCurrency parses a currency string ("$1,200") to a float. An empty
// string parses to zero.
func ParseCurrency(amount string) (float64, error) {
	if amount == "" {
		return 0, nil
	}
	cleaned := currencyPattern.ReplaceAllString(strings.TrimSpace(amount), "")
	return strconv.ParseFloat(cleaned, 64)
}

// Today returns the current UTC date in the record date format. Used to stamp
// last_updated on writes.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}
