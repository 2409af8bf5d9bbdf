package policy

import (
	"regexp"
	"strings"

	apperrors "policyapi/pkg/errors"
)

// Field format patterns pinned by the wire contract.
var (
	uuidPattern    = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	versionPattern = regexp.MustCompile(`^v\d+\.\d+$`)
)

// ValidateUUID checks UUID format (case-insensitive).
func ValidateUUID(value, fieldName string) error {
	if !uuidPattern.MatchString(value) {
		return apperrors.NewValidationErrorf("Invalid %s format. Must be a valid UUID", fieldName)
	}
	return nil
}

// ValidateEnum checks membership in a fixed value set.
func ValidateEnum(value string, validValues []string, fieldName string) error {
	for _, v := range validValues {
		if value == v {
			return nil
		}
	}
	return apperrors.NewValidationErrorf("Invalid %s value: %s. Must be one of: %s",
		fieldName, value, strings.Join(validValues, ", "))
}

// ValidateDate checks the YYYY-MM-DD shape. Calendar validity is deliberately
// not checked; "2024-99-99" passes.
func ValidateDate(value, fieldName string) error {
	if !datePattern.MatchString(value) {
		return apperrors.NewValidationErrorf("Invalid %s format. Use YYYY-MM-DD format", fieldName)
	}
	return nil
}

// ValidateNumber checks a numeric value against optional inclusive bounds.
func ValidateNumber(value float64, fieldName string, min, max *float64) error {
	if min != nil && value < *min {
		return apperrors.NewValidationErrorf("%s must be >= %v", fieldName, *min)
	}
	if max != nil && value > *max {
		return apperrors.NewValidationErrorf("%s must be <= %v", fieldName, *max)
	}
	return nil
}

// ValidateVersion checks the v<major>.<minor> shape.
func ValidateVersion(value, fieldName string) error {
	if !versionPattern.MatchString(value) {
		return apperrors.NewValidationErrorf("Invalid %s format: %s. Must match pattern v#.#", fieldName, value)
	}
	return nil
}

// ValidateForCreate checks the fields required to create a record plus the
// enum and UUID invariants on them.
func (r Record) ValidateForCreate() error {
	required := []struct {
		name  string
		value string
	}{
		{"policy_id", r.PolicyID},
		{"customer_id", r.CustomerID},
		{"agent_id", r.AgentID},
		{"policy_type", r.PolicyType},
		{"vehicle_type", r.VehicleType},
		{"policy_status", r.PolicyStatus},
	}
	for _, f := range required {
		if f.value == "" {
			return apperrors.NewValidationErrorf("Missing required field: %s", f.name)
		}
	}

	if err := ValidateEnum(r.PolicyType, ValidPolicyTypes, "policy_type"); err != nil {
		return err
	}
	if err := ValidateEnum(r.VehicleType, ValidVehicleTypes, "vehicle_type"); err != nil {
		return err
	}
	if err := ValidateEnum(r.PolicyStatus, ValidPolicyStatuses, "policy_status"); err != nil {
		return err
	}

	if err := ValidateUUID(r.PolicyID, "policy_id"); err != nil {
		return err
	}
	if err := ValidateUUID(r.CustomerID, "customer_id"); err != nil {
		return err
	}
	return ValidateUUID(r.AgentID, "agent_id")
}

// ValidateForUpdate checks whichever constrained fields are present. Updates
// are full replaces, but absent fields simply replace with empty.
func (r Record) ValidateForUpdate() error {
	if r.PolicyType != "" {
		if err := ValidateEnum(r.PolicyType, ValidPolicyTypes, "policy_type"); err != nil {
			return err
		}
	}
	if r.VehicleType != "" {
		if err := ValidateEnum(r.VehicleType, ValidVehicleTypes, "vehicle_type"); err != nil {
			return err
		}
	}
	if r.PolicyStatus != "" {
		if err := ValidateEnum(r.PolicyStatus, ValidPolicyStatuses, "policy_status"); err != nil {
			return err
		}
	}
	if r.CustomerID != "" {
		if err := ValidateUUID(r.CustomerID, "customer_id"); err != nil {
			return err
		}
	}
	if r.AgentID != "" {
		if err := ValidateUUID(r.AgentID, "agent_id"); err != nil {
			return err
		}
	}
	return nil
}
