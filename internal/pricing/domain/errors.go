package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoApplicableRule = errors.New("no_applicable_rule")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidTerm      = errors.New("invalid_term_years")
	ErrInvalidPlanRef   = errors.New("invalid_plan_reference")
)

// ConfigurationWarning marks a non-fatal catalog defect detected during
// resolution. Resolution continues with the safe fallback and the
// warning rides along on the result.
func ConfigurationWarning(format string, args ...any) string {
	return "configuration_warning: " + fmt.Sprintf(format, args...)
}
