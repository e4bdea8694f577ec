/*
Package factory provides JSON to Go conversion for payroll rules.

PURPOSE:
  Converts a JSON rules document into a validated payroll.FormulaSet and
  severance.Params. The payroll office can change the quincena multiplier
  or the utilidades days without a code change.

JSON SCHEMA:
  {
    "formula": {
      "base": "v2",
      "weekdays_per_cycle": 5,
      "weekend_premium_multiplier": 2,
      "biweekly_multiplier": 2.14,
      "extra_hour_mode": "flat",
      "extra_hour_rate": 2,
      "extra_hour_multiplier": 1.5,
      "hours_per_day": 8
    },
    "legal": {
      "utility_days_per_year": 30,
      "vacation_base_days": 15
    }
  }

  Every field is optional. "base" selects the formula version the other
  fields override (v2 if omitted). A missing "legal" block means
  DefaultParams; a missing vacation_base_days means the progressive
  schedule.

KEY FEATURES:
  - Rejects unknown fields and unknown base versions
  - Validates the result (out-of-range values are errors, never clamped)
  - Overridden formulas get a derived version tag ("v2+custom"); a field
    restating the base value is not an override
  - ToJSON output parses back to the same rules

USAGE:
  f := factory.NewRulesFactory()
  formula, params, err := f.ParseRules(jsonString)
  calc, err := payroll.NewCalculator(formula, params)

SEE ALSO:
  - payroll/formula.go: FormulaSet
  - severance/params.go: Params
  - config/config.go: PAYROLL_RULES_FILE
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/severance"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RulesJSON is the JSON representation of the payroll rules.
type RulesJSON struct {
	Formula *FormulaJSON `json:"formula,omitempty"`
	Legal   *LegalJSON   `json:"legal,omitempty"`
}

// FormulaJSON overrides fields of a base formula version.
type FormulaJSON struct {
	Base                     string           `json:"base,omitempty"`
	WeekdaysPerCycle         *int             `json:"weekdays_per_cycle,omitempty"`
	WeekendPremiumMultiplier *decimal.Decimal `json:"weekend_premium_multiplier,omitempty"`
	BiweeklyMultiplier       *decimal.Decimal `json:"biweekly_multiplier,omitempty"`
	ExtraHourMode            *string          `json:"extra_hour_mode,omitempty"`
	ExtraHourRate            *decimal.Decimal `json:"extra_hour_rate,omitempty"`
	ExtraHourMultiplier      *decimal.Decimal `json:"extra_hour_multiplier,omitempty"`
	HoursPerDay              *int             `json:"hours_per_day,omitempty"`
}

// LegalJSON holds the LOTTT parameters.
type LegalJSON struct {
	UtilityDaysPerYear *int `json:"utility_days_per_year,omitempty"`
	VacationBaseDays   *int `json:"vacation_base_days,omitempty"`
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts JSON rules to a formula set and legal parameters.
type RulesFactory struct{}

// NewRulesFactory creates a new rules factory.
func NewRulesFactory() *RulesFactory {
	return &RulesFactory{}
}

// ParseRules parses a JSON string.
func (f *RulesFactory) ParseRules(jsonStr string) (payroll.FormulaSet, severance.Params, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.DisallowUnknownFields()
	var rj RulesJSON
	if err := dec.Decode(&rj); err != nil {
		return payroll.FormulaSet{}, severance.Params{}, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// ParseRulesFile reads and parses a rules document from disk.
func (f *RulesFactory) ParseRulesFile(path string) (payroll.FormulaSet, severance.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.FormulaSet{}, severance.Params{}, fmt.Errorf("read rules file: %w", err)
	}
	return f.ParseRules(string(data))
}

// FromJSON builds and validates the rules.
func (f *RulesFactory) FromJSON(rj RulesJSON) (payroll.FormulaSet, severance.Params, error) {
	formula, err := f.formula(rj.Formula)
	if err != nil {
		return payroll.FormulaSet{}, severance.Params{}, err
	}
	params, err := f.legal(rj.Legal)
	if err != nil {
		return payroll.FormulaSet{}, severance.Params{}, err
	}
	return formula, params, nil
}

// ToJSON converts rules back to their JSON form with every field explicit.
// The output parses back to the same rules: base is the built-in version the
// set derives from, and restated base values do not mark it custom.
func (f *RulesFactory) ToJSON(formula payroll.FormulaSet, params severance.Params) RulesJSON {
	mode := string(formula.ExtraHourMode)
	utility := params.UtilityDaysPerYear
	rj := RulesJSON{
		Formula: &FormulaJSON{
			Base:                     strings.TrimSuffix(formula.Version, customSuffix),
			WeekdaysPerCycle:         &formula.WeekdaysPerCycle,
			WeekendPremiumMultiplier: &formula.WeekendPremiumMultiplier,
			BiweeklyMultiplier:       &formula.BiweeklyMultiplier,
			ExtraHourMode:            &mode,
			ExtraHourRate:            &formula.ExtraHourRate,
			ExtraHourMultiplier:      &formula.ExtraHourMultiplier,
			HoursPerDay:              &formula.HoursPerDay,
		},
		Legal: &LegalJSON{UtilityDaysPerYear: &utility},
	}
	if params.VacationBaseDays != nil {
		v := *params.VacationBaseDays
		rj.Legal.VacationBaseDays = &v
	}
	return rj
}

const customSuffix = "+custom"

// sameConstants compares every constant except Version. Decimals compare by
// value so "2" and "2.0" are the same multiplier.
func sameConstants(a, b payroll.FormulaSet) bool {
	return a.WeekdaysPerCycle == b.WeekdaysPerCycle &&
		a.WeekendPremiumMultiplier.Equal(b.WeekendPremiumMultiplier) &&
		a.BiweeklyMultiplier.Equal(b.BiweeklyMultiplier) &&
		a.ExtraHourMode == b.ExtraHourMode &&
		a.ExtraHourRate.Equal(b.ExtraHourRate) &&
		a.ExtraHourMultiplier.Equal(b.ExtraHourMultiplier) &&
		a.HoursPerDay == b.HoursPerDay
}

// FormulaByVersion returns a built-in formula set.
func FormulaByVersion(version string) (payroll.FormulaSet, error) {
	switch version {
	case "", "v2":
		return payroll.CurrentFormula(), nil
	case "v1":
		return payroll.LegacyFormula(), nil
	default:
		return payroll.FormulaSet{}, fmt.Errorf("%w: unknown formula version %q", generic.ErrInvalidParameter, version)
	}
}

func (f *RulesFactory) formula(fj *FormulaJSON) (payroll.FormulaSet, error) {
	if fj == nil {
		return payroll.CurrentFormula(), nil
	}
	fs, err := FormulaByVersion(fj.Base)
	if err != nil {
		return payroll.FormulaSet{}, err
	}

	base := fs
	if fj.WeekdaysPerCycle != nil {
		fs.WeekdaysPerCycle = *fj.WeekdaysPerCycle
	}
	if fj.WeekendPremiumMultiplier != nil {
		fs.WeekendPremiumMultiplier = *fj.WeekendPremiumMultiplier
	}
	if fj.BiweeklyMultiplier != nil {
		fs.BiweeklyMultiplier = *fj.BiweeklyMultiplier
	}
	if fj.ExtraHourMode != nil {
		fs.ExtraHourMode = payroll.ExtraHourMode(*fj.ExtraHourMode)
	}
	if fj.ExtraHourRate != nil {
		fs.ExtraHourRate = *fj.ExtraHourRate
	}
	if fj.ExtraHourMultiplier != nil {
		fs.ExtraHourMultiplier = *fj.ExtraHourMultiplier
	}
	if fj.HoursPerDay != nil {
		fs.HoursPerDay = *fj.HoursPerDay
	}
	// Restating a base value is not an override.
	if !sameConstants(fs, base) {
		fs.Version = base.Version + customSuffix
	}

	if err := fs.Validate(); err != nil {
		return payroll.FormulaSet{}, fmt.Errorf("formula: %w", err)
	}
	return fs, nil
}

func (f *RulesFactory) legal(lj *LegalJSON) (severance.Params, error) {
	if lj == nil {
		return severance.DefaultParams(), nil
	}
	utility := severance.DefaultUtilityDaysPerYear
	if lj.UtilityDaysPerYear != nil {
		utility = *lj.UtilityDaysPerYear
	}
	params, err := severance.NewParams(utility, lj.VacationBaseDays)
	if err != nil {
		return severance.Params{}, fmt.Errorf("legal: %w", err)
	}
	return params, nil
}
