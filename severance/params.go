package severance

import (
	"strconv"

	"github.com/nomina/payroll-engine/generic"
)

// =============================================================================
// LEGAL PARAMETERS - Validated once at the boundary
// =============================================================================

const (
	DefaultUtilityDaysPerYear = 30

	MinUtilityDaysPerYear = 15
	MaxUtilityDaysPerYear = 120

	MinVacationBaseDays = 15
	MaxVacationBaseDays = 30
)

// Params holds the company-configurable LOTTT parameters.
//
// Build it with NewParams or DefaultParams; a zero Params is not valid.
type Params struct {
	// UtilityDaysPerYear is the profit-share ("utilidades") days granted per year.
	UtilityDaysPerYear int `json:"utility_days_per_year"`

	// VacationBaseDays overrides the progressive vacation schedule with a
	// flat number of days per year. Nil means progressive (15 + 1/year, max 30).
	VacationBaseDays *int `json:"vacation_base_days,omitempty"`
}

// DefaultParams returns 30 utility days and the progressive vacation schedule.
func DefaultParams() Params {
	return Params{UtilityDaysPerYear: DefaultUtilityDaysPerYear}
}

// NewParams validates the parameters. Out-of-range values are rejected,
// never clamped.
func NewParams(utilityDaysPerYear int, vacationBaseDays *int) (Params, error) {
	p := Params{UtilityDaysPerYear: utilityDaysPerYear}
	if vacationBaseDays != nil {
		v := *vacationBaseDays
		p.VacationBaseDays = &v
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks the LOTTT ranges.
func (p Params) Validate() error {
	if p.UtilityDaysPerYear < MinUtilityDaysPerYear || p.UtilityDaysPerYear > MaxUtilityDaysPerYear {
		return &generic.ParameterError{
			Name:  "utility_days_per_year",
			Value: strconv.Itoa(p.UtilityDaysPerYear),
			Min:   strconv.Itoa(MinUtilityDaysPerYear),
			Max:   strconv.Itoa(MaxUtilityDaysPerYear),
		}
	}
	if p.VacationBaseDays != nil {
		v := *p.VacationBaseDays
		if v < MinVacationBaseDays || v > MaxVacationBaseDays {
			return &generic.ParameterError{
				Name:  "vacation_base_days",
				Value: strconv.Itoa(v),
				Min:   strconv.Itoa(MinVacationBaseDays),
				Max:   strconv.Itoa(MaxVacationBaseDays),
			}
		}
	}
	return nil
}

// vacationDaysForYear returns the vacation days accrued in accrual year i (0-indexed).
func (p Params) vacationDaysForYear(i int) int {
	if p.VacationBaseDays != nil {
		return *p.VacationBaseDays
	}
	return 15 + min(i, 15)
}

// bonusDaysForYear returns the vacation-bonus days for accrual year i (0-indexed).
func bonusDaysForYear(i int) int {
	return 7 + min(i, 14)
}
