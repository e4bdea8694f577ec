package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
)

// =============================================================================
// FORMULA SET - Versioned cycle constants
// =============================================================================

// ExtraHourMode selects how extra hours are priced.
type ExtraHourMode string

const (
	// ExtraHourFlat pays ExtraHourRate per hour regardless of salary.
	ExtraHourFlat ExtraHourMode = "flat"
	// ExtraHourMultiplier pays ExtraHourMultiplier times the hourly wage,
	// where hourly = dailyRate / HoursPerDay.
	ExtraHourMultiplier ExtraHourMode = "multiplier"
)

// FormulaSet names every constant the cycle formula depends on. A payroll
// week records the Version it was computed with.
type FormulaSet struct {
	Version string `json:"version"`

	// WeekdaysPerCycle is both the daily-rate divisor and the number of
	// leading attendance entries treated as weekdays. The rest are weekend.
	WeekdaysPerCycle int `json:"weekdays_per_cycle"`

	// WeekendPremiumMultiplier weighs a worked weekend day against a
	// weekday holiday.
	WeekendPremiumMultiplier decimal.Decimal `json:"weekend_premium_multiplier"`

	// BiweeklyMultiplier scales the weekly base for a quincena.
	BiweeklyMultiplier decimal.Decimal `json:"biweekly_multiplier"`

	ExtraHourMode       ExtraHourMode   `json:"extra_hour_mode"`
	ExtraHourRate       decimal.Decimal `json:"extra_hour_rate"`
	ExtraHourMultiplier decimal.Decimal `json:"extra_hour_multiplier"`
	HoursPerDay         int             `json:"hours_per_day"`
}

// CurrentFormula is the authoritative rule: five weekdays, double-pay
// weekends, a flat 2 per extra hour and a 2.14 quincena multiplier.
func CurrentFormula() FormulaSet {
	return FormulaSet{
		Version:                  "v2",
		WeekdaysPerCycle:         5,
		WeekendPremiumMultiplier: generic.DecInt(2),
		BiweeklyMultiplier:       generic.MustParseDecimal("2.14"),
		ExtraHourMode:            ExtraHourFlat,
		ExtraHourRate:            generic.DecInt(2),
		ExtraHourMultiplier:      generic.MustParseDecimal("1.5"),
		HoursPerDay:              8,
	}
}

// LegacyFormula reproduces the earlier rule: a six-day divisor and extra
// hours at 1.5 times the hourly wage.
func LegacyFormula() FormulaSet {
	f := CurrentFormula()
	f.Version = "v1"
	f.WeekdaysPerCycle = 6
	f.ExtraHourMode = ExtraHourMultiplier
	return f
}

// Validate rejects sets the calculator cannot apply.
func (f FormulaSet) Validate() error {
	if f.Version == "" {
		return &generic.ParameterError{Name: "version", Value: `""`, Min: "non-empty", Max: "-"}
	}
	if f.WeekdaysPerCycle < 1 || f.WeekdaysPerCycle > DaysPerCycleWeek {
		return intParamError("weekdays_per_cycle", f.WeekdaysPerCycle, 1, DaysPerCycleWeek)
	}
	if f.WeekendPremiumMultiplier.IsNegative() {
		return decParamError("weekend_premium_multiplier", f.WeekendPremiumMultiplier)
	}
	if !f.BiweeklyMultiplier.IsPositive() {
		return decParamError("biweekly_multiplier", f.BiweeklyMultiplier)
	}
	switch f.ExtraHourMode {
	case ExtraHourFlat:
		if f.ExtraHourRate.IsNegative() {
			return decParamError("extra_hour_rate", f.ExtraHourRate)
		}
	case ExtraHourMultiplier:
		if f.ExtraHourMultiplier.IsNegative() {
			return decParamError("extra_hour_multiplier", f.ExtraHourMultiplier)
		}
		if f.HoursPerDay < 1 || f.HoursPerDay > 24 {
			return intParamError("hours_per_day", f.HoursPerDay, 1, 24)
		}
	default:
		return fmt.Errorf("%w: extra_hour_mode %q must be flat or multiplier",
			generic.ErrInvalidParameter, string(f.ExtraHourMode))
	}
	return nil
}

// DailyRate is the weekly base divided by the weekday count.
func (f FormulaSet) DailyRate(baseWeeklySalary decimal.Decimal) decimal.Decimal {
	return baseWeeklySalary.Div(generic.DecInt(f.WeekdaysPerCycle))
}

// TheoreticalBase is the weekly base scaled to the cycle length.
func (f FormulaSet) TheoreticalBase(baseWeeklySalary decimal.Decimal, cycle CycleType) decimal.Decimal {
	if cycle == CycleBiweekly {
		return baseWeeklySalary.Mul(f.BiweeklyMultiplier)
	}
	return baseWeeklySalary
}

// ExtraHoursPay prices a count of extra hours.
func (f FormulaSet) ExtraHoursPay(hours, dailyRate decimal.Decimal) decimal.Decimal {
	if f.ExtraHourMode == ExtraHourMultiplier {
		hourly := dailyRate.Div(generic.DecInt(f.HoursPerDay))
		return hours.Mul(hourly).Mul(f.ExtraHourMultiplier)
	}
	return hours.Mul(f.ExtraHourRate)
}

func intParamError(name string, v, lo, hi int) error {
	return &generic.ParameterError{
		Name:  name,
		Value: fmt.Sprint(v),
		Min:   fmt.Sprint(lo),
		Max:   fmt.Sprint(hi),
	}
}

func decParamError(name string, v decimal.Decimal) error {
	return &generic.ParameterError{Name: name, Value: v.String(), Min: "0", Max: "+inf"}
}
