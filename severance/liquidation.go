/*
Package severance computes LOTTT termination settlements ("liquidación").

PURPOSE:
  Given a terminated employee's weekly salary, hire date and the company's
  legal parameters, computes what is owed on exit:

    weeks owed      pass-through of unpaid pay for the closing cycle
    severance       prestaciones sociales (Art. 141-143)
    vacation        unused vacation + vacation bonus (Art. 190-195)
    utilidades      prorated profit share (Art. 131-140)
    indemnity       unjustified dismissal penalty (Art. 92), dismissals only

INTEGRAL SALARY:
  Every component is priced at the integral daily salary, not the plain
  daily wage:

    daily      = weekly / 7
    utilAliq   = weekly * 4.33 * utilityDays / 365
    bonusAliq  = weekly * 4.33 * 7 / 365
    integral   = daily + utilAliq/30 + bonusAliq/30

  4.33 is the weeks-per-month factor used by the payroll office.

NUMERICS:
  Pure function, no I/O. Values are returned unrounded; rounding to whole
  currency units is the display layer's job. Nothing is clamped here.

SEE ALSO:
  - params.go: Validated legal parameters
  - generic/seniority.go: Tenure
  - payroll/status.go: Which statuses settle and which get indemnity
*/
package severance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
)

// =============================================================================
// TERMINATION
// =============================================================================

// Termination is how the employment relationship ended.
type Termination int

const (
	// TerminationNone means the employee is still on the roster. No settlement.
	TerminationNone Termination = iota
	// TerminationResignation settles everything except indemnity.
	TerminationResignation
	// TerminationDismissal settles everything including Art. 92 indemnity.
	TerminationDismissal
)

// =============================================================================
// CONSTANTS
// =============================================================================

var (
	weeksPerMonth    = generic.MustParseDecimal("4.33")
	daysPerYear      = generic.DecInt(365)
	daysPerMonth     = generic.DecInt(30)
	daysPerWeek      = generic.DecInt(7)
	minVacationBonus = generic.DecInt(7)
	monthsPerYear    = generic.DecInt(12)
)

const (
	firstYearMonths          = 12
	firstYearDaysPerMonth    = 5
	firstYearSeveranceCredit = 60
	laterDaysPerMonth        = 2
	minSeveranceDaysPerYear  = 30
)

// =============================================================================
// DETAILS
// =============================================================================

// Details is the settlement breakdown. Total is always the sum of the five
// monetary components; the day counts are kept for audit.
type Details struct {
	WeeksOwed     decimal.Decimal `json:"weeksOwed"`
	SeverancePay  decimal.Decimal `json:"severancePay"`
	VacationPay   decimal.Decimal `json:"vacationPay"`
	UtilidadesPay decimal.Decimal `json:"utilidadesPay"`
	IndemnityPay  decimal.Decimal `json:"indemnityPay"`
	Total         decimal.Decimal `json:"total"`

	IntegralDailySalary decimal.Decimal `json:"integralDailySalary"`
	SeveranceDays       decimal.Decimal `json:"severanceDays"`
	VacationDays        decimal.Decimal `json:"vacationDays"`
	BonusDays           decimal.Decimal `json:"bonusDays"`
	UtilityDays         decimal.Decimal `json:"utilityDays"`
	IndemnityDays       decimal.Decimal `json:"indemnityDays"`
	Seniority           generic.Tenure  `json:"seniority"`
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute returns the settlement for an employee leaving at asOf, or nil
// when termination is TerminationNone.
func Compute(baseWeeklySalary decimal.Decimal, hireDate, asOf time.Time, termination Termination, unpaidWeekPay decimal.Decimal, params Params) *Details {
	if termination == TerminationNone {
		return nil
	}

	tenure := generic.SeniorityAt(hireDate, asOf)
	integral := IntegralDailySalary(baseWeeklySalary, params.UtilityDaysPerYear)

	severanceDays := SeveranceDays(tenure)
	vacationDays, bonusDays := VacationDays(tenure, params)
	utilityDays := UtilityDays(tenure, params.UtilityDaysPerYear)

	indemnityDays := decimal.Zero
	if termination == TerminationDismissal {
		indemnityDays = IndemnityDays(tenure)
	}

	d := &Details{
		WeeksOwed:           unpaidWeekPay,
		SeverancePay:        severanceDays.Mul(integral),
		VacationPay:         vacationDays.Add(bonusDays).Mul(integral),
		UtilidadesPay:       utilityDays.Mul(integral),
		IndemnityPay:        indemnityDays.Mul(integral),
		IntegralDailySalary: integral,
		SeveranceDays:       severanceDays,
		VacationDays:        vacationDays,
		BonusDays:           bonusDays,
		UtilityDays:         utilityDays,
		IndemnityDays:       indemnityDays,
		Seniority:           tenure,
	}
	d.Total = generic.Sum(d.WeeksOwed, d.SeverancePay, d.VacationPay, d.UtilidadesPay, d.IndemnityPay)
	return d
}

// IntegralDailySalary returns the daily wage inflated by the utilities and
// vacation-bonus aliquots.
func IntegralDailySalary(baseWeeklySalary decimal.Decimal, utilityDaysPerYear int) decimal.Decimal {
	daily := baseWeeklySalary.Div(daysPerWeek)
	monthly := baseWeeklySalary.Mul(weeksPerMonth)
	utilAliquot := monthly.Mul(generic.DecInt(utilityDaysPerYear)).Div(daysPerYear)
	bonusAliquot := monthly.Mul(minVacationBonus).Div(daysPerYear)
	return daily.Add(utilAliquot.Div(daysPerMonth)).Add(bonusAliquot.Div(daysPerMonth))
}

// SeveranceDays: 5 days/month during the first 12 months, then a 60-day
// first-year credit plus 2 days per additional month. Never less than 30
// days per full year.
func SeveranceDays(t generic.Tenure) decimal.Decimal {
	totalMonths := t.TotalMonths()
	var days int
	if totalMonths <= firstYearMonths {
		days = totalMonths * firstYearDaysPerMonth
	} else {
		days = firstYearSeveranceCredit + (totalMonths-firstYearMonths)*laterDaysPerMonth
	}
	days = max(days, t.Years*minSeveranceDaysPerYear)
	return generic.DecInt(days)
}

// VacationDays returns (vacation days, vacation bonus days) accrued over
// every completed year plus the prorated current year.
func VacationDays(t generic.Tenure, params Params) (vacation, bonus decimal.Decimal) {
	vacation, bonus = decimal.Zero, decimal.Zero
	for i := 0; i < t.Years; i++ {
		vacation = vacation.Add(generic.DecInt(params.vacationDaysForYear(i)))
		bonus = bonus.Add(generic.DecInt(bonusDaysForYear(i)))
	}

	fraction := generic.DecInt(t.Months).Div(monthsPerYear)
	vacation = vacation.Add(generic.DecInt(params.vacationDaysForYear(t.Years)).Mul(fraction))
	bonus = bonus.Add(generic.DecInt(bonusDaysForYear(t.Years)).Mul(fraction))
	return vacation, bonus
}

// UtilityDays returns the profit-share days owed: a full grant per completed
// year plus the current year prorated by month.
func UtilityDays(t generic.Tenure, utilityDaysPerYear int) decimal.Decimal {
	perYear := generic.DecInt(utilityDaysPerYear)
	full := generic.DecInt(t.Years).Mul(perYear)
	partial := perYear.Mul(generic.DecInt(t.Months)).Div(monthsPerYear)
	return full.Add(partial)
}

// IndemnityDays is the Art. 92 tier schedule by total months of service.
func IndemnityDays(t generic.Tenure) decimal.Decimal {
	totalMonths := t.TotalMonths()
	switch {
	case totalMonths < 3:
		return generic.DecInt(15)
	case totalMonths < 6:
		return generic.DecInt(30)
	case totalMonths < 12:
		return generic.DecInt(45)
	default:
		return generic.DecInt(60 + 30*max(t.Years-1, 0))
	}
}
