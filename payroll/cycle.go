/*
cycle.go - Cycle payroll calculator

PURPOSE:
  Turns one cycle of attendance, extra hours and the loan/penalization
  ledgers into a PayrollWeek. Pure: no I/O, no logging, no clock except
  the injectable Now.

PER EMPLOYEE:
  theoretical = base * (BiweeklyMultiplier if quincena else 1)
  daily       = base / WeekdaysPerCycle
  absent      = weekdays - (worked + holiday) over the weekday slots
  unpaid      = max(0, absent * daily)
  holidayPay  = (weekdayHolidays + weekendWorked * WeekendPremium) * daily
  basePay     = theoretical - unpaid + holidayPay      (0 when suspended)
  total       = liquidation.Total                      (dismissed/resigned)
              | 0                                      (suspended)
              | basePay + extra + bonus - loan - penalizations
  total       = max(0, total)

LEDGERS:
  Loans: only the first due loan of an Active employee is deducted.
  Penalizations: every due penalization of an Active employee is deducted.
  Finalize advances exactly those plans in a private copy and returns the
  new snapshots plus one InstallmentDelta per advance. Preview returns
  unchanged copies and no deltas, so it can be called any number of times.

SEE ALSO:
  - formula.go: The constants above
  - status.go: Which status earns what
  - service.go: At-most-once finalize around this calculator
*/
package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/severance"
)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// CycleInput is a snapshot of everything one cycle depends on. The
// calculator never retains or mutates it.
type CycleInput struct {
	Employees     []Employee
	Attendance    map[generic.EmployeeID]AttendanceWeek
	ExtraHours    map[generic.EmployeeID]decimal.Decimal
	Loans         []Loan
	Penalizations []Penalization
	CycleType     CycleType
	Finalize      bool

	// PriorCycles is the history length; the label uses PriorCycles+1.
	PriorCycles int

	// AsOf is the reference date for seniority. Zero means the calculator clock.
	AsOf time.Time
}

// CycleResult is the computed week plus the ledger snapshots to persist.
type CycleResult struct {
	Week                 PayrollWeek
	UpdatedLoans         []Loan
	UpdatedPenalizations []Penalization
	Deltas               []generic.InstallmentDelta
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes cycles with a fixed formula set and legal parameters.
type Calculator struct {
	Formula FormulaSet
	Params  severance.Params

	// NewID generates PayrollWeek identities. Defaults to uuid.NewString.
	NewID func() string
	// Now stamps the week. Defaults to generic.Now.
	Now func() time.Time
}

// NewCalculator validates the formula set and parameters once.
func NewCalculator(formula FormulaSet, params severance.Params) (*Calculator, error) {
	if err := formula.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{Formula: formula, Params: params}, nil
}

// DefaultCalculator uses CurrentFormula and DefaultParams.
func DefaultCalculator() *Calculator {
	return &Calculator{Formula: CurrentFormula(), Params: severance.DefaultParams()}
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return generic.Now()
}

func (c *Calculator) newID() string {
	if c.NewID != nil {
		return c.NewID()
	}
	return uuid.NewString()
}

// ComputeCycle computes one payroll week. Summaries follow roster order.
func (c *Calculator) ComputeCycle(in CycleInput) CycleResult {
	cycle := in.CycleType
	if !cycle.Valid() {
		cycle = CycleWeekly
	}
	now := c.now()
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = now
	}

	loans := NewLoanLedger(in.Loans)
	pens := NewPenalizationLedger(in.Penalizations)

	summaries := make([]FinalSummary, 0, len(in.Employees))
	total := decimal.Zero
	for _, emp := range in.Employees {
		week, ok := in.Attendance[emp.ID]
		if !ok {
			week = AbsentWeek()
		}
		s := c.summarize(emp, week, in.ExtraHours[emp.ID], cycle, asOf, loans, pens, in.Finalize)
		total = total.Add(s.Total)
		summaries = append(summaries, s)
	}

	res := CycleResult{
		Week: PayrollWeek{
			ID:                generic.CycleID(c.newID()),
			Date:              now,
			Label:             cycle.Label(in.PriorCycles + 1),
			Type:              cycle,
			FormulaVersion:    c.Formula.Version,
			Summaries:         summaries,
			TotalDisbursement: total,
		},
		UpdatedLoans:         loans.Loans(),
		UpdatedPenalizations: pens.Penalizations(),
	}
	if in.Finalize {
		res.Deltas = append(loans.Deltas(), pens.Deltas()...)
	}
	return res
}

func (c *Calculator) summarize(
	emp Employee,
	week AttendanceWeek,
	extraHours decimal.Decimal,
	cycle CycleType,
	asOf time.Time,
	loans *LoanLedger,
	pens *PenalizationLedger,
	finalize bool,
) FinalSummary {
	rule := ruleFor(emp.Status)
	f := c.Formula

	theoretical := f.TheoreticalBase(emp.BaseWeeklySalary, cycle)
	daily := f.DailyRate(emp.BaseWeeklySalary)

	tally := tallyAttendance(week, f.WeekdaysPerCycle)
	unpaid := generic.NonNegative(generic.DecInt(tally.absent).Mul(daily))
	holidayUnits := generic.DecInt(tally.weekdayHolidays).
		Add(generic.DecInt(tally.weekendWorked).Mul(f.WeekendPremiumMultiplier))
	holidayPay := holidayUnits.Mul(daily)
	extraPay := f.ExtraHoursPay(extraHours, daily)

	basePay := decimal.Zero
	if rule.earnsBasePay {
		basePay = theoretical.Sub(unpaid).Add(holidayPay)
	}
	bonus := decimal.Zero
	if rule.earnsBonus {
		bonus = emp.WeeklyBonus
	}

	liq := severance.Compute(emp.BaseWeeklySalary, emp.HireDate, asOf, rule.termination, basePay, c.Params)

	loanDed, penDed := decimal.Zero, decimal.Zero
	if rule.deductsInstallments {
		if i := loans.FirstDue(emp.ID); i >= 0 {
			loanDed = loans.At(i).WeeklyInstallment
			if finalize {
				loans.Advance(i)
			}
		}
		for _, i := range pens.AllDue(emp.ID) {
			penDed = penDed.Add(pens.At(i).WeeklyInstallment)
			if finalize {
				pens.Advance(i)
			}
		}
	}

	var total decimal.Decimal
	switch {
	case liq != nil:
		total = liq.Total
	case !rule.earnsBasePay:
		total = decimal.Zero
	default:
		total = basePay.Add(extraPay).Add(bonus).Sub(loanDed).Sub(penDed)
	}

	status := emp.Status
	if status == "" {
		status = StatusActive
	}
	return FinalSummary{
		EmployeeID:            emp.ID,
		Name:                  emp.FullName,
		Department:            emp.DepartmentName,
		Status:                status,
		TheoreticalBase:       theoretical,
		DailyRate:             daily,
		UnpaidDaysAmount:      unpaid,
		HolidayExtraPay:       holidayPay,
		BasePay:               basePay,
		ExtraHoursCount:       extraHours,
		ExtraHoursPay:         extraPay,
		Bonus:                 bonus,
		DaysWorked:            tally.weekdaysWorked,
		DaysAbsent:            max(0, tally.absent),
		HolidaysWorked:        tally.weekdayHolidays + tally.weekendWorked,
		WeekendWorkedCount:    tally.weekendWorked,
		LoanDeduction:         positiveOrNil(loanDed),
		PenalizationDeduction: positiveOrNil(penDed),
		Liquidation:           liq,
		DailyAttendance:       week.Slice(),
		Total:                 generic.NonNegative(total),
	}
}

// =============================================================================
// ATTENDANCE TALLY
// =============================================================================

type attendanceTally struct {
	weekdaysWorked  int
	weekdayHolidays int
	weekendWorked   int
	absent          int
}

// tallyAttendance splits the week at weekdays: [0, weekdays) are weekdays,
// the rest weekend. Excused days count as neither worked nor paid.
func tallyAttendance(week AttendanceWeek, weekdays int) attendanceTally {
	var t attendanceTally
	for i, d := range week {
		if i < weekdays {
			switch d {
			case DayWorked:
				t.weekdaysWorked++
			case DayHoliday:
				t.weekdayHolidays++
			}
			continue
		}
		if d == DayWorked || d == DayHoliday {
			t.weekendWorked++
		}
	}
	t.absent = weekdays - (t.weekdaysWorked + t.weekdayHolidays)
	return t
}

func positiveOrNil(d decimal.Decimal) *decimal.Decimal {
	if !d.IsPositive() {
		return nil
	}
	return &d
}
