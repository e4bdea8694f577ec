// Package payroll implements the weekly/bi-weekly payroll cycle under LOTTT.
// It uses the generic primitives and the severance calculator to turn
// attendance, salary, bonuses, loans and penalizations into a payout.
package payroll

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/severance"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// PaymentFrequency is how often the employee is normally paid.
type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "semanal"
	FrequencyBiweekly PaymentFrequency = "quincenal"
)

// Employee is a roster record. The roster store owns it; the calculator
// only reads snapshots.
type Employee struct {
	ID               generic.EmployeeID `json:"id"`
	FullName         string             `json:"fullName"`
	Email            string             `json:"email,omitempty"`
	Position         string             `json:"position"`
	DepartmentID     string             `json:"departmentId"`
	DepartmentName   string             `json:"department,omitempty"`
	BaseWeeklySalary decimal.Decimal    `json:"baseWeeklySalary"`
	WeeklyBonus      decimal.Decimal    `json:"weeklyBonus"`
	HireDate         time.Time          `json:"hireDate"`
	Status           Status             `json:"status"`
	PaymentFrequency PaymentFrequency   `json:"paymentFrequency"`
	SuspensionUntil  *time.Time         `json:"suspensionUntil,omitempty"`
}

// Validate is the roster boundary check. The calculator itself never rejects input.
func (e Employee) Validate() error {
	if e.FullName == "" {
		return wrapInvalid("full name is required")
	}
	if !e.BaseWeeklySalary.IsPositive() {
		return wrapInvalid("base weekly salary must be positive")
	}
	if e.WeeklyBonus.IsNegative() {
		return wrapInvalid("weekly bonus cannot be negative")
	}
	if e.HireDate.IsZero() {
		return wrapInvalid("hire date is required")
	}
	if !e.Status.Valid() {
		return ErrStatus(e.Status)
	}
	if e.PaymentFrequency != "" && e.PaymentFrequency != FrequencyWeekly && e.PaymentFrequency != FrequencyBiweekly {
		return wrapInvalid("payment frequency must be semanal or quincenal")
	}
	if (e.Status == StatusSuspended) != (e.SuspensionUntil != nil) {
		return wrapInvalid("suspensionUntil must be set exactly when suspended")
	}
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// DayStatus is what happened on one calendar day of the cycle.
type DayStatus string

const (
	DayWorked  DayStatus = "worked"
	DayAbsent  DayStatus = "absent"
	DayHoliday DayStatus = "holiday"
	DayExcused DayStatus = "excused"
)

func (d DayStatus) Valid() bool {
	switch d {
	case DayWorked, DayAbsent, DayHoliday, DayExcused:
		return true
	}
	return false
}

// DaysPerCycleWeek is the fixed length of an attendance sequence.
const DaysPerCycleWeek = 7

// AttendanceWeek is one status per calendar day, Monday first.
type AttendanceWeek [DaysPerCycleWeek]DayStatus

// AbsentWeek is the default for an employee with no attendance entry.
func AbsentWeek() AttendanceWeek {
	var w AttendanceWeek
	for i := range w {
		w[i] = DayAbsent
	}
	return w
}

// AttendanceFromSlice normalizes a host-supplied sequence: missing or empty
// entries become absent, unknown values are rejected.
func AttendanceFromSlice(days []DayStatus) (AttendanceWeek, error) {
	w := AbsentWeek()
	if len(days) > DaysPerCycleWeek {
		return w, wrapAttendance("attendance has more than 7 days")
	}
	for i, d := range days {
		if d == "" {
			continue
		}
		if !d.Valid() {
			return w, wrapAttendance("unknown day status " + string(d))
		}
		w[i] = d
	}
	return w, nil
}

// Slice returns the week as a slice for serialization.
func (w AttendanceWeek) Slice() []DayStatus {
	out := make([]DayStatus, DaysPerCycleWeek)
	copy(out, w[:])
	return out
}

// =============================================================================
// LOANS AND PENALIZATIONS
// =============================================================================

// Loan is an advance repaid in fixed weekly installments.
type Loan struct {
	generic.InstallmentPlan
	Notes string `json:"notes,omitempty"`
}

// PenaltyCategory is the disciplinary reason family.
type PenaltyCategory string

const (
	PenaltyPunctuality  PenaltyCategory = "Puntualidad"
	PenaltyAbandonment  PenaltyCategory = "Abandono"
	PenaltyCarelessness PenaltyCategory = "Descuido Físico"
	PenaltyConsumption  PenaltyCategory = "Consumo"
	PenaltyDiscipline   PenaltyCategory = "Disciplina"
)

func (c PenaltyCategory) Valid() bool {
	switch c {
	case PenaltyPunctuality, PenaltyAbandonment, PenaltyCarelessness, PenaltyConsumption, PenaltyDiscipline:
		return true
	}
	return false
}

// Penalization is a disciplinary deduction repaid in fixed weekly installments.
type Penalization struct {
	generic.InstallmentPlan
	Category PenaltyCategory `json:"category"`
	Reason   string          `json:"reason"`
}

// =============================================================================
// CYCLE OUTPUT
// =============================================================================

// CycleType is the length of the payroll period being closed.
type CycleType string

const (
	CycleWeekly   CycleType = "semanal"
	CycleBiweekly CycleType = "quincenal"
)

func (c CycleType) Valid() bool { return c == CycleWeekly || c == CycleBiweekly }

// Label returns "Semana N" or "Quincena N".
func (c CycleType) Label(n int) string {
	if c == CycleBiweekly {
		return "Quincena " + strconv.Itoa(n)
	}
	return "Semana " + strconv.Itoa(n)
}

// LiquidationDetails is the settlement embedded in a summary.
type LiquidationDetails = severance.Details

// FinalSummary is one employee's payout for a cycle. Immutable once the
// cycle is finalized.
type FinalSummary struct {
	EmployeeID            generic.EmployeeID  `json:"employeeId"`
	Name                  string              `json:"name"`
	Department            string              `json:"department"`
	Status                Status              `json:"status"`
	TheoreticalBase       decimal.Decimal     `json:"theoreticalBase"`
	DailyRate             decimal.Decimal     `json:"dailyRate"`
	UnpaidDaysAmount      decimal.Decimal     `json:"unpaidDaysAmount"`
	HolidayExtraPay       decimal.Decimal     `json:"holidayExtraPay"`
	BasePay               decimal.Decimal     `json:"basePay"`
	ExtraHoursCount       decimal.Decimal     `json:"extraHoursCount"`
	ExtraHoursPay         decimal.Decimal     `json:"extraHoursPay"`
	Bonus                 decimal.Decimal     `json:"bonus"`
	DaysWorked            int                 `json:"daysWorked"`
	DaysAbsent            int                 `json:"daysAbsent"`
	HolidaysWorked        int                 `json:"holidaysWorked"`
	WeekendWorkedCount    int                 `json:"weekendWorkedCount"`
	LoanDeduction         *decimal.Decimal    `json:"loanDeduction,omitempty"`
	PenalizationDeduction *decimal.Decimal    `json:"penalizationDeduction,omitempty"`
	Liquidation           *LiquidationDetails `json:"liquidation,omitempty"`
	DailyAttendance       []DayStatus         `json:"dailyAttendance"`
	Total                 decimal.Decimal     `json:"total"`
}

// PayrollWeek is one closed (or previewed) cycle. Append-only history.
type PayrollWeek struct {
	ID                generic.CycleID `json:"id"`
	Date              time.Time       `json:"date"`
	Label             string          `json:"label"`
	Type              CycleType       `json:"type"`
	FormulaVersion    string          `json:"formulaVersion"`
	Summaries         []FinalSummary  `json:"summaries"`
	TotalDisbursement decimal.Decimal `json:"totalDisbursement"`
}

// SummaryFor returns the summary of one employee, if present.
func (w PayrollWeek) SummaryFor(id generic.EmployeeID) (FinalSummary, bool) {
	for _, s := range w.Summaries {
		if s.EmployeeID == id {
			return s, true
		}
	}
	return FinalSummary{}, false
}
