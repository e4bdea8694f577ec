package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
)

// Stats is the dashboard summary of a previewed cycle.
type Stats struct {
	ProjectedTotal    decimal.Decimal `json:"projectedTotal"`
	EmployeeCount     int             `json:"employeeCount"`
	ActiveCount       int             `json:"activeCount"`
	AttendanceRate    decimal.Decimal `json:"attendanceRate"`
	TurnoverRate      decimal.Decimal `json:"turnoverRate"`
	OutstandingLoans  decimal.Decimal `json:"outstandingLoans"`
	OutstandingPenals decimal.Decimal `json:"outstandingPenalizations"`
}

var hundred = generic.DecInt(100)

// ComputeStats derives the dashboard from a preview of the current cycle.
// Attendance rate is weekday presence (worked or holiday) over every
// employee's weekday slots; turnover is dismissed plus resigned over the
// roster size. Both are percentages.
func ComputeStats(week PayrollWeek, loans []Loan, pens []Penalization, weekdays int) Stats {
	s := Stats{
		ProjectedTotal:    week.TotalDisbursement,
		EmployeeCount:     len(week.Summaries),
		AttendanceRate:    decimal.Zero,
		TurnoverRate:      decimal.Zero,
		OutstandingLoans:  TotalOutstanding(LoanPlans(loans)),
		OutstandingPenals: TotalOutstanding(PenalizationPlans(pens)),
	}
	present, inactive := 0, 0
	for _, sum := range week.Summaries {
		switch sum.Status {
		case StatusActive:
			s.ActiveCount++
		case StatusDismissed, StatusResigned:
			inactive++
		}
		present += sum.DaysWorked + (sum.HolidaysWorked - sum.WeekendWorkedCount)
	}
	if possible := len(week.Summaries) * weekdays; possible > 0 {
		s.AttendanceRate = generic.DecInt(present).Mul(hundred).Div(generic.DecInt(possible))
	}
	s.TurnoverRate = generic.DecInt(inactive).Mul(hundred).Div(generic.DecInt(max(1, len(week.Summaries))))
	return s
}
