package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// SENIORITY - Civil tenure between a hire date and a reference date
// =============================================================================

// Tenure is the elapsed years/months/days between two civil dates.
//
// It is computed like calendar subtraction with borrowing, not by dividing
// a day count: a month borrowed from the reference date is worth the length
// of the month immediately preceding the reference month.
type Tenure struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// Seniority returns the tenure from hireDate to today.
func Seniority(hireDate time.Time) Tenure {
	return SeniorityAt(hireDate, Today())
}

// SeniorityAt returns the tenure from hireDate to ref.
//
// A hireDate after ref is undefined input: the borrow rules are applied
// as-is and the result is not meaningful.
//
// Days can come out negative when ref follows a month shorter than the
// hire day-of-month: hire Jan 31, ref Mar 1 (non-leap) gives {0, 1, -2}.
// Only one month is ever borrowed, so this is kept rather than normalized.
func SeniorityAt(hireDate, ref time.Time) Tenure {
	years := ref.Year() - hireDate.Year()
	months := int(ref.Month()) - int(hireDate.Month())
	days := ref.Day() - hireDate.Day()

	if days < 0 {
		months--
		days += DaysInPreviousMonth(ref.Year(), ref.Month())
	}
	if months < 0 {
		years--
		months += 12
	}
	return Tenure{Years: years, Months: months, Days: days}
}

// TotalMonths returns years*12 + months. Days are ignored.
func (t Tenure) TotalMonths() int { return t.Years*12 + t.Months }

// AddTo shifts a date forward by the tenure.
// For day-of-month values that exist in every month, hire.AddTo(SeniorityAt(hire, ref)) == ref.
func (t Tenure) AddTo(date time.Time) time.Time {
	return date.AddDate(t.Years, t.Months, t.Days)
}

func (t Tenure) String() string {
	return fmt.Sprintf("%dy %dm %dd", t.Years, t.Months, t.Days)
}
