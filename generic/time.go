package generic

import (
	"time"
)

// =============================================================================
// CIVIL DATES - Day-granularity dates in UTC
// =============================================================================

// nowFunc returns the current time (override in tests for determinism).
var nowFunc = time.Now

// SetNowFunc overrides the clock and returns a function restoring the previous one.
func SetNowFunc(f func() time.Time) (restore func()) {
	prev := nowFunc
	nowFunc = f
	return func() { nowFunc = prev }
}

// Now returns the package clock's current time.
func Now() time.Time { return nowFunc() }

// NewDate builds a civil date at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns today's civil date.
func Today() time.Time { return DateOf(nowFunc()) }

// DateOf truncates a timestamp to its civil date, keeping the calendar day
// the timestamp shows in its own location.
func DateOf(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO "2006-01-02" date (RFC 3339 timestamps are accepted too).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DaysInMonth returns the length of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysInPreviousMonth returns the length of the month immediately before
// the given month (January looks at December of the prior year).
func DaysInPreviousMonth(year int, month time.Month) int {
	return time.Date(year, month, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween counts whole days from one civil date to another.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// =============================================================================
// CYCLE WEEK - Monday-first week layout
// =============================================================================

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// WeekDates returns count consecutive dates starting at the Monday of t's week.
func WeekDates(t time.Time, count int) []time.Time {
	monday := StartOfWeek(t)
	dates := make([]time.Time, count)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
