package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nomina/payroll-engine/severance"
)

func TestStatusRules_CoverEveryStatus(t *testing.T) {
	assert.Len(t, statusRules, len(Statuses))
	for _, s := range Statuses {
		_, ok := statusRules[s]
		assert.True(t, ok, "missing rule for %s", s)
	}
}

func TestStatusRules_OnlyTerminationsSettle(t *testing.T) {
	assert.Equal(t, severance.TerminationNone, StatusActive.Termination())
	assert.Equal(t, severance.TerminationNone, StatusSuspended.Termination())
	assert.Equal(t, severance.TerminationDismissal, StatusDismissed.Termination())
	assert.Equal(t, severance.TerminationResignation, StatusResigned.Termination())
	assert.Equal(t, severance.TerminationNone, Status("Jubilado").Termination())
}

func TestStatusRules_OnlyActiveDeducts(t *testing.T) {
	for _, s := range Statuses {
		assert.Equal(t, s == StatusActive, ruleFor(s).deductsInstallments, string(s))
	}
	assert.True(t, ruleFor("").deductsInstallments)
}

func TestTallyAttendance_SplitsAtWeekdays(t *testing.T) {
	w := AttendanceWeek{DayWorked, DayHoliday, DayAbsent, DayWorked, DayExcused, DayHoliday, DayWorked}

	five := tallyAttendance(w, 5)
	assert.Equal(t, attendanceTally{weekdaysWorked: 2, weekdayHolidays: 1, weekendWorked: 2, absent: 2}, five)

	six := tallyAttendance(w, 6)
	assert.Equal(t, attendanceTally{weekdaysWorked: 2, weekdayHolidays: 2, weekendWorked: 1, absent: 2}, six)
}
