package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
)

// =============================================================================
// VALIDATION
// =============================================================================

func TestEmployeeValidate(t *testing.T) {
	until := cycleDate.AddDate(0, 0, 5)
	cases := []struct {
		name   string
		mutate func(*payroll.Employee)
		target error
	}{
		{"valid", func(*payroll.Employee) {}, nil},
		{"missing name", func(e *payroll.Employee) { e.FullName = "" }, generic.ErrInvalidEmployee},
		{"zero salary", func(e *payroll.Employee) { e.BaseWeeklySalary = generic.Dec(0) }, generic.ErrInvalidEmployee},
		{"negative bonus", func(e *payroll.Employee) { e.WeeklyBonus = generic.Dec(-1) }, generic.ErrInvalidEmployee},
		{"unknown status", func(e *payroll.Employee) { e.Status = "Jubilado" }, generic.ErrInvalidStatus},
		{"bad frequency", func(e *payroll.Employee) { e.PaymentFrequency = "mensual" }, generic.ErrInvalidEmployee},
		{"suspended without date", func(e *payroll.Employee) { e.Status = payroll.StatusSuspended }, generic.ErrInvalidEmployee},
		{"active with date", func(e *payroll.Employee) { e.SuspensionUntil = &until }, generic.ErrInvalidEmployee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := employee("emp-1", 50)
			tc.mutate(&e)
			err := e.Validate()
			if tc.target == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.target)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestAttendanceFromSlice(t *testing.T) {
	w, err := payroll.AttendanceFromSlice([]payroll.DayStatus{W, "", H})
	require.NoError(t, err)
	assert.Equal(t, payroll.AttendanceWeek{W, A, H, A, A, A, A}, w)

	_, err = payroll.AttendanceFromSlice([]payroll.DayStatus{"late"})
	assert.ErrorIs(t, err, generic.ErrInvalidAttendance)

	_, err = payroll.AttendanceFromSlice(make([]payroll.DayStatus, 8))
	assert.ErrorIs(t, err, generic.ErrInvalidAttendance)
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

func TestSuspendThenReactivateClearsDate(t *testing.T) {
	// GIVEN: a suspended employee
	e, err := payroll.Suspend(employee("emp-1", 50), time.Date(2026, time.October, 20, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, e.SuspensionUntil)
	assert.Equal(t, generic.NewDate(2026, time.October, 20), *e.SuspensionUntil)
	assert.NoError(t, e.Validate())

	// WHEN: reactivated
	e, err = payroll.ChangeStatus(e, payroll.StatusActive)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusActive, e.Status)
	assert.Nil(t, e.SuspensionUntil)
}

func TestChangeStatus_Rejects(t *testing.T) {
	_, err := payroll.ChangeStatus(employee("emp-1", 50), "Jubilado")
	assert.ErrorIs(t, err, generic.ErrInvalidStatus)

	_, err = payroll.ChangeStatus(employee("emp-1", 50), payroll.StatusSuspended)
	assert.ErrorIs(t, err, generic.ErrInvalidEmployee)

	_, err = payroll.Suspend(employee("emp-1", 50), time.Time{})
	assert.Error(t, err)
}

func TestReinstateExpired(t *testing.T) {
	expired, _ := payroll.Suspend(employee("emp-1", 50), generic.NewDate(2026, time.October, 14))
	today, _ := payroll.Suspend(employee("emp-2", 50), cycleDate)
	future, _ := payroll.Suspend(employee("emp-3", 50), generic.NewDate(2026, time.October, 30))
	active := employee("emp-4", 50)

	got := payroll.ReinstateExpired([]payroll.Employee{expired, today, future, active}, cycleDate)

	require.Len(t, got, 2)
	assert.Equal(t, generic.EmployeeID("emp-1"), got[0].ID)
	assert.Equal(t, generic.EmployeeID("emp-2"), got[1].ID)
	for _, e := range got {
		assert.Equal(t, payroll.StatusActive, e.Status)
		assert.Nil(t, e.SuspensionUntil)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := payroll.ParseStatus("Renunció")
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusResigned, s)

	_, err = payroll.ParseStatus("Activa")
	assert.ErrorIs(t, err, generic.ErrInvalidStatus)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestIsVenezuelanHoliday(t *testing.T) {
	assert.True(t, payroll.IsVenezuelanHoliday(generic.NewDate(2026, time.July, 5)))
	assert.True(t, payroll.IsVenezuelanHoliday(generic.NewDate(2027, time.December, 31)))
	assert.False(t, payroll.IsVenezuelanHoliday(generic.NewDate(2026, time.July, 6)))
}

func TestDefaultAttendance(t *testing.T) {
	// 2026-10-12 (Monday) is Día de la Resistencia Indígena
	got := payroll.DefaultAttendance(cycleDate, 5)
	assert.Equal(t, payroll.AttendanceWeek{H, W, W, W, W, A, A}, got)
}
