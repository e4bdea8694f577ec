package payroll

import (
	"time"

	"github.com/nomina/payroll-engine/generic"
)

// venezuelanHolidays are the fixed-date national holidays, month/day.
// Movable feasts (Carnaval, Semana Santa) are not included.
var venezuelanHolidays = map[[2]int]bool{
	{1, 1}:   true, // Año Nuevo
	{4, 19}:  true, // Declaración de la Independencia
	{5, 1}:   true, // Día del Trabajador
	{6, 24}:  true, // Batalla de Carabobo
	{7, 5}:   true, // Día de la Independencia
	{7, 24}:  true, // Natalicio del Libertador
	{10, 12}: true, // Día de la Resistencia Indígena
	{12, 24}: true,
	{12, 25}: true,
	{12, 31}: true,
}

// IsVenezuelanHoliday reports whether t falls on a fixed national holiday.
func IsVenezuelanHoliday(t time.Time) bool {
	return venezuelanHolidays[[2]int{int(t.Month()), t.Day()}]
}

// DefaultAttendance pre-fills the week containing t: weekdays are worked
// unless they are a national holiday, weekend days are absent.
func DefaultAttendance(t time.Time, weekdays int) AttendanceWeek {
	var w AttendanceWeek
	for i, d := range generic.WeekDates(t, DaysPerCycleWeek) {
		switch {
		case i >= weekdays:
			w[i] = DayAbsent
		case IsVenezuelanHoliday(d):
			w[i] = DayHoliday
		default:
			w[i] = DayWorked
		}
	}
	return w
}

// DefaultRosterAttendance applies DefaultAttendance to every employee.
func DefaultRosterAttendance(employees []Employee, t time.Time, weekdays int) map[generic.EmployeeID]AttendanceWeek {
	week := DefaultAttendance(t, weekdays)
	out := make(map[generic.EmployeeID]AttendanceWeek, len(employees))
	for _, e := range employees {
		out[e.ID] = week
	}
	return out
}
