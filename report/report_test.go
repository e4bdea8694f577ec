package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/report"
	"github.com/nomina/payroll-engine/severance"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"0", "$0"},
		{"50", "$50"},
		{"1234.5", "$1,235"},
		{"1234.49", "$1,234"},
		{"1000000", "$1,000,000"},
		{"-40.2", "-$40"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, report.FormatCurrency(decimal.RequireFromString(tc.in)), tc.in)
	}
}

func TestWritePayrollWeek(t *testing.T) {
	// GIVEN: a computed week with an accented department and a resignation
	calc := payroll.DefaultCalculator()
	calc.Now = func() time.Time { return generic.NewDate(2026, time.October, 15) }
	active := payroll.Employee{
		ID: "emp-1", FullName: "Ana Pérez", DepartmentName: "Logística",
		BaseWeeklySalary: generic.Dec(50), HireDate: generic.NewDate(2024, time.January, 8),
		Status: payroll.StatusActive,
	}
	resigned := active
	resigned.ID = "emp-2"
	resigned.Status = payroll.StatusResigned
	res := calc.ComputeCycle(payroll.CycleInput{Employees: []payroll.Employee{active, resigned}})

	// WHEN
	var buf bytes.Buffer
	err := report.WritePayrollWeek(&buf, res.Week)

	// THEN
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteLiquidation(t *testing.T) {
	emp := payroll.Employee{
		ID: "emp-1", FullName: "José Núñez", Position: "Chofer",
		BaseWeeklySalary: generic.Dec(80), HireDate: generic.NewDate(2022, time.June, 1),
	}
	asOf := generic.NewDate(2026, time.October, 15)
	d := payroll.ComputeLiquidationAt(emp.BaseWeeklySalary, emp.HireDate, asOf, payroll.StatusDismissed, decimal.Zero, severance.DefaultParams())

	var buf bytes.Buffer
	require.NoError(t, report.WriteLiquidation(&buf, emp, payroll.StatusDismissed, d, asOf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	assert.Error(t, report.WriteLiquidation(&buf, emp, payroll.StatusActive, nil, asOf))
}
