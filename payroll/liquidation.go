package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/severance"
)

// =============================================================================
// LIQUIDACIÓN - Status-typed entry points over the severance package
// =============================================================================

// ComputeLiquidation settles an employee as of today. It returns nil for
// Active and Suspended employees.
func ComputeLiquidation(baseWeeklySalary decimal.Decimal, hireDate time.Time, status Status, unpaidWeekPay decimal.Decimal, params severance.Params) *LiquidationDetails {
	return ComputeLiquidationAt(baseWeeklySalary, hireDate, generic.Today(), status, unpaidWeekPay, params)
}

// ComputeLiquidationAt is ComputeLiquidation with an explicit reference date.
func ComputeLiquidationAt(baseWeeklySalary decimal.Decimal, hireDate, asOf time.Time, status Status, unpaidWeekPay decimal.Decimal, params severance.Params) *LiquidationDetails {
	return severance.Compute(baseWeeklySalary, hireDate, asOf, status.Termination(), unpaidWeekPay, params)
}

// Simulation is a what-if settlement for one employee.
type Simulation struct {
	Employee    Employee
	Status      Status
	UnpaidWeeks decimal.Decimal
	Params      severance.Params
	AsOf        time.Time
}

// Simulate prices UnpaidWeeks full weeks of base salary as weeks owed.
// Only Dismissed and Resigned can be simulated.
func Simulate(sim Simulation) (*LiquidationDetails, error) {
	if sim.Status.Termination() == severance.TerminationNone {
		return nil, ErrStatus(sim.Status)
	}
	if sim.UnpaidWeeks.IsNegative() {
		return nil, &generic.ParameterError{Name: "unpaid_weeks", Value: sim.UnpaidWeeks.String(), Min: "0", Max: "+inf"}
	}
	if err := sim.Params.Validate(); err != nil {
		return nil, err
	}
	asOf := sim.AsOf
	if asOf.IsZero() {
		asOf = generic.Today()
	}
	unpaid := sim.UnpaidWeeks.Mul(sim.Employee.BaseWeeklySalary)
	return ComputeLiquidationAt(sim.Employee.BaseWeeklySalary, sim.Employee.HireDate, asOf, sim.Status, unpaid, sim.Params), nil
}

// PassiveLiability is what the company would owe if every listed employee
// resigned today with nothing unpaid.
func PassiveLiability(employees []Employee, asOf time.Time, params severance.Params) decimal.Decimal {
	total := decimal.Zero
	for _, e := range employees {
		if d := ComputeLiquidationAt(e.BaseWeeklySalary, e.HireDate, asOf, StatusResigned, decimal.Zero, params); d != nil {
			total = total.Add(d.Total)
		}
	}
	return total
}
