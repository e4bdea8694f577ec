/*
Package generic provides the domain-agnostic building blocks of the payroll engine.

PURPOSE:
  This package contains the primitives shared by the cycle calculator and
  the severance calculator: decimal money helpers, civil date arithmetic,
  tenure (seniority), installment plans and the errors the rest of the
  system wraps. Nothing in here knows about LOTTT formulas or employee
  statuses.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money helpers: thin functions over decimal.Decimal
  - Identifiers: type-safe IDs for employees, plans and cycles

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift
  2. No rounding: values stay unrounded until the display layer
  3. Type Safety: Strong typing for IDs prevents mixing employee/plan IDs

USAGE:
  salary := generic.Dec(50)
  daily := salary.Div(generic.DecInt(5))          // 10
  total := generic.NonNegative(daily.Sub(generic.Dec(12)))  // 0

SEE ALSO:
  - seniority.go: Tenure between two civil dates
  - installment.go: Loan/penalization installment plans
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Unrounded decimal arithmetic
// =============================================================================

// Dec converts a float to a decimal. Use for literals and API input only.
func Dec(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// DecInt converts an integer count (days, weeks, months) to a decimal.
func DecInt(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}

// MustParseDecimal parses a decimal literal, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NonNegative clamps a value to zero from below.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds all values. An empty call returns zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PlanID string
type CycleID string
