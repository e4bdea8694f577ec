/*
installment.go - Fixed-installment deduction plans

PURPOSE:
  Loans and disciplinary penalizations are both "an amount repaid in N
  equal weekly installments". InstallmentPlan is that shared shape; the
  payroll package wraps it with domain fields (notes, category, reason).

LIFECYCLE:
  1. Created with RemainingWeeks = TotalWeeks and a fixed WeeklyInstallment
  2. Each finalized cycle advances the plan by exactly one week
  3. When RemainingWeeks reaches 0 the plan moves to its settled status
     (loans: paid, penalizations: cleared)

INVARIANTS:
  - 0 <= RemainingWeeks <= TotalWeeks
  - WeeklyInstallment = Amount / TotalWeeks, fixed at creation
  - TotalWeeks > 0 (rejected at creation, never divided by zero later)

COPY-ON-WRITE:
  Advance returns a new plan value plus an InstallmentDelta. Callers keep
  the old snapshot until the host persists the delta atomically.
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PLAN STATUS
// =============================================================================

type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanPaid      PlanStatus = "paid"      // settled loan
	PlanCleared   PlanStatus = "cleared"   // settled penalization
	PlanCancelled PlanStatus = "cancelled" // loan written off by an admin
)

// =============================================================================
// INSTALLMENT PLAN
// =============================================================================

type InstallmentPlan struct {
	ID                PlanID          `json:"id"`
	EmployeeID        EmployeeID      `json:"employeeId"`
	Amount            decimal.Decimal `json:"amount"`
	TotalWeeks        int             `json:"totalWeeks"`
	RemainingWeeks    int             `json:"remainingWeeks"`
	WeeklyInstallment decimal.Decimal `json:"weeklyInstallment"`
	Status            PlanStatus      `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// NewInstallmentPlan validates and creates an active plan.
func NewInstallmentPlan(id PlanID, employeeID EmployeeID, amount decimal.Decimal, totalWeeks int, createdAt time.Time) (InstallmentPlan, error) {
	if employeeID == "" {
		return InstallmentPlan{}, &PlanError{EmployeeID: employeeID, Reason: "employee is required"}
	}
	if !amount.IsPositive() {
		return InstallmentPlan{}, &PlanError{EmployeeID: employeeID, Reason: "amount must be positive"}
	}
	if totalWeeks <= 0 {
		return InstallmentPlan{}, &PlanError{EmployeeID: employeeID, Reason: "total weeks must be positive"}
	}
	return InstallmentPlan{
		ID:                id,
		EmployeeID:        employeeID,
		Amount:            amount,
		TotalWeeks:        totalWeeks,
		RemainingWeeks:    totalWeeks,
		WeeklyInstallment: amount.Div(DecInt(totalWeeks)),
		Status:            PlanActive,
		CreatedAt:         createdAt,
	}, nil
}

// IsDue reports whether the plan should be deducted in the current cycle.
func (p InstallmentPlan) IsDue() bool {
	return p.Status == PlanActive && p.RemainingWeeks > 0
}

// Advance consumes one installment. settled is the status to use once the
// last installment is taken. A plan that is not due is returned unchanged
// with ok=false.
func (p InstallmentPlan) Advance(settled PlanStatus) (next InstallmentPlan, delta InstallmentDelta, ok bool) {
	if !p.IsDue() {
		return p, InstallmentDelta{}, false
	}
	next = p
	next.RemainingWeeks--
	if next.RemainingWeeks == 0 {
		next.Status = settled
	}
	return next, InstallmentDelta{
		PlanID:          p.ID,
		EmployeeID:      p.EmployeeID,
		Deducted:        p.WeeklyInstallment,
		RemainingBefore: p.RemainingWeeks,
		RemainingAfter:  next.RemainingWeeks,
		StatusBefore:    p.Status,
		StatusAfter:     next.Status,
	}, true
}

// PaidWeeks returns how many installments have been taken.
func (p InstallmentPlan) PaidWeeks() int { return p.TotalWeeks - p.RemainingWeeks }

// Outstanding returns the amount still to be deducted.
func (p InstallmentPlan) Outstanding() decimal.Decimal {
	if p.Status != PlanActive {
		return decimal.Zero
	}
	return p.WeeklyInstallment.Mul(DecInt(p.RemainingWeeks))
}

// Progress returns the paid fraction in [0, 1].
func (p InstallmentPlan) Progress() decimal.Decimal {
	if p.TotalWeeks <= 0 {
		return decimal.Zero
	}
	return DecInt(p.PaidWeeks()).Div(DecInt(p.TotalWeeks))
}

// =============================================================================
// INSTALLMENT DELTA - What a finalized cycle changed
// =============================================================================

type PlanKind string

const (
	PlanKindLoan         PlanKind = "loan"
	PlanKindPenalization PlanKind = "penalization"
)

// InstallmentDelta records one plan advance so the host can persist or audit it.
type InstallmentDelta struct {
	Kind            PlanKind        `json:"kind"`
	PlanID          PlanID          `json:"planId"`
	EmployeeID      EmployeeID      `json:"employeeId"`
	Deducted        decimal.Decimal `json:"deducted"`
	RemainingBefore int             `json:"remainingBefore"`
	RemainingAfter  int             `json:"remainingAfter"`
	StatusBefore    PlanStatus      `json:"statusBefore"`
	StatusAfter     PlanStatus      `json:"statusAfter"`
}
