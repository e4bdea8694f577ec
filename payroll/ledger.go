package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
)

// LoanLedger adapts generic.PlanLedger to loans, keeping each loan's
// notes aligned with its plan.
type LoanLedger struct {
	*generic.PlanLedger
	src []Loan
}

func NewLoanLedger(loans []Loan) *LoanLedger {
	return &LoanLedger{
		PlanLedger: generic.NewPlanLedger(generic.PlanKindLoan, generic.PlanPaid, LoanPlans(loans)),
		src:        loans,
	}
}

// Loans returns a fresh snapshot with every advance applied.
func (l *LoanLedger) Loans() []Loan {
	plans := l.Plans()
	out := make([]Loan, len(plans))
	for i := range plans {
		out[i] = l.src[i]
		out[i].InstallmentPlan = plans[i]
	}
	return out
}

// PenalizationLedger adapts generic.PlanLedger to penalizations.
type PenalizationLedger struct {
	*generic.PlanLedger
	src []Penalization
}

func NewPenalizationLedger(pens []Penalization) *PenalizationLedger {
	return &PenalizationLedger{
		PlanLedger: generic.NewPlanLedger(generic.PlanKindPenalization, generic.PlanCleared, PenalizationPlans(pens)),
		src:        pens,
	}
}

// Penalizations returns a fresh snapshot with every advance applied.
func (l *PenalizationLedger) Penalizations() []Penalization {
	plans := l.Plans()
	out := make([]Penalization, len(plans))
	for i := range plans {
		out[i] = l.src[i]
		out[i].InstallmentPlan = plans[i]
	}
	return out
}

// TotalOutstanding sums what is still owed across active plans.
func TotalOutstanding(plans []generic.InstallmentPlan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		total = total.Add(p.Outstanding())
	}
	return total
}

// LoanPlans and PenalizationPlans project the domain records onto their plans.
func LoanPlans(loans []Loan) []generic.InstallmentPlan {
	out := make([]generic.InstallmentPlan, len(loans))
	for i, l := range loans {
		out[i] = l.InstallmentPlan
	}
	return out
}

func PenalizationPlans(pens []Penalization) []generic.InstallmentPlan {
	out := make([]generic.InstallmentPlan, len(pens))
	for i, p := range pens {
		out[i] = p.InstallmentPlan
	}
	return out
}
