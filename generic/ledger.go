/*
ledger.go - Copy-on-write installment ledger

PURPOSE:
  A PlanLedger is an ordered snapshot of installment plans. The cycle
  calculator reads it, and when finalizing, produces a NEW ledger with
  the advanced plans. The caller-owned snapshot is never mutated, so the
  host can persist the new snapshot atomically or simply drop it.

ORDER MATTERS:
  Ledger order is the order the host supplied. "First due plan for an
  employee" (the loan rule) is resolved in that order.

EXAMPLE FLOW:
  1. Host loads loans: [L1(emp-1, 4w), L2(emp-1, 2w)]
  2. Preview:  FirstDue(emp-1) = L1, ledger unchanged
  3. Finalize: Advance(L1) -> new ledger [L1'(3w), L2(2w)] + 1 delta
  4. Host persists L1' and the delta together with the payroll week

SEE ALSO:
  - installment.go: InstallmentPlan and InstallmentDelta
  - payroll/cycle.go: The only writer
*/
package generic

// =============================================================================
// PLAN LEDGER
// =============================================================================

// PlanLedger is an ordered, copy-on-write collection of plans.
type PlanLedger struct {
	plans   []InstallmentPlan
	settled PlanStatus
	kind    PlanKind
	deltas  []InstallmentDelta
}

// NewPlanLedger copies plans into a private arena. settled is the status a
// plan takes after its last installment.
func NewPlanLedger(kind PlanKind, settled PlanStatus, plans []InstallmentPlan) *PlanLedger {
	arena := make([]InstallmentPlan, len(plans))
	copy(arena, plans)
	return &PlanLedger{plans: arena, settled: settled, kind: kind}
}

// FirstDue returns the index of the first due plan for an employee, or -1.
func (l *PlanLedger) FirstDue(employeeID EmployeeID) int {
	for i, p := range l.plans {
		if p.EmployeeID == employeeID && p.IsDue() {
			return i
		}
	}
	return -1
}

// AllDue returns the indexes of every due plan for an employee, in ledger order.
func (l *PlanLedger) AllDue(employeeID EmployeeID) []int {
	var idx []int
	for i, p := range l.plans {
		if p.EmployeeID == employeeID && p.IsDue() {
			idx = append(idx, i)
		}
	}
	return idx
}

// At returns the plan at index i.
func (l *PlanLedger) At(i int) InstallmentPlan { return l.plans[i] }

// Advance consumes one installment from the plan at index i inside the arena
// and records the delta.
func (l *PlanLedger) Advance(i int) {
	next, delta, ok := l.plans[i].Advance(l.settled)
	if !ok {
		return
	}
	delta.Kind = l.kind
	l.plans[i] = next
	l.deltas = append(l.deltas, delta)
}

// Plans returns a copy of the current snapshot.
func (l *PlanLedger) Plans() []InstallmentPlan {
	out := make([]InstallmentPlan, len(l.plans))
	copy(out, l.plans)
	return out
}

// Deltas returns the advances recorded so far.
func (l *PlanLedger) Deltas() []InstallmentDelta {
	out := make([]InstallmentDelta, len(l.deltas))
	copy(out, l.deltas)
	return out
}
