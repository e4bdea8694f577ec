// Package memory provides an in-memory payroll.Repository.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps records in insertion order, which is also ledger order.
type Memory struct {
	mu            sync.RWMutex
	employees     []payroll.Employee
	loans         []payroll.Loan
	penalizations []payroll.Penalization
	cycles        []payroll.PayrollWeek // oldest first
	deltas        map[generic.CycleID][]generic.InstallmentDelta
	idempotency   map[string]bool
}

func New() *Memory {
	return &Memory{
		deltas:      make(map[generic.CycleID][]generic.InstallmentDelta),
		idempotency: make(map[string]bool),
	}
}

var (
	_ payroll.Repository = (*Memory)(nil)
	_ payroll.DeltaStore = (*Memory)(nil)
)

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.Employee(nil), m.employees...), nil
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return payroll.Employee{}, generic.ErrEmployeeNotFound
}

// SaveEmployee inserts or replaces by ID.
func (m *Memory) SaveEmployee(_ context.Context, e payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.employees {
		if m.employees[i].ID == e.ID {
			m.employees[i] = e
			return nil
		}
	}
	m.employees = append(m.employees, e)
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id generic.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.employees {
		if m.employees[i].ID == id {
			m.employees = append(m.employees[:i], m.employees[i+1:]...)
			return nil
		}
	}
	return generic.ErrEmployeeNotFound
}

// =============================================================================
// LEDGERS
// =============================================================================

func (m *Memory) ListLoans(_ context.Context) ([]payroll.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.Loan(nil), m.loans...), nil
}

func (m *Memory) GetLoan(_ context.Context, id generic.PlanID) (payroll.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.loans {
		if l.ID == id {
			return l, nil
		}
	}
	return payroll.Loan{}, generic.ErrPlanNotFound
}

func (m *Memory) SaveLoan(_ context.Context, l payroll.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveLoanLocked(l)
	return nil
}

func (m *Memory) saveLoanLocked(l payroll.Loan) {
	for i := range m.loans {
		if m.loans[i].ID == l.ID {
			m.loans[i] = l
			return
		}
	}
	m.loans = append(m.loans, l)
}

func (m *Memory) ListPenalizations(_ context.Context) ([]payroll.Penalization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.Penalization(nil), m.penalizations...), nil
}

func (m *Memory) SavePenalization(_ context.Context, p payroll.Penalization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savePenalizationLocked(p)
	return nil
}

func (m *Memory) savePenalizationLocked(p payroll.Penalization) {
	for i := range m.penalizations {
		if m.penalizations[i].ID == p.ID {
			m.penalizations[i] = p
			return
		}
	}
	m.penalizations = append(m.penalizations, p)
}

// =============================================================================
// HISTORY
// =============================================================================

func (m *Memory) CountCycles(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cycles), nil
}

// CommitCycle appends the week and applies its deltas atomically. Every
// delta is checked against the current plan before anything moves.
func (m *Memory) CommitCycle(_ context.Context, c payroll.CycleCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.IdempotencyKey != "" && m.idempotency[c.IdempotencyKey] {
		return generic.ErrCycleAlreadyFinalized
	}
	plans := make([]*generic.InstallmentPlan, len(c.Deltas))
	for i, d := range c.Deltas {
		p := m.planLocked(d.Kind, d.PlanID)
		if p == nil || p.RemainingWeeks != d.RemainingBefore || p.Status != d.StatusBefore {
			return fmt.Errorf("%w: %s %s", generic.ErrLedgerChanged, d.Kind, d.PlanID)
		}
		plans[i] = p
	}
	for i, d := range c.Deltas {
		plans[i].RemainingWeeks = d.RemainingAfter
		plans[i].Status = d.StatusAfter
	}
	m.cycles = append(m.cycles, c.Week)
	m.deltas[c.Week.ID] = append([]generic.InstallmentDelta(nil), c.Deltas...)
	if c.IdempotencyKey != "" {
		m.idempotency[c.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) planLocked(kind generic.PlanKind, id generic.PlanID) *generic.InstallmentPlan {
	switch kind {
	case generic.PlanKindLoan:
		for i := range m.loans {
			if m.loans[i].ID == id {
				return &m.loans[i].InstallmentPlan
			}
		}
	case generic.PlanKindPenalization:
		for i := range m.penalizations {
			if m.penalizations[i].ID == id {
				return &m.penalizations[i].InstallmentPlan
			}
		}
	}
	return nil
}

// ListCycles returns the history newest first.
func (m *Memory) ListCycles(_ context.Context) ([]payroll.PayrollWeek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.PayrollWeek, 0, len(m.cycles))
	for i := len(m.cycles) - 1; i >= 0; i-- {
		out = append(out, m.cycles[i])
	}
	return out, nil
}

func (m *Memory) GetCycle(_ context.Context, id generic.CycleID) (payroll.PayrollWeek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.cycles {
		if w.ID == id {
			return w, nil
		}
	}
	return payroll.PayrollWeek{}, generic.ErrCycleNotFound
}

func (m *Memory) ListDeltas(_ context.Context, weekID generic.CycleID) ([]generic.InstallmentDelta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.InstallmentDelta(nil), m.deltas[weekID]...), nil
}

// Reset clears everything.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = nil
	m.loans = nil
	m.penalizations = nil
	m.cycles = nil
	m.deltas = make(map[generic.CycleID][]generic.InstallmentDelta)
	m.idempotency = make(map[string]bool)
	return nil
}
