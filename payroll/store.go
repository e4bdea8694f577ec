/*
store.go - Persistence interfaces for the roster, ledgers and history

PURPOSE:
  The calculator works on snapshots. These interfaces are how the host
  loads those snapshots and commits a finalized cycle.

KEY INTERFACES:
  Store:      What CycleService needs (read snapshots, commit a cycle)
  Repository: Store plus the CRUD the HTTP API exposes
  DeltaStore: Optional audit of what each finalized week deducted

ATOMIC COMMIT:
  CommitCycle writes the PayrollWeek and applies every InstallmentDelta in
  one transaction. Either the week exists and the ledgers moved, or
  neither happened.

COMPARE-AND-SET:
  A delta only applies to a plan still at (RemainingBefore, StatusBefore).
  A plan cancelled, deleted or advanced since the snapshot was loaded
  fails the whole commit with generic.ErrLedgerChanged.

IDEMPOTENCY:
  Every committed week carries an idempotency key. Committing a second
  week with the same key fails with generic.ErrCycleAlreadyFinalized and
  leaves the ledgers untouched.

APPEND-ONLY HISTORY:
  Payroll weeks are never updated or deleted once committed.

IMPLEMENTATIONS:
  - store/sqlite: SQLite (production)
  - store/memory: In-memory (tests, demos)
*/
package payroll

import (
	"context"

	"github.com/nomina/payroll-engine/generic"
)

// =============================================================================
// STORE - What the cycle service needs
// =============================================================================

// CycleCommit is everything a finalize writes.
type CycleCommit struct {
	IdempotencyKey string
	Week           PayrollWeek
	Deltas         []generic.InstallmentDelta
}

// Store loads cycle inputs and commits finalized cycles.
type Store interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	ListPenalizations(ctx context.Context) ([]Penalization, error)

	// CountCycles returns the history length, used for the week label.
	CountCycles(ctx context.Context) (int, error)

	// CommitCycle persists a finalized cycle atomically.
	// Returns generic.ErrCycleAlreadyFinalized if the key was already used.
	CommitCycle(ctx context.Context, c CycleCommit) error
}

// =============================================================================
// REPOSITORY - Full CRUD surface used by the API
// =============================================================================

// RosterStore manages employee records.
type RosterStore interface {
	GetEmployee(ctx context.Context, id generic.EmployeeID) (Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, id generic.EmployeeID) error
}

// LedgerStore manages loans and penalizations outside of a cycle commit.
type LedgerStore interface {
	GetLoan(ctx context.Context, id generic.PlanID) (Loan, error)
	SaveLoan(ctx context.Context, l Loan) error
	SavePenalization(ctx context.Context, p Penalization) error
}

// HistoryStore reads the append-only cycle history, newest first.
type HistoryStore interface {
	ListCycles(ctx context.Context) ([]PayrollWeek, error)
	GetCycle(ctx context.Context, id generic.CycleID) (PayrollWeek, error)
}

// Repository is everything the HTTP API needs.
type Repository interface {
	Store
	RosterStore
	LedgerStore
	HistoryStore

	// Reset deletes all data. Used when loading a demo scenario.
	Reset(ctx context.Context) error
}

// DeltaStore exposes the ledger advances a finalized week recorded.
// Optional: the API returns generic.ErrStoreRequired when missing.
type DeltaStore interface {
	ListDeltas(ctx context.Context, weekID generic.CycleID) ([]generic.InstallmentDelta, error)
}
