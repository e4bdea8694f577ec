/*
Package sqlite provides a SQLite-backed implementation of payroll.Repository.

PURPOSE:
  Persists the roster, the loan and penalization ledgers, and the
  append-only payroll history. A finalized cycle is written in a single
  database transaction.

INTERFACES IMPLEMENTED:
  payroll.Store:      Snapshots for the calculator + CommitCycle
  payroll.Repository: Roster, ledger and history CRUD for the API
  payroll.DeltaStore: Per-week audit of ledger advances

KEY TABLES:
  employees:      Roster records
  loans:          Loan ledger (ledger order = insertion order)
  penalizations:  Penalization ledger
  payroll_weeks:  Append-only history, summaries as JSON
  ledger_deltas:  One row per installment taken by a finalized week

APPEND-ONLY ENFORCEMENT:
  payroll_weeks and ledger_deltas have no UPDATE or DELETE path other
  than Reset (demo data only).

IDEMPOTENCY:
  payroll_weeks.idempotency_key is UNIQUE. A replayed finalize fails the
  insert, the transaction rolls back, and the ledgers stay where they were.

LEDGER CONFLICTS:
  Finalize applies deltas, not plan snapshots. Each UPDATE matches on the
  delta's remaining_before and status_before; a row count other than 1
  rolls back with generic.ErrLedgerChanged.

LEDGER ORDER:
  "First due loan" depends on ledger order, so every table carries an
  autoincrement seq and is read ORDER BY seq. Upserts keep the original seq.

MONEY:
  Decimals are stored as TEXT to avoid float rounding.

WAL MODE:
  Opened with WAL and foreign keys on. A single connection is used so
  ":memory:" databases work across calls.

SEE ALSO:
  - payroll/store.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
)

const dateLayout = "2006-01-02"

// Store implements payroll.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ payroll.Repository = (*Store)(nil)
	_ payroll.DeltaStore = (*Store)(nil)
)

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		email TEXT,
		position TEXT,
		department_id TEXT,
		department_name TEXT,
		base_weekly_salary TEXT NOT NULL,
		weekly_bonus TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_frequency TEXT,
		suspension_until TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		total_weeks INTEGER NOT NULL CHECK (total_weeks > 0),
		remaining_weeks INTEGER NOT NULL CHECK (remaining_weeks >= 0 AND remaining_weeks <= total_weeks),
		weekly_installment TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_loans_employee ON loans(employee_id);

	CREATE TABLE IF NOT EXISTS penalizations (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		category TEXT NOT NULL,
		reason TEXT,
		amount TEXT NOT NULL,
		total_weeks INTEGER NOT NULL CHECK (total_weeks > 0),
		remaining_weeks INTEGER NOT NULL CHECK (remaining_weeks >= 0 AND remaining_weeks <= total_weeks),
		weekly_installment TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_penalizations_employee ON penalizations(employee_id);

	-- Append-only history
	CREATE TABLE IF NOT EXISTS payroll_weeks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		idempotency_key TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		label TEXT NOT NULL,
		type TEXT NOT NULL,
		formula_version TEXT NOT NULL,
		total_disbursement TEXT NOT NULL,
		summaries_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger_deltas (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		week_id TEXT NOT NULL REFERENCES payroll_weeks(id),
		kind TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		deducted TEXT NOT NULL,
		remaining_before INTEGER NOT NULL,
		remaining_after INTEGER NOT NULL,
		status_before TEXT NOT NULL,
		status_after TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_deltas_week ON ledger_deltas(week_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// ROSTER
// =============================================================================

const employeeColumns = `id, full_name, email, position, department_id, department_name,
	base_weekly_salary, weekly_bonus, hire_date, status, payment_frequency, suspension_until`

// SaveEmployee inserts or updates an employee, keeping roster order.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (` + employeeColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			position = excluded.position,
			department_id = excluded.department_id,
			department_name = excluded.department_name,
			base_weekly_salary = excluded.base_weekly_salary,
			weekly_bonus = excluded.weekly_bonus,
			hire_date = excluded.hire_date,
			status = excluded.status,
			payment_frequency = excluded.payment_frequency,
			suspension_until = excluded.suspension_until,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(e.ID), e.FullName, e.Email, e.Position, e.DepartmentID, e.DepartmentName,
		e.BaseWeeklySalary.String(), e.WeeklyBonus.String(),
		e.HireDate.Format(dateLayout), string(e.Status), string(e.PaymentFrequency),
		nullDate(e.SuspensionUntil),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", string(id))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, generic.ErrEmployeeNotFound
	}
	return e, err
}

// ListEmployees returns the roster in insertion order.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee.
func (s *Store) DeleteEmployee(ctx context.Context, id generic.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrEmployeeNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (payroll.Employee, error) {
	var e payroll.Employee
	var id, base, bonus, hire, status string
	var email, position, deptID, deptName, freq, until sql.NullString
	if err := row.Scan(&id, &e.FullName, &email, &position, &deptID, &deptName,
		&base, &bonus, &hire, &status, &freq, &until); err != nil {
		return e, err
	}

	e.ID = generic.EmployeeID(id)
	e.Email = email.String
	e.Position = position.String
	e.DepartmentID = deptID.String
	e.DepartmentName = deptName.String
	e.Status = payroll.Status(status)
	e.PaymentFrequency = payroll.PaymentFrequency(freq.String)

	var err error
	if e.BaseWeeklySalary, err = decimal.NewFromString(base); err != nil {
		return e, fmt.Errorf("employee %s salary: %w", id, err)
	}
	if e.WeeklyBonus, err = decimal.NewFromString(bonus); err != nil {
		return e, fmt.Errorf("employee %s bonus: %w", id, err)
	}
	if e.HireDate, err = time.Parse(dateLayout, hire); err != nil {
		return e, fmt.Errorf("employee %s hire date: %w", id, err)
	}
	if until.Valid {
		u, err := time.Parse(dateLayout, until.String)
		if err != nil {
			return e, fmt.Errorf("employee %s suspension: %w", id, err)
		}
		e.SuspensionUntil = &u
	}
	return e, nil
}

// =============================================================================
// LEDGERS
// =============================================================================

const loanColumns = `id, employee_id, amount, total_weeks, remaining_weeks, weekly_installment, status, notes, created_at`

// SaveLoan inserts or updates a loan, keeping ledger order.
func (s *Store) SaveLoan(ctx context.Context, l payroll.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLoan(ctx, s.db, l)
}

func saveLoan(ctx context.Context, db execer, l payroll.Loan) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remaining_weeks = excluded.remaining_weeks,
			status = excluded.status,
			notes = excluded.notes
	`,
		string(l.ID), string(l.EmployeeID), l.Amount.String(), l.TotalWeeks, l.RemainingWeeks,
		l.WeeklyInstallment.String(), string(l.Status), l.Notes, l.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetLoan retrieves a loan by ID.
func (s *Store) GetLoan(ctx context.Context, id generic.PlanID) (payroll.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+loanColumns+" FROM loans WHERE id = ?", string(id))
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Loan{}, generic.ErrPlanNotFound
	}
	return l, err
}

// ListLoans returns every loan in ledger order.
func (s *Store) ListLoans(ctx context.Context) ([]payroll.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+loanColumns+" FROM loans ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []payroll.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func scanLoan(row scanner) (payroll.Loan, error) {
	var l payroll.Loan
	var notes sql.NullString
	plan, err := scanPlan(row, &notes)
	if err != nil {
		return l, err
	}
	l.InstallmentPlan = plan
	l.Notes = notes.String
	return l, nil
}

const penalizationColumns = `id, employee_id, amount, total_weeks, remaining_weeks, weekly_installment, status, category, reason, created_at`

// SavePenalization inserts or updates a penalization, keeping ledger order.
func (s *Store) SavePenalization(ctx context.Context, p payroll.Penalization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return savePenalization(ctx, s.db, p)
}

func savePenalization(ctx context.Context, db execer, p payroll.Penalization) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO penalizations (`+penalizationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remaining_weeks = excluded.remaining_weeks,
			status = excluded.status
	`,
		string(p.ID), string(p.EmployeeID), p.Amount.String(), p.TotalWeeks, p.RemainingWeeks,
		p.WeeklyInstallment.String(), string(p.Status), string(p.Category), p.Reason,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListPenalizations returns every penalization in ledger order.
func (s *Store) ListPenalizations(ctx context.Context) ([]payroll.Penalization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+penalizationColumns+" FROM penalizations ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pens []payroll.Penalization
	for rows.Next() {
		var p payroll.Penalization
		var category string
		var reason sql.NullString
		plan, err := scanPlan(rows, &category, &reason)
		if err != nil {
			return nil, err
		}
		p.InstallmentPlan = plan
		p.Category = payroll.PenaltyCategory(category)
		p.Reason = reason.String
		pens = append(pens, p)
	}
	return pens, rows.Err()
}

// scanPlan reads the shared plan columns followed by the extra columns,
// then created_at.
func scanPlan(row scanner, extra ...any) (generic.InstallmentPlan, error) {
	var p generic.InstallmentPlan
	var id, emp, amount, installment, status, created string
	dest := []any{&id, &emp, &amount, &p.TotalWeeks, &p.RemainingWeeks, &installment, &status}
	dest = append(dest, extra...)
	dest = append(dest, &created)
	if err := row.Scan(dest...); err != nil {
		return p, err
	}
	p.ID = generic.PlanID(id)
	p.EmployeeID = generic.EmployeeID(emp)
	p.Status = generic.PlanStatus(status)

	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return p, fmt.Errorf("plan %s amount: %w", id, err)
	}
	if p.WeeklyInstallment, err = decimal.NewFromString(installment); err != nil {
		return p, fmt.Errorf("plan %s installment: %w", id, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return p, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// CountCycles returns the number of committed weeks.
func (s *Store) CountCycles(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payroll_weeks").Scan(&n)
	return n, err
}

// CommitCycle writes the week and its deltas, and advances each plan with a
// compare-and-set on its prior state, all in one transaction.
func (s *Store) CommitCycle(ctx context.Context, c payroll.CycleCommit) error {
	if c.IdempotencyKey == "" {
		c.IdempotencyKey = string(c.Week.ID)
	}
	summaries, err := json.Marshal(c.Week.Summaries)
	if err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payroll_weeks (id, idempotency_key, date, label, type, formula_version, total_disbursement, summaries_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			string(c.Week.ID), c.IdempotencyKey, c.Week.Date.UTC().Format(time.RFC3339),
			c.Week.Label, string(c.Week.Type), c.Week.FormulaVersion,
			c.Week.TotalDisbursement.String(), string(summaries),
		)
		if isUniqueConstraintError(err) {
			return generic.ErrCycleAlreadyFinalized
		}
		if err != nil {
			return fmt.Errorf("insert week: %w", err)
		}

		for _, d := range c.Deltas {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO ledger_deltas (week_id, kind, plan_id, employee_id, deducted, remaining_before, remaining_after, status_before, status_after)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				string(c.Week.ID), string(d.Kind), string(d.PlanID), string(d.EmployeeID), d.Deducted.String(),
				d.RemainingBefore, d.RemainingAfter, string(d.StatusBefore), string(d.StatusAfter),
			); err != nil {
				return fmt.Errorf("insert delta: %w", err)
			}
		}
		for _, d := range c.Deltas {
			if err := applyDelta(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

// applyDelta moves one plan only if it is still where the snapshot saw it.
func applyDelta(ctx context.Context, tx *sql.Tx, d generic.InstallmentDelta) error {
	var table string
	switch d.Kind {
	case generic.PlanKindLoan:
		table = "loans"
	case generic.PlanKindPenalization:
		table = "penalizations"
	default:
		return fmt.Errorf("delta for plan %s has unknown kind %q", d.PlanID, d.Kind)
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE `+table+` SET remaining_weeks = ?, status = ?
		WHERE id = ? AND remaining_weeks = ? AND status = ?
	`, d.RemainingAfter, string(d.StatusAfter), string(d.PlanID), d.RemainingBefore, string(d.StatusBefore))
	if err != nil {
		return fmt.Errorf("update %s %s: %w", d.Kind, d.PlanID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%w: %s %s", generic.ErrLedgerChanged, d.Kind, d.PlanID)
	}
	return nil
}

const weekColumns = `id, date, label, type, formula_version, total_disbursement, summaries_json`

// ListCycles returns the history newest first.
func (s *Store) ListCycles(ctx context.Context) ([]payroll.PayrollWeek, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+weekColumns+" FROM payroll_weeks ORDER BY seq DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []payroll.PayrollWeek
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// GetCycle retrieves one week.
func (s *Store) GetCycle(ctx context.Context, id generic.CycleID) (payroll.PayrollWeek, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+weekColumns+" FROM payroll_weeks WHERE id = ?", string(id))
	w, err := scanWeek(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.PayrollWeek{}, generic.ErrCycleNotFound
	}
	return w, err
}

func scanWeek(row scanner) (payroll.PayrollWeek, error) {
	var w payroll.PayrollWeek
	var id, date, typ, total, summaries string
	if err := row.Scan(&id, &date, &w.Label, &typ, &w.FormulaVersion, &total, &summaries); err != nil {
		return w, err
	}
	w.ID = generic.CycleID(id)
	w.Type = payroll.CycleType(typ)
	w.Date, _ = time.Parse(time.RFC3339, date)

	var err error
	if w.TotalDisbursement, err = decimal.NewFromString(total); err != nil {
		return w, fmt.Errorf("week %s total: %w", id, err)
	}
	if err := json.Unmarshal([]byte(summaries), &w.Summaries); err != nil {
		return w, fmt.Errorf("week %s summaries: %w", id, err)
	}
	return w, nil
}

// ListDeltas returns the ledger advances recorded by one week.
func (s *Store) ListDeltas(ctx context.Context, weekID generic.CycleID) ([]generic.InstallmentDelta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, plan_id, employee_id, deducted, remaining_before, remaining_after, status_before, status_after
		FROM ledger_deltas WHERE week_id = ? ORDER BY seq
	`, string(weekID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deltas []generic.InstallmentDelta
	for rows.Next() {
		var d generic.InstallmentDelta
		var kind, plan, emp, deducted, before, after string
		if err := rows.Scan(&kind, &plan, &emp, &deducted, &d.RemainingBefore, &d.RemainingAfter, &before, &after); err != nil {
			return nil, err
		}
		d.Kind = generic.PlanKind(kind)
		d.PlanID = generic.PlanID(plan)
		d.EmployeeID = generic.EmployeeID(emp)
		d.Deducted = generic.MustParseDecimal(deducted)
		d.StatusBefore = generic.PlanStatus(before)
		d.StatusAfter = generic.PlanStatus(after)
		deltas = append(deltas, d)
	}
	return deltas, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// WithTx executes fn within a database transaction.
// If fn returns an error the transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset clears all data (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"ledger_deltas", "payroll_weeks", "penalizations", "loans", "employees"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
