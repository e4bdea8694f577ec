package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
)

// =============================================================================
// CYCLE SERVICE - Preview and at-most-once finalize
// =============================================================================

// CycleDraft is what the payroll office enters for the open cycle.
type CycleDraft struct {
	CycleType CycleType
	// Attendance nil means the default week (worked weekdays, fixed
	// holidays marked); employees missing from a non-nil map are absent.
	Attendance map[generic.EmployeeID]AttendanceWeek
	ExtraHours map[generic.EmployeeID]decimal.Decimal
	AsOf       time.Time
}

// CycleService wraps the calculator with the store. Only one finalize can
// run at a time per service; a replayed idempotency key is rejected by the
// store.
type CycleService struct {
	store Store
	calc  *Calculator
	log   zerolog.Logger

	finalizing sync.Mutex
}

// NewCycleService builds the service. log is used as given; the caller
// tags the component.
func NewCycleService(store Store, calc *Calculator, log zerolog.Logger) *CycleService {
	if calc == nil {
		calc = DefaultCalculator()
	}
	return &CycleService{store: store, calc: calc, log: log}
}

// Calculator exposes the formula set and parameters in use.
func (s *CycleService) Calculator() *Calculator { return s.calc }

// Preview computes the open cycle without touching the ledgers.
func (s *CycleService) Preview(ctx context.Context, draft CycleDraft) (CycleResult, error) {
	in, err := s.load(ctx, draft)
	if err != nil {
		return CycleResult{}, err
	}
	return s.calc.ComputeCycle(in), nil
}

// Finalize computes and commits the open cycle. idempotencyKey defaults to
// the generated week ID, which makes it single-use.
func (s *CycleService) Finalize(ctx context.Context, draft CycleDraft, idempotencyKey string) (PayrollWeek, error) {
	if !s.finalizing.TryLock() {
		return PayrollWeek{}, generic.ErrFinalizeInProgress
	}
	defer s.finalizing.Unlock()

	in, err := s.load(ctx, draft)
	if err != nil {
		return PayrollWeek{}, err
	}
	in.Finalize = true
	res := s.calc.ComputeCycle(in)

	key := idempotencyKey
	if key == "" {
		key = string(res.Week.ID)
	}
	commit := CycleCommit{
		IdempotencyKey: key,
		Week:           res.Week,
		Deltas:         res.Deltas,
	}
	if err := s.store.CommitCycle(ctx, commit); err != nil {
		switch {
		case errors.Is(err, generic.ErrCycleAlreadyFinalized):
			s.log.Warn().Str("idempotency_key", key).Msg("finalize replayed")
		case errors.Is(err, generic.ErrLedgerChanged):
			s.log.Warn().Err(err).Msg("ledger moved during finalize, nothing committed")
		}
		return PayrollWeek{}, fmt.Errorf("commit cycle: %w", err)
	}

	s.log.Info().
		Str("week_id", string(res.Week.ID)).
		Str("label", res.Week.Label).
		Str("formula", res.Week.FormulaVersion).
		Int("employees", len(res.Week.Summaries)).
		Int("ledger_advances", len(res.Deltas)).
		Str("total", res.Week.TotalDisbursement.StringFixed(2)).
		Msg("cycle finalized")
	return res.Week, nil
}

func (s *CycleService) load(ctx context.Context, draft CycleDraft) (CycleInput, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return CycleInput{}, fmt.Errorf("list employees: %w", err)
	}
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return CycleInput{}, fmt.Errorf("list loans: %w", err)
	}
	pens, err := s.store.ListPenalizations(ctx)
	if err != nil {
		return CycleInput{}, fmt.Errorf("list penalizations: %w", err)
	}
	prior, err := s.store.CountCycles(ctx)
	if err != nil {
		return CycleInput{}, fmt.Errorf("count cycles: %w", err)
	}

	asOf := draft.AsOf
	if asOf.IsZero() {
		asOf = s.calc.now()
	}
	attendance := draft.Attendance
	if attendance == nil {
		attendance = DefaultRosterAttendance(employees, asOf, s.calc.Formula.WeekdaysPerCycle)
	}
	return CycleInput{
		Employees:     employees,
		Attendance:    attendance,
		ExtraHours:    draft.ExtraHours,
		Loans:         loans,
		Penalizations: pens,
		CycleType:     draft.CycleType,
		PriorCycles:   prior,
		AsOf:          asOf,
	}, nil
}
