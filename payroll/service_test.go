package payroll_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func seededStore(t *testing.T) *memory.Memory {
	t.Helper()
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveEmployee(ctx, employee("emp-1", 50)))
	require.NoError(t, m.SaveEmployee(ctx, employee("emp-2", 70)))
	require.NoError(t, m.SaveLoan(ctx, loan(t, "loan-1", "emp-1", 40, 4)))
	require.NoError(t, m.SavePenalization(ctx, penalization(t, "pen-1", "emp-2", 14, 2)))
	return m
}

func draft() payroll.CycleDraft {
	return payroll.CycleDraft{
		CycleType: payroll.CycleWeekly,
		Attendance: map[generic.EmployeeID]payroll.AttendanceWeek{
			"emp-1": fullWeek(),
			"emp-2": fullWeek(),
		},
		AsOf: cycleDate,
	}
}

// blockingStore holds CommitCycle until released.
type blockingStore struct {
	payroll.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) CommitCycle(ctx context.Context, c payroll.CycleCommit) error {
	close(b.entered)
	<-b.release
	return b.Store.CommitCycle(ctx, c)
}

// cancellingStore writes off a loan right after handing out the ledger
// snapshot, as an admin request landing mid-finalize would.
type cancellingStore struct {
	*memory.Memory
	loanID generic.PlanID
}

func (c cancellingStore) ListLoans(ctx context.Context) ([]payroll.Loan, error) {
	loans, err := c.Memory.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range loans {
		if l.ID == c.loanID {
			l.Status = generic.PlanCancelled
			if err := c.Memory.SaveLoan(ctx, l); err != nil {
				return nil, err
			}
		}
	}
	return loans, nil
}

// =============================================================================
// PREVIEW
// =============================================================================

func TestCycleService_PreviewDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := payroll.NewCycleService(m, newCalc(), zerolog.Nop())

	for i := 0; i < 3; i++ {
		res, err := svc.Preview(ctx, draft())
		require.NoError(t, err)
		assert.Equal(t, "Semana 1", res.Week.Label)
	}

	loans, _ := m.ListLoans(ctx)
	assert.Equal(t, 4, loans[0].RemainingWeeks)
	n, _ := m.CountCycles(ctx)
	assert.Equal(t, 0, n)
}

func TestCycleService_PreviewDefaultsAttendance(t *testing.T) {
	// GIVEN: no attendance entered for the week of 2026-10-12 (Monday holiday)
	svc := payroll.NewCycleService(seededStore(t), newCalc(), zerolog.Nop())
	d := draft()
	d.Attendance = nil

	res, err := svc.Preview(context.Background(), d)

	// THEN: four weekdays worked plus a paid holiday
	require.NoError(t, err)
	s, ok := res.Week.SummaryFor("emp-1")
	require.True(t, ok)
	assert.Equal(t, 4, s.DaysWorked)
	assert.Equal(t, 1, s.HolidaysWorked)
	assertDec(t, 60, s.BasePay)
}

// =============================================================================
// FINALIZE
// =============================================================================

func TestCycleService_FinalizeCommitsWeekAndLedgers(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := payroll.NewCycleService(m, newCalc(), zerolog.Nop())

	week, err := svc.Finalize(ctx, draft(), "close-42")
	require.NoError(t, err)

	// THEN: the week is in history
	stored, err := m.GetCycle(ctx, week.ID)
	require.NoError(t, err)
	assert.Equal(t, week.Label, stored.Label)
	assertDec(t, 40+63, stored.TotalDisbursement)

	// AND: both ledgers advanced once
	loans, _ := m.ListLoans(ctx)
	assert.Equal(t, 3, loans[0].RemainingWeeks)
	pens, _ := m.ListPenalizations(ctx)
	assert.Equal(t, 1, pens[0].RemainingWeeks)
}

func TestCycleService_ReplayedKeyIsRejected(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	calc := newCalc()
	ids := []string{"week-a", "week-b"}
	calc.NewID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	svc := payroll.NewCycleService(m, calc, zerolog.Nop())

	_, err := svc.Finalize(ctx, draft(), "close-42")
	require.NoError(t, err)

	// WHEN: the same close is submitted again
	_, err = svc.Finalize(ctx, draft(), "close-42")

	// THEN: rejected, ledgers advanced only once
	assert.ErrorIs(t, err, generic.ErrCycleAlreadyFinalized)
	assert.True(t, generic.IsConflict(err))
	loans, _ := m.ListLoans(ctx)
	assert.Equal(t, 3, loans[0].RemainingWeeks)
	n, _ := m.CountCycles(ctx)
	assert.Equal(t, 1, n)
}

func TestCycleService_SecondWeekGetsNextLabel(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := payroll.NewCycleService(m, newCalc(), zerolog.Nop())

	_, err := svc.Finalize(ctx, draft(), "close-1")
	require.NoError(t, err)
	res, err := svc.Preview(ctx, draft())
	require.NoError(t, err)

	assert.Equal(t, "Semana 2", res.Week.Label)
}

func TestCycleService_ConcurrentFinalizeIsRejected(t *testing.T) {
	ctx := context.Background()
	bs := &blockingStore{Store: seededStore(t), entered: make(chan struct{}), release: make(chan struct{})}
	svc := payroll.NewCycleService(bs, newCalc(), zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Finalize(ctx, draft(), "close-1")
		done <- err
	}()
	<-bs.entered

	// WHEN: a second finalize arrives while the first is committing
	_, err := svc.Finalize(ctx, draft(), "close-2")

	// THEN
	assert.ErrorIs(t, err, generic.ErrFinalizeInProgress)
	close(bs.release)
	assert.NoError(t, <-done)
}

func TestCycleService_LoanCancelledMidFinalizeStaysCancelled(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := payroll.NewCycleService(cancellingStore{Memory: m, loanID: "loan-1"}, newCalc(), zerolog.Nop())

	// WHEN: loan-1 is cancelled between the snapshot and the commit
	_, err := svc.Finalize(ctx, draft(), "close-1")

	// THEN: the commit is refused as a conflict and nothing moved
	assert.ErrorIs(t, err, generic.ErrLedgerChanged)
	assert.True(t, generic.IsConflict(err))
	got, err := m.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, generic.PlanCancelled, got.Status)
	assert.Equal(t, 4, got.RemainingWeeks)
	pens, _ := m.ListPenalizations(ctx)
	assert.Equal(t, 2, pens[0].RemainingWeeks)
	n, _ := m.CountCycles(ctx)
	assert.Equal(t, 0, n)

	// WHEN: retried with a fresh snapshot
	week, err := svc.Finalize(ctx, draft(), "close-1")
	require.NoError(t, err)

	// THEN: the cancelled loan is neither deducted nor advanced
	summary, ok := week.SummaryFor("emp-1")
	require.True(t, ok)
	assert.Nil(t, summary.LoanDeduction)
	got, _ = m.GetLoan(ctx, "loan-1")
	assert.Equal(t, generic.PlanCancelled, got.Status)
	assert.Equal(t, 4, got.RemainingWeeks)
	pens, _ = m.ListPenalizations(ctx)
	assert.Equal(t, 1, pens[0].RemainingWeeks)
}

func TestCycleService_LogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).With().Str("component", "payroll").Logger()
	svc := payroll.NewCycleService(seededStore(t), newCalc(), log)

	_, err := svc.Finalize(context.Background(), draft(), "close-1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
		assert.Contains(t, line, `"component":"payroll"`)
	}
}

type failingStore struct{ payroll.Store }

func (failingStore) ListEmployees(context.Context) ([]payroll.Employee, error) {
	return nil, errors.New("disk on fire")
}

func TestCycleService_PropagatesStoreErrors(t *testing.T) {
	svc := payroll.NewCycleService(failingStore{memory.New()}, nil, zerolog.Nop())
	_, err := svc.Preview(context.Background(), draft())
	assert.ErrorContains(t, err, "list employees")
}
