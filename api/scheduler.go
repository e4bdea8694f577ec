/*
scheduler.go - Automated suspension reinstatement

PURPOSE:
  Periodically reinstates employees whose suspension has ended. A
  suspended employee earns nothing, so a missed reinstatement would
  silently zero their next cycle.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Runs once immediately on start
  - Each check lists the roster, applies payroll.ReinstateExpired and
    saves every reinstated employee (status Activo, suspensionUntil cleared)

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSuspensionScheduler(store, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ReinstateSuspensions endpoint (manual trigger)
  - payroll/status.go: ReinstateExpired
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
)

// SuspensionScheduler reinstates expired suspensions in the background.
type SuspensionScheduler struct {
	Store         payroll.Repository
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSuspensionScheduler creates a new scheduler logging to log as given.
func NewSuspensionScheduler(store payroll.Repository, log zerolog.Logger) *SuspensionScheduler {
	return &SuspensionScheduler{
		Store:         store,
		CheckInterval: time.Minute,
		Enabled:       true,
		Now:           generic.Now,
		log:           log,
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (s *SuspensionScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.log.Info().Msg("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker, s.stop)

	s.log.Info().Dur("interval", s.CheckInterval).Msg("started")
}

// Stop stops the scheduler and waits for an in-flight check.
func (s *SuspensionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.log.Info().Msg("stopped")
}

func (s *SuspensionScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	s.RunNow(context.Background())
	for {
		select {
		case <-ticker.C:
			s.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one check and returns how many employees were reinstated.
func (s *SuspensionScheduler) RunNow(ctx context.Context) int {
	n, err := ReinstateExpired(ctx, s.Store, s.Now(), s.log)
	if err != nil {
		s.log.Error().Err(err).Msg("reinstatement check failed")
	}
	return n
}

// ReinstateExpired saves every employee whose suspension ended on or before
// now. A failed save stops the pass; the next check picks up the rest.
func ReinstateExpired(ctx context.Context, store payroll.Repository, now time.Time, log zerolog.Logger) (int, error) {
	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	reinstated := payroll.ReinstateExpired(employees, generic.DateOf(now))
	for i, e := range reinstated {
		if err := store.SaveEmployee(ctx, e); err != nil {
			return i, fmt.Errorf("save employee %s: %w", e.ID, err)
		}
		log.Info().Str("employee_id", string(e.ID)).Msg("suspension ended, reinstated")
	}
	return len(reinstated), nil
}
