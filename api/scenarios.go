/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with a realistic
	roster for demos. Each scenario starts from the same four-person team
	and adds the ledgers, statuses or history that show one feature.

AVAILABLE SCENARIOS:

	equipo-inicial:        Four active employees, nothing else
	prestamos-y-sanciones: Two loans on one employee (ledger order) and a penalization
	terminaciones:         One dismissed, one resigned, one suspended
	historial:             Eight closed weeks with a loan being repaid

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save the base roster
 3. Apply the scenario's extras
 4. Optionally finalize cycles through the CycleService

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "historial"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler, error helpers
  - payroll/service.go: Finalize used by the historial scenario
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "equipo-inicial",
		Name:        "Equipo inicial",
		Description: "Four active employees on weekly pay",
	},
	{
		ID:          "prestamos-y-sanciones",
		Name:        "Préstamos y sanciones",
		Description: "Two loans on the same employee and a punctuality penalization",
	},
	{
		ID:          "terminaciones",
		Name:        "Terminaciones",
		Description: "A dismissal, a resignation and a one-week suspension",
	},
	{
		ID:          "historial",
		Name:        "Historial",
		Description: "Eight closed weeks while a loan is repaid",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.writeDomainError(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears everything.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeDomainError(w, "Failed to reset store", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "equipo-inicial":
		load = h.saveBaseRoster
	case "prestamos-y-sanciones":
		load = h.loadLedgerScenario
	case "terminaciones":
		load = h.loadTerminationScenario
	case "historial":
		load = h.loadHistoryScenario
	default:
		return errUnknownScenario
	}

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.setScenario("")
	if err := load(ctx); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	h.setScenario(id)
	h.log.Info().Str("scenario", id).Msg("scenario loaded")
	return nil
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func baseRoster() []payroll.Employee {
	emp := func(id, name, position, dept string, hire time.Time) payroll.Employee {
		return payroll.Employee{
			ID:               generic.EmployeeID(id),
			FullName:         name,
			Position:         position,
			DepartmentID:     dept,
			DepartmentName:   dept,
			BaseWeeklySalary: generic.DecInt(50),
			WeeklyBonus:      decimal.Zero,
			HireDate:         hire,
			Status:           payroll.StatusActive,
			PaymentFrequency: payroll.FrequencyWeekly,
		}
	}
	return []payroll.Employee{
		emp("emp-1", "Marcus V. Chen", "Líder de Logística", "Logística", generic.NewDate(2021, time.March, 15)),
		emp("emp-2", "Elena Rodríguez", "Gerente de Operaciones", "Operaciones", generic.NewDate(2019, time.November, 22)),
		emp("emp-3", "David K. Wu", "Supervisor de Flota", "Flota", generic.NewDate(2023, time.January, 10)),
		emp("emp-4", "Sofía Martínez", "Administradora de RRHH", "Administración", generic.NewDate(2022, time.June, 5)),
	}
}

func (h *Handler) saveBaseRoster(ctx context.Context) error {
	for _, e := range baseRoster() {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) addLoan(ctx context.Context, emp string, amount, weeks int, notes string) error {
	plan, err := generic.NewInstallmentPlan(generic.PlanID(h.NewID()), generic.EmployeeID(emp), generic.DecInt(amount), weeks, h.Now())
	if err != nil {
		return err
	}
	return h.Store.SaveLoan(ctx, payroll.Loan{InstallmentPlan: plan, Notes: notes})
}

// loadLedgerScenario: only the first due loan of emp-1 is deducted each cycle.
func (h *Handler) loadLedgerScenario(ctx context.Context) error {
	if err := h.saveBaseRoster(ctx); err != nil {
		return err
	}
	if err := h.addLoan(ctx, "emp-1", 120, 4, "adelanto de vacaciones"); err != nil {
		return err
	}
	if err := h.addLoan(ctx, "emp-1", 60, 2, "reparación de moto"); err != nil {
		return err
	}
	plan, err := generic.NewInstallmentPlan(generic.PlanID(h.NewID()), "emp-3", generic.DecInt(15), 3, h.Now())
	if err != nil {
		return err
	}
	return h.Store.SavePenalization(ctx, payroll.Penalization{
		InstallmentPlan: plan,
		Category:        payroll.PenaltyPunctuality,
		Reason:          "tres llegadas tarde en la semana",
	})
}

func (h *Handler) loadTerminationScenario(ctx context.Context) error {
	roster := baseRoster()
	var err error
	if roster[1], err = payroll.ChangeStatus(roster[1], payroll.StatusDismissed); err != nil {
		return err
	}
	if roster[3], err = payroll.ChangeStatus(roster[3], payroll.StatusResigned); err != nil {
		return err
	}
	if roster[2], err = payroll.Suspend(roster[2], generic.DateOf(h.Now()).AddDate(0, 0, 7)); err != nil {
		return err
	}
	for _, e := range roster {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// loadHistoryScenario finalizes eight weekly cycles ending last week.
func (h *Handler) loadHistoryScenario(ctx context.Context) error {
	if err := h.saveBaseRoster(ctx); err != nil {
		return err
	}
	if err := h.addLoan(ctx, "emp-2", 200, 10, "préstamo personal"); err != nil {
		return err
	}
	start := generic.StartOfWeek(h.Now()).AddDate(0, 0, -7*8)
	for i := 0; i < 8; i++ {
		draft := payroll.CycleDraft{CycleType: payroll.CycleWeekly, AsOf: start.AddDate(0, 0, 7*i)}
		if _, err := h.Cycles.Finalize(ctx, draft, fmt.Sprintf("demo-%d", i+1)); err != nil {
			return err
		}
	}
	return nil
}
