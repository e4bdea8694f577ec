/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the roster, the loan and penalization ledgers, the cycle
  calculator and the liquidación calculator via REST. Handles HTTP
  request/response and JSON, and delegates to the payroll package.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List the roster
    POST   /api/employees                       Create employee
    GET    /api/employees/{id}                  Get employee
    PUT    /api/employees/{id}                  Replace employee
    DELETE /api/employees/{id}                  Remove employee
    POST   /api/employees/{id}/suspend          Suspend until a date
    POST   /api/employees/{id}/status           Change status
    GET    /api/employees/{id}/liquidation.pdf  Liquidación report

  Ledgers:
    GET    /api/loans                  List loans with progress
    POST   /api/loans                  Open a loan
    POST   /api/loans/{id}/cancel      Write off a loan
    GET    /api/penalizations          List penalizations with progress
    POST   /api/penalizations          Open a penalization

  Payroll:
    POST   /api/payroll/preview                     Compute the open cycle
    POST   /api/payroll/finalize                    Close the open cycle (Idempotency-Key)
    GET    /api/payroll/history                     Closed weeks, newest first
    GET    /api/payroll/history/{id}                One week
    GET    /api/payroll/history/{id}/deltas         Ledger advances of one week
    GET    /api/payroll/history/{id}/report.pdf     Week report

  Liquidation:
    POST   /api/liquidation/simulate   What-if settlement
    GET    /api/liquidation/liability  Passive cost if everyone resigned

  Other:
    GET    /api/dashboard              Stats from a preview of the open cycle
    GET    /api/rules                  Formula set and legal parameters in use
    POST   /api/admin/reinstate        Reinstate expired suspensions now

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: payroll.Repository
  - Cycles: payroll.CycleService (preview + at-most-once finalize)

ERROR HANDLING:
  Errors are returned as JSON {error, message} with:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Replayed or concurrent finalize, ledger moved during finalize
  - 501: Store lacks an optional capability
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/factory"
	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/report"
	"github.com/nomina/payroll-engine/severance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  payroll.Repository
	Cycles *payroll.CycleService

	// NewID and Now are replaceable in tests.
	NewID func() string
	Now   func() time.Time

	log zerolog.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. A nil cycles service uses the default
// calculator over the same store. log should already carry its component.
func NewHandler(store payroll.Repository, cycles *payroll.CycleService, log zerolog.Logger) *Handler {
	if cycles == nil {
		cycles = payroll.NewCycleService(store, nil, log)
	}
	return &Handler{
		Store:  store,
		Cycles: cycles,
		NewID:  uuid.NewString,
		Now:    generic.Now,
		log:    log,
	}
}

func (h *Handler) params() severance.Params { return h.Cycles.Calculator().Params }

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the roster in insertion order.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}
	if employees == nil {
		employees = []payroll.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// CreateEmployee validates and adds an employee. The ID is generated when
// the request omits it.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = h.NewID()
	}
	emp, err := employeeFromRequest(req)
	if err != nil {
		h.writeDomainError(w, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, "Failed to create employee", err)
		return
	}
	h.log.Info().Str("employee_id", string(emp.ID)).Msg("employee created")
	writeJSON(w, http.StatusCreated, emp)
}

// UpdateEmployee replaces an existing employee.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := employeeParam(r)
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	var req EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = string(id)
	emp, err := employeeFromRequest(req)
	if err != nil {
		h.writeDomainError(w, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// DeleteEmployee removes an employee. Ledgers and history are kept.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), employeeParam(r)); err != nil {
		h.writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuspendEmployee suspends an employee until the given date.
func (h *Handler) SuspendEmployee(w http.ResponseWriter, r *http.Request) {
	var req SuspendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	until, err := generic.ParseDate(req.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid until format (use YYYY-MM-DD)", err)
		return
	}
	h.transition(w, r, func(e payroll.Employee) (payroll.Employee, error) {
		return payroll.Suspend(e, until)
	})
}

// ChangeEmployeeStatus moves an employee to Activo, Despedido or Renunció.
// Suspending goes through SuspendEmployee because it needs an end date.
func (h *Handler) ChangeEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := payroll.ParseStatus(req.Status)
	if err != nil {
		h.writeDomainError(w, "Invalid status", err)
		return
	}
	h.transition(w, r, func(e payroll.Employee) (payroll.Employee, error) {
		return payroll.ChangeStatus(e, status)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(payroll.Employee) (payroll.Employee, error)) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	next, err := fn(emp)
	if err != nil {
		h.writeDomainError(w, "Invalid status change", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), next); err != nil {
		h.writeDomainError(w, "Failed to update employee", err)
		return
	}
	h.log.Info().
		Str("employee_id", string(next.ID)).
		Str("from", string(emp.Status)).
		Str("to", string(next.Status)).
		Msg("employee status changed")
	writeJSON(w, http.StatusOK, next)
}

// GetLiquidationReport renders the liquidación of one employee as a PDF.
// Query: status (default Renunció), unpaid_weeks (default 0), as_of.
func (h *Handler) GetLiquidationReport(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	q := r.URL.Query()
	status := payroll.StatusResigned
	if s := q.Get("status"); s != "" {
		status = payroll.Status(s)
	}
	weeks := decimal.Zero
	if s := q.Get("unpaid_weeks"); s != "" {
		if weeks, err = decimal.NewFromString(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid unpaid_weeks", err)
			return
		}
	}
	asOf, err := h.asOf(q.Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	details, err := payroll.Simulate(payroll.Simulation{
		Employee: emp, Status: status, UnpaidWeeks: weeks, Params: h.params(), AsOf: asOf,
	})
	if err != nil {
		h.writeDomainError(w, "Cannot compute liquidation", err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteLiquidation(&buf, emp, status, details, asOf); err != nil {
		h.writeDomainError(w, "Failed to render report", err)
		return
	}
	writePDF(w, fmt.Sprintf("liquidacion-%s.pdf", emp.ID), buf.Bytes())
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// ListLoans returns every loan with its progress.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Store.ListLoans(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list loans", err)
		return
	}
	dtos := make([]LoanDTO, len(loans))
	for i, l := range loans {
		dtos[i] = LoanDTO{Loan: l, PlanProgressDTO: progressOf(l.InstallmentPlan)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLoan opens a loan for an existing employee.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, ok := h.newPlan(w, r, req.EmployeeID, req.Amount, req.TotalWeeks)
	if !ok {
		return
	}
	loan := payroll.Loan{InstallmentPlan: plan, Notes: req.Notes}
	if err := h.Store.SaveLoan(r.Context(), loan); err != nil {
		h.writeDomainError(w, "Failed to create loan", err)
		return
	}
	h.log.Info().
		Str("loan_id", string(loan.ID)).
		Str("employee_id", string(loan.EmployeeID)).
		Str("amount", loan.Amount.String()).
		Int("weeks", loan.TotalWeeks).
		Msg("loan created")
	writeJSON(w, http.StatusCreated, LoanDTO{Loan: loan, PlanProgressDTO: progressOf(loan.InstallmentPlan)})
}

// CancelLoan writes off an active loan. Settled loans cannot be cancelled.
func (h *Handler) CancelLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), generic.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to get loan", err)
		return
	}
	if loan.Status != generic.PlanActive {
		h.writeDomainError(w, "Loan is not active", &generic.PlanError{
			EmployeeID: loan.EmployeeID, Reason: "loan is " + string(loan.Status),
		})
		return
	}
	loan.Status = generic.PlanCancelled
	if err := h.Store.SaveLoan(r.Context(), loan); err != nil {
		h.writeDomainError(w, "Failed to cancel loan", err)
		return
	}
	writeJSON(w, http.StatusOK, LoanDTO{Loan: loan, PlanProgressDTO: progressOf(loan.InstallmentPlan)})
}

// ListPenalizations returns every penalization with its progress.
func (h *Handler) ListPenalizations(w http.ResponseWriter, r *http.Request) {
	pens, err := h.Store.ListPenalizations(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list penalizations", err)
		return
	}
	dtos := make([]PenalizationDTO, len(pens))
	for i, p := range pens {
		dtos[i] = PenalizationDTO{Penalization: p, PlanProgressDTO: progressOf(p.InstallmentPlan)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePenalization opens a disciplinary deduction.
func (h *Handler) CreatePenalization(w http.ResponseWriter, r *http.Request) {
	var req CreatePenalizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := payroll.PenaltyCategory(req.Category)
	if !category.Valid() {
		h.writeDomainError(w, "Invalid penalization", &generic.PlanError{
			EmployeeID: generic.EmployeeID(req.EmployeeID), Reason: "unknown category " + req.Category,
		})
		return
	}
	plan, ok := h.newPlan(w, r, req.EmployeeID, req.Amount, req.TotalWeeks)
	if !ok {
		return
	}
	pen := payroll.Penalization{InstallmentPlan: plan, Category: category, Reason: req.Reason}
	if err := h.Store.SavePenalization(r.Context(), pen); err != nil {
		h.writeDomainError(w, "Failed to create penalization", err)
		return
	}
	h.log.Info().
		Str("penalization_id", string(pen.ID)).
		Str("employee_id", string(pen.EmployeeID)).
		Str("category", string(pen.Category)).
		Msg("penalization created")
	writeJSON(w, http.StatusCreated, PenalizationDTO{Penalization: pen, PlanProgressDTO: progressOf(pen.InstallmentPlan)})
}

// newPlan checks the employee exists and builds a validated plan.
func (h *Handler) newPlan(w http.ResponseWriter, r *http.Request, employeeID string, amount decimal.Decimal, weeks int) (generic.InstallmentPlan, bool) {
	if _, err := h.Store.GetEmployee(r.Context(), generic.EmployeeID(employeeID)); err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return generic.InstallmentPlan{}, false
	}
	plan, err := generic.NewInstallmentPlan(
		generic.PlanID(h.NewID()), generic.EmployeeID(employeeID), amount, weeks, h.Now(),
	)
	if err != nil {
		h.writeDomainError(w, "Invalid installment plan", err)
		return generic.InstallmentPlan{}, false
	}
	return plan, true
}

func progressOf(p generic.InstallmentPlan) PlanProgressDTO {
	out := p.Outstanding()
	return PlanProgressDTO{
		PaidWeeks:          p.PaidWeeks(),
		Outstanding:        out,
		OutstandingDisplay: report.FormatCurrency(out),
		Progress:           p.Progress(),
	}
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// PreviewCycle computes the open cycle without moving the ledgers.
func (h *Handler) PreviewCycle(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	res, err := h.Cycles.Preview(r.Context(), draft)
	if err != nil {
		h.writeDomainError(w, "Failed to preview cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, CyclePreviewDTO{
		Week:                     res.Week,
		TotalDisbursementDisplay: report.FormatCurrency(res.Week.TotalDisbursement),
	})
}

// FinalizeCycle closes the open cycle. The Idempotency-Key header makes a
// retried request safe: the second attempt gets 409 and nothing moves.
func (h *Handler) FinalizeCycle(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	week, err := h.Cycles.Finalize(r.Context(), draft, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.writeDomainError(w, "Failed to finalize cycle", err)
		return
	}
	writeJSON(w, http.StatusCreated, week)
}

func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request) (payroll.CycleDraft, bool) {
	var req CycleRequest
	if !decodeJSON(w, r, &req) {
		return payroll.CycleDraft{}, false
	}
	draft, err := draftFromRequest(req)
	if err != nil {
		h.writeDomainError(w, "Invalid cycle", err)
		return payroll.CycleDraft{}, false
	}
	return draft, true
}

// ListCycles returns the closed weeks, newest first.
func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.Store.ListCycles(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list cycles", err)
		return
	}
	if weeks == nil {
		weeks = []payroll.PayrollWeek{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

// GetCycle returns one closed week.
func (h *Handler) GetCycle(w http.ResponseWriter, r *http.Request) {
	week, err := h.Store.GetCycle(r.Context(), cycleParam(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// GetCycleDeltas returns what one closed week deducted from the ledgers.
func (h *Handler) GetCycleDeltas(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.Store.(payroll.DeltaStore)
	if !ok {
		h.writeDomainError(w, "Ledger audit not available", generic.ErrStoreRequired)
		return
	}
	id := cycleParam(r)
	if _, err := h.Store.GetCycle(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to get cycle", err)
		return
	}
	deltas, err := ds.ListDeltas(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to list deltas", err)
		return
	}
	if deltas == nil {
		deltas = []generic.InstallmentDelta{}
	}
	writeJSON(w, http.StatusOK, deltas)
}

// GetCycleReport renders one closed week as a PDF.
func (h *Handler) GetCycleReport(w http.ResponseWriter, r *http.Request) {
	week, err := h.Store.GetCycle(r.Context(), cycleParam(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get cycle", err)
		return
	}
	var buf bytes.Buffer
	if err := report.WritePayrollWeek(&buf, week); err != nil {
		h.writeDomainError(w, "Failed to render report", err)
		return
	}
	writePDF(w, fmt.Sprintf("nomina-%s.pdf", week.ID), buf.Bytes())
}

// =============================================================================
// LIQUIDATION HANDLERS
// =============================================================================

// SimulateLiquidation prices a what-if termination. Legal parameters in
// the request override the configured ones for this call only.
func (h *Handler) SimulateLiquidation(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), generic.EmployeeID(req.EmployeeID))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	params := h.params()
	if req.UtilityDays != nil || req.VacationBaseDays != nil {
		utility, vacation := params.UtilityDaysPerYear, params.VacationBaseDays
		if req.UtilityDays != nil {
			utility = *req.UtilityDays
		}
		if req.VacationBaseDays != nil {
			vacation = req.VacationBaseDays
		}
		if params, err = severance.NewParams(utility, vacation); err != nil {
			h.writeDomainError(w, "Invalid legal parameters", err)
			return
		}
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	status := payroll.Status(req.Status)
	details, err := payroll.Simulate(payroll.Simulation{
		Employee: emp, Status: status, UnpaidWeeks: req.UnpaidWeeks, Params: params, AsOf: asOf,
	})
	if err != nil {
		h.writeDomainError(w, "Cannot simulate liquidation", err)
		return
	}
	writeJSON(w, http.StatusOK, LiquidationDTO{
		EmployeeID:   emp.ID,
		Status:       status,
		Details:      details,
		TotalDisplay: report.FormatCurrency(details.Total),
	})
}

// GetLiability returns the passive cost if every employee resigned.
func (h *Handler) GetLiability(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}
	total := payroll.PassiveLiability(employees, asOf, h.params())
	writeJSON(w, http.StatusOK, LiabilityDTO{
		Total:         total,
		TotalDisplay:  report.FormatCurrency(total),
		EmployeeCount: len(employees),
		AsOf:          asOf.Format("2006-01-02"),
	})
}

// =============================================================================
// DASHBOARD, RULES, ADMIN
// =============================================================================

// GetDashboard previews the open cycle with default attendance and
// derives the stats from it.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.Cycles.Preview(ctx, payroll.CycleDraft{CycleType: payroll.CycleWeekly})
	if err != nil {
		h.writeDomainError(w, "Failed to preview cycle", err)
		return
	}
	loans, err := h.Store.ListLoans(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list loans", err)
		return
	}
	pens, err := h.Store.ListPenalizations(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list penalizations", err)
		return
	}
	closed, err := h.Store.CountCycles(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to count cycles", err)
		return
	}

	calc := h.Cycles.Calculator()
	stats := payroll.ComputeStats(res.Week, loans, pens, calc.Formula.WeekdaysPerCycle)
	writeJSON(w, http.StatusOK, DashboardDTO{
		Stats:                 stats,
		ProjectedTotalDisplay: report.FormatCurrency(stats.ProjectedTotal),
		FormulaVersion:        calc.Formula.Version,
		CyclesClosed:          closed,
	})
}

// GetRules returns the formula set and legal parameters in their JSON form.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	calc := h.Cycles.Calculator()
	writeJSON(w, http.StatusOK, factory.NewRulesFactory().ToJSON(calc.Formula, calc.Params))
}

// ReinstateSuspensions runs the suspension check immediately.
func (h *Handler) ReinstateSuspensions(w http.ResponseWriter, r *http.Request) {
	n, err := ReinstateExpired(r.Context(), h.Store, h.Now(), h.log)
	if err != nil {
		h.writeDomainError(w, "Failed to reinstate suspensions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reinstated": n})
}

// =============================================================================
// REQUEST MAPPING
// =============================================================================

func employeeFromRequest(req EmployeeRequest) (payroll.Employee, error) {
	hire, err := generic.ParseDate(req.HireDate)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("%w: hireDate must be YYYY-MM-DD", generic.ErrInvalidEmployee)
	}
	emp := payroll.Employee{
		ID:               generic.EmployeeID(req.ID),
		FullName:         req.FullName,
		Email:            req.Email,
		Position:         req.Position,
		DepartmentID:     req.DepartmentID,
		DepartmentName:   req.Department,
		BaseWeeklySalary: req.BaseWeeklySalary,
		WeeklyBonus:      req.WeeklyBonus,
		HireDate:         hire,
		Status:           payroll.Status(req.Status),
		PaymentFrequency: payroll.PaymentFrequency(req.PaymentFrequency),
	}
	if emp.Status == "" {
		emp.Status = payroll.StatusActive
	}
	if emp.PaymentFrequency == "" {
		emp.PaymentFrequency = payroll.FrequencyWeekly
	}
	if req.SuspensionUntil != "" {
		until, err := generic.ParseDate(req.SuspensionUntil)
		if err != nil {
			return payroll.Employee{}, fmt.Errorf("%w: suspensionUntil must be YYYY-MM-DD", generic.ErrInvalidEmployee)
		}
		emp.SuspensionUntil = &until
	}
	if err := emp.Validate(); err != nil {
		return payroll.Employee{}, err
	}
	return emp, nil
}

func draftFromRequest(req CycleRequest) (payroll.CycleDraft, error) {
	draft := payroll.CycleDraft{CycleType: payroll.CycleType(req.CycleType)}
	if draft.CycleType == "" {
		draft.CycleType = payroll.CycleWeekly
	}
	if !draft.CycleType.Valid() {
		return draft, fmt.Errorf("%w: cycle_type must be semanal or quincenal", generic.ErrInvalidParameter)
	}
	if req.Attendance != nil {
		draft.Attendance = make(map[generic.EmployeeID]payroll.AttendanceWeek, len(req.Attendance))
		for id, days := range req.Attendance {
			week, err := payroll.AttendanceFromSlice(days)
			if err != nil {
				return draft, fmt.Errorf("employee %s: %w", id, err)
			}
			draft.Attendance[id] = week
		}
	}
	for id, hours := range req.ExtraHours {
		if hours.IsNegative() {
			return draft, fmt.Errorf("%w: employee %s has negative extra hours", generic.ErrInvalidAttendance, id)
		}
	}
	draft.ExtraHours = req.ExtraHours
	if req.AsOf != "" {
		asOf, err := generic.ParseDate(req.AsOf)
		if err != nil {
			return draft, fmt.Errorf("%w: as_of must be YYYY-MM-DD", generic.ErrInvalidParameter)
		}
		draft.AsOf = asOf
	}
	return draft, nil
}

func (h *Handler) asOf(s string) (time.Time, error) {
	if s == "" {
		return generic.DateOf(h.Now()), nil
	}
	return generic.ParseDate(s)
}

func employeeParam(r *http.Request) generic.EmployeeID {
	return generic.EmployeeID(chi.URLParam(r, "id"))
}

func cycleParam(r *http.Request) generic.CycleID {
	return generic.CycleID(chi.URLParam(r, "id"))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the generic error families to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	case errors.Is(err, generic.ErrStoreRequired):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}
