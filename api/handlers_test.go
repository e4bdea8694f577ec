/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Employee CRUD and status transitions
- Loan and penalization creation and validation
- Preview/finalize with Idempotency-Key
- Liquidation simulation and passive liability
- Error body shape and status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina/payroll-engine/factory"
	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/store/memory"
)

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

type testServer struct {
	h      *Handler
	store  *memory.Memory
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	calc := payroll.DefaultCalculator()
	calc.Now = func() time.Time { return testNow }
	cycles := payroll.NewCycleService(store, calc, zerolog.Nop())

	h := NewHandler(store, cycles, zerolog.Nop())
	seq := 0
	h.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	h.Now = func() time.Time { return testNow }
	return &testServer{h: h, store: store, router: NewRouter(h, RouterOptions{})}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) seedEmployee(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, s.store.SaveEmployee(context.Background(), payroll.Employee{
		ID:               generic.EmployeeID(id),
		FullName:         "Empleado " + id,
		Position:         "Chofer",
		DepartmentName:   "Flota",
		BaseWeeklySalary: generic.DecInt(50),
		HireDate:         generic.NewDate(2021, time.March, 15),
		Status:           payroll.StatusActive,
		PaymentFrequency: payroll.FrequencyWeekly,
	}))
}

func employeeBody() map[string]any {
	return map[string]any{
		"fullName":         "Marcus V. Chen",
		"position":         "Líder de Logística",
		"department":       "Logística",
		"baseWeeklySalary": 50,
		"weeklyBonus":      5,
		"hireDate":         "2021-03-15",
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateEmployee_DefaultsAndList(t *testing.T) {
	s := newTestServer(t)

	// WHEN: an employee is created without id, status or frequency
	rec := s.do(t, http.MethodPost, "/api/employees", employeeBody())

	// THEN: defaults are applied and the roster lists it
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	emp := decode[payroll.Employee](t, rec)
	assert.Equal(t, generic.EmployeeID("id-1"), emp.ID)
	assert.Equal(t, payroll.StatusActive, emp.Status)
	assert.Equal(t, payroll.FrequencyWeekly, emp.PaymentFrequency)
	assert.Equal(t, "Logística", emp.DepartmentName)

	list := decode[[]payroll.Employee](t, s.do(t, http.MethodGet, "/api/employees", nil))
	require.Len(t, list, 1)
	assert.True(t, list[0].WeeklyBonus.Equal(generic.DecInt(5)))
}

func TestCreateEmployee_Rejects(t *testing.T) {
	cases := map[string]func(map[string]any){
		"zero salary":      func(b map[string]any) { b["baseWeeklySalary"] = 0 },
		"negative bonus":   func(b map[string]any) { b["weeklyBonus"] = -1 },
		"bad hire date":    func(b map[string]any) { b["hireDate"] = "15/03/2021" },
		"unknown status":   func(b map[string]any) { b["status"] = "Vacaciones" },
		"suspended no end": func(b map[string]any) { b["status"] = string(payroll.StatusSuspended) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t)
			body := employeeBody()
			mutate(body)

			rec := s.do(t, http.MethodPost, "/api/employees", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			errBody := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, errBody.Error)
			assert.NotEmpty(t, errBody.Message)
		})
	}
}

func TestCreateEmployee_MalformedJSON(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/employees", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployee_NotFound(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/employees/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/employees/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/employees/nope", employeeBody()).Code)
}

func TestUpdateAndDeleteEmployee(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	body := employeeBody()
	body["baseWeeklySalary"] = 70
	rec := s.do(t, http.MethodPut, "/api/employees/e1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[payroll.Employee](t, rec).BaseWeeklySalary.Equal(generic.DecInt(70)))

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/employees/e1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/employees/e1", nil).Code)
}

func TestSuspendThenReinstate(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	// GIVEN: a suspension that ends today
	rec := s.do(t, http.MethodPost, "/api/employees/e1/suspend", SuspendRequest{Until: "2026-10-15"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	emp := decode[payroll.Employee](t, rec)
	assert.Equal(t, payroll.StatusSuspended, emp.Status)
	require.NotNil(t, emp.SuspensionUntil)

	// WHEN: the reinstatement check runs
	rec = s.do(t, http.MethodPost, "/api/admin/reinstate", nil)

	// THEN: the employee is active again with no end date
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rec)["reinstated"])
	emp = decode[payroll.Employee](t, s.do(t, http.MethodGet, "/api/employees/e1", nil))
	assert.Equal(t, payroll.StatusActive, emp.Status)
	assert.Nil(t, emp.SuspensionUntil)
}

func TestChangeStatus(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	// Suspending needs the dedicated endpoint
	rec := s.do(t, http.MethodPost, "/api/employees/e1/status", StatusRequest{Status: string(payroll.StatusSuspended)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/employees/e1/status", StatusRequest{Status: "Jubilado"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/employees/e1/status", StatusRequest{Status: string(payroll.StatusResigned)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payroll.StatusResigned, decode[payroll.Employee](t, rec).Status)
}

// =============================================================================
// LEDGERS
// =============================================================================

func TestCreateLoan(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	rec := s.do(t, http.MethodPost, "/api/loans", CreateLoanRequest{EmployeeID: "e1", Amount: generic.DecInt(120), TotalWeeks: 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	loan := decode[LoanDTO](t, rec)
	assert.True(t, loan.WeeklyInstallment.Equal(generic.DecInt(30)))
	assert.Equal(t, 4, loan.RemainingWeeks)
	assert.Equal(t, "$120", loan.OutstandingDisplay)

	// Unknown employee and zero weeks
	rec = s.do(t, http.MethodPost, "/api/loans", CreateLoanRequest{EmployeeID: "ghost", Amount: generic.DecInt(10), TotalWeeks: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/loans", CreateLoanRequest{EmployeeID: "e1", Amount: generic.DecInt(10), TotalWeeks: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelLoan(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	created := decode[LoanDTO](t, s.do(t, http.MethodPost, "/api/loans",
		CreateLoanRequest{EmployeeID: "e1", Amount: generic.DecInt(60), TotalWeeks: 2}))

	rec := s.do(t, http.MethodPost, "/api/loans/"+string(created.ID)+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cancelled := decode[LoanDTO](t, rec)
	assert.Equal(t, generic.PlanCancelled, cancelled.Status)
	assert.True(t, cancelled.Outstanding.IsZero())

	// Cancelling twice is a client error
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/loans/"+string(created.ID)+"/cancel", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/loans/missing/cancel", nil).Code)
}

func TestCreatePenalization(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	rec := s.do(t, http.MethodPost, "/api/penalizations", CreatePenalizationRequest{
		EmployeeID: "e1", Category: string(payroll.PenaltyConsumption), Reason: "consumo en turno",
		Amount: generic.DecInt(30), TotalWeeks: 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, payroll.PenaltyConsumption, decode[PenalizationDTO](t, rec).Category)

	rec = s.do(t, http.MethodPost, "/api/penalizations", CreatePenalizationRequest{
		EmployeeID: "e1", Category: "Otro", Amount: generic.DecInt(30), TotalWeeks: 3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[[]PenalizationDTO](t, s.do(t, http.MethodGet, "/api/penalizations", nil))
	assert.Len(t, list, 1)
}

// =============================================================================
// PAYROLL
// =============================================================================

func TestPreviewCycle_DoesNotMoveLedger(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	s.do(t, http.MethodPost, "/api/loans", CreateLoanRequest{EmployeeID: "e1", Amount: generic.DecInt(20), TotalWeeks: 2})

	// GIVEN: a full weekday attendance
	req := CycleRequest{
		CycleType: "semanal",
		Attendance: map[generic.EmployeeID][]payroll.DayStatus{
			"e1": {payroll.DayWorked, payroll.DayWorked, payroll.DayWorked, payroll.DayWorked, payroll.DayWorked},
		},
	}

	// WHEN
	rec := s.do(t, http.MethodPost, "/api/payroll/preview", req)

	// THEN: 50 base minus the 10 installment, ledger untouched
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[CyclePreviewDTO](t, rec)
	require.Len(t, preview.Week.Summaries, 1)
	assert.True(t, preview.Week.Summaries[0].Total.Equal(generic.DecInt(40)), preview.Week.Summaries[0].Total.String())
	assert.Equal(t, "$40", preview.TotalDisbursementDisplay)

	loans := decode[[]LoanDTO](t, s.do(t, http.MethodGet, "/api/loans", nil))
	assert.Equal(t, 2, loans[0].RemainingWeeks)
}

func TestPreviewCycle_RejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]string{
		"cycle type":     `{"cycle_type": "mensual"}`,
		"unknown day":    `{"attendance": {"e1": ["worked", "sick"]}}`,
		"too many days":  `{"attendance": {"e1": ["worked","worked","worked","worked","worked","worked","worked","worked"]}}`,
		"negative hours": `{"extra_hours": {"e1": -2}}`,
		"bad as_of":      `{"as_of": "ayer"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/payroll/preview", body).Code)
		})
	}
}

func TestFinalizeCycle_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	s.do(t, http.MethodPost, "/api/loans", CreateLoanRequest{EmployeeID: "e1", Amount: generic.DecInt(20), TotalWeeks: 2})

	// WHEN: the same finalize is sent twice
	first := s.do(t, http.MethodPost, "/api/payroll/finalize", `{"cycle_type": "semanal"}`, "Idempotency-Key", "close-42")
	second := s.do(t, http.MethodPost, "/api/payroll/finalize", `{"cycle_type": "semanal"}`, "Idempotency-Key", "close-42")

	// THEN: one week, one ledger advance
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, http.StatusConflict, second.Code)
	week := decode[payroll.PayrollWeek](t, first)
	assert.Equal(t, "Semana 1", week.Label)

	history := decode[[]payroll.PayrollWeek](t, s.do(t, http.MethodGet, "/api/payroll/history", nil))
	require.Len(t, history, 1)
	loans := decode[[]LoanDTO](t, s.do(t, http.MethodGet, "/api/loans", nil))
	assert.Equal(t, 1, loans[0].RemainingWeeks)

	deltas := decode[[]generic.InstallmentDelta](t, s.do(t, http.MethodGet, "/api/payroll/history/"+string(week.ID)+"/deltas", nil))
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].Deducted.Equal(generic.DecInt(10)))
}

func TestHistory_GetAndReport(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	week := decode[payroll.PayrollWeek](t, s.do(t, http.MethodPost, "/api/payroll/finalize", `{}`))

	rec := s.do(t, http.MethodGet, "/api/payroll/history/"+string(week.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, week.ID, decode[payroll.PayrollWeek](t, rec).ID)

	rec = s.do(t, http.MethodGet, "/api/payroll/history/"+string(week.ID)+"/report.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/payroll/history/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/payroll/history/missing/report.pdf", nil).Code)
}

// =============================================================================
// LIQUIDATION, DASHBOARD, RULES
// =============================================================================

func TestSimulateLiquidation(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	rec := s.do(t, http.MethodPost, "/api/liquidation/simulate", SimulateRequest{
		EmployeeID: "e1", Status: string(payroll.StatusDismissed), UnpaidWeeks: generic.DecInt(1),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dismissed := decode[LiquidationDTO](t, rec)
	require.NotNil(t, dismissed.Details)
	assert.True(t, dismissed.Details.Total.IsPositive())
	assert.True(t, dismissed.Details.IndemnityPay.IsPositive())

	rec = s.do(t, http.MethodPost, "/api/liquidation/simulate", SimulateRequest{
		EmployeeID: "e1", Status: string(payroll.StatusResigned), UnpaidWeeks: generic.DecInt(1),
	})
	resigned := decode[LiquidationDTO](t, rec)
	assert.True(t, resigned.Details.IndemnityPay.IsZero())
	assert.True(t, dismissed.Details.Total.GreaterThan(resigned.Details.Total))
}

func TestSimulateLiquidation_Rejects(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	low := 10

	cases := map[string]SimulateRequest{
		"active status":   {EmployeeID: "e1", Status: string(payroll.StatusActive)},
		"negative weeks":  {EmployeeID: "e1", Status: string(payroll.StatusResigned), UnpaidWeeks: generic.DecInt(-1)},
		"utility too low": {EmployeeID: "e1", Status: string(payroll.StatusResigned), UtilityDays: &low},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/liquidation/simulate", req).Code)
		})
	}
	rec := s.do(t, http.MethodPost, "/api/liquidation/simulate", SimulateRequest{EmployeeID: "ghost", Status: string(payroll.StatusResigned)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLiquidationReport(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")

	rec := s.do(t, http.MethodGet, "/api/employees/e1/liquidation.pdf?status=Despedido&unpaid_weeks=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/employees/e1/liquidation.pdf?status=Activo", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/employees/e1/liquidation.pdf?unpaid_weeks=abc", nil).Code)
}

func TestLiability(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	s.seedEmployee(t, "e2")

	rec := s.do(t, http.MethodGet, "/api/liquidation/liability", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	liab := decode[LiabilityDTO](t, rec)
	assert.Equal(t, 2, liab.EmployeeCount)
	assert.True(t, liab.Total.IsPositive())
	assert.Equal(t, "2026-10-15", liab.AsOf)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.seedEmployee(t, "e1")
	s.seedEmployee(t, "e2")

	rec := s.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dash := decode[DashboardDTO](t, rec)
	assert.Equal(t, 2, dash.EmployeeCount)
	assert.Equal(t, 2, dash.ActiveCount)
	assert.True(t, dash.TurnoverRate.IsZero())
	assert.Equal(t, "v2", dash.FormulaVersion)
}

func TestRules(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"base":"v2"`)
	assert.Contains(t, rec.Body.String(), `"utility_days_per_year":30`)
}

func TestRules_EchoLoadsBack(t *testing.T) {
	// GIVEN: a server running customized rules
	f := factory.NewRulesFactory()
	formula, params, err := f.ParseRules(`{"formula": {"biweekly_multiplier": 2.2}, "legal": {"utility_days_per_year": 60}}`)
	require.NoError(t, err)
	calc, err := payroll.NewCalculator(formula, params)
	require.NoError(t, err)
	store := memory.New()
	h := NewHandler(store, payroll.NewCycleService(store, calc, zerolog.Nop()), zerolog.Nop())
	router := NewRouter(h, RouterOptions{})

	// WHEN: the rules are echoed
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: the echo is a valid rules document for the same rules
	gotFormula, gotParams, err := f.ParseRules(rec.Body.String())
	require.NoError(t, err)
	assert.Equal(t, formula, gotFormula)
	assert.Equal(t, params, gotParams)
}

func TestHandler_LogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	store := memory.New()
	h := NewHandler(store, nil, zerolog.New(&buf).With().Str("component", "http").Logger())
	router := NewRouter(h, RouterOptions{})

	body, err := json.Marshal(employeeBody())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/employees", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: the handler line and the request line each carry one tag
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil).Code)
}
