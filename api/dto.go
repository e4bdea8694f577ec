/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types that
  already carry JSON tags (payroll.Employee, payroll.PayrollWeek, the
  loan and penalization ledgers) are returned as-is; these types cover
  request bodies and the few responses that wrap or format domain values.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

MONEY:
  Amounts are decimal.Decimal and travel as JSON strings or numbers.
  Formatted fields ("…Display") use report.FormatCurrency.

VALIDATION:
  Validation is done in handlers and the payroll package, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: Domain JSON shapes
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeRequest creates or replaces an employee.
type EmployeeRequest struct {
	ID               string          `json:"id,omitempty"`
	FullName         string          `json:"fullName"`
	Email            string          `json:"email,omitempty"`
	Position         string          `json:"position"`
	DepartmentID     string          `json:"departmentId"`
	Department       string          `json:"department"`
	BaseWeeklySalary decimal.Decimal `json:"baseWeeklySalary"`
	WeeklyBonus      decimal.Decimal `json:"weeklyBonus"`
	HireDate         string          `json:"hireDate"`
	Status           string          `json:"status,omitempty"`
	PaymentFrequency string          `json:"paymentFrequency,omitempty"`
	SuspensionUntil  string          `json:"suspensionUntil,omitempty"`
}

// SuspendRequest suspends an employee until a date (YYYY-MM-DD).
type SuspendRequest struct {
	Until string `json:"until"`
}

// StatusRequest moves an employee to a new status.
type StatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// LEDGERS
// =============================================================================

// CreateLoanRequest opens a loan repaid in TotalWeeks installments.
type CreateLoanRequest struct {
	EmployeeID string          `json:"employeeId"`
	Amount     decimal.Decimal `json:"amount"`
	TotalWeeks int             `json:"totalWeeks"`
	Notes      string          `json:"notes,omitempty"`
}

// CreatePenalizationRequest opens a disciplinary deduction.
type CreatePenalizationRequest struct {
	EmployeeID string          `json:"employeeId"`
	Category   string          `json:"category"`
	Reason     string          `json:"reason"`
	Amount     decimal.Decimal `json:"amount"`
	TotalWeeks int             `json:"totalWeeks"`
}

// PlanProgressDTO adds the derived progress fields to a plan.
type PlanProgressDTO struct {
	PaidWeeks          int             `json:"paidWeeks"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	OutstandingDisplay string          `json:"outstandingDisplay"`
	Progress           decimal.Decimal `json:"progress"`
}

// LoanDTO is a loan plus its progress.
type LoanDTO struct {
	payroll.Loan
	PlanProgressDTO
}

// PenalizationDTO is a penalization plus its progress.
type PenalizationDTO struct {
	payroll.Penalization
	PlanProgressDTO
}

// =============================================================================
// PAYROLL CYCLE
// =============================================================================

// CycleRequest is the open cycle entered by the payroll office.
// Attendance omitted entirely means the default week for everyone.
type CycleRequest struct {
	CycleType  string                                     `json:"cycle_type"`
	Attendance map[generic.EmployeeID][]payroll.DayStatus `json:"attendance,omitempty"`
	ExtraHours map[generic.EmployeeID]decimal.Decimal     `json:"extra_hours,omitempty"`
	AsOf       string                                     `json:"as_of,omitempty"`
}

// CyclePreviewDTO is a computed but uncommitted cycle.
type CyclePreviewDTO struct {
	Week                     payroll.PayrollWeek `json:"week"`
	TotalDisbursementDisplay string              `json:"totalDisbursementDisplay"`
}

// =============================================================================
// LIQUIDATION
// =============================================================================

// SimulateRequest is a what-if liquidación. Nil legal fields use the
// server's configured parameters.
type SimulateRequest struct {
	EmployeeID       string          `json:"employee_id"`
	Status           string          `json:"status"`
	UnpaidWeeks      decimal.Decimal `json:"unpaid_weeks"`
	UtilityDays      *int            `json:"utility_days,omitempty"`
	VacationBaseDays *int            `json:"vacation_base_days,omitempty"`
	AsOf             string          `json:"as_of,omitempty"`
}

// LiquidationDTO wraps a settlement with its display total.
type LiquidationDTO struct {
	EmployeeID   generic.EmployeeID          `json:"employeeId"`
	Status       payroll.Status              `json:"status"`
	Details      *payroll.LiquidationDetails `json:"details"`
	TotalDisplay string                      `json:"totalDisplay"`
}

// LiabilityDTO is the passive cost if everyone resigned today.
type LiabilityDTO struct {
	Total         decimal.Decimal `json:"total"`
	TotalDisplay  string          `json:"totalDisplay"`
	EmployeeCount int             `json:"employeeCount"`
	AsOf          string          `json:"asOf"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardDTO is the stats block plus display strings.
type DashboardDTO struct {
	payroll.Stats
	ProjectedTotalDisplay string `json:"projectedTotalDisplay"`
	FormulaVersion        string `json:"formulaVersion"`
	CyclesClosed          int    `json:"cyclesClosed"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
