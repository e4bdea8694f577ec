/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - Rejected input at a boundary (plans, parameters, statuses)
  2. Lookup errors - Missing employees, plans or cycles
  3. Finalization errors - At-most-once guarantees around cycle close

NOTE:
  The calculators themselves never return errors. Everything here is
  raised at a boundary: ledger creation, configuration loading, the
  store, or the finalize service.

USAGE:
  if errors.Is(err, generic.ErrCycleAlreadyFinalized) {
      // replayed finalize, safe to ignore
  }

SEE ALSO:
  - installment.go: Returns PlanError
  - severance/params.go: Returns ParameterError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPlanNotFound is returned when a referenced loan or penalization doesn't exist.
	ErrPlanNotFound = errors.New("installment plan not found")

	// ErrCycleNotFound is returned when a payroll week is not in the history.
	ErrCycleNotFound = errors.New("payroll cycle not found")

	// ErrCycleAlreadyFinalized is returned when a finalize is replayed with an
	// idempotency key that already produced a payroll week.
	ErrCycleAlreadyFinalized = errors.New("payroll cycle already finalized")

	// ErrFinalizeInProgress is returned when another finalize holds the roster.
	ErrFinalizeInProgress = errors.New("another finalize is in progress")

	// ErrLedgerChanged is returned when a loan or penalization moved between
	// the finalize snapshot and the commit (cancelled, deleted, advanced).
	ErrLedgerChanged = errors.New("ledger changed during finalize")

	// ErrInvalidPlan is returned when an installment plan cannot be created.
	ErrInvalidPlan = errors.New("invalid installment plan")

	// ErrInvalidParameter is returned when a legal or formula parameter is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidStatus is returned for an employee status outside the known set.
	ErrInvalidStatus = errors.New("invalid employee status")

	// ErrInvalidEmployee is returned when an employee record fails validation.
	ErrInvalidEmployee = errors.New("invalid employee")

	// ErrInvalidAttendance is returned when an attendance entry is malformed.
	ErrInvalidAttendance = errors.New("invalid attendance")

	// ErrStoreRequired is returned when an operation requires a store capability.
	ErrStoreRequired = errors.New("operation requires extended store interface")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParameterError describes an out-of-range configuration value.
type ParameterError struct {
	Name  string
	Value string
	Min   string
	Max   string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%s: must be between %s and %s",
		e.Name, e.Value, e.Min, e.Max)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// PlanError describes why an installment plan was rejected.
type PlanError struct {
	EmployeeID EmployeeID
	Reason     string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("invalid installment plan for %s: %s", e.EmployeeID, e.Reason)
}

func (e *PlanError) Unwrap() error {
	return ErrInvalidPlan
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPlan) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidEmployee) ||
		errors.Is(err, ErrInvalidAttendance)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrCycleNotFound)
}

// IsConflict returns true if the error is an at-most-once violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCycleAlreadyFinalized) ||
		errors.Is(err, ErrFinalizeInProgress) ||
		errors.Is(err, ErrLedgerChanged)
}
