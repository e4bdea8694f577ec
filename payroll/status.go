package payroll

import (
	"fmt"
	"time"

	"github.com/nomina/payroll-engine/generic"
	"github.com/nomina/payroll-engine/severance"
)

// =============================================================================
// EMPLOYEE STATUS
// =============================================================================

// Status is the employment state. Wire values are the Spanish labels the
// payroll office uses.
type Status string

const (
	StatusActive    Status = "Activo"
	StatusSuspended Status = "Suspendido"
	StatusDismissed Status = "Despedido"
	StatusResigned  Status = "Renunció"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusActive, StatusSuspended, StatusDismissed, StatusResigned}

// Valid reports whether s is a known status. The empty status is treated
// as Active by the calculator but is not valid at the roster boundary.
func (s Status) Valid() bool {
	_, ok := statusRules[s]
	return ok
}

// ParseStatus validates a wire value.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrStatus(st)
	}
	return st, nil
}

// =============================================================================
// STATUS RULES - Single dispatch table for every status-dependent formula
// =============================================================================

// statusRule captures everything the cycle and severance formulas need to
// know about a status. Adding a status without a row here makes Valid fail
// and TestStatusRules_CoverEveryStatus catch it.
type statusRule struct {
	// earnsBasePay: base pay is theoretical - unpaid + holiday extra (else 0).
	earnsBasePay bool
	// earnsBonus: weekly bonus is reported and paid.
	earnsBonus bool
	// deductsInstallments: loans and penalizations are deducted and advanced.
	deductsInstallments bool
	// termination selects the settlement; TerminationNone means no liquidación.
	termination severance.Termination
}

var statusRules = map[Status]statusRule{
	StatusActive: {
		earnsBasePay:        true,
		earnsBonus:          true,
		deductsInstallments: true,
		termination:         severance.TerminationNone,
	},
	StatusSuspended: {
		termination: severance.TerminationNone,
	},
	StatusDismissed: {
		earnsBasePay: true,
		earnsBonus:   true,
		termination:  severance.TerminationDismissal,
	},
	StatusResigned: {
		earnsBasePay: true,
		earnsBonus:   true,
		termination:  severance.TerminationResignation,
	},
}

// ruleFor returns the rule for a status; an unset status is Active.
func ruleFor(s Status) statusRule {
	if s == "" {
		return statusRules[StatusActive]
	}
	if r, ok := statusRules[s]; ok {
		return r
	}
	// Unknown statuses are rejected at the roster boundary; inside the
	// engine they settle nothing and pay nothing.
	return statusRule{termination: severance.TerminationNone}
}

// Termination maps a status to its settlement kind.
func (s Status) Termination() severance.Termination { return ruleFor(s).termination }

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

// ChangeStatus returns a copy of e with the new status. suspensionUntil is
// cleared whenever the status is not Suspended; use Suspend to suspend.
func ChangeStatus(e Employee, status Status) (Employee, error) {
	if !status.Valid() {
		return e, ErrStatus(status)
	}
	if status == StatusSuspended && e.SuspensionUntil == nil {
		return e, wrapInvalid("suspending requires an end date; use Suspend")
	}
	e.Status = status
	if status != StatusSuspended {
		e.SuspensionUntil = nil
	}
	return e, nil
}

// Suspend returns a copy of e suspended until the given date.
func Suspend(e Employee, until time.Time) (Employee, error) {
	if until.IsZero() {
		return e, wrapInvalid("suspension end date is required")
	}
	u := generic.DateOf(until)
	e.Status = StatusSuspended
	e.SuspensionUntil = &u
	return e, nil
}

// ReinstateExpired returns the suspended employees whose suspension ended
// on or before now, already switched back to Active.
func ReinstateExpired(employees []Employee, now time.Time) []Employee {
	var out []Employee
	for _, e := range employees {
		if e.Status != StatusSuspended || e.SuspensionUntil == nil {
			continue
		}
		if now.Before(*e.SuspensionUntil) {
			continue
		}
		e.Status = StatusActive
		e.SuspensionUntil = nil
		out = append(out, e)
	}
	return out
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// ErrStatus wraps generic.ErrInvalidStatus with the offending value.
func ErrStatus(s Status) error {
	return fmt.Errorf("%w: %q", generic.ErrInvalidStatus, string(s))
}

func wrapInvalid(msg string) error {
	return fmt.Errorf("%w: %s", generic.ErrInvalidEmployee, msg)
}

func wrapAttendance(msg string) error {
	return fmt.Errorf("%w: %s", generic.ErrInvalidAttendance, msg)
}
