package scheduler

import (
	"errors"
	"fmt"

	"github.com/seminarlabs/cohort/internal/solver"
)

// SessionError reports the session at which a run halted and why.
// Infeasible means the limits must be loosened; Failure means the solve
// itself broke and is worth retrying as-is.
type SessionError struct {
	Session string
	Status  solver.Status // StatusInfeasible or StatusFailure
	Reason  string
}

func (e *SessionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("session %s: solver %s: %s", e.Session, e.Status, e.Reason)
	}
	return fmt.Sprintf("session %s: solver %s", e.Session, e.Status)
}

// IsInfeasible reports whether err is a SessionError with an infeasible
// verdict.
func IsInfeasible(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Status == solver.StatusInfeasible
}

// IsSolverFailure reports whether err is a SessionError caused by a
// failed (retry-worthy) solve rather than an infeasible model.
func IsSolverFailure(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Status == solver.StatusFailure
}
