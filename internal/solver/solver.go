package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/seminarlabs/cohort/internal/model"
)

// Status classifies a solve outcome.
type Status int

const (
	// StatusOptimal: proven-optimal assignment found.
	StatusOptimal Status = iota
	// StatusFeasible: assignment found within the time limit, optimality
	// not proven. Usable exactly like StatusOptimal.
	StatusFeasible
	// StatusInfeasible: the constraint set admits no assignment. Requires
	// loosening limits; retrying without changes cannot help.
	StatusInfeasible
	// StatusFailure: the solve never produced a verdict (service
	// unreachable, submission rejected, timeout with no incumbent).
	// Retry-worthy, unlike StatusInfeasible.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus is the inverse of Status.String, for statuses read back
// from storage.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "optimal":
		return StatusOptimal, nil
	case "feasible":
		return StatusFeasible, nil
	case "infeasible":
		return StatusInfeasible, nil
	case "failure":
		return StatusFailure, nil
	default:
		return 0, fmt.Errorf("unknown solve status %q", s)
	}
}

// Assignment maps each student index to exactly one group index.
type Assignment []int

// Groups converts the assignment into per-group membership lists for a
// model with numGroups groups. Student indices appear in ascending order
// within each group.
func (a Assignment) Groups(numGroups int) [][]int {
	groups := make([][]int, numGroups)
	for student, g := range a {
		groups[g] = append(groups[g], student)
	}
	return groups
}

// Validate checks that the assignment is a total function onto the
// model's groups and satisfies the exact group sizes. A gateway that
// claims Optimal or Feasible must pass this.
func (a Assignment) Validate(m *model.Model) error {
	if len(a) != m.NumStudents {
		return fmt.Errorf("assignment covers %d students, model has %d", len(a), m.NumStudents)
	}
	counts := make([]int, m.NumGroups)
	for student, g := range a {
		if g < 0 || g >= m.NumGroups {
			return fmt.Errorf("student %d assigned to group %d, model has %d groups", student, g, m.NumGroups)
		}
		counts[g]++
	}
	for g, want := range m.GroupSizes {
		if counts[g] != want {
			return fmt.Errorf("group %d has %d members, configured size is %d", g, counts[g], want)
		}
	}
	return nil
}

// Result is the outcome of one solve.
type Result struct {
	Status     Status
	Assignment Assignment // set only for StatusOptimal/StatusFeasible
	Objective  float64    // objective value of the returned assignment
	Reason     string     // diagnostic detail for Infeasible/Failure
}

// Usable reports whether the result carries a schedule the engine may
// consume.
func (r *Result) Usable() bool {
	return r.Status == StatusOptimal || r.Status == StatusFeasible
}

// Gateway is the external solving collaborator.
//
// Solve blocks until the solve concludes or ctx is cancelled; timeLimit
// is the solver-side search budget and is passed through to the service,
// while ctx covers transport-level abandonment. Transport errors are
// returned as a Result with StatusFailure, not a Go error, so callers
// have a single taxonomy; the error return is reserved for programmer
// mistakes (nil model, invalid time limit).
type Gateway interface {
	Solve(ctx context.Context, m *model.Model, timeLimit time.Duration) (*Result, error)
}
