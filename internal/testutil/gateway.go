// Package testutil provides deterministic in-process solver gateways
// for tests. No network, no time limits: ExactGateway enumerates every
// feasible partition of a small roster and returns the best one, so
// tests can assert on true optima instead of solver luck.
package testutil

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/seminarlabs/cohort/internal/model"
	"github.com/seminarlabs/cohort/internal/solver"
)

// ExactGateway solves a built model by exhaustive enumeration.
//
// It evaluates the model exactly as specified: for each candidate
// assignment it sets x from the assignment, sets every w[i][j][g] to
// x[i][g] AND x[j][g] (the value the linearization pins down under a
// rewarding objective), and accepts the assignment only if every
// constraint in the model holds. Intended for rosters of a dozen
// students at most.
type ExactGateway struct{}

func (ExactGateway) Solve(_ context.Context, m *model.Model, _ time.Duration) (*solver.Result, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model")
	}

	best := solver.Assignment(nil)
	bestObj := math.Inf(-1)

	assignment := make([]int, m.NumStudents)
	remaining := append([]int(nil), m.GroupSizes...)

	var recurse func(student int)
	recurse = func(student int) {
		if student == m.NumStudents {
			obj, ok := evaluate(m, assignment)
			if ok && obj > bestObj {
				bestObj = obj
				best = append(solver.Assignment(nil), assignment...)
			}
			return
		}
		for g := 0; g < m.NumGroups; g++ {
			if remaining[g] == 0 {
				continue
			}
			assignment[student] = g
			remaining[g]--
			recurse(student + 1)
			remaining[g]++
		}
	}
	recurse(0)

	if best == nil {
		return &solver.Result{Status: solver.StatusInfeasible, Reason: "no feasible partition exists"}, nil
	}
	return &solver.Result{Status: solver.StatusOptimal, Assignment: best, Objective: bestObj}, nil
}

// evaluate checks every model constraint against the candidate
// assignment and returns the objective value when feasible.
func evaluate(m *model.Model, assignment []int) (float64, bool) {
	values := make(map[string]float64, m.NumStudents*m.NumGroups)
	for i, g := range assignment {
		values[model.XVar(i, g)] = 1
	}
	for i := 0; i < m.NumStudents; i++ {
		for j := i + 1; j < m.NumStudents; j++ {
			if assignment[i] == assignment[j] {
				values[model.WVar(i, j, assignment[i])] = 1
			}
		}
	}

	const eps = 1e-9
	for _, c := range m.Constraints {
		sum := 0.0
		for _, t := range c.Terms {
			sum += t.Coef * values[t.Var]
		}
		switch c.Sense {
		case model.SenseLE:
			if sum > c.RHS+eps {
				return 0, false
			}
		case model.SenseGE:
			if sum < c.RHS-eps {
				return 0, false
			}
		case model.SenseEQ:
			if math.Abs(sum-c.RHS) > eps {
				return 0, false
			}
		}
	}

	obj := 0.0
	for _, t := range m.Objective {
		obj += t.Coef * values[t.Var]
	}
	return obj, true
}

// FailingGateway returns the given non-usable status for every solve.
type FailingGateway struct {
	Status solver.Status // StatusInfeasible or StatusFailure
	Reason string
}

func (g FailingGateway) Solve(context.Context, *model.Model, time.Duration) (*solver.Result, error) {
	return &solver.Result{Status: g.Status, Reason: g.Reason}, nil
}

// FailAfterGateway solves exactly like ExactGateway for the first N
// sessions, then fails. Used to test run-halting behavior mid-batch.
type FailAfterGateway struct {
	Succeed int
	Status  solver.Status
	calls   int
}

func (g *FailAfterGateway) Solve(ctx context.Context, m *model.Model, timeLimit time.Duration) (*solver.Result, error) {
	g.calls++
	if g.calls > g.Succeed {
		return &solver.Result{Status: g.Status, Reason: "scripted failure"}, nil
	}
	return ExactGateway{}.Solve(ctx, m, timeLimit)
}
