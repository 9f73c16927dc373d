package model

import (
	"fmt"

	"github.com/seminarlabs/cohort/internal/ledger"
	"github.com/seminarlabs/cohort/internal/roster"
)

// Build constructs the complete assignment MIP for one session from the
// roster, a ledger snapshot and the session limits.
//
// The ledger must be a snapshot the caller owns for the duration of the
// call; Build neither retains nor mutates it. Emission order is fixed
// (students ascending, then pair partner ascending, then group
// ascending; categories in sorted order) so identical inputs yield a
// bit-identical model.
func Build(session string, r *roster.Roster, led *ledger.Ledger, cfg SessionConfig) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := r.Len()
	if led.Size() != n {
		return nil, &ConfigError{Field: "ledger", Msg: fmt.Sprintf("ledger is %d×%d but roster has %d students", led.Size(), led.Size(), n)}
	}
	total := 0
	for _, size := range cfg.GroupSizes {
		total += size
	}
	if total != n {
		return nil, &ConfigError{
			Field: "group_sizes",
			Msg:   fmt.Sprintf("sizes sum to %d but roster has %d students; sizes must partition the roster exactly", total, n),
		}
	}

	numGroups := len(cfg.GroupSizes)
	m := &Model{
		Session:     session,
		NumStudents: n,
		NumGroups:   numGroups,
		GroupSizes:  append([]int(nil), cfg.GroupSizes...),
	}

	// Declare x then w, in index order. The LP Binaries section follows
	// this order verbatim.
	for i := 0; i < n; i++ {
		for g := 0; g < numGroups; g++ {
			m.Binaries = append(m.Binaries, XVar(i, g))
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for g := 0; g < numGroups; g++ {
				m.Binaries = append(m.Binaries, WVar(i, j, g))
			}
		}
	}

	// Objective: +1 per never-met co-placement, -penaltyWeight per
	// over-threshold co-placement. Met-but-under-threshold pairs are
	// neutral and contribute no term.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			coef := 0.0
			if led.Never(i, j) {
				coef = 1.0
			} else if led.OverThreshold(i, j, cfg.PenaltyThreshold) {
				coef = -cfg.PenaltyWeight
			}
			if coef == 0 {
				continue
			}
			for g := 0; g < numGroups; g++ {
				m.Objective = append(m.Objective, Term{Coef: coef, Var: WVar(i, j, g)})
			}
		}
	}

	// Every student in exactly one group.
	for i := 0; i < n; i++ {
		terms := make([]Term, numGroups)
		for g := 0; g < numGroups; g++ {
			terms[g] = Term{Coef: 1, Var: XVar(i, g)}
		}
		m.Constraints = append(m.Constraints, Constraint{
			Name: fmt.Sprintf("assign_%d", i), Terms: terms, Sense: SenseEQ, RHS: 1,
		})
	}

	// Exact group sizes.
	for g := 0; g < numGroups; g++ {
		terms := make([]Term, n)
		for i := 0; i < n; i++ {
			terms[i] = Term{Coef: 1, Var: XVar(i, g)}
		}
		m.Constraints = append(m.Constraints, Constraint{
			Name: fmt.Sprintf("size_%d", g), Terms: terms, Sense: SenseEQ, RHS: float64(cfg.GroupSizes[g]),
		})
	}

	// Category caps, categories in sorted order.
	for _, cat := range r.Categories() {
		members := r.CategoryMembers(cat)
		label := sanitizeName(cat)
		for g := 0; g < numGroups; g++ {
			terms := make([]Term, len(members))
			for k, i := range members {
				terms[k] = Term{Coef: 1, Var: XVar(i, g)}
			}
			m.Constraints = append(m.Constraints, Constraint{
				Name: fmt.Sprintf("cat_%s_%d", label, g), Terms: terms, Sense: SenseLE, RHS: float64(cfg.CategoryCap),
			})
		}
	}

	// Linearization of w = x AND x, for every pair and group.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for g := 0; g < numGroups; g++ {
				w, xi, xj := WVar(i, j, g), XVar(i, g), XVar(j, g)
				m.Constraints = append(m.Constraints,
					Constraint{
						Name:  fmt.Sprintf("lin1_%d_%d_%d", i, j, g),
						Terms: []Term{{Coef: 1, Var: w}, {Coef: -1, Var: xi}},
						Sense: SenseLE, RHS: 0,
					},
					Constraint{
						Name:  fmt.Sprintf("lin2_%d_%d_%d", i, j, g),
						Terms: []Term{{Coef: 1, Var: w}, {Coef: -1, Var: xj}},
						Sense: SenseLE, RHS: 0,
					},
					Constraint{
						Name:  fmt.Sprintf("lin3_%d_%d_%d", i, j, g),
						Terms: []Term{{Coef: 1, Var: w}, {Coef: -1, Var: xi}, {Coef: -1, Var: xj}},
						Sense: SenseGE, RHS: -1,
					},
				)
			}
		}
	}

	// Hard interaction cap: pairs already at the ceiling may never share
	// a group again, in any group, as a feasibility constraint.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !led.AtCap(i, j, cfg.MaxInteraction) {
				continue
			}
			m.ForbiddenPairs = append(m.ForbiddenPairs, [2]int{i, j})
			for g := 0; g < numGroups; g++ {
				m.Constraints = append(m.Constraints, Constraint{
					Name:  fmt.Sprintf("cap_%d_%d_%d", i, j, g),
					Terms: []Term{{Coef: 1, Var: WVar(i, j, g)}},
					Sense: SenseEQ, RHS: 0,
				})
			}
		}
	}

	return m, nil
}

// sanitizeName maps a category label to characters valid in an LP
// constraint name. Distinct labels can collide after sanitization;
// collisions only affect constraint naming, never the constraint set.
func sanitizeName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
