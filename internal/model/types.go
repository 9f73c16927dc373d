package model

import (
	"fmt"
	"time"
)

// SessionConfig carries the per-session limits the builder parameterizes
// the model with. One instance per session; sessions in a multi-session
// run may share or vary these.
type SessionConfig struct {
	// GroupSizes must partition the roster exactly: len(GroupSizes) groups,
	// summing to the roster size.
	GroupSizes []int

	// CategoryCap is the maximum number of students sharing one category
	// label allowed in a single group.
	CategoryCap int

	// PenaltyThreshold is the pair count at which re-pairing two students
	// stops being neutral and starts costing PenaltyWeight per placement.
	PenaltyThreshold int

	// PenaltyWeight is the flat objective cost of co-placing a pair that
	// is at or above PenaltyThreshold.
	PenaltyWeight float64

	// MaxInteraction is the hard ceiling: a pair at this count may never
	// share a group again.
	MaxInteraction int

	// TimeLimit bounds the solver's search per session.
	TimeLimit time.Duration
}

// Validate checks the limits that must hold for any roster size.
// The group-size/roster-size partition check needs the roster and lives
// in Build.
func (c SessionConfig) Validate() error {
	if len(c.GroupSizes) == 0 {
		return &ConfigError{Field: "group_sizes", Msg: "no groups configured"}
	}
	for i, size := range c.GroupSizes {
		if size <= 0 {
			return &ConfigError{Field: "group_sizes", Msg: fmt.Sprintf("group %d has non-positive size %d", i, size)}
		}
	}
	if c.CategoryCap <= 0 {
		return &ConfigError{Field: "category_cap", Msg: fmt.Sprintf("must be positive, got %d", c.CategoryCap)}
	}
	if c.PenaltyThreshold <= 0 {
		return &ConfigError{Field: "penalty_threshold", Msg: fmt.Sprintf("must be positive, got %d", c.PenaltyThreshold)}
	}
	if c.PenaltyWeight < 0 {
		return &ConfigError{Field: "penalty_weight", Msg: fmt.Sprintf("must be non-negative, got %g", c.PenaltyWeight)}
	}
	if c.MaxInteraction <= 0 {
		return &ConfigError{Field: "max_interaction", Msg: fmt.Sprintf("must be positive, got %d", c.MaxInteraction)}
	}
	if c.TimeLimit <= 0 {
		return &ConfigError{Field: "time_limit", Msg: "must be positive"}
	}
	return nil
}

// EvenSizes splits n students across k groups as evenly as possible,
// larger groups first: n=14, k=4 gives [4 4 3 3].
func EvenSizes(n, k int) []int {
	base := n / k
	extra := n % k
	sizes := make([]int, k)
	for i := range sizes {
		if i < extra {
			sizes[i] = base + 1
		} else {
			sizes[i] = base
		}
	}
	return sizes
}

// Sense is a constraint relation.
type Sense int

const (
	SenseLE Sense = iota // <=
	SenseGE              // >=
	SenseEQ              // ==
)

func (s Sense) String() string {
	switch s {
	case SenseLE:
		return "<="
	case SenseGE:
		return ">="
	case SenseEQ:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Term is one coefficient*variable entry in a linear expression.
type Term struct {
	Coef float64
	Var  string
}

// Constraint is one linear constraint: Terms Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is one fully specified session assignment problem. All slices
// are in the deterministic order Build emitted them; mutating a Model
// after Build breaks the Hash/render contract.
type Model struct {
	// Session is the session identifier the model was built for. It names
	// the model in the LP render but does not affect the mathematics.
	Session string

	// Objective holds the maximization objective's terms. Zero-coefficient
	// pair terms (met-but-under-threshold) are omitted.
	Objective []Term

	// Constraints in emission order: assignment, sizes, category caps,
	// linearization, hard-cap forced zeros.
	Constraints []Constraint

	// Binaries lists every declared binary variable in emission order.
	Binaries []string

	// Dimensions and extraction metadata.
	NumStudents int
	NumGroups   int
	GroupSizes  []int

	// ForbiddenPairs are the pairs (i<j) whose w variables are forced to
	// zero in every group because their ledger count reached the hard cap.
	ForbiddenPairs [][2]int
}

// XVar names the assignment variable for student i in group g.
func XVar(i, g int) string { return fmt.Sprintf("x_%d_%d", i, g) }

// WVar names the co-placement variable for pair (i,j), i<j, in group g.
func WVar(i, j, g int) string { return fmt.Sprintf("w_%d_%d_%d", i, j, g) }

// ConstraintNamed returns the first constraint with the given name.
func (m *Model) ConstraintNamed(name string) (Constraint, bool) {
	for _, c := range m.Constraints {
		if c.Name == name {
			return c, true
		}
	}
	return Constraint{}, false
}

// Forbidden reports whether the pair (i,j) is hard-capped in this model.
func (m *Model) Forbidden(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	for _, p := range m.ForbiddenPairs {
		if p[0] == i && p[1] == j {
			return true
		}
	}
	return false
}
