package ledger

import (
	"fmt"

	"github.com/seminarlabs/cohort/internal/roster"
)

// Ledger is the symmetric pairwise co-occurrence matrix for one run.
// The zero value is not usable; construct with New.
type Ledger struct {
	n int
	m [][]int
}

// New returns an n×n zero-filled ledger.
func New(n int) *Ledger {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return &Ledger{n: n, m: m}
}

// Size returns the roster size the ledger was built for.
func (l *Ledger) Size() int { return l.n }

// Count returns M[i][j], the number of sessions in which i and j have
// shared a group.
func (l *Ledger) Count(i, j int) int { return l.m[i][j] }

// Never reports whether i and j have never shared a group. Pairs for
// which this is true earn the +1 objective reward when placed together.
func (l *Ledger) Never(i, j int) bool { return l.m[i][j] == 0 }

// OverThreshold reports whether the pair's count has reached the penalty
// threshold. Such pairs are discouraged, not forbidden.
func (l *Ledger) OverThreshold(i, j, threshold int) bool { return l.m[i][j] >= threshold }

// AtCap reports whether the pair's count has reached the hard interaction
// cap. Such pairs must never be grouped together again.
func (l *Ledger) AtCap(i, j, limit int) bool { return l.m[i][j] >= limit }

// Clone returns an independent copy. The model builder receives a clone
// so it can never observe a mid-session mutation.
func (l *Ledger) Clone() *Ledger {
	c := New(l.n)
	for i := range l.m {
		copy(c.m[i], l.m[i])
	}
	return c
}

// RecordSession folds one solved session into the ledger: for every
// unordered pair within the same group, both M[i][j] and M[j][i] are
// incremented by 1. Must be called exactly once per solved session.
func (l *Ledger) RecordSession(groups [][]int) error {
	for g, members := range groups {
		for _, s := range members {
			if s < 0 || s >= l.n {
				return fmt.Errorf("group %d: student index %d out of range [0,%d)", g, s, l.n)
			}
		}
	}
	for _, members := range groups {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				i, j := members[a], members[b]
				l.m[i][j]++
				l.m[j][i]++
			}
		}
	}
	return nil
}

// Warning reports a history record that could not be linked to the
// roster. The record is dropped and the run continues; a broken link
// loses one co-occurrence increment, nothing more.
type Warning struct {
	Session string
	Group   string
	Name    string
}

func (w Warning) String() string {
	return fmt.Sprintf("session %s group %s: student %q not in roster, record dropped", w.Session, w.Group, w.Name)
}

// Seed reconstructs the ledger from externally supplied prior groupings.
// Records are grouped by (session, group) and every unordered pair
// co-located in a group increments the pair's count by 1, exactly as if
// RecordSession had been called for each historical session.
//
// Records naming a student absent from the roster are skipped and
// returned as warnings. Seeding is deterministic and idempotent: two
// fresh ledgers seeded from the same records are identical.
func (l *Ledger) Seed(records []roster.HistoryRecord, r *roster.Roster) []Warning {
	type groupKey struct {
		session string
		group   string
	}

	var warnings []Warning
	groups := make(map[groupKey][]int)
	var order []groupKey
	for _, rec := range records {
		idx, ok := r.Index(rec.Name)
		if !ok {
			warnings = append(warnings, Warning{Session: rec.Session, Group: rec.Group, Name: rec.Name})
			continue
		}
		key := groupKey{session: rec.Session, group: rec.Group}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], idx)
	}

	// Increment order doesn't change the final matrix; iterating in
	// first-appearance order just keeps seeding deterministic.
	for _, key := range order {
		members := groups[key]
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				i, j := members[a], members[b]
				l.m[i][j]++
				l.m[j][i]++
			}
		}
	}
	return warnings
}

// Row returns a copy of row i, for export and display.
func (l *Ledger) Row(i int) []int {
	row := make([]int, l.n)
	copy(row, l.m[i])
	return row
}
