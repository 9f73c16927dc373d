package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seminarlabs/cohort/internal/roster"
	"github.com/seminarlabs/cohort/internal/scheduler"
)

// SaveRun persists one completed (or partially completed) run in a
// single transaction: the run row, the roster order, every assignment
// record and the final ledger's upper triangle. Returns the new run ID.
//
// Saving a halted run is deliberate: the accumulated prior sessions are
// valid output and must not be discarded with the failed session.
func (s *Store) SaveRun(ctx context.Context, mode string, r *roster.Roster, res *scheduler.RunResult) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, started_at, roster_size) VALUES (?, ?, ?, ?)`,
		runID, mode, time.Now().UTC().Format(time.RFC3339), r.Len(),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	for i := 0; i < r.Len(); i++ {
		st := r.Student(i)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_roster (run_id, idx, student, category) VALUES (?, ?, ?, ?)`,
			runID, i, st.Name, st.Category,
		); err != nil {
			return "", fmt.Errorf("save run roster: %w", err)
		}
	}

	for _, rec := range res.Records {
		st := r.Student(rec.Student)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (run_id, session, group_idx, student, category) VALUES (?, ?, ?, ?, ?)`,
			runID, rec.Session, rec.Group, st.Name, st.Category,
		); err != nil {
			return "", fmt.Errorf("save assignment: %w", err)
		}
	}

	for seq, sum := range res.Summaries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO summaries (run_id, seq, session, status, objective,
			   unmet_pairs, max_pairwise, pairs_at_cap,
			   min_distinct, max_distinct, mean_distinct, median_distinct, fully_paired)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, seq, sum.Session, sum.Status.String(), sum.Objective,
			sum.UnmetPairs, sum.MaxPairwise, sum.PairsAtCap,
			sum.MinDistinct, sum.MaxDistinct, sum.MeanDistinct, sum.MedianDistinct, sum.FullyPaired,
		); err != nil {
			return "", fmt.Errorf("save summary: %w", err)
		}
	}

	n := res.Ledger.Size()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			count := res.Ledger.Count(i, j)
			if count == 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO matrix_cells (run_id, i, j, count) VALUES (?, ?, ?, ?)`,
				runID, i, j, count,
			); err != nil {
				return "", fmt.Errorf("save matrix cell: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return runID, nil
}
