package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/seminarlabs/cohort/internal/roster"
	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/solver"
)

// RunInfo is one row of the runs table.
type RunInfo struct {
	ID         string
	Mode       string
	StartedAt  string
	RosterSize int
}

// ListRuns returns stored runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, started_at, roster_size FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.Mode, &r.StartedAt, &r.RosterSize); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent stored run.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return RunInfo{}, err
	}
	if len(runs) == 0 {
		return RunInfo{}, fmt.Errorf("no runs stored")
	}
	return runs[0], nil
}

// AssignmentRow is one stored assignment, denormalized with the
// student's name and category for export.
type AssignmentRow struct {
	Session  string
	Group    int
	Student  string
	Category string
}

// Assignments returns a run's assignment records in session, group,
// student order.
func (s *Store) Assignments(ctx context.Context, runID string) ([]AssignmentRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session, group_idx, student, category FROM assignments
		 WHERE run_id = ? ORDER BY session, group_idx, student`, runID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	defer rows.Close()

	var recs []AssignmentRow
	for rows.Next() {
		var a AssignmentRow
		if err := rows.Scan(&a.Session, &a.Group, &a.Student, &a.Category); err != nil {
			return nil, fmt.Errorf("load assignments: %w", err)
		}
		recs = append(recs, a)
	}
	return recs, rows.Err()
}

// Summaries returns a run's per-session statistics in scheduling order.
func (s *Store) Summaries(ctx context.Context, runID string) ([]scheduler.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session, status, objective,
		        unmet_pairs, max_pairwise, pairs_at_cap,
		        min_distinct, max_distinct, mean_distinct, median_distinct, fully_paired
		 FROM summaries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	defer rows.Close()

	var sums []scheduler.Summary
	for rows.Next() {
		var sum scheduler.Summary
		var status string
		if err := rows.Scan(&sum.Session, &status, &sum.Objective,
			&sum.UnmetPairs, &sum.MaxPairwise, &sum.PairsAtCap,
			&sum.MinDistinct, &sum.MaxDistinct, &sum.MeanDistinct, &sum.MedianDistinct, &sum.FullyPaired); err != nil {
			return nil, fmt.Errorf("load summaries: %w", err)
		}
		if sum.Status, err = solver.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("load summaries: %w", err)
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// History converts a run's stored assignments into history records
// suitable for seeding an incremental run's ledger.
func (s *Store) History(ctx context.Context, runID string) ([]roster.HistoryRecord, error) {
	recs, err := s.Assignments(ctx, runID)
	if err != nil {
		return nil, err
	}
	history := make([]roster.HistoryRecord, len(recs))
	for i, a := range recs {
		history[i] = roster.HistoryRecord{
			Session: a.Session,
			Group:   strconv.Itoa(a.Group),
			Name:    a.Student,
		}
	}
	return history, nil
}

// Matrix returns a run's final ledger snapshot as a full symmetric
// matrix plus the roster names in index order.
func (s *Store) Matrix(ctx context.Context, runID string) (names []string, matrix [][]int, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, student FROM run_roster WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load run roster: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var idx int
		var name string
		if err := rows.Scan(&idx, &name); err != nil {
			return nil, nil, fmt.Errorf("load run roster: %w", err)
		}
		if idx != len(names) {
			return nil, nil, fmt.Errorf("run roster has a gap at index %d", len(names))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("run %s not found", runID)
	}

	n := len(names)
	matrix = make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
	}

	cells, err := s.db.QueryContext(ctx,
		`SELECT i, j, count FROM matrix_cells WHERE run_id = ?`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load matrix: %w", err)
	}
	defer cells.Close()
	for cells.Next() {
		var i, j, count int
		if err := cells.Scan(&i, &j, &count); err != nil {
			return nil, nil, fmt.Errorf("load matrix: %w", err)
		}
		if i < 0 || j < 0 || i >= n || j >= n {
			return nil, nil, fmt.Errorf("matrix cell (%d,%d) out of range for roster size %d", i, j, n)
		}
		matrix[i][j] = count
		matrix[j][i] = count
	}
	return names, matrix, cells.Err()
}
