package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarlabs/cohort/internal/ledger"
	"github.com/seminarlabs/cohort/internal/roster"
	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/solver"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, err := roster.New([]roster.Student{
		{Name: "Adams", Category: "11F"},
		{Name: "Baker", Category: "11F"},
		{Name: "Clark", Category: "17D"},
		{Name: "Diaz", Category: "21A"},
	})
	require.NoError(t, err)
	return r
}

func testRunResult(t *testing.T) *scheduler.RunResult {
	t.Helper()
	led := ledger.New(4)
	require.NoError(t, led.RecordSession([][]int{{0, 1}, {2, 3}}))
	require.NoError(t, led.RecordSession([][]int{{0, 2}, {1, 3}}))

	return &scheduler.RunResult{
		Records: []scheduler.Record{
			{Session: "601", Group: 0, Student: 0},
			{Session: "601", Group: 0, Student: 1},
			{Session: "601", Group: 1, Student: 2},
			{Session: "601", Group: 1, Student: 3},
			{Session: "600", Group: 0, Student: 0},
			{Session: "600", Group: 0, Student: 2},
			{Session: "600", Group: 1, Student: 1},
			{Session: "600", Group: 1, Student: 3},
		},
		Summaries: []scheduler.Summary{
			{Session: "601", Status: solver.StatusOptimal, Objective: 6, UnmetPairs: 4, MaxPairwise: 1, MeanDistinct: 1, MedianDistinct: 1},
			{Session: "600", Status: solver.StatusFeasible, Objective: 4, UnmetPairs: 2, MaxPairwise: 1, MeanDistinct: 2, MedianDistinct: 2},
		},
		Ledger:    led,
		Completed: []string{"601", "600"},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cohort.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRun_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := testRoster(t)
	res := testRunResult(t)

	runID, err := s.SaveRun(ctx, "batch", r, res)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "batch", runs[0].Mode)
	assert.Equal(t, 4, runs[0].RosterSize)

	recs, err := s.Assignments(ctx, runID)
	require.NoError(t, err)
	require.Len(t, recs, 8)
	// Ordered by session, group, student name.
	assert.Equal(t, AssignmentRow{Session: "600", Group: 0, Student: "Adams", Category: "11F"}, recs[0])
	assert.Equal(t, AssignmentRow{Session: "601", Group: 1, Student: "Diaz", Category: "21A"}, recs[7])
}

func TestMatrix_RebuildsSymmetricCounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := testRoster(t)
	res := testRunResult(t)

	runID, err := s.SaveRun(ctx, "batch", r, res)
	require.NoError(t, err)

	names, matrix, err := s.Matrix(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adams", "Baker", "Clark", "Diaz"}, names)

	want := res.Ledger
	for i := 0; i < 4; i++ {
		assert.Zero(t, matrix[i][i])
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			assert.Equal(t, want.Count(i, j), matrix[i][j], "cell (%d,%d)", i, j)
		}
	}
}

func TestHistory_SeedsFreshLedger(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := testRoster(t)
	res := testRunResult(t)

	runID, err := s.SaveRun(ctx, "batch", r, res)
	require.NoError(t, err)

	history, err := s.History(ctx, runID)
	require.NoError(t, err)
	require.Len(t, history, 8)

	led := ledger.New(r.Len())
	assert.Empty(t, led.Seed(history, r))

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			assert.Equal(t, res.Ledger.Count(i, j), led.Count(i, j), "cell (%d,%d)", i, j)
		}
	}
}

func TestSummaries_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	res := testRunResult(t)

	runID, err := s.SaveRun(ctx, "batch", testRoster(t), res)
	require.NoError(t, err)

	sums, err := s.Summaries(ctx, runID)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, res.Summaries[0], sums[0])
	assert.Equal(t, res.Summaries[1], sums[1])
}

func TestLatestRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.LatestRun(ctx)
	require.Error(t, err)

	r := testRoster(t)
	runID, err := s.SaveRun(ctx, "batch", r, testRunResult(t))
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest.ID)
}

func TestMatrix_UnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.Matrix(context.Background(), "no-such-run")
	require.Error(t, err)
}
