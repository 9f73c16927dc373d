package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarlabs/cohort/internal/roster"
)

func testRoster(t *testing.T, names ...string) *roster.Roster {
	t.Helper()
	students := make([]roster.Student, len(names))
	for i, n := range names {
		students[i] = roster.Student{Name: n, Category: "Civ"}
	}
	r, err := roster.New(students)
	require.NoError(t, err)
	return r
}

func requireSymmetric(t *testing.T, l *Ledger) {
	t.Helper()
	for i := 0; i < l.Size(); i++ {
		for j := 0; j < l.Size(); j++ {
			require.Equal(t, l.Count(i, j), l.Count(j, i), "M[%d][%d] != M[%d][%d]", i, j, j, i)
		}
	}
}

func TestNew_ZeroFilled(t *testing.T) {
	l := New(4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, 0, l.Count(i, j))
		}
	}
}

func TestRecordSession_IncrementsAllPairsSymmetrically(t *testing.T) {
	l := New(5)
	require.NoError(t, l.RecordSession([][]int{{0, 1, 2}, {3, 4}}))

	assert.Equal(t, 1, l.Count(0, 1))
	assert.Equal(t, 1, l.Count(0, 2))
	assert.Equal(t, 1, l.Count(1, 2))
	assert.Equal(t, 1, l.Count(3, 4))
	assert.Equal(t, 0, l.Count(0, 3))
	requireSymmetric(t, l)

	// Monotonic: a second session only adds.
	require.NoError(t, l.RecordSession([][]int{{0, 1, 3}, {2, 4}}))
	assert.Equal(t, 2, l.Count(0, 1))
	assert.Equal(t, 1, l.Count(0, 2))
	requireSymmetric(t, l)
}

func TestRecordSession_OutOfRangeIndexLeavesLedgerUntouched(t *testing.T) {
	l := New(3)
	err := l.RecordSession([][]int{{0, 1}, {5}})
	require.Error(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, 0, l.Count(i, j), "failed RecordSession must not mutate")
		}
	}
}

func TestAccessors(t *testing.T) {
	l := New(3)
	require.NoError(t, l.RecordSession([][]int{{0, 1}, {2}}))
	require.NoError(t, l.RecordSession([][]int{{0, 1}, {2}}))
	require.NoError(t, l.RecordSession([][]int{{0, 1}, {2}}))

	assert.False(t, l.Never(0, 1))
	assert.True(t, l.Never(0, 2))
	assert.True(t, l.OverThreshold(0, 1, 3))
	assert.False(t, l.OverThreshold(0, 1, 4))
	assert.True(t, l.AtCap(0, 1, 3))
	assert.False(t, l.AtCap(0, 2, 1))
}

func TestClone_Independent(t *testing.T) {
	l := New(3)
	require.NoError(t, l.RecordSession([][]int{{0, 1, 2}}))

	c := l.Clone()
	require.NoError(t, l.RecordSession([][]int{{0, 1, 2}}))

	assert.Equal(t, 1, c.Count(0, 1), "clone must not see later mutations")
	assert.Equal(t, 2, l.Count(0, 1))
}

func TestSeed_ReconstructsPairCounts(t *testing.T) {
	r := testRoster(t, "A", "B", "C", "D")
	records := []roster.HistoryRecord{
		{Session: "601", Group: "1", Name: "A"},
		{Session: "601", Group: "1", Name: "B"},
		{Session: "601", Group: "2", Name: "C"},
		{Session: "601", Group: "2", Name: "D"},
		{Session: "600", Group: "1", Name: "A"},
		{Session: "600", Group: "1", Name: "B"},
		{Session: "600", Group: "1", Name: "C"},
	}

	l := New(r.Len())
	warnings := l.Seed(records, r)
	require.Empty(t, warnings)

	assert.Equal(t, 2, l.Count(0, 1)) // A,B together twice
	assert.Equal(t, 1, l.Count(0, 2)) // A,C once
	assert.Equal(t, 1, l.Count(2, 3)) // C,D once
	assert.Equal(t, 0, l.Count(1, 3))
	requireSymmetric(t, l)
}

func TestSeed_UnknownStudentDroppedWithWarning(t *testing.T) {
	r := testRoster(t, "A", "B")
	records := []roster.HistoryRecord{
		{Session: "601", Group: "1", Name: "A"},
		{Session: "601", Group: "1", Name: "Ghost"},
		{Session: "601", Group: "1", Name: "B"},
	}

	l := New(r.Len())
	warnings := l.Seed(records, r)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Ghost", warnings[0].Name)
	// The surviving members still link up.
	assert.Equal(t, 1, l.Count(0, 1))
}

func TestSeed_Idempotent(t *testing.T) {
	r := testRoster(t, "A", "B", "C", "D", "E")
	records := []roster.HistoryRecord{
		{Session: "601", Group: "1", Name: "A"},
		{Session: "601", Group: "1", Name: "C"},
		{Session: "601", Group: "1", Name: "E"},
		{Session: "600", Group: "2", Name: "B"},
		{Session: "600", Group: "2", Name: "D"},
	}

	l1 := New(r.Len())
	l1.Seed(records, r)
	l2 := New(r.Len())
	l2.Seed(records, r)

	for i := 0; i < r.Len(); i++ {
		assert.Equal(t, l1.Row(i), l2.Row(i), "row %d differs between identical seedings", i)
	}
}

func TestStats(t *testing.T) {
	l := New(4)
	require.NoError(t, l.RecordSession([][]int{{0, 1}, {2, 3}}))
	require.NoError(t, l.RecordSession([][]int{{0, 1}, {2, 3}}))

	assert.Equal(t, 4, l.UnmetPairs()) // 6 pairs total, 2 met
	assert.Equal(t, 2, l.MaxPairwise())
	assert.Equal(t, 2, l.PairsAtLeast(2))
	assert.Equal(t, []int{1, 1, 1, 1}, l.DistinctPartners())

	stats := l.Distinct()
	assert.Equal(t, 1, stats.Min)
	assert.Equal(t, 1, stats.Max)
	assert.InDelta(t, 1.0, stats.Mean, 1e-9)
	assert.InDelta(t, 1.0, stats.Median, 1e-9)
	assert.Equal(t, 0, stats.FullyPaired)
}
