package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/solver"
	"github.com/seminarlabs/cohort/internal/store"
)

func TestWriteAssignments(t *testing.T) {
	var buf strings.Builder
	rows := []store.AssignmentRow{
		{Session: "601", Group: 0, Student: "Adams", Category: "11F"},
		{Session: "601", Group: 1, Student: "Baker", Category: "17D"},
	}
	require.NoError(t, WriteAssignments(&buf, rows))

	want := "session,group,student,category\n" +
		"601,1,Adams,11F\n" +
		"601,2,Baker,17D\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteMatrix(t *testing.T) {
	var buf strings.Builder
	names := []string{"Adams", "Baker", "Clark"}
	matrix := [][]int{
		{0, 2, 1},
		{2, 0, 0},
		{1, 0, 0},
	}
	require.NoError(t, WriteMatrix(&buf, names, matrix))

	want := ",Adams,Baker,Clark\n" +
		"Adams,0,2,1\n" +
		"Baker,2,0,0\n" +
		"Clark,1,0,0\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteMatrix_NameCountMismatch(t *testing.T) {
	var buf strings.Builder
	err := WriteMatrix(&buf, []string{"Adams"}, [][]int{{0, 1}, {1, 0}})
	require.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	var buf strings.Builder
	summaries := []scheduler.Summary{{
		Session:        "601",
		Status:         solver.StatusOptimal,
		Objective:      4,
		UnmetPairs:     2,
		MaxPairwise:    3,
		PairsAtCap:     0,
		MinDistinct:    3,
		MaxDistinct:    5,
		MeanDistinct:   4.25,
		MedianDistinct: 4,
		FullyPaired:    1,
	}}
	require.NoError(t, WriteSummary(&buf, summaries))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "601,optimal,4,2,3,0,3,5,4.25,4.0,1", lines[1])
}
