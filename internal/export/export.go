// Package export writes run artifacts as CSV: the assignment sheet, the
// final interaction matrix and the per-session summary table. These are
// the workbook sheets the original tool produced, minus the charts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/store"
)

// WriteAssignments writes one row per placement: session, 1-based group
// number, student, category.
func WriteAssignments(w io.Writer, rows []store.AssignmentRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"session", "group", "student", "category"}); err != nil {
		return fmt.Errorf("writing assignments header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Session, strconv.Itoa(r.Group + 1), r.Student, r.Category}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing assignment row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMatrix writes the interaction matrix with student names as both
// header row and row labels.
func WriteMatrix(w io.Writer, names []string, matrix [][]int) error {
	if len(names) != len(matrix) {
		return fmt.Errorf("matrix is %d×%d but %d names given", len(matrix), len(matrix), len(names))
	}
	cw := csv.NewWriter(w)
	header := append([]string{""}, names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing matrix header: %w", err)
	}
	for i, row := range matrix {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, names[i])
		for _, count := range row {
			rec = append(rec, strconv.Itoa(count))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing matrix row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the per-session pairing statistics table.
func WriteSummary(w io.Writer, summaries []scheduler.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"session", "status", "objective",
		"unmet_pairs", "max_pairwise", "pairs_at_cap",
		"min_distinct", "max_distinct", "mean_distinct", "median_distinct",
		"fully_paired",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	for _, s := range summaries {
		rec := []string{
			s.Session,
			s.Status.String(),
			strconv.FormatFloat(s.Objective, 'f', -1, 64),
			strconv.Itoa(s.UnmetPairs),
			strconv.Itoa(s.MaxPairwise),
			strconv.Itoa(s.PairsAtCap),
			strconv.Itoa(s.MinDistinct),
			strconv.Itoa(s.MaxDistinct),
			strconv.FormatFloat(s.MeanDistinct, 'f', 2, 64),
			strconv.FormatFloat(s.MedianDistinct, 'f', 1, 64),
			strconv.Itoa(s.FullyPaired),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
