package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/seminarlabs/cohort/internal/export"
	"github.com/seminarlabs/cohort/internal/store"
)

// NewExportCommand creates the export command, writing a stored run's
// assignment sheet and matrix as CSV files.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		runID  string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored run as CSV files",
		Long: `Write assignments.csv, matrix.csv and summary.csv for a stored run
into the output directory. These correspond to the group sheets,
interaction matrix and per-session statistics of the original scheduler
workbook.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open run database", err)
			}
			defer st.Close()

			if runID == "latest" {
				info, err := st.LatestRun(cmd.Context())
				if err != nil {
					return WrapExitError(ExitCommandError, "no stored runs", err)
				}
				runID = info.ID
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return WrapExitError(ExitCommandError, "failed to create output directory", err)
			}

			rows, err := st.Assignments(cmd.Context(), runID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load assignments", err)
			}
			if err := writeCSVFile(filepath.Join(outDir, "assignments.csv"), func(f *os.File) error {
				return export.WriteAssignments(f, rows)
			}); err != nil {
				return err
			}

			names, matrix, err := st.Matrix(cmd.Context(), runID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load matrix", err)
			}
			if err := writeCSVFile(filepath.Join(outDir, "matrix.csv"), func(f *os.File) error {
				return export.WriteMatrix(f, names, matrix)
			}); err != nil {
				return err
			}

			summaries, err := st.Summaries(cmd.Context(), runID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load summaries", err)
			}
			if err := writeCSVFile(filepath.Join(outDir, "summary.csv"), func(f *os.File) error {
				return export.WriteSummary(f, summaries)
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported run %s to %s\n", runID, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite run-history database (required)")
	cmd.Flags().StringVar(&runID, "run", "latest", `run ID ("latest" for the most recent)`)
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create "+path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return WrapExitError(ExitCommandError, "failed to write "+path, err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to close "+path, err)
	}
	return nil
}
