package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seminarlabs/cohort/internal/export"
	"github.com/seminarlabs/cohort/internal/store"
)

// NewMatrixCommand creates the matrix command, printing a stored run's
// final interaction matrix.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		runID  string
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:           "matrix",
		Short:         "Print a stored run's final interaction matrix",
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

			names, matrix, err := st.Matrix(cmd.Context(), runID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load matrix", err)
			}

			if asCSV {
				return export.WriteMatrix(cmd.OutOrStdout(), names, matrix)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 1, ' ', 0)
			fmt.Fprint(tw, "\t")
			for _, name := range names {
				fmt.Fprintf(tw, "%s\t", name)
			}
			fmt.Fprintln(tw)
			for i, row := range matrix {
				fmt.Fprintf(tw, "%s\t", names[i])
				for _, count := range row {
					fmt.Fprintf(tw, "%d\t", count)
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite run-history database (required)")
	cmd.Flags().StringVar(&runID, "run", "latest", `run ID ("latest" for the most recent)`)
	cmd.Flags().BoolVar(&asCSV, "csv", false, "emit CSV instead of the aligned table")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
