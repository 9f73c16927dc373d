package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/seminarlabs/cohort/internal/roster"
	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/solver"
	"github.com/seminarlabs/cohort/internal/store"
)

// NextOptions holds flags for the next command.
type NextOptions struct {
	*RootOptions
	Config   string
	Database string
	History  string
	FromRun  string
	Session  string

	// Gateway overrides the configured solver (for testing).
	Gateway solver.Gateway
}

// NewNextCommand creates the next command: incremental mode, scheduling
// exactly one session against a ledger seeded from prior groupings.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NextOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "next <session-id>",
		Short: "Schedule one session against recorded history",
		Long: `Schedule a single session. The interaction ledger is reconstructed
from prior groupings supplied either as a CSV file (--history, columns
session,group,name) or from a stored run (--from-run with --db).

History records naming students absent from the roster are dropped with
a warning; they are never fatal.

Example:
  cohort next 667 --config cohort.yaml --history prior.csv
  cohort next 667 --config cohort.yaml --db runs.db --from-run latest`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "cohort.yaml", "path to run configuration")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run-history database")
	cmd.Flags().StringVar(&opts.History, "history", "", "CSV file of prior groupings")
	cmd.Flags().StringVar(&opts.FromRun, "from-run", "", `stored run ID to seed from ("latest" for the most recent)`)

	return cmd
}

func runNext(opts *NextOptions, sessionID string, cmd *cobra.Command) error {
	if (opts.History == "") == (opts.FromRun == "") {
		return WrapExitError(ExitCommandError, "exactly one of --history or --from-run is required", nil)
	}
	if opts.FromRun != "" && opts.Database == "" {
		return WrapExitError(ExitCommandError, "--from-run requires --db", nil)
	}

	setup, err := loadSetup(opts.Config, opts.Gateway)
	if err != nil {
		return err
	}

	history, err := loadHistory(opts, cmd)
	if err != nil {
		return err
	}

	sess := scheduler.Session{ID: sessionID}
	for _, s := range setup.Config.Sessions {
		if s.ID == sessionID {
			sess.Name = s.Name
		}
	}

	slog.Info("starting incremental run", "session", sessionID, "history_records", len(history))
	res, runErr := setup.Orchestrate.RunIncremental(cmd.Context(), sess, setup.Session, history)

	if res != nil && opts.Database != "" && len(res.Records) > 0 {
		if saveErr := saveRun(cmd, opts.Database, "incremental", setup, res); saveErr != nil {
			if runErr == nil {
				return saveErr
			}
			slog.Error("failed to store run", "error", saveErr)
		}
	}

	if runErr != nil {
		return exitErrorForRun(runErr)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	printRunResult(cmd.OutOrStdout(), opts.RootOptions, setup, res)
	return nil
}

func loadHistory(opts *NextOptions, cmd *cobra.Command) ([]roster.HistoryRecord, error) {
	if opts.History != "" {
		history, err := roster.LoadHistoryCSVFile(opts.History)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load history", err)
		}
		return history, nil
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open run database", err)
	}
	defer st.Close()

	runID := opts.FromRun
	if runID == "latest" {
		info, err := st.LatestRun(cmd.Context())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "no stored run to seed from", err)
		}
		runID = info.ID
	}
	history, err := st.History(cmd.Context(), runID)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load stored run", err)
	}
	return history, nil
}
