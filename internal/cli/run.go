package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/solver"
	"github.com/seminarlabs/cohort/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Database string

	// Gateway overrides the configured solver (for testing). If nil, the
	// gateway is built from the config document's solver section.
	Gateway solver.Gateway
}

// NewRunCommand creates the run command: batch mode, processing the
// config's full session sequence against a fresh ledger.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule the full session sequence",
		Long: `Process every session in the configuration in order, building each
session's assignment model from the interaction history accumulated by
the sessions before it and submitting it to the solver.

A session that comes back infeasible or fails halts the run; the
completed sessions' assignments are kept (and stored, with --db).

Example:
  cohort run --config cohort.yaml --db runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "cohort.yaml", "path to run configuration")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run-history database (optional)")

	return cmd
}

func runBatch(opts *RunOptions, cmd *cobra.Command) error {
	setup, err := loadSetup(opts.Config, opts.Gateway)
	if err != nil {
		return err
	}

	sessions := setup.Config.SchedulerSessions()
	slog.Info("starting batch run",
		"sessions", len(sessions), "students", setup.Roster.Len(), "groups", len(setup.Session.GroupSizes))

	res, runErr := setup.Orchestrate.RunBatch(cmd.Context(), sessions, setup.Session)

	if res != nil && opts.Database != "" && len(res.Records) > 0 {
		if saveErr := saveRun(cmd, opts.Database, "batch", setup, res); saveErr != nil {
			// Results already computed; a storage problem must not mask a
			// run verdict, but with a clean run it is the verdict.
			if runErr == nil {
				return saveErr
			}
			slog.Error("failed to store partial run", "error", saveErr)
		}
	}

	if runErr != nil {
		return exitErrorForRun(runErr)
	}

	printRunResult(cmd.OutOrStdout(), opts.RootOptions, setup, res)
	return nil
}

// saveRun persists a run and logs the assigned run ID.
func saveRun(cmd *cobra.Command, dbPath, mode string, setup *runSetup, res *scheduler.RunResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run database", err)
	}
	defer st.Close()

	runID, err := st.SaveRun(cmd.Context(), mode, setup.Roster, res)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to store run", err)
	}
	slog.Info("run stored", "run_id", runID, "db", dbPath)
	return nil
}

// printRunResult renders a completed run per the output format.
func printRunResult(w io.Writer, rootOpts *RootOptions, setup *runSetup, res *scheduler.RunResult) {
	if rootOpts.Format == "json" {
		formatter := &OutputFormatter{Format: rootOpts.Format, Writer: w}
		_ = formatter.Success(runPayload(setup, res))
		return
	}

	for _, summary := range res.Summaries {
		fmt.Fprintf(w, "session %s: %s, objective %g, unmet pairs %d, max pairwise %d\n",
			summary.Session, summary.Status, summary.Objective, summary.UnmetPairs, summary.MaxPairwise)
	}
	groups := groupMembership(setup, res)
	for _, sg := range groups {
		fmt.Fprintf(w, "\n%s\n", sg.Label)
		for g, members := range sg.Groups {
			fmt.Fprintf(w, "  group %d:", g+1)
			for _, name := range members {
				fmt.Fprintf(w, " %s", name)
			}
			fmt.Fprintln(w)
		}
	}
}

type sessionGroups struct {
	Label  string     `json:"session"`
	Groups [][]string `json:"groups"`
}

// groupMembership folds the flat record list back into per-session
// group membership name lists, in record order.
func groupMembership(setup *runSetup, res *scheduler.RunResult) []sessionGroups {
	labels := make(map[string]string, len(setup.Config.Sessions))
	for _, s := range setup.Config.Sessions {
		if s.Name != "" {
			labels[s.ID] = s.Name
		} else {
			labels[s.ID] = s.ID
		}
	}

	numGroups := len(setup.Session.GroupSizes)
	var out []sessionGroups
	index := make(map[string]int)
	for _, rec := range res.Records {
		i, ok := index[rec.Session]
		if !ok {
			label := labels[rec.Session]
			if label == "" {
				label = rec.Session
			}
			i = len(out)
			index[rec.Session] = i
			out = append(out, sessionGroups{Label: label, Groups: make([][]string, numGroups)})
		}
		out[i].Groups[rec.Group] = append(out[i].Groups[rec.Group], setup.Roster.Student(rec.Student).Name)
	}
	return out
}

type runOutput struct {
	Sessions  []sessionGroups     `json:"sessions"`
	Summaries []scheduler.Summary `json:"summaries"`
	Warnings  []string            `json:"warnings,omitempty"`
	Completed []string            `json:"completed"`
}

func runPayload(setup *runSetup, res *scheduler.RunResult) runOutput {
	var warnings []string
	for _, w := range res.Warnings {
		warnings = append(warnings, w.String())
	}
	return runOutput{
		Sessions:  groupMembership(setup, res),
		Summaries: res.Summaries,
		Warnings:  warnings,
		Completed: res.Completed,
	}
}
