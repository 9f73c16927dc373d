package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seminarlabs/cohort/internal/config"
	"github.com/seminarlabs/cohort/internal/roster"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and roster without solving",
		Long: `Check the configuration document against its schema, load the
roster, and verify that the group sizes partition the roster exactly.
Nothing is submitted to the solver.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(rootOpts, configPath, cmd)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "cohort.yaml", "path to run configuration")

	return cmd
}

type validateOutput struct {
	Valid      bool     `json:"valid"`
	Students   int      `json:"students"`
	Categories []string `json:"categories"`
	Sessions   int      `json:"sessions"`
	GroupSizes []int    `json:"group_sizes"`
}

func runConfigValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	r, err := roster.LoadCSVFile(cfg.Roster)
	if err != nil {
		_ = formatter.Error(ErrCodeData, err.Error())
		return WrapExitError(ExitCommandError, "failed to load roster", err)
	}

	sessionCfg, err := cfg.SessionConfig(r.Len())
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "invalid session limits", err)
	}

	// Composition sanity: a category with more members than cap*groups
	// can never be placed. The builder leaves this to the solver; the
	// validate command flags it early because it is user-fixable.
	for _, cat := range r.Categories() {
		members := len(r.CategoryMembers(cat))
		capacity := sessionCfg.CategoryCap * len(sessionCfg.GroupSizes)
		if members > capacity {
			err := fmt.Errorf("category %q has %d members but per-group cap %d across %d groups allows only %d",
				cat, members, sessionCfg.CategoryCap, len(sessionCfg.GroupSizes), capacity)
			_ = formatter.Error(ErrCodeInfeasible, err.Error())
			return WrapExitError(ExitFailure, "configuration cannot be satisfied", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(validateOutput{
			Valid:      true,
			Students:   r.Len(),
			Categories: r.Categories(),
			Sessions:   len(cfg.Sessions),
			GroupSizes: sessionCfg.GroupSizes,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d students in %d categories, %d sessions, groups %v\n",
		r.Len(), len(r.Categories()), len(cfg.Sessions), sessionCfg.GroupSizes)
	return nil
}
