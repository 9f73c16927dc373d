package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/seminarlabs/cohort/internal/config"
	"github.com/seminarlabs/cohort/internal/model"
	"github.com/seminarlabs/cohort/internal/roster"
	"github.com/seminarlabs/cohort/internal/scheduler"
	"github.com/seminarlabs/cohort/internal/solver"
	"github.com/seminarlabs/cohort/internal/solver/neos"
)

// runSetup is everything a scheduling command needs in hand before the
// orchestrator starts.
type runSetup struct {
	Config      *config.Config
	Roster      *roster.Roster
	Session     model.SessionConfig
	Gateway     solver.Gateway
	Orchestrate *scheduler.Orchestrator
}

// loadSetup loads the config document and roster, derives the session
// limits, and builds the solver gateway. gateway overrides the
// configured solver when non-nil (tests inject stub gateways this way).
func loadSetup(configPath string, gateway solver.Gateway) (*runSetup, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	r, err := roster.LoadCSVFile(cfg.Roster)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load roster", err)
	}

	sessionCfg, err := cfg.SessionConfig(r.Len())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid session limits", err)
	}

	if gateway == nil {
		gateway, err = buildGateway(cfg.Solver)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to configure solver", err)
		}
	}

	orch := scheduler.New(r, gateway,
		scheduler.WithHeartbeat(15*time.Second, func(session string, elapsed time.Duration) {
			slog.Info("still solving", "session", session, "elapsed", elapsed.Round(time.Second))
		}),
	)

	return &runSetup{
		Config:      cfg,
		Roster:      r,
		Session:     sessionCfg,
		Gateway:     gateway,
		Orchestrate: orch,
	}, nil
}

func buildGateway(spec config.SolverSpec) (solver.Gateway, error) {
	switch spec.Kind {
	case "neos":
		var opts []neos.Option
		if spec.Endpoint != "" {
			opts = append(opts, neos.WithEndpoint(spec.Endpoint))
		}
		if spec.PollIntervalSeconds > 0 {
			opts = append(opts, neos.WithPollInterval(time.Duration(spec.PollIntervalSeconds)*time.Second))
		}
		return neos.New(spec.Email, opts...)
	default:
		return nil, fmt.Errorf("unknown solver kind %q", spec.Kind)
	}
}

// exitErrorForRun maps a halted run's error onto the CLI taxonomy.
func exitErrorForRun(err error) *ExitError {
	switch {
	case model.IsConfigError(err):
		return WrapExitError(ExitCommandError, "configuration rejected", err)
	case scheduler.IsInfeasible(err):
		return WrapExitError(ExitFailure, "session is infeasible under the configured limits", err)
	case scheduler.IsSolverFailure(err):
		return WrapExitError(ExitFailure, "solver failed; the run may be retried as-is", err)
	default:
		return WrapExitError(ExitFailure, "run halted", err)
	}
}
