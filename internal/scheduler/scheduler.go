package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seminarlabs/cohort/internal/ledger"
	"github.com/seminarlabs/cohort/internal/model"
	"github.com/seminarlabs/cohort/internal/roster"
	"github.com/seminarlabs/cohort/internal/solver"
)

// Session identifies one event needing a fresh partition of the roster.
type Session struct {
	// ID is the stable identifier recorded with assignments ("601").
	ID string
	// Name is the display label ("601 - Strategy"). Optional.
	Name string
	// Config overrides the run-level session config when non-nil.
	Config *model.SessionConfig
}

// Record is one student's placement in one solved session. Immutable
// once written; records accumulate monotonically across the run.
type Record struct {
	Session string
	Group   int
	Student int
}

// Summary captures the pairing statistics after a session's ledger
// update, mirroring the per-course summary the original workbook carried.
type Summary struct {
	Session        string
	Status         solver.Status
	Objective      float64
	UnmetPairs     int
	MaxPairwise    int
	PairsAtCap     int
	MinDistinct    int
	MaxDistinct    int
	MeanDistinct   float64
	MedianDistinct float64
	FullyPaired    int
}

// RunResult accumulates a run's outputs. On a halted run it holds
// everything the completed sessions produced; the failed session
// contributes nothing.
type RunResult struct {
	Records   []Record
	Summaries []Summary
	Ledger    *ledger.Ledger
	Warnings  []ledger.Warning // seeding warnings, incremental mode only
	Completed []string         // session IDs processed successfully, in order
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithHeartbeat installs a callback invoked every interval while a solve
// is in flight. It runs on a separate goroutine and must not block for
// long; it exists for "still solving" progress reporting only.
func WithHeartbeat(interval time.Duration, fn func(session string, elapsed time.Duration)) Option {
	return func(o *Orchestrator) {
		o.heartbeatEvery = interval
		o.heartbeat = fn
	}
}

// Orchestrator owns the ledger and drives sessions through the gateway.
type Orchestrator struct {
	roster         *roster.Roster
	gateway        solver.Gateway
	log            *slog.Logger
	heartbeat      func(session string, elapsed time.Duration)
	heartbeatEvery time.Duration
}

// New creates an orchestrator for one roster and gateway.
func New(r *roster.Roster, gw solver.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		roster:         r,
		gateway:        gw,
		log:            slog.Default(),
		heartbeatEvery: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunBatch processes a fixed ordered session sequence end to end against
// a ledger built from zero.
//
// On a session failure the returned RunResult still carries everything
// prior sessions produced, alongside a *SessionError.
func (o *Orchestrator) RunBatch(ctx context.Context, sessions []Session, cfg model.SessionConfig) (*RunResult, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions to schedule")
	}
	if err := o.validateSessions(sessions); err != nil {
		return nil, err
	}

	res := &RunResult{Ledger: ledger.New(o.roster.Len())}
	for _, sess := range sessions {
		if err := o.runSession(ctx, res, sess, sess.effectiveConfig(cfg)); err != nil {
			return res, err
		}
	}
	o.log.Info("run complete", "sessions", len(sessions), "unmet_pairs", res.Ledger.UnmetPairs())
	return res, nil
}

// RunIncremental processes exactly one session against a ledger seeded
// from externally supplied historical groupings. Records referencing
// unknown students are dropped and surfaced as warnings on the result.
func (o *Orchestrator) RunIncremental(ctx context.Context, sess Session, cfg model.SessionConfig, history []roster.HistoryRecord) (*RunResult, error) {
	if err := o.validateSessions([]Session{sess}); err != nil {
		return nil, err
	}

	led := ledger.New(o.roster.Len())
	warnings := led.Seed(history, o.roster)
	for _, w := range warnings {
		o.log.Warn("dropped history record", "session", w.Session, "group", w.Group, "student", w.Name)
	}

	res := &RunResult{Ledger: led, Warnings: warnings}
	if err := o.runSession(ctx, res, sess, sess.effectiveConfig(cfg)); err != nil {
		return res, err
	}
	return res, nil
}

func (o *Orchestrator) validateSessions(sessions []Session) error {
	seen := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if s.ID == "" {
			return fmt.Errorf("session with empty ID")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate session ID %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

func (s Session) effectiveConfig(base model.SessionConfig) model.SessionConfig {
	if s.Config != nil {
		return *s.Config
	}
	return base
}

// runSession advances res through BUILD -> SUBMIT -> EXTRACT ->
// LEDGER_UPDATE -> RECORD for one session. On error res is untouched:
// a failed session must not corrupt the ledger or the record log.
func (o *Orchestrator) runSession(ctx context.Context, res *RunResult, sess Session, cfg model.SessionConfig) error {
	// BUILD. The builder gets a clone; the live ledger stays untouched
	// until the session has a usable schedule.
	m, err := model.Build(sess.ID, o.roster, res.Ledger.Clone(), cfg)
	if err != nil {
		return err
	}
	o.log.Info("model built", "session", sess.ID,
		"binaries", len(m.Binaries), "constraints", len(m.Constraints), "hash", m.Hash()[:12])

	// SUBMIT. The solve is synchronous-blocking; the heartbeat ticker is
	// purely observational.
	result, err := o.submit(ctx, sess.ID, m, cfg.TimeLimit)
	if err != nil {
		return &SessionError{Session: sess.ID, Status: solver.StatusFailure, Reason: err.Error()}
	}
	if !result.Usable() {
		return &SessionError{Session: sess.ID, Status: result.Status, Reason: result.Reason}
	}
	if err := result.Assignment.Validate(m); err != nil {
		return &SessionError{Session: sess.ID, Status: solver.StatusFailure,
			Reason: fmt.Sprintf("gateway returned invalid assignment: %v", err)}
	}

	// EXTRACT.
	groups := result.Assignment.Groups(m.NumGroups)

	// LEDGER_UPDATE. Exactly once per solved session, before the next
	// session's model can be built.
	if err := res.Ledger.RecordSession(groups); err != nil {
		return &SessionError{Session: sess.ID, Status: solver.StatusFailure, Reason: err.Error()}
	}

	// RECORD.
	for g, members := range groups {
		for _, s := range members {
			res.Records = append(res.Records, Record{Session: sess.ID, Group: g, Student: s})
		}
	}
	res.Summaries = append(res.Summaries, o.summarize(sess.ID, result, res.Ledger, cfg))
	res.Completed = append(res.Completed, sess.ID)

	o.log.Info("session scheduled", "session", sess.ID, "status", result.Status.String(),
		"objective", result.Objective, "unmet_pairs", res.Ledger.UnmetPairs())
	return nil
}

// submit wraps the blocking gateway call with the heartbeat ticker.
func (o *Orchestrator) submit(ctx context.Context, session string, m *model.Model, timeLimit time.Duration) (*solver.Result, error) {
	if o.heartbeat != nil {
		start := time.Now()
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(o.heartbeatEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					o.heartbeat(session, time.Since(start))
				}
			}
		}()
	}
	return o.gateway.Solve(ctx, m, timeLimit)
}

func (o *Orchestrator) summarize(session string, result *solver.Result, led *ledger.Ledger, cfg model.SessionConfig) Summary {
	stats := led.Distinct()
	return Summary{
		Session:        session,
		Status:         result.Status,
		Objective:      result.Objective,
		UnmetPairs:     led.UnmetPairs(),
		MaxPairwise:    led.MaxPairwise(),
		PairsAtCap:     led.PairsAtLeast(cfg.MaxInteraction),
		MinDistinct:    stats.Min,
		MaxDistinct:    stats.Max,
		MeanDistinct:   stats.Mean,
		MedianDistinct: stats.Median,
		FullyPaired:    stats.FullyPaired,
	}
}
