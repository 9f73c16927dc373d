// Package config loads and validates the run configuration document.
//
// The document is YAML for authoring convenience, but validation happens
// in CUE: the YAML is extracted into a CUE value and unified with the
// embedded schema, which supplies defaults and produces positioned
// errors for structural problems.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/seminarlabs/cohort/internal/model"
	"github.com/seminarlabs/cohort/internal/scheduler"
)

//go:embed schema.cue
var schemaCUE string

// SessionSpec is one session entry of the config document.
type SessionSpec struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// SolverSpec selects and parameterizes the solver gateway.
type SolverSpec struct {
	Kind                string `json:"kind"`
	Email               string `json:"email"`
	Endpoint            string `json:"endpoint,omitempty"`
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty"`
}

// Config is the decoded, schema-validated run configuration.
type Config struct {
	Roster string `json:"roster"`

	Groups     int   `json:"groups,omitempty"`
	GroupSizes []int `json:"group_sizes,omitempty"`

	CategoryCap      int     `json:"category_cap"`
	PenaltyThreshold int     `json:"penalty_threshold"`
	PenaltyWeight    float64 `json:"penalty_weight"`
	MaxInteraction   int     `json:"max_interaction"`
	TimeLimitSeconds int     `json:"time_limit_seconds"`

	Sessions []SessionSpec `json:"sessions"`

	Solver SolverSpec `json:"solver"`
}

// Load reads, validates and decodes a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML config bytes against the embedded CUE schema and
// decodes the unified value. filename is used in error positions only.
func Parse(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	compiled := ctx.CompileString(schemaCUE)
	if err := compiled.Err(); err != nil {
		// The schema is embedded; failing to compile it is a build defect.
		return nil, fmt.Errorf("internal: compiling config schema: %w", err)
	}
	schema := compiled.LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal: config schema has no #Config: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("building config value: %w", err)
	}

	unified := schema.Unify(doc)
	// Concrete: required fields must be present; defaults satisfy the rest.
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("config does not match schema:\n%s", cueerrors.Details(err, nil))
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(cfg.GroupSizes) == 0 && cfg.Groups == 0 {
		return nil, fmt.Errorf("config must set either groups or group_sizes")
	}
	if len(cfg.GroupSizes) > 0 && cfg.Groups > 0 && len(cfg.GroupSizes) != cfg.Groups {
		return nil, fmt.Errorf("groups is %d but group_sizes lists %d groups", cfg.Groups, len(cfg.GroupSizes))
	}
	if len(cfg.Sessions) == 0 {
		return nil, fmt.Errorf("config lists no sessions")
	}
	return &cfg, nil
}

// SessionConfig derives the model-level session limits for a roster of
// size n, splitting evenly when explicit group sizes are absent.
func (c *Config) SessionConfig(n int) (model.SessionConfig, error) {
	sizes := c.GroupSizes
	if len(sizes) == 0 {
		sizes = model.EvenSizes(n, c.Groups)
	}
	cfg := model.SessionConfig{
		GroupSizes:       sizes,
		CategoryCap:      c.CategoryCap,
		PenaltyThreshold: c.PenaltyThreshold,
		PenaltyWeight:    c.PenaltyWeight,
		MaxInteraction:   c.MaxInteraction,
		TimeLimit:        time.Duration(c.TimeLimitSeconds) * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return model.SessionConfig{}, err
	}
	return cfg, nil
}

// SchedulerSessions converts the config's session list for the
// orchestrator.
func (c *Config) SchedulerSessions() []scheduler.Session {
	sessions := make([]scheduler.Session, len(c.Sessions))
	for i, s := range c.Sessions {
		sessions[i] = scheduler.Session{ID: s.ID, Name: s.Name}
	}
	return sessions
}
