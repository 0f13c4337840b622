package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

// Status of a finished run.
type Status string

const (
	Success Status = "success"
	Failed  Status = "failed"
)

// Overall verdict of a run.
type Outcome struct {
	Status Status `json:"status"`
	Stage  string `json:"stage,omitempty"` // First failed stage.
}

func (o Outcome) String() string {
	if o.Status == Failed {
		return fmt.Sprintf("failed(%s)", o.Stage)
	}
	return string(o.Status)
}

// Result of a run. The only value a run exposes.
type Report struct {
	RunID         string                   `json:"runId"`
	StartedAt     time.Time                `json:"startedAt"`
	Configuration *buildconf.Configuration `json:"configuration"`
	Toolchain     *toolchain.Environment   `json:"toolchain,omitempty"`
	Options       buildconf.OptionSet      `json:"options"`
	OptionsDigest digest.Digest            `json:"optionsDigest"`
	Stages        []StageResult            `json:"stages"`
	Outcome       Outcome                  `json:"outcome"`
}

// Returns the stage names in execution order.
func (r *Report) StageNames() []string {
	names := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		names[i] = s.Stage
	}
	return names
}

// Returns the result of a stage, or nil if it did not run.
func (r *Report) Stage(name string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Stage == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// Returns the error of the first failed stage, or nil on success.
func (r *Report) Err() error {
	if r.Outcome.Status != Failed {
		return nil
	}
	return r.Stage(r.Outcome.Stage).Err()
}

// Writes the report as indented JSON, creating parent directories.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReport, err)
	}

	if err := paths.EnsureParent(path); err != nil {
		return fmt.Errorf("%w: %w", ErrReport, err)
	}

	if err := os.WriteFile(path, append(data, '\n'), paths.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrReport, err)
	}
	return nil
}

// Appends a stage result and updates the outcome.
func (r *Report) record(result StageResult) {
	r.Stages = append(r.Stages, result)
	if result.Failed && r.Outcome.Status != Failed {
		r.Outcome = Outcome{Status: Failed, Stage: result.Stage}
	}
}
