// Package report defines the run report produced by the engine and its JSON
// serialization. Rendering (HTML, dashboards) is a downstream concern.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a step or a whole run.
type Status string

// Status values.
const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// StepResult is the immutable record of one executed step.
type StepResult struct {
	Index      int    `json:"index"` // 1-based position in the flow
	Action     string `json:"action"`
	Payload    any    `json:"payload"`
	Status     Status `json:"status"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
	Context    string `json:"context,omitempty"`
}

// RunReport is the complete record of one scenario run. The steps list is a
// strict prefix of the scenario flow: execution stops at the first failure.
type RunReport struct {
	RunID        string         `json:"runId"`
	ScenarioPath string         `json:"scenarioPath"`
	Meta         map[string]any `json:"meta"`
	Status       Status         `json:"status"`
	StartedAt    time.Time      `json:"startedAt"`
	FinishedAt   time.Time      `json:"finishedAt"`
	Steps        []StepResult   `json:"steps"`
}

// New creates a report skeleton for a starting run.
func New(scenarioPath string, meta map[string]any) *RunReport {
	if meta == nil {
		meta = map[string]any{}
	}
	return &RunReport{
		RunID:        uuid.NewString(),
		ScenarioPath: scenarioPath,
		Meta:         meta,
		Status:       StatusPassed,
		StartedAt:    time.Now().UTC(),
	}
}

// Success reports whether every recorded step passed.
func (r *RunReport) Success() bool {
	return r.Status == StatusPassed
}

// Marshal renders the report as indented JSON with a trailing newline.
func Marshal(r *RunReport) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the report JSON to path, creating parent directories.
func Save(r *RunReport, path string) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
