package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	r := New("scenarios/login.yaml", nil)

	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "scenarios/login.yaml", r.ScenarioPath)
	assert.NotNil(t, r.Meta)
	assert.Equal(t, StatusPassed, r.Status)
	assert.True(t, r.Success())
	assert.False(t, r.StartedAt.IsZero())
}

func TestSuccess(t *testing.T) {
	r := New("x.yaml", nil)
	assert.True(t, r.Success())
	r.Status = StatusFailed
	assert.False(t, r.Success())
}

func TestMarshalGolden(t *testing.T) {
	r := &RunReport{
		RunID:        "7a1d4c62-90b3-4a8e-9f5d-1c2e3f405060",
		ScenarioPath: "scenarios/login.yaml",
		Meta:         map[string]any{"name": "login"},
		Status:       StatusFailed,
		StartedAt:    time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2026, 8, 29, 10, 0, 3, 0, time.UTC),
		Steps: []StepResult{
			{
				Index:      1,
				Action:     "go",
				Payload:    "/login",
				Status:     StatusPassed,
				DurationMs: 412,
			},
			{
				Index:      2,
				Action:     "see",
				Payload:    "Welcome back",
				Status:     StatusFailed,
				DurationMs: 8000,
				Error:      `expectation not met: "Welcome back"`,
				Screenshot: "artifacts/failure_2.png",
				Context:    "404 page not found",
			},
		},
	}

	data, err := Marshal(r)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "report", data)
}

func TestSaveCreatesDirectories(t *testing.T) {
	r := New("x.yaml", map[string]any{"name": "smoke"})
	path := filepath.Join(t.TempDir(), "artifacts", "report.json")

	require.NoError(t, Save(r, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenarioPath": "x.yaml"`)
	assert.Contains(t, string(data), r.RunID)
}
