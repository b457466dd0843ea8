package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboard/agentboard/internal/core"
)

func TestBuildReport(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	agentStart := start.Add(time.Second)
	agentEnd := start.Add(31 * time.Second)
	now := start.Add(2 * time.Minute)

	snap := &core.ExecutionSnapshot{
		SessionID: "sess-9",
		Query:     "churn drivers by cohort",
		StartTime: &start,
		Agents: []*core.Agent{
			{
				Spec:        core.AgentSpec{ID: "planning", Name: "Planning"},
				Status:      core.AgentStatusComplete,
				Progress:    100,
				StartedAt:   &agentStart,
				CompletedAt: &agentEnd,
				Metrics:     &core.AgentMetrics{RecordsProcessed: 1200},
			},
			{
				Spec:   core.AgentSpec{ID: "insight"},
				Status: core.AgentStatusError,
				Error:  "upstream timeout",
			},
		},
		Results:        map[core.AgentID]string{"planning": "plan ready"},
		CompletedSteps: 1,
		TotalSteps:     2,
	}

	report := BuildReport(snap, now)
	assert.Equal(t, "sess-9", report.SessionID)
	assert.Equal(t, 120.0, report.DurationSecs)
	require.Len(t, report.Agents, 2)

	planning := report.Agents[0]
	assert.Equal(t, "complete", planning.Status)
	assert.Equal(t, 30.0, planning.DurationSecs)
	assert.Equal(t, 1200, planning.Metrics.RecordsProcessed)

	insight := report.Agents[1]
	assert.Equal(t, "error", insight.Status)
	assert.Equal(t, "upstream timeout", insight.Error)
	assert.Zero(t, insight.DurationSecs)

	assert.Equal(t, "plan ready", report.Results["planning"])
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "run.json")

	snap := &core.ExecutionSnapshot{
		SessionID:  "sess-1",
		Agents:     []*core.Agent{{Spec: core.AgentSpec{ID: "a"}, Status: core.AgentStatusComplete}},
		TotalSteps: 1,
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, WriteReport(path, snap, time.Now()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report SessionReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "sess-1", report.SessionID)
	require.Len(t, report.Agents, 1)
	assert.Equal(t, "complete", report.Agents[0].Status)
}
