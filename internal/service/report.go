package service

import (
	"encoding/json"
	"time"

	"github.com/agentboard/agentboard/internal/core"
)

// SessionReport is the exportable summary of one workflow run.
type SessionReport struct {
	SessionID      string             `json:"session_id"`
	Query          string             `json:"query,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
	StartTime      *time.Time         `json:"start_time,omitempty"`
	DurationSecs   float64            `json:"duration_seconds,omitempty"`
	CompletedSteps int                `json:"completed_steps"`
	TotalSteps     int                `json:"total_steps"`
	Agents         []AgentReport      `json:"agents"`
	Results        map[string]string  `json:"results,omitempty"`
	SystemMetrics  map[string]float64 `json:"system_metrics,omitempty"`
}

// AgentReport summarizes one agent's run.
type AgentReport struct {
	ID           string             `json:"id"`
	Name         string             `json:"name,omitempty"`
	Status       string             `json:"status"`
	Progress     float64            `json:"progress"`
	Error        string             `json:"error,omitempty"`
	DurationSecs float64            `json:"duration_seconds,omitempty"`
	Metrics      *core.AgentMetrics `json:"metrics,omitempty"`
}

// BuildReport renders a session report from an execution snapshot.
func BuildReport(snap *core.ExecutionSnapshot, now time.Time) *SessionReport {
	report := &SessionReport{
		SessionID:      snap.SessionID,
		Query:          snap.Query,
		GeneratedAt:    now,
		StartTime:      snap.StartTime,
		CompletedSteps: snap.CompletedSteps,
		TotalSteps:     snap.TotalSteps,
		SystemMetrics:  snap.SystemMetrics,
	}

	if snap.StartTime != nil {
		report.DurationSecs = now.Sub(*snap.StartTime).Seconds()
	}

	if len(snap.Results) > 0 {
		report.Results = make(map[string]string, len(snap.Results))
		for id, r := range snap.Results {
			report.Results[string(id)] = r
		}
	}

	report.Agents = make([]AgentReport, 0, len(snap.Agents))
	for _, a := range snap.Agents {
		ar := AgentReport{
			ID:       string(a.ID()),
			Name:     a.Spec.Name,
			Status:   string(a.Status),
			Progress: a.Progress,
			Error:    a.Error,
			Metrics:  a.Metrics,
		}
		if a.StartedAt != nil {
			end := now
			if a.CompletedAt != nil {
				end = *a.CompletedAt
			}
			ar.DurationSecs = end.Sub(*a.StartedAt).Seconds()
		}
		report.Agents = append(report.Agents, ar)
	}

	return report
}

// WriteReport renders the report as indented JSON and writes it atomically.
// A crash mid-write never leaves a truncated report behind.
func WriteReport(path string, snap *core.ExecutionSnapshot, now time.Time) error {
	data, err := json.MarshalIndent(BuildReport(snap, now), "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, append(data, '\n'), 0o644)
}
