package service

import (
	"time"

	"github.com/agentboard/agentboard/internal/core"
)

// OverallProgress is the derived, display-facing view of a session. It never
// feeds back into agent or session state.
type OverallProgress struct {
	CompletedSteps int      `json:"completed_steps"`
	TotalSteps     int      `json:"total_steps"`
	OverallPercent float64  `json:"overall_percent"`
	ETASeconds     *float64 `json:"eta_seconds,omitempty"`
	Processing     int      `json:"processing"`
	Errored        int      `json:"errored"`
}

// Aggregate recomputes the derived metrics from an execution snapshot.
// ETA is present only when the backend supplied an estimated completion
// instant that still lies in the future.
func Aggregate(snap *core.ExecutionSnapshot, now time.Time) OverallProgress {
	p := OverallProgress{
		TotalSteps: snap.TotalSteps,
	}
	for _, agent := range snap.Agents {
		switch agent.Status {
		case core.AgentStatusComplete:
			p.CompletedSteps++
		case core.AgentStatusProcessing:
			p.Processing++
		case core.AgentStatusError:
			p.Errored++
		}
	}

	if p.TotalSteps > 0 {
		p.OverallPercent = float64(p.CompletedSteps) / float64(p.TotalSteps) * 100
	}

	if snap.EstimatedCompletion != nil {
		if remaining := snap.EstimatedCompletion.Sub(now).Seconds(); remaining > 0 {
			p.ETASeconds = &remaining
		}
	}
	return p
}
