package service

import (
	"testing"
	"time"

	"github.com/agentboard/agentboard/internal/core"
)

func snapshotWithStatuses(statuses ...core.AgentStatus) *core.ExecutionSnapshot {
	agents := make([]*core.Agent, len(statuses))
	for i, st := range statuses {
		agents[i] = &core.Agent{Status: st}
	}
	return &core.ExecutionSnapshot{
		Agents:     agents,
		TotalSteps: len(statuses),
	}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	snap := snapshotWithStatuses(
		core.AgentStatusComplete,
		core.AgentStatusComplete,
		core.AgentStatusProcessing,
		core.AgentStatusError,
	)

	p := Aggregate(snap, now)
	if p.CompletedSteps != 2 {
		t.Errorf("CompletedSteps = %d, want 2", p.CompletedSteps)
	}
	if p.TotalSteps != 4 {
		t.Errorf("TotalSteps = %d, want 4", p.TotalSteps)
	}
	if p.OverallPercent != 50 {
		t.Errorf("OverallPercent = %v, want 50", p.OverallPercent)
	}
	if p.Processing != 1 || p.Errored != 1 {
		t.Errorf("Processing = %d, Errored = %d, want 1 and 1", p.Processing, p.Errored)
	}
	if p.ETASeconds != nil {
		t.Errorf("ETASeconds = %v, want nil without an estimate", *p.ETASeconds)
	}
}

func TestAggregate_EmptyPipeline(t *testing.T) {
	p := Aggregate(&core.ExecutionSnapshot{}, time.Now())
	if p.OverallPercent != 0 {
		t.Errorf("OverallPercent = %v, want 0 for empty pipeline", p.OverallPercent)
	}
}

func TestAggregate_ETA(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	future := now.Add(90 * time.Second)
	snap := snapshotWithStatuses(core.AgentStatusProcessing)
	snap.EstimatedCompletion = &future

	p := Aggregate(snap, now)
	if p.ETASeconds == nil || *p.ETASeconds != 90 {
		t.Fatalf("ETASeconds = %v, want 90", p.ETASeconds)
	}

	// An estimate in the past yields no ETA.
	past := now.Add(-time.Minute)
	snap.EstimatedCompletion = &past
	if p := Aggregate(snap, now); p.ETASeconds != nil {
		t.Errorf("ETASeconds = %v, want nil for past estimate", *p.ETASeconds)
	}
}
