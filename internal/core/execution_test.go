package core

import (
	"testing"
	"time"
)

func pipelineSpecs() []AgentSpec {
	return []AgentSpec{
		{ID: "planning", Priority: 0},
		{ID: "analysis", Priority: 1, Dependencies: []AgentID{"planning"}},
		{ID: "insight", Priority: 2, Dependencies: []AgentID{"analysis"}},
	}
}

func TestNewWorkflowExecution(t *testing.T) {
	exec := NewWorkflowExecution("sess-1", pipelineSpecs())

	if exec.TotalSteps != 3 {
		t.Errorf("TotalSteps = %d, want 3", exec.TotalSteps)
	}
	for id, agent := range exec.Agents {
		if agent.Status != AgentStatusIdle {
			t.Errorf("agent %s status = %s, want idle", id, agent.Status)
		}
	}
	if exec.IsActive() {
		t.Error("fresh execution must not be active")
	}
}

func TestWorkflowExecution_Clear(t *testing.T) {
	exec := NewWorkflowExecution("sess-1", pipelineSpecs())
	exec.IsRunning = true
	exec.Query = "q"
	exec.Results["planning"] = "done"
	exec.CompletedSteps = 2
	now := time.Now()
	exec.StartTime = &now
	exec.Agents["planning"].Status = AgentStatusComplete
	exec.Agents["analysis"].Status = AgentStatusError
	exec.Agents["analysis"].Error = "boom"

	exec.Clear("sess-2")

	if exec.SessionID != "sess-2" {
		t.Errorf("SessionID = %s, want sess-2", exec.SessionID)
	}
	if exec.IsRunning || exec.IsPaused || exec.Query != "" || exec.CompletedSteps != 0 {
		t.Error("Clear must reset session fields")
	}
	if len(exec.Results) != 0 {
		t.Error("Clear must drop results")
	}
	for id, agent := range exec.Agents {
		if agent.Status != AgentStatusIdle || agent.Error != "" {
			t.Errorf("agent %s = %s/%q, want idle and clean", id, agent.Status, agent.Error)
		}
	}
}

func TestWorkflowExecution_SnapshotIsDeepCopy(t *testing.T) {
	exec := NewWorkflowExecution("sess-1", pipelineSpecs())
	exec.Results["planning"] = "r"

	snap := exec.Snapshot()

	// Mutating the snapshot must not touch the live record.
	snap.Agents[0].Status = AgentStatusError
	snap.Results["planning"] = "tampered"

	if exec.Agents[snap.Agents[0].ID()].Status != AgentStatusIdle {
		t.Error("snapshot agent mutation leaked into execution record")
	}
	if exec.Results["planning"] != "r" {
		t.Error("snapshot result mutation leaked into execution record")
	}
}

func TestWorkflowExecution_SnapshotOrdering(t *testing.T) {
	specs := []AgentSpec{
		{ID: "b", Priority: 1},
		{ID: "a", Priority: 1},
		{ID: "z", Priority: 0},
	}
	exec := NewWorkflowExecution("sess-1", specs)

	snap := exec.Snapshot()
	got := []AgentID{snap.Agents[0].ID(), snap.Agents[1].ID(), snap.Agents[2].ID()}
	want := []AgentID{"z", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot order = %v, want %v", got, want)
		}
	}
}
