package core

import (
	"sort"
	"time"
)

// WorkflowExecution is the single source of truth for one analysis session.
// It is mutated only by the execution controller and the sync engine, never
// concurrently; readers receive deep-copied snapshots.
type WorkflowExecution struct {
	SessionID string
	Query     string

	// IsRunning and IsPaused are mutually exclusive. Both false means
	// idle or stopped.
	IsRunning bool
	IsPaused  bool

	Agents  map[AgentID]*Agent
	Results map[AgentID]string

	CurrentAgent AgentID
	CurrentStep  int

	StartTime           *time.Time
	EstimatedCompletion *time.Time

	TotalSteps     int
	CompletedSteps int

	SystemMetrics map[string]float64
}

// NewWorkflowExecution creates an idle execution record over the given agents.
func NewWorkflowExecution(sessionID string, specs []AgentSpec) *WorkflowExecution {
	agents := make(map[AgentID]*Agent, len(specs))
	for _, spec := range specs {
		agents[spec.ID] = NewAgent(spec)
	}
	return &WorkflowExecution{
		SessionID:  sessionID,
		Agents:     agents,
		Results:    make(map[AgentID]string),
		TotalSteps: len(specs),
	}
}

// Agent returns the live agent for an id.
func (w *WorkflowExecution) Agent(id AgentID) (*Agent, bool) {
	a, ok := w.Agents[id]
	return a, ok
}

// Statuses returns the current status of every agent.
func (w *WorkflowExecution) Statuses() map[AgentID]AgentStatus {
	statuses := make(map[AgentID]AgentStatus, len(w.Agents))
	for id, a := range w.Agents {
		statuses[id] = a.Status
	}
	return statuses
}

// CountByStatus returns how many agents are in the given status.
func (w *WorkflowExecution) CountByStatus(status AgentStatus) int {
	n := 0
	for _, a := range w.Agents {
		if a.Status == status {
			n++
		}
	}
	return n
}

// IsActive returns true while the session is running or paused.
func (w *WorkflowExecution) IsActive() bool {
	return w.IsRunning || w.IsPaused
}

// Clear resets the record for a fresh session. Every agent returns to idle
// with cleared progress, metrics and errors.
func (w *WorkflowExecution) Clear(sessionID string) {
	for _, a := range w.Agents {
		_ = a.Apply(Reset{})
	}
	w.SessionID = sessionID
	w.Query = ""
	w.IsRunning = false
	w.IsPaused = false
	w.Results = make(map[AgentID]string)
	w.CurrentAgent = ""
	w.CurrentStep = 0
	w.StartTime = nil
	w.EstimatedCompletion = nil
	w.CompletedSteps = 0
	w.SystemMetrics = nil
}

// ExecutionSnapshot is a read-only deep copy of a WorkflowExecution, ordered
// for display. Handed across the presentation boundary.
type ExecutionSnapshot struct {
	SessionID string             `json:"session_id"`
	Query     string             `json:"query,omitempty"`
	IsRunning bool               `json:"is_running"`
	IsPaused  bool               `json:"is_paused"`
	Agents    []*Agent           `json:"agents"`
	Results   map[AgentID]string `json:"results,omitempty"`

	CurrentAgent AgentID `json:"current_agent,omitempty"`
	CurrentStep  int     `json:"current_step"`

	StartTime           *time.Time `json:"start_time,omitempty"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`

	TotalSteps     int `json:"total_steps"`
	CompletedSteps int `json:"completed_steps"`

	SystemMetrics map[string]float64 `json:"system_metrics,omitempty"`
}

// Snapshot returns a deep copy safe for concurrent readers. Agents are sorted
// by display priority, then id.
func (w *WorkflowExecution) Snapshot() *ExecutionSnapshot {
	agents := make([]*Agent, 0, len(w.Agents))
	for _, a := range w.Agents {
		agents = append(agents, a.Clone())
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Spec.Priority != agents[j].Spec.Priority {
			return agents[i].Spec.Priority < agents[j].Spec.Priority
		}
		return agents[i].Spec.ID < agents[j].Spec.ID
	})

	results := make(map[AgentID]string, len(w.Results))
	for id, r := range w.Results {
		results[id] = r
	}

	snap := &ExecutionSnapshot{
		SessionID:      w.SessionID,
		Query:          w.Query,
		IsRunning:      w.IsRunning,
		IsPaused:       w.IsPaused,
		Agents:         agents,
		Results:        results,
		CurrentAgent:   w.CurrentAgent,
		CurrentStep:    w.CurrentStep,
		TotalSteps:     w.TotalSteps,
		CompletedSteps: w.CompletedSteps,
	}
	if w.StartTime != nil {
		t := *w.StartTime
		snap.StartTime = &t
	}
	if w.EstimatedCompletion != nil {
		t := *w.EstimatedCompletion
		snap.EstimatedCompletion = &t
	}
	if w.SystemMetrics != nil {
		snap.SystemMetrics = make(map[string]float64, len(w.SystemMetrics))
		for k, v := range w.SystemMetrics {
			snap.SystemMetrics[k] = v
		}
	}
	return snap
}
