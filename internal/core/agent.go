package core

import "time"

// AgentID uniquely identifies an agent within the analysis pipeline.
type AgentID string

// AgentStatus represents the current state of an agent.
type AgentStatus string

const (
	AgentStatusIdle       AgentStatus = "idle"
	AgentStatusQueued     AgentStatus = "queued"
	AgentStatusWaiting    AgentStatus = "waiting"
	AgentStatusProcessing AgentStatus = "processing"
	AgentStatusPaused     AgentStatus = "paused"
	AgentStatusComplete   AgentStatus = "complete"
	AgentStatusError      AgentStatus = "error"
)

// ValidAgentStatus checks if a status string is a known status.
func ValidAgentStatus(s AgentStatus) bool {
	switch s {
	case AgentStatusIdle, AgentStatusQueued, AgentStatusWaiting,
		AgentStatusProcessing, AgentStatusPaused, AgentStatusComplete, AgentStatusError:
		return true
	default:
		return false
	}
}

// ParseAgentStatus converts a string to an AgentStatus with validation.
func ParseAgentStatus(s string) (AgentStatus, error) {
	st := AgentStatus(s)
	if !ValidAgentStatus(st) {
		return "", ErrValidation("INVALID_STATUS", "unknown agent status: "+s)
	}
	return st, nil
}

// IsTerminal returns true for states with no outgoing edges other than reset.
func (s AgentStatus) IsTerminal() bool {
	return s == AgentStatusComplete || s == AgentStatusError
}

// String returns the string representation of the status.
func (s AgentStatus) String() string {
	return string(s)
}

// AgentSpec declares the static shape of one pipeline stage: its identity,
// the agents that must complete before it may run, and a display priority
// used only as an ordering tie-break.
type AgentSpec struct {
	ID           AgentID  `json:"id"`
	Name         string   `json:"name,omitempty"`
	Dependencies []AgentID `json:"dependencies"`
	Priority     int      `json:"priority"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// AgentMetrics holds advisory execution statistics for an agent.
// Metrics never drive control flow.
type AgentMetrics struct {
	ExecutionTime    float64 `json:"execution_time,omitempty"`
	RecordsProcessed int     `json:"records_processed,omitempty"`
	Accuracy         float64 `json:"accuracy,omitempty"`
	MemoryMB         float64 `json:"memory_mb,omitempty"`
}

// Agent is the live state of one pipeline stage during a workflow run.
type Agent struct {
	Spec     AgentSpec     `json:"spec"`
	Status   AgentStatus   `json:"status"`
	Progress float64       `json:"progress"` // percentage in [0,100], monotonic while processing
	Metrics  *AgentMetrics `json:"metrics,omitempty"`
	Error    string        `json:"error,omitempty"` // present only while Status is error

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewAgent creates an idle agent from its declaration.
func NewAgent(spec AgentSpec) *Agent {
	return &Agent{
		Spec:   spec,
		Status: AgentStatusIdle,
	}
}

// ID returns the agent's identifier.
func (a *Agent) ID() AgentID {
	return a.Spec.ID
}

// IsTerminal returns true if the agent is in a terminal state.
func (a *Agent) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// Clone returns a deep copy of the agent, safe to hand to readers.
func (a *Agent) Clone() *Agent {
	cp := *a
	if a.Metrics != nil {
		m := *a.Metrics
		cp.Metrics = &m
	}
	if a.StartedAt != nil {
		t := *a.StartedAt
		cp.StartedAt = &t
	}
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		cp.CompletedAt = &t
	}
	cp.Spec.Dependencies = append([]AgentID(nil), a.Spec.Dependencies...)
	cp.Spec.Capabilities = append([]string(nil), a.Spec.Capabilities...)
	return &cp
}

// Duration returns the agent execution duration so far.
func (a *Agent) Duration() time.Duration {
	if a.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if a.CompletedAt != nil {
		end = *a.CompletedAt
	}
	return end.Sub(*a.StartedAt)
}
