package events

// Agent and sync event types.
const (
	TypeAgentStatusChanged = "agent_status_changed"
	TypeAgentProgress      = "agent_progress"
	TypeSyncDivergence     = "sync_divergence"
	TypeSyncFailure        = "sync_failure"
	TypeSyncRecovered      = "sync_recovered"
)

// AgentStatusChangedEvent fires whenever a snapshot merge or a lifecycle call
// moves an agent to a new status.
type AgentStatusChangedEvent struct {
	BaseEvent
	AgentID string `json:"agent_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Error   string `json:"error,omitempty"`
}

// NewAgentStatusChanged creates an agent status change event.
func NewAgentStatusChanged(sessionID, agentID, from, to, errMsg string) AgentStatusChangedEvent {
	return AgentStatusChangedEvent{
		BaseEvent: NewBaseEvent(TypeAgentStatusChanged, sessionID),
		AgentID:   agentID,
		From:      from,
		To:        to,
		Error:     errMsg,
	}
}

// AgentProgressEvent fires when an agent reports a new completion percentage.
type AgentProgressEvent struct {
	BaseEvent
	AgentID string  `json:"agent_id"`
	Percent float64 `json:"percent"`
}

// NewAgentProgress creates an agent progress event.
func NewAgentProgress(sessionID, agentID string, percent float64) AgentProgressEvent {
	return AgentProgressEvent{
		BaseEvent: NewBaseEvent(TypeAgentProgress, sessionID),
		AgentID:   agentID,
		Percent:   percent,
	}
}

// SyncDivergenceEvent reports a server snapshot that disagrees with the local
// dependency invariant. Informational only; the server snapshot wins.
type SyncDivergenceEvent struct {
	BaseEvent
	AgentID string   `json:"agent_id"`
	Detail  string   `json:"detail"`
	Unmet   []string `json:"unmet_dependencies,omitempty"`
}

// NewSyncDivergence creates a sync divergence event.
func NewSyncDivergence(sessionID, agentID, detail string, unmet []string) SyncDivergenceEvent {
	return SyncDivergenceEvent{
		BaseEvent: NewBaseEvent(TypeSyncDivergence, sessionID),
		AgentID:   agentID,
		Detail:    detail,
		Unmet:     unmet,
	}
}

// SyncFailureEvent reports a failed poll cycle. The loop keeps polling on the
// same cadence.
type SyncFailureEvent struct {
	BaseEvent
	Error        string `json:"error"`
	Consecutive  int    `json:"consecutive_failures"`
	AgentsFailed int    `json:"agents_marked_error"`
}

// NewSyncFailure creates a sync failure event.
func NewSyncFailure(sessionID, errMsg string, consecutive, agentsFailed int) SyncFailureEvent {
	return SyncFailureEvent{
		BaseEvent:    NewBaseEvent(TypeSyncFailure, sessionID),
		Error:        errMsg,
		Consecutive:  consecutive,
		AgentsFailed: agentsFailed,
	}
}

// SyncRecoveredEvent fires on the first successful poll after failures.
type SyncRecoveredEvent struct {
	BaseEvent
	AfterFailures int `json:"after_failures"`
}

// NewSyncRecovered creates a sync recovered event.
func NewSyncRecovered(sessionID string, afterFailures int) SyncRecoveredEvent {
	return SyncRecoveredEvent{
		BaseEvent:     NewBaseEvent(TypeSyncRecovered, sessionID),
		AfterFailures: afterFailures,
	}
}
