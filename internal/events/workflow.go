package events

import "time"

// Workflow lifecycle event types.
const (
	TypeWorkflowStarted   = "workflow_started"
	TypeWorkflowPaused    = "workflow_paused"
	TypeWorkflowResumed   = "workflow_resumed"
	TypeWorkflowStopped   = "workflow_stopped"
	TypeWorkflowCompleted = "workflow_completed"
	TypeWorkflowFailed    = "workflow_failed"
	TypeWorkflowReset     = "workflow_reset"
)

// WorkflowStartedEvent fires when the backend acknowledged a start call.
type WorkflowStartedEvent struct {
	BaseEvent
	Query      string `json:"query"`
	TotalSteps int    `json:"total_steps"`
}

// NewWorkflowStarted creates a workflow started event.
func NewWorkflowStarted(sessionID, query string, totalSteps int) WorkflowStartedEvent {
	return WorkflowStartedEvent{
		BaseEvent:  NewBaseEvent(TypeWorkflowStarted, sessionID),
		Query:      query,
		TotalSteps: totalSteps,
	}
}

// WorkflowPausedEvent fires after a pause call is acknowledged.
type WorkflowPausedEvent struct {
	BaseEvent
}

// NewWorkflowPaused creates a workflow paused event.
func NewWorkflowPaused(sessionID string) WorkflowPausedEvent {
	return WorkflowPausedEvent{BaseEvent: NewBaseEvent(TypeWorkflowPaused, sessionID)}
}

// WorkflowResumedEvent fires after a resume call is acknowledged.
type WorkflowResumedEvent struct {
	BaseEvent
}

// NewWorkflowResumed creates a workflow resumed event.
func NewWorkflowResumed(sessionID string) WorkflowResumedEvent {
	return WorkflowResumedEvent{BaseEvent: NewBaseEvent(TypeWorkflowResumed, sessionID)}
}

// WorkflowStoppedEvent fires after a stop call is acknowledged.
type WorkflowStoppedEvent struct {
	BaseEvent
}

// NewWorkflowStopped creates a workflow stopped event.
func NewWorkflowStopped(sessionID string) WorkflowStoppedEvent {
	return WorkflowStoppedEvent{BaseEvent: NewBaseEvent(TypeWorkflowStopped, sessionID)}
}

// WorkflowCompletedEvent fires when every agent reached complete.
type WorkflowCompletedEvent struct {
	BaseEvent
	Duration time.Duration `json:"duration"`
}

// NewWorkflowCompleted creates a workflow completed event.
func NewWorkflowCompleted(sessionID string, duration time.Duration) WorkflowCompletedEvent {
	return WorkflowCompletedEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowCompleted, sessionID),
		Duration:  duration,
	}
}

// WorkflowFailedEvent fires when a start call fails and the session falls
// back to idle.
type WorkflowFailedEvent struct {
	BaseEvent
	Error string `json:"error"`
}

// NewWorkflowFailed creates a workflow failed event.
func NewWorkflowFailed(sessionID, errMsg string) WorkflowFailedEvent {
	return WorkflowFailedEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowFailed, sessionID),
		Error:     errMsg,
	}
}

// WorkflowResetEvent fires on a local reset. NewSessionID identifies the
// session allocated for the next run.
type WorkflowResetEvent struct {
	BaseEvent
	NewSessionID string `json:"new_session_id"`
}

// NewWorkflowReset creates a workflow reset event.
func NewWorkflowReset(oldSessionID, newSessionID string) WorkflowResetEvent {
	return WorkflowResetEvent{
		BaseEvent:    NewBaseEvent(TypeWorkflowReset, oldSessionID),
		NewSessionID: newSessionID,
	}
}
