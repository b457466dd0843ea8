package core

import (
	"context"
	"time"
)

// Backend defines the contract for the remote agent-execution service. Its
// internal planning logic is opaque; the engine consumes it purely as a
// lifecycle protocol plus a status feed.
type Backend interface {
	// Health checks backend connectivity and returns optional system metrics.
	Health(ctx context.Context) (*HealthInfo, error)

	// ExecuteWorkflow starts a session carrying the full agent graph.
	ExecuteWorkflow(ctx context.Context, req ExecuteWorkflowRequest) (*ExecuteWorkflowResponse, error)

	// Status fetches the authoritative snapshot for a session.
	Status(ctx context.Context, sessionID string) (*StatusSnapshot, error)

	// Pause suspends execution for a session.
	Pause(ctx context.Context, sessionID string) error

	// Resume continues a paused session.
	Resume(ctx context.Context, sessionID string) error

	// Stop aborts a session.
	Stop(ctx context.Context, sessionID string) error
}

// HealthInfo reports backend availability.
type HealthInfo struct {
	Status        string             `json:"status"`
	Version       string             `json:"version,omitempty"`
	SystemMetrics map[string]float64 `json:"system_metrics,omitempty"`
}

// WorkflowConfig is the configuration block sent with a start request.
type WorkflowConfig struct {
	Sequential     bool `json:"sequential"`
	RetryOnError   bool `json:"retry_on_error"`
	MaxRetries     int  `json:"max_retries"`
	TimeoutMinutes int  `json:"timeout_minutes"`
}

// DefaultWorkflowConfig returns the configuration the dashboard sends unless
// overridden: sequential-only execution with bounded retries.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		Sequential:     true,
		RetryOnError:   true,
		MaxRetries:     3,
		TimeoutMinutes: 30,
	}
}

// ExecuteWorkflowRequest carries the graph and configuration for a start call.
type ExecuteWorkflowRequest struct {
	Query     string         `json:"query"`
	SessionID string         `json:"session_id"`
	Agents    []AgentSpec    `json:"agents"`
	Config    WorkflowConfig `json:"workflow_config"`
}

// ExecuteWorkflowResponse acknowledges a start call.
type ExecuteWorkflowResponse struct {
	SessionID string `json:"session_id"`
}

// IDGenerator produces session identifiers. Injected so tests can run with a
// deterministic sequence.
type IDGenerator interface {
	NewID() string
}

// Clock abstracts time for the sync engine's adaptive polling loop.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the sync engine needs.
type Ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}
