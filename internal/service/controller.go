package service

import (
	"context"
	"sync"
	"time"

	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/events"
	"github.com/agentboard/agentboard/internal/logging"
)

// ExecutionController drives the session lifecycle: it seeds agent statuses
// from the dependency resolver, issues the remote lifecycle calls, and owns
// the sync engine for the lifetime of an active session.
//
// All mutation of the WorkflowExecution record is serialized through the
// controller's mutex; the lock is never held across a network call. Readers
// get deep-copied snapshots.
type ExecutionController struct {
	mu       sync.Mutex
	exec     *core.WorkflowExecution
	graph    *WorkflowGraph
	backend  core.Backend
	ids      core.IDGenerator
	clock    core.Clock
	bus      *events.Bus
	logger   *logging.Logger
	cfg      core.WorkflowConfig
	syncCfg  SyncConfig
	starting bool

	syncCancel context.CancelFunc
	syncDone   chan struct{}
}

// ControllerOption configures the controller.
type ControllerOption func(*ExecutionController)

// WithIDGenerator injects the session id source.
func WithIDGenerator(ids core.IDGenerator) ControllerOption {
	return func(c *ExecutionController) { c.ids = ids }
}

// WithClock injects the time source used for polling and timestamps.
func WithClock(clock core.Clock) ControllerOption {
	return func(c *ExecutionController) { c.clock = clock }
}

// WithWorkflowConfig overrides the configuration block sent on start.
func WithWorkflowConfig(cfg core.WorkflowConfig) ControllerOption {
	return func(c *ExecutionController) { c.cfg = cfg }
}

// WithSyncConfig overrides the polling cadence. Non-positive intervals keep
// their defaults.
func WithSyncConfig(cfg SyncConfig) ControllerOption {
	return func(c *ExecutionController) {
		if cfg.ActiveInterval > 0 {
			c.syncCfg.ActiveInterval = cfg.ActiveInterval
		}
		if cfg.PausedInterval > 0 {
			c.syncCfg.PausedInterval = cfg.PausedInterval
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *logging.Logger) ControllerOption {
	return func(c *ExecutionController) { c.logger = logger }
}

// NewExecutionController creates a controller over a validated graph.
func NewExecutionController(graph *WorkflowGraph, backend core.Backend, bus *events.Bus, opts ...ControllerOption) *ExecutionController {
	c := &ExecutionController{
		graph:   graph,
		backend: backend,
		ids:     core.UUIDGenerator{},
		clock:   core.SystemClock{},
		bus:     bus,
		logger:  logging.NewNop(),
		cfg:     core.DefaultWorkflowConfig(),
		syncCfg: DefaultSyncConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.exec = core.NewWorkflowExecution(c.ids.NewID(), graph.Specs())
	return c
}

// Graph returns the immutable workflow graph.
func (c *ExecutionController) Graph() *WorkflowGraph {
	return c.graph
}

// Snapshot returns a read-only deep copy of the execution record.
func (c *ExecutionController) Snapshot() *core.ExecutionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exec.Snapshot()
}

// Progress returns the derived display metrics.
func (c *ExecutionController) Progress() OverallProgress {
	return Aggregate(c.Snapshot(), c.clock.Now())
}

// Start allocates (or reuses) the session id, seeds every agent via Enqueue
// using the dependency resolver, and issues the remote start call. On request
// failure every agent is forced to error and the session returns to idle.
func (c *ExecutionController) Start(ctx context.Context, query string) error {
	c.mu.Lock()
	if c.starting || c.exec.IsActive() {
		c.mu.Unlock()
		return core.ErrState(core.CodeInvalidSessionState, "workflow is already active")
	}
	c.starting = true
	if c.exec.SessionID == "" {
		c.exec.SessionID = c.ids.NewID()
	}
	sessionID := c.exec.SessionID
	c.exec.Query = query

	// Seed statuses: dependency-free agents become queued, the rest waiting.
	statuses := c.exec.Statuses()
	for _, id := range c.graph.Order() {
		agent := c.exec.Agents[id]
		from := agent.Status
		if err := agent.Apply(core.Enqueue{Eligible: Eligible(c.graph, statuses, id)}); err != nil {
			c.logger.Debug("agent not enqueued", "agent_id", id, "error", err)
			continue
		}
		statuses[id] = agent.Status
		c.publishStatusChange(sessionID, agent, from)
	}

	req := core.ExecuteWorkflowRequest{
		Query:     query,
		SessionID: sessionID,
		Agents:    c.graph.Specs(),
		Config:    c.cfg,
	}
	c.mu.Unlock()

	resp, err := c.backend.ExecuteWorkflow(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.starting = false

	if c.exec.SessionID != sessionID {
		// Reset raced the start call; the new session stays idle.
		return core.ErrState(core.CodeStaleSession, "session was reset during start")
	}

	if err != nil {
		c.failAllLocked(sessionID, "workflow start failed: "+err.Error())
		c.bus.Publish(events.NewWorkflowFailed(sessionID, err.Error()))
		c.logger.Error("workflow start failed", "session_id", sessionID, "error", err)
		return err
	}

	if resp.SessionID != "" && resp.SessionID != sessionID {
		c.logger.Warn("backend assigned a different session id",
			"requested", sessionID, "assigned", resp.SessionID)
		c.exec.SessionID = resp.SessionID
		sessionID = resp.SessionID
	}

	now := c.clock.Now()
	c.exec.IsRunning = true
	c.exec.IsPaused = false
	c.exec.StartTime = &now
	c.exec.TotalSteps = c.graph.Len()

	c.startSyncLocked()
	c.bus.Publish(events.NewWorkflowStarted(sessionID, query, c.graph.Len()))
	c.logger.Info("workflow started", "session_id", sessionID, "agents", c.graph.Len())
	return nil
}

// Pause issues the remote pause call. Local state only changes once the
// backend acknowledged; a failed call leaves the session running.
func (c *ExecutionController) Pause(ctx context.Context) error {
	c.mu.Lock()
	if !c.exec.IsRunning {
		c.mu.Unlock()
		return core.ErrState(core.CodeInvalidSessionState, "workflow is not running")
	}
	sessionID := c.exec.SessionID
	c.mu.Unlock()

	if err := c.backend.Pause(ctx, sessionID); err != nil {
		c.logger.Warn("pause call failed, session remains running", "session_id", sessionID, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exec.SessionID != sessionID || !c.exec.IsRunning {
		return core.ErrState(core.CodeStaleSession, "session changed during pause")
	}

	c.exec.IsRunning = false
	c.exec.IsPaused = true
	for _, agent := range c.exec.Agents {
		if agent.Status != core.AgentStatusProcessing {
			continue
		}
		from := agent.Status
		if err := agent.Apply(core.Pause{}); err == nil {
			c.publishStatusChange(sessionID, agent, from)
		}
	}
	c.bus.Publish(events.NewWorkflowPaused(sessionID))
	c.logger.Info("workflow paused", "session_id", sessionID)
	return nil
}

// Resume issues the remote resume call and promotes locally paused agents
// back to processing on success.
func (c *ExecutionController) Resume(ctx context.Context) error {
	c.mu.Lock()
	if !c.exec.IsPaused {
		c.mu.Unlock()
		return core.ErrState(core.CodeInvalidSessionState, "workflow is not paused")
	}
	sessionID := c.exec.SessionID
	c.mu.Unlock()

	if err := c.backend.Resume(ctx, sessionID); err != nil {
		c.logger.Warn("resume call failed, session remains paused", "session_id", sessionID, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exec.SessionID != sessionID || !c.exec.IsPaused {
		return core.ErrState(core.CodeStaleSession, "session changed during resume")
	}

	c.exec.IsPaused = false
	c.exec.IsRunning = true
	for _, agent := range c.exec.Agents {
		if agent.Status != core.AgentStatusPaused {
			continue
		}
		from := agent.Status
		if err := agent.Apply(core.Resume{}); err == nil {
			c.publishStatusChange(sessionID, agent, from)
		}
	}
	c.bus.Publish(events.NewWorkflowResumed(sessionID))
	c.logger.Info("workflow resumed", "session_id", sessionID)
	return nil
}

// Stop issues the remote stop call. On success every non-terminal agent
// returns to idle; complete and error agents are untouched. A failed call
// leaves the session unchanged so the user may retry.
func (c *ExecutionController) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.exec.IsActive() {
		c.mu.Unlock()
		return core.ErrState(core.CodeInvalidSessionState, "workflow is not active")
	}
	sessionID := c.exec.SessionID
	c.mu.Unlock()

	if err := c.backend.Stop(ctx, sessionID); err != nil {
		c.logger.Warn("stop call failed, session state unchanged", "session_id", sessionID, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exec.SessionID != sessionID {
		return core.ErrState(core.CodeStaleSession, "session changed during stop")
	}

	for _, agent := range c.exec.Agents {
		if agent.IsTerminal() || agent.Status == core.AgentStatusIdle {
			continue
		}
		from := agent.Status
		if err := agent.Apply(core.Stop{}); err == nil {
			c.publishStatusChange(sessionID, agent, from)
		}
	}
	c.exec.IsRunning = false
	c.exec.IsPaused = false
	c.stopSyncLocked()
	c.bus.Publish(events.NewWorkflowStopped(sessionID))
	c.logger.Info("workflow stopped", "session_id", sessionID)
	return nil
}

// Reset is purely local: it clears every agent and the whole execution
// record, tears down the sync engine, and allocates a fresh session id for
// the next run. Reset never calls the backend.
func (c *ExecutionController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldSessionID := c.exec.SessionID
	newSessionID := c.ids.NewID()
	c.stopSyncLocked()
	c.exec.Clear(newSessionID)
	c.bus.Publish(events.NewWorkflowReset(oldSessionID, newSessionID))
	c.logger.Info("workflow reset", "old_session_id", oldSessionID, "new_session_id", newSessionID)
}

// BeginAgent applies BeginProcessing to one agent, gated on the resolver's
// current eligibility verdict.
func (c *ExecutionController) BeginAgent(id core.AgentID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	agent, ok := c.exec.Agent(id)
	if !ok {
		return core.ErrNotFound("agent", string(id))
	}
	from := agent.Status
	err := agent.Apply(core.BeginProcessing{
		Eligible: Eligible(c.graph, c.exec.Statuses(), id),
	})
	if err != nil {
		return err
	}
	c.publishStatusChange(c.exec.SessionID, agent, from)
	return nil
}

// Close tears down the controller and any running sync loop.
func (c *ExecutionController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSyncLocked()
}

// currentSessionID returns the live session id.
func (c *ExecutionController) currentSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exec.SessionID
}

// currentInterval picks the polling cadence from the session state.
func (c *ExecutionController) currentInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exec.IsPaused {
		return c.syncCfg.PausedInterval
	}
	return c.syncCfg.ActiveInterval
}

// failAllLocked forces every agent to error. Used when the start call fails
// before the backend ever ran anything.
func (c *ExecutionController) failAllLocked(sessionID, reason string) {
	for _, agent := range c.exec.Agents {
		from := agent.Status
		if agent.Status == core.AgentStatusProcessing || agent.Status == core.AgentStatusPaused {
			_ = agent.Apply(core.Fail{Reason: reason})
		} else {
			agent.Status = core.AgentStatusError
			agent.Error = reason
		}
		c.publishStatusChange(sessionID, agent, from)
	}
	c.exec.IsRunning = false
	c.exec.IsPaused = false
}

// startSyncLocked launches the sync engine for the current session.
func (c *ExecutionController) startSyncLocked() {
	if c.syncCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.syncCancel = cancel
	c.syncDone = make(chan struct{})

	engine := newSyncEngine(c, c.backend, c.clock, c.syncCfg, c.bus, c.logger)
	go func(done chan struct{}) {
		defer close(done)
		engine.Run(ctx)
	}(c.syncDone)
}

// stopSyncLocked cancels the sync loop. No orphaned timers may outlive the
// session.
func (c *ExecutionController) stopSyncLocked() {
	if c.syncCancel == nil {
		return
	}
	c.syncCancel()
	c.syncCancel = nil
	c.syncDone = nil
}

func (c *ExecutionController) publishStatusChange(sessionID string, agent *core.Agent, from core.AgentStatus) {
	if agent.Status == from {
		return
	}
	c.bus.Publish(events.NewAgentStatusChanged(
		sessionID, string(agent.ID()), string(from), string(agent.Status), agent.Error))
}
