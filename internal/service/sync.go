package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/events"
	"github.com/agentboard/agentboard/internal/logging"
)

// SyncConfig holds the adaptive polling cadence.
type SyncConfig struct {
	ActiveInterval time.Duration
	PausedInterval time.Duration
}

// DefaultSyncConfig returns the dashboard cadence: 1.5s while running, 5s
// while paused.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		ActiveInterval: 1500 * time.Millisecond,
		PausedInterval: 5 * time.Second,
	}
}

// connectionLostReason is attached to processing agents when the first poll
// of a run fails. The next successful poll silently recovers their statuses.
const connectionLostReason = "connection lost during execution"

// syncEngine keeps the local execution record consistent with the backend's
// authoritative snapshot while a session is active. One engine instance lives
// for exactly one active interval of a session; the controller cancels its
// context on stop and reset.
type syncEngine struct {
	ctrl    *ExecutionController
	backend core.Backend
	clock   core.Clock
	cfg     SyncConfig
	bus     *events.Bus
	logger  *logging.Logger

	// inFlight guards the single-request-per-cycle rule: a tick that fires
	// while a poll is pending is skipped, never queued.
	inFlight atomic.Bool
	failures int
}

func newSyncEngine(ctrl *ExecutionController, backend core.Backend, clock core.Clock, cfg SyncConfig, bus *events.Bus, logger *logging.Logger) *syncEngine {
	return &syncEngine{
		ctrl:    ctrl,
		backend: backend,
		clock:   clock,
		cfg:     cfg,
		bus:     bus,
		logger:  logger,
	}
}

// Run polls until the context is cancelled. The cadence adapts to the session
// state on every tick; there is no backoff on failure, the same interval is
// retried indefinitely.
func (s *syncEngine) Run(ctx context.Context) {
	interval := s.ctrl.currentInterval()
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if next := s.ctrl.currentInterval(); next != interval {
				interval = next
				ticker.Reset(next)
			}
			if !s.inFlight.CompareAndSwap(false, true) {
				continue // previous poll still pending, skip this tick
			}
			sessionID := s.ctrl.currentSessionID()
			go func() {
				defer s.inFlight.Store(false)
				s.poll(ctx, sessionID)
			}()
		}
	}
}

// poll fetches one snapshot and applies it. sessionID is captured at dispatch
// time; a response arriving after stop or reset is discarded at apply time.
func (s *syncEngine) poll(ctx context.Context, sessionID string) {
	snap, err := s.backend.Status(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return // engine torn down mid-request
		}
		s.failures++
		marked := 0
		if s.failures == 1 {
			marked = s.ctrl.markConnectionLost(sessionID)
		}
		s.bus.Publish(events.NewSyncFailure(sessionID, err.Error(), s.failures, marked))
		s.logger.Warn("status poll failed",
			"session_id", sessionID, "consecutive", s.failures, "error", err)
		return
	}

	if s.failures > 0 {
		s.bus.Publish(events.NewSyncRecovered(sessionID, s.failures))
		s.logger.Info("status poll recovered", "session_id", sessionID, "after_failures", s.failures)
		s.failures = 0
	}

	s.ctrl.applySnapshot(sessionID, snap)
}

// markConnectionLost marks in-flight processing agents as errored after the
// first poll failure of a run. Returns how many agents were marked.
func (c *ExecutionController) markConnectionLost(sessionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exec.SessionID != sessionID || !c.exec.IsActive() {
		return 0
	}

	marked := 0
	for _, agent := range c.exec.Agents {
		if agent.Status != core.AgentStatusProcessing {
			continue
		}
		from := agent.Status
		if err := agent.Apply(core.Fail{Reason: connectionLostReason}); err != nil {
			continue
		}
		c.publishStatusChange(sessionID, agent, from)
		marked++
	}
	return marked
}

// applySnapshot merges one backend snapshot into the execution record.
// Discard rules (checked under the lock, in order): the poll's session id no
// longer matches, the session is no longer active, or the snapshot itself
// names a different session.
func (c *ExecutionController) applySnapshot(requestSessionID string, snap *core.StatusSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exec.SessionID != requestSessionID || !c.exec.IsActive() {
		c.logger.Debug("discarding stale poll response",
			"poll_session_id", requestSessionID, "current_session_id", c.exec.SessionID)
		return
	}
	if snap.SessionID != "" && snap.SessionID != c.exec.SessionID {
		c.logger.Warn("discarding snapshot for foreign session",
			"snapshot_session_id", snap.SessionID, "current_session_id", c.exec.SessionID)
		return
	}

	sessionID := c.exec.SessionID

	// Statuses present in the response fully replace local values; absent ids
	// carry no new information and keep their previous state.
	for rawID, rawStatus := range snap.Statuses {
		id := core.AgentID(rawID)
		agent, ok := c.exec.Agent(id)
		if !ok {
			c.logger.Warn("snapshot references undeclared agent", "agent_id", rawID)
			continue
		}
		status, err := core.ParseAgentStatus(rawStatus)
		if err != nil {
			c.logger.Warn("snapshot carried invalid status",
				"agent_id", rawID, "status", rawStatus)
			continue
		}
		from := agent.Status
		c.adoptServerStatus(agent, status)
		c.publishStatusChange(sessionID, agent, from)
	}

	for rawID, pct := range snap.Progress {
		agent, ok := c.exec.Agent(core.AgentID(rawID))
		if !ok {
			continue
		}
		before := agent.Progress
		if err := agent.Apply(core.Progress{Percent: pct}); err != nil {
			// Non-monotonic or out-of-state progress from the server is
			// clamped, never fatal.
			c.logger.Debug("clamped snapshot progress",
				"agent_id", rawID, "reported", pct, "kept", agent.Progress)
			continue
		}
		if agent.Progress != before {
			c.bus.Publish(events.NewAgentProgress(sessionID, rawID, agent.Progress))
		}
	}

	for rawID, msg := range snap.Errors {
		if agent, ok := c.exec.Agent(core.AgentID(rawID)); ok && agent.Status == core.AgentStatusError {
			agent.Error = msg
		}
	}

	for rawID, result := range snap.Results {
		if _, ok := c.exec.Agent(core.AgentID(rawID)); ok {
			c.exec.Results[core.AgentID(rawID)] = result
		}
	}

	for rawID, metrics := range snap.Metrics {
		if agent, ok := c.exec.Agent(core.AgentID(rawID)); ok {
			m := metrics
			agent.Metrics = &m
		}
	}

	if snap.CurrentAgent != "" {
		c.exec.CurrentAgent = core.AgentID(snap.CurrentAgent)
	}
	if snap.CurrentStep > 0 {
		c.exec.CurrentStep = snap.CurrentStep
	}
	if snap.EstimatedCompletion != nil {
		t := *snap.EstimatedCompletion
		c.exec.EstimatedCompletion = &t
	}
	if snap.SystemMetrics != nil {
		c.exec.SystemMetrics = snap.SystemMetrics
	}

	// completedSteps never decreases while the session is running.
	completed := c.exec.CountByStatus(core.AgentStatusComplete)
	if completed > c.exec.CompletedSteps || !c.exec.IsRunning {
		c.exec.CompletedSteps = completed
	}

	c.reportDivergencesLocked(sessionID)
	c.finishIfDoneLocked(sessionID)
}

// adoptServerStatus replaces an agent's status with the server's verdict. The
// remote snapshot is authoritative for individual agent status; local
// bookkeeping fields follow the new state.
func (c *ExecutionController) adoptServerStatus(agent *core.Agent, status core.AgentStatus) {
	if agent.Status == status {
		return
	}
	now := c.clock.Now()
	switch status {
	case core.AgentStatusProcessing:
		if agent.StartedAt == nil {
			agent.StartedAt = &now
		}
		agent.Error = ""
		agent.CompletedAt = nil
	case core.AgentStatusComplete:
		agent.Progress = 100
		agent.Error = ""
		if agent.CompletedAt == nil {
			agent.CompletedAt = &now
		}
	case core.AgentStatusError:
		if agent.CompletedAt == nil {
			agent.CompletedAt = &now
		}
	case core.AgentStatusIdle:
		agent.Progress = 0
		agent.Error = ""
	default:
		agent.Error = ""
	}
	agent.Status = status
}

// reportDivergencesLocked surfaces server snapshots that violate the local
// dependency invariant. The server snapshot stays authoritative; divergence
// is reported for observability only.
func (c *ExecutionController) reportDivergencesLocked(sessionID string) {
	statuses := c.exec.Statuses()
	for _, id := range c.graph.Order() {
		unmet := CheckInvariant(c.graph, statuses, id)
		if len(unmet) == 0 {
			continue
		}
		names := make([]string, len(unmet))
		for i, dep := range unmet {
			names[i] = string(dep)
		}
		c.logger.Warn("server reports agent processing with incomplete dependencies",
			"agent_id", id, "unmet", names)
		c.bus.Publish(events.NewSyncDivergence(sessionID, string(id),
			"agent is processing while dependencies are incomplete", names))
	}
}

// finishIfDoneLocked ends the session once every agent reached a terminal
// state: the poll timer is torn down and a completion event is published.
func (c *ExecutionController) finishIfDoneLocked(sessionID string) {
	if len(c.exec.Agents) == 0 || !c.exec.IsRunning {
		return
	}
	for _, agent := range c.exec.Agents {
		if !agent.IsTerminal() {
			return
		}
	}

	c.exec.IsRunning = false
	c.exec.IsPaused = false
	c.stopSyncLocked()

	var duration time.Duration
	if c.exec.StartTime != nil {
		duration = c.clock.Now().Sub(*c.exec.StartTime)
	}
	c.bus.Publish(events.NewWorkflowCompleted(sessionID, duration))
	c.logger.Info("workflow finished",
		"session_id", sessionID,
		"completed", c.exec.CountByStatus(core.AgentStatusComplete),
		"errored", c.exec.CountByStatus(core.AgentStatusError),
		"duration", duration)
}
