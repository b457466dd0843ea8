package core

import (
	"fmt"
	"time"
)

// Event is a state machine input applied to a single agent.
type Event interface {
	Kind() string
}

// Enqueue seeds an idle agent at workflow start. Eligible reflects the
// dependency resolver's verdict at the time the event is built.
type Enqueue struct {
	Eligible bool
}

// BeginProcessing moves a queued or waiting agent into processing. It is
// gated on Eligible: the resolver must report every dependency complete.
type BeginProcessing struct {
	Eligible bool
}

// Progress reports a completion percentage while processing.
type Progress struct {
	Percent float64
}

// Succeed marks the agent complete.
type Succeed struct{}

// Fail marks the agent errored with a human-readable reason.
type Fail struct {
	Reason string
}

// Pause suspends a processing agent.
type Pause struct{}

// Resume returns a paused agent to processing.
type Resume struct{}

// Stop aborts any non-terminal agent back to idle.
type Stop struct{}

// Reset returns the agent to idle from any state and clears run data.
type Reset struct{}

func (Enqueue) Kind() string         { return "enqueue" }
func (BeginProcessing) Kind() string { return "begin_processing" }
func (Progress) Kind() string        { return "progress" }
func (Succeed) Kind() string         { return "succeed" }
func (Fail) Kind() string            { return "fail" }
func (Pause) Kind() string           { return "pause" }
func (Resume) Kind() string          { return "resume" }
func (Stop) Kind() string            { return "stop" }
func (Reset) Kind() string           { return "reset" }

// Transition computes the next status for an event without mutating anything.
// An illegal event/state pair returns the current status unchanged together
// with a transition error; callers log and continue.
func Transition(current AgentStatus, ev Event) (AgentStatus, error) {
	switch e := ev.(type) {
	case Enqueue:
		if current != AgentStatusIdle {
			return current, illegal(current, ev)
		}
		if e.Eligible {
			return AgentStatusQueued, nil
		}
		return AgentStatusWaiting, nil

	case BeginProcessing:
		if current != AgentStatusQueued && current != AgentStatusWaiting {
			return current, illegal(current, ev)
		}
		if !e.Eligible {
			return current, ErrTransition(CodeDependencyNotMet,
				"agent has an incomplete dependency")
		}
		return AgentStatusProcessing, nil

	case Progress:
		if current != AgentStatusProcessing {
			return current, illegal(current, ev)
		}
		return current, nil

	case Succeed:
		if current != AgentStatusProcessing && current != AgentStatusPaused {
			return current, illegal(current, ev)
		}
		return AgentStatusComplete, nil

	case Fail:
		if current != AgentStatusProcessing && current != AgentStatusPaused {
			return current, illegal(current, ev)
		}
		return AgentStatusError, nil

	case Pause:
		if current != AgentStatusProcessing {
			return current, illegal(current, ev)
		}
		return AgentStatusPaused, nil

	case Resume:
		if current != AgentStatusPaused {
			return current, illegal(current, ev)
		}
		return AgentStatusProcessing, nil

	case Stop:
		if current.IsTerminal() {
			return current, illegal(current, ev)
		}
		return AgentStatusIdle, nil

	case Reset:
		return AgentStatusIdle, nil

	default:
		return current, illegal(current, ev)
	}
}

func illegal(current AgentStatus, ev Event) *DomainError {
	return ErrTransition(CodeIllegalTransition,
		fmt.Sprintf("event %s is not legal in state %s", ev.Kind(), current))
}

// Apply runs an event against the agent, mutating its state on success.
// Progress events additionally enforce monotonicity: a percentage lower than
// the last recorded one is rejected with NON_MONOTONIC_PROGRESS and the stored
// value is kept.
func (a *Agent) Apply(ev Event) error {
	next, err := Transition(a.Status, ev)
	if err != nil {
		return err
	}

	switch e := ev.(type) {
	case Progress:
		if e.Percent < a.Progress {
			return ErrTransition(CodeNonMonotonic,
				fmt.Sprintf("progress %.1f%% is below recorded %.1f%%", e.Percent, a.Progress))
		}
		if e.Percent > 100 {
			e.Percent = 100
		}
		a.Progress = e.Percent
		return nil

	case BeginProcessing:
		now := time.Now()
		a.StartedAt = &now

	case Succeed:
		a.Progress = 100
		now := time.Now()
		a.CompletedAt = &now

	case Fail:
		a.Error = e.Reason
		now := time.Now()
		a.CompletedAt = &now

	case Stop:
		a.Progress = 0
		a.Error = ""

	case Reset:
		a.Progress = 0
		a.Error = ""
		a.Metrics = nil
		a.StartedAt = nil
		a.CompletedAt = nil
	}

	a.Status = next
	return nil
}
