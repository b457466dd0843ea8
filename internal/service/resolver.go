package service

import "github.com/agentboard/agentboard/internal/core"

// Eligible reports whether every dependency of the agent has reached
// complete. Pure function of the current status snapshot; callers recompute
// after every status mutation rather than caching results.
func Eligible(g *WorkflowGraph, statuses map[core.AgentID]core.AgentStatus, id core.AgentID) bool {
	if !g.Contains(id) {
		return false
	}
	for _, dep := range g.DependenciesOf(id) {
		if statuses[dep] != core.AgentStatusComplete {
			return false
		}
	}
	return true
}

// EligibleSet returns every declared agent whose dependencies are all
// complete, in topological order.
func EligibleSet(g *WorkflowGraph, statuses map[core.AgentID]core.AgentStatus) []core.AgentID {
	var out []core.AgentID
	for _, id := range g.Order() {
		if Eligible(g, statuses, id) {
			out = append(out, id)
		}
	}
	return out
}

// CheckInvariant verifies that a processing agent has no incomplete
// dependency. Returns the offending dependency ids, empty when the invariant
// holds. Used by the sync engine to flag server snapshots that disagree with
// the local graph.
func CheckInvariant(g *WorkflowGraph, statuses map[core.AgentID]core.AgentStatus, id core.AgentID) []core.AgentID {
	if statuses[id] != core.AgentStatusProcessing {
		return nil
	}
	var unmet []core.AgentID
	for _, dep := range g.DependenciesOf(id) {
		if statuses[dep] != core.AgentStatusComplete {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}
