package testutil

import "github.com/agentboard/agentboard/internal/core"

// PipelineSpecs returns the standard four-stage analysis pipeline used across
// tests: planning feeds data analysis, which feeds query and insight.
func PipelineSpecs() []core.AgentSpec {
	return []core.AgentSpec{
		{ID: "planning", Name: "Planning", Priority: 0, Capabilities: []string{"plan"}},
		{ID: "data_analysis", Name: "Data Analysis", Priority: 1, Dependencies: []core.AgentID{"planning"}},
		{ID: "query", Name: "Query", Priority: 2, Dependencies: []core.AgentID{"data_analysis"}},
		{ID: "insight", Name: "Insight", Priority: 3, Dependencies: []core.AgentID{"data_analysis", "query"}},
	}
}

// ChainSpecs returns the minimal two-agent graph from the dependency
// scenarios: A with no dependencies, B depending on A.
func ChainSpecs() []core.AgentSpec {
	return []core.AgentSpec{
		{ID: "a", Priority: 0},
		{ID: "b", Priority: 1, Dependencies: []core.AgentID{"a"}},
	}
}

// StatusStrings converts a typed status map into the wire form used by
// backend snapshots.
func StatusStrings(statuses map[core.AgentID]core.AgentStatus) map[string]string {
	out := make(map[string]string, len(statuses))
	for id, st := range statuses {
		out[string(id)] = string(st)
	}
	return out
}
