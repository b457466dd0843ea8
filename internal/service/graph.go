package service

import (
	"sort"

	"github.com/agentboard/agentboard/internal/core"
)

// WorkflowGraph is the immutable dependency graph over the declared agents.
// Construction validates the declarations; re-declaring agents requires
// building a new graph.
type WorkflowGraph struct {
	specs      map[core.AgentID]core.AgentSpec
	order      []core.AgentID // topological, priority as tie-break
	deps       map[core.AgentID][]core.AgentID
	dependents map[core.AgentID][]core.AgentID
}

// NewWorkflowGraph builds and validates a graph from an ordered list of agent
// declarations. It fails with UNKNOWN_DEPENDENCY if an agent references an id
// not present in the set, with DUPLICATE_AGENT on a repeated id, and with
// CYCLE_DETECTED if the dependency relation contains a cycle.
func NewWorkflowGraph(specs []core.AgentSpec) (*WorkflowGraph, error) {
	g := &WorkflowGraph{
		specs:      make(map[core.AgentID]core.AgentSpec, len(specs)),
		deps:       make(map[core.AgentID][]core.AgentID, len(specs)),
		dependents: make(map[core.AgentID][]core.AgentID, len(specs)),
	}

	declIndex := make(map[core.AgentID]int, len(specs))
	for i, spec := range specs {
		if spec.ID == "" {
			return nil, core.ErrValidation("AGENT_ID_REQUIRED", "agent id cannot be empty")
		}
		if _, exists := g.specs[spec.ID]; exists {
			return nil, core.ErrGraph(core.CodeDuplicateAgent, "agent declared twice: "+string(spec.ID))
		}
		g.specs[spec.ID] = spec
		declIndex[spec.ID] = i
	}

	for _, spec := range specs {
		seen := make(map[core.AgentID]bool, len(spec.Dependencies))
		for _, dep := range spec.Dependencies {
			if _, ok := g.specs[dep]; !ok {
				return nil, core.ErrGraph(core.CodeUnknownDependency,
					"agent "+string(spec.ID)+" depends on unknown agent "+string(dep))
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			g.deps[spec.ID] = append(g.deps[spec.ID], dep)
			g.dependents[dep] = append(g.dependents[dep], spec.ID)
		}
	}

	order, err := g.topologicalOrder(declIndex)
	if err != nil {
		return nil, err
	}
	g.order = order

	return g, nil
}

// topologicalOrder runs Kahn's algorithm. Among simultaneously ready agents
// the order is stable: priority first, then declaration index.
func (g *WorkflowGraph) topologicalOrder(declIndex map[core.AgentID]int) ([]core.AgentID, error) {
	inDegree := make(map[core.AgentID]int, len(g.specs))
	for id := range g.specs {
		inDegree[id] = len(g.deps[id])
	}

	ready := make([]core.AgentID, 0, len(g.specs))
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}

	less := func(a, b core.AgentID) bool {
		pa, pb := g.specs[a].Priority, g.specs[b].Priority
		if pa != pb {
			return pa < pb
		}
		return declIndex[a] < declIndex[b]
	}
	sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })

	order := make([]core.AgentID, 0, len(g.specs))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		for _, dependent := range g.dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
	}

	if len(order) != len(g.specs) {
		return nil, core.ErrGraph(core.CodeCycleDetected, "agent dependency graph contains a cycle")
	}
	return order, nil
}

// Order returns agent ids in topological iteration order.
func (g *WorkflowGraph) Order() []core.AgentID {
	return append([]core.AgentID(nil), g.order...)
}

// Specs returns the agent declarations in topological order.
func (g *WorkflowGraph) Specs() []core.AgentSpec {
	specs := make([]core.AgentSpec, 0, len(g.order))
	for _, id := range g.order {
		specs = append(specs, g.specs[id])
	}
	return specs
}

// Spec returns a single agent declaration.
func (g *WorkflowGraph) Spec(id core.AgentID) (core.AgentSpec, bool) {
	spec, ok := g.specs[id]
	return spec, ok
}

// DependenciesOf returns the declared dependencies of an agent.
func (g *WorkflowGraph) DependenciesOf(id core.AgentID) []core.AgentID {
	return append([]core.AgentID(nil), g.deps[id]...)
}

// DependentsOf returns the agents that declare id as a dependency.
func (g *WorkflowGraph) DependentsOf(id core.AgentID) []core.AgentID {
	return append([]core.AgentID(nil), g.dependents[id]...)
}

// Contains reports whether the graph declares the agent.
func (g *WorkflowGraph) Contains(id core.AgentID) bool {
	_, ok := g.specs[id]
	return ok
}

// Len returns the number of declared agents.
func (g *WorkflowGraph) Len() int {
	return len(g.specs)
}
