package travelbot

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the graph and creates an executable CompiledGraph.
// Returns an error if validation fails. Multiple errors are joined
// together.
//
// Validation checks (in order):
//  1. Entry point must be set
//  2. Entry point must reference an existing node
//  3. All edge endpoints must reference existing nodes or End
//  4. Every node must have a path to End
//  5. Cycles may only pass through Repeatable nodes
//  6. Every declared read must be written on every path into the node
//
// Unreachable nodes (not reachable from entry) are logged as warnings
// but do not cause compilation to fail.
func (g *Graph) Compile() (*CompiledGraph, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var errs []error

	// 1. Validate entry point is set
	if g.entry == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, exists := g.nodes[g.entry]; !exists {
		// 2. Validate entry point references existing node
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entry))
	}

	// 3. Validate edge references
	for from, edges := range g.edges {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source %q does not exist", ErrNodeNotFound, from))
		}
		for _, e := range edges {
			if e.To != End {
				if _, exists := g.nodes[e.To]; !exists {
					errs = append(errs, fmt.Errorf("%w: edge target %q does not exist", ErrNodeNotFound, e.To))
				}
			}
		}
	}

	// 4. Validate every node can reach End
	canReach := g.nodesReachingEnd()
	for _, id := range g.order {
		if !canReach[id] {
			errs = append(errs, fmt.Errorf("%w: from node %s", ErrNoPathToEnd, id))
		}
	}

	// 5. Validate cycles pass only through repeatable nodes
	errs = append(errs, g.checkCycles()...)

	// 6. Validate declared reads against guaranteed writes
	errs = append(errs, g.checkReads()...)

	// Check for unreachable nodes (warning only)
	g.warnUnreachableNodes()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildCompiledGraph(), nil
}

// nodesReachingEnd returns the set of nodes with a path to End,
// found by reverse propagation until no changes.
func (g *Graph) nodesReachingEnd() map[Stage]bool {
	canReach := map[Stage]bool{End: true}

	changed := true
	for changed {
		changed = false
		for from, edges := range g.edges {
			if canReach[from] {
				continue
			}
			for _, e := range edges {
				if canReach[e.To] {
					canReach[from] = true
					changed = true
					break
				}
			}
		}
	}

	return canReach
}

// checkCycles walks the graph depth-first and verifies every cycle is
// made only of repeatable nodes. The clarification loop is the one
// intended cycle; anything else revisits a node whose inputs were
// already consumed.
func (g *Graph) checkCycles() []error {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)

	var errs []error
	color := make(map[Stage]int)
	var stack []Stage

	var visit func(id Stage)
	visit = func(id Stage) {
		color[id] = onStack
		stack = append(stack, id)

		for _, e := range g.edges[id] {
			to := e.To
			if to == End {
				continue
			}
			if _, exists := g.nodes[to]; !exists {
				continue
			}
			switch color[to] {
			case unvisited:
				visit(to)
			case onStack:
				// Found a back edge; the cycle is the stack suffix
				// starting at the target.
				start := 0
				for i, s := range stack {
					if s == to {
						start = i
						break
					}
				}
				cycle := stack[start:]
				for _, member := range cycle {
					if !g.nodes[member].repeatable {
						errs = append(errs, fmt.Errorf("%w: %s in cycle %v", ErrForbiddenCycle, member, cycle))
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = done
	}

	if _, exists := g.nodes[g.entry]; exists {
		visit(g.entry)
	}

	return errs
}

// checkReads runs a forward must-write analysis: for each node, the
// set of fields guaranteed written before it runs is the intersection
// over all incoming paths of what those paths wrote. A declared read
// outside that set means some path can reach the node with the field
// unproduced.
func (g *Graph) checkReads() []error {
	if _, exists := g.nodes[g.entry]; !exists {
		return nil
	}

	// avail[n] is the must-written set on entry to n; missing key
	// means not yet reached by the analysis.
	avail := make(map[Stage]map[StateField]bool)
	avail[g.entry] = map[StateField]bool{}

	changed := true
	for changed {
		changed = false
		for _, from := range g.order {
			in, reached := avail[from]
			if !reached {
				continue
			}
			out := make(map[StateField]bool, len(in)+len(g.nodes[from].writes))
			for f := range in {
				out[f] = true
			}
			for _, f := range g.nodes[from].writes {
				out[f] = true
			}
			for _, e := range g.edges[from] {
				if e.To == End {
					continue
				}
				if _, exists := g.nodes[e.To]; !exists {
					continue
				}
				cur, reached := avail[e.To]
				if !reached {
					cp := make(map[StateField]bool, len(out))
					for f := range out {
						cp[f] = true
					}
					avail[e.To] = cp
					changed = true
					continue
				}
				for f := range cur {
					if !out[f] {
						delete(cur, f)
						changed = true
					}
				}
			}
		}
	}

	var errs []error
	for _, id := range g.order {
		in, reached := avail[id]
		if !reached {
			continue
		}
		for _, f := range g.nodes[id].reads {
			if !in[f] {
				errs = append(errs, fmt.Errorf("%w: node %s reads %s", ErrReadBeforeWrite, id, f))
			}
		}
	}

	return errs
}

// warnUnreachableNodes logs warnings for nodes not reachable from entry.
func (g *Graph) warnUnreachableNodes() {
	if g.entry == "" {
		return
	}

	reachable := g.findReachableNodes()

	for _, id := range g.order {
		if !reachable[id] {
			slog.Warn("node is unreachable from entry", "node_id", string(id))
		}
	}
}

// findReachableNodes returns the set of nodes reachable from the entry
// point via BFS.
func (g *Graph) findReachableNodes() map[Stage]bool {
	reachable := make(map[Stage]bool)

	if g.entry == "" {
		return reachable
	}

	queue := []Stage{g.entry}
	reachable[g.entry] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range g.edges[current] {
			if e.To != End && !reachable[e.To] {
				reachable[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	return reachable
}

// buildCompiledGraph creates the immutable CompiledGraph from the
// builder state.
func (g *Graph) buildCompiledGraph() *CompiledGraph {
	nodes := make(map[Stage]*nodeSpec, len(g.nodes))
	for id, spec := range g.nodes {
		cp := *spec
		cp.reads = append([]StateField(nil), spec.reads...)
		cp.writes = append([]StateField(nil), spec.writes...)
		nodes[id] = &cp
	}

	edges := make(map[Stage][]Edge, len(g.edges))
	for from, list := range g.edges {
		edges[from] = append([]Edge(nil), list...)
	}

	return &CompiledGraph{
		nodes: nodes,
		edges: edges,
		entry: g.entry,
	}
}

// CompiledGraph is an immutable, validated conversation graph safe for
// concurrent stepping.
type CompiledGraph struct {
	nodes map[Stage]*nodeSpec
	edges map[Stage][]Edge
	entry Stage
}

// Entry returns the entry point stage.
func (cg *CompiledGraph) Entry() Stage {
	return cg.entry
}

// HasStage reports whether the graph contains the given node.
func (cg *CompiledGraph) HasStage(id Stage) bool {
	_, exists := cg.nodes[id]
	return exists
}

// node looks up a registered node.
func (cg *CompiledGraph) node(id Stage) (*nodeSpec, bool) {
	spec, exists := cg.nodes[id]
	return spec, exists
}
