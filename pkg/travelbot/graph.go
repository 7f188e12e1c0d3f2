package travelbot

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for the conversation graph.
// Use NewGraph to create one, then chain AddNode, AddEdge,
// AddConditionalEdges, and SetEntry calls to define the workflow.
//
// Graph is NOT thread-safe during building. Construct it from a single
// goroutine, then call Compile() to create an immutable CompiledGraph
// that can be safely shared.
//
// Example:
//
//	graph := travelbot.NewGraph().
//	    AddNode(travelbot.StageExtractInfo, extract, travelbot.Writes(travelbot.StateTrip)).
//	    AddNode(travelbot.StageCreateItinerary, finish, travelbot.Reads(travelbot.StateTrip)).
//	    AddEdge(travelbot.StageExtractInfo, travelbot.StageCreateItinerary).
//	    AddEdge(travelbot.StageCreateItinerary, travelbot.End).
//	    SetEntry(travelbot.StageExtractInfo)
//
//	compiled, err := graph.Compile()
type Graph struct {
	mu    sync.RWMutex
	nodes map[Stage]*nodeSpec
	order []Stage
	edges map[Stage][]Edge
	entry Stage
}

// NewGraph creates a new graph builder.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[Stage]*nodeSpec),
		edges: make(map[Stage][]Edge),
	}
}

// AddNode adds a named node to the graph.
// Returns the graph for method chaining.
//
// Panics if:
//   - id is empty
//   - id is the reserved terminal identifier (case-insensitive)
//   - id contains whitespace (space, tab, newline)
//   - fn is nil
//   - id already exists in the graph
func (g *Graph) AddNode(id Stage, fn NodeFunc, opts ...NodeOption) *Graph {
	if id == "" {
		panic("travelbot: node ID cannot be empty")
	}

	idLower := strings.ToLower(string(id))
	if idLower == "end" || idLower == string(End) {
		panic("travelbot: node ID cannot be the reserved terminal identifier")
	}

	if strings.ContainsAny(string(id), " \t\n\r") {
		panic("travelbot: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("travelbot: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("travelbot: duplicate node ID: %s", id))
	}

	spec := &nodeSpec{id: id, fn: fn}
	for _, opt := range opts {
		opt(spec)
	}

	g.nodes[id] = spec
	g.order = append(g.order, id)
	return g
}

// AddEdge adds an unconditional edge from one node to another.
// The target can be a node ID or travelbot.End.
// Returns the graph for method chaining.
//
// Edge validation happens at Compile() time, not here.
// This allows edges to be added in any order.
func (g *Graph) AddEdge(from, to Stage) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], Edge{To: to})
	return g
}

// AddConditionalEdges adds a node's ordered conditional edge set. The
// router evaluates the predicates in the given order at runtime and
// takes the first match; no match is a router inconsistency, so the
// set should be exhaustive over the states that can reach the node.
// Returns the graph for method chaining.
//
// Panics if the edge list is empty.
func (g *Graph) AddConditionalEdges(from Stage, edges ...Edge) *Graph {
	if len(edges) == 0 {
		panic("travelbot: conditional edge set cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], edges...)
	return g
}

// SetEntry designates the entry point node.
// This must be called before Compile().
// Returns the graph for method chaining.
//
// Entry point validation happens at Compile() time.
func (g *Graph) SetEntry(id Stage) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entry = id
	return g
}
