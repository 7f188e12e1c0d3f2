package travelbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewGraph verifies basic graph creation.
func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.NotNil(t, g.edges)
	assert.Empty(t, g.entry)
}

// TestGraph_AddNode tests successful node addition.
func TestGraph_AddNode(t *testing.T) {
	g := NewGraph().
		AddNode("a", passNode).
		AddNode("b", passNode)

	assert.Len(t, g.nodes, 2)
	assert.Contains(t, g.nodes, Stage("a"))
	assert.Contains(t, g.nodes, Stage("b"))
	assert.Equal(t, []Stage{"a", "b"}, g.order)
}

// TestGraph_AddNode_Chaining tests fluent API chaining.
func TestGraph_AddNode_Chaining(t *testing.T) {
	g := NewGraph()
	result := g.AddNode("a", passNode)
	assert.Same(t, g, result)
}

// TestGraph_AddNode_Declarations tests that node options land on the
// spec.
func TestGraph_AddNode_Declarations(t *testing.T) {
	g := NewGraph().AddNode("a", passNode,
		Reads(StateTrip), Writes(StateFlights, StateHotels), Repeatable())

	spec := g.nodes["a"]
	assert.Equal(t, []StateField{StateTrip}, spec.reads)
	assert.Equal(t, []StateField{StateFlights, StateHotels}, spec.writes)
	assert.True(t, spec.repeatable)
	assert.True(t, spec.writesField(StateHotels))
	assert.False(t, spec.writesField(StateTrip))
}

// TestGraph_AddNode_EmptyID_Panics tests that empty node ID panics.
func TestGraph_AddNode_EmptyID_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "travelbot: node ID cannot be empty", func() {
		NewGraph().AddNode("", passNode)
	})
}

// TestGraph_AddNode_ReservedID_Panics tests that reserved IDs panic.
func TestGraph_AddNode_ReservedID_Panics(t *testing.T) {
	testCases := []struct {
		name string
		id   Stage
	}{
		{"END uppercase", "END"},
		{"end lowercase", "end"},
		{"End mixed case", "End"},
		{"__end__ literal", "__end__"},
		{"__END__ uppercase", "__END__"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.PanicsWithValue(t, "travelbot: node ID cannot be the reserved terminal identifier", func() {
				NewGraph().AddNode(tc.id, passNode)
			})
		})
	}
}

// TestGraph_AddNode_WhitespaceID_Panics tests that IDs with whitespace
// panic.
func TestGraph_AddNode_WhitespaceID_Panics(t *testing.T) {
	testCases := []struct {
		name string
		id   Stage
	}{
		{"space", "node a"},
		{"tab", "node\ta"},
		{"newline", "node\na"},
		{"leading space", " node"},
		{"trailing space", "node "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.PanicsWithValue(t, "travelbot: node ID cannot contain whitespace", func() {
				NewGraph().AddNode(tc.id, passNode)
			})
		})
	}
}

// TestGraph_AddNode_NilFunc_Panics tests that a nil node function
// panics.
func TestGraph_AddNode_NilFunc_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "travelbot: node function cannot be nil", func() {
		NewGraph().AddNode("a", nil)
	})
}

// TestGraph_AddNode_Duplicate_Panics tests that duplicate node IDs
// panic.
func TestGraph_AddNode_Duplicate_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "travelbot: duplicate node ID: a", func() {
		NewGraph().AddNode("a", passNode).AddNode("a", passNode)
	})
}

// TestGraph_AddEdge tests edge accumulation in declaration order.
func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph().
		AddNode("a", passNode).
		AddNode("b", passNode).
		AddEdge("a", "b").
		AddEdge("b", End)

	assert.Len(t, g.edges["a"], 1)
	assert.Equal(t, Stage("b"), g.edges["a"][0].To)
	assert.Nil(t, g.edges["a"][0].When)
	assert.Equal(t, End, g.edges["b"][0].To)
}

// TestGraph_AddConditionalEdges tests ordered conditional edges.
func TestGraph_AddConditionalEdges(t *testing.T) {
	g := NewGraph().
		AddNode("a", passNode).
		AddNode("b", passNode).
		AddConditionalEdges("a",
			Edge{To: "b", Name: "guarded", When: func(*State) bool { return false }},
			Edge{To: End, Name: "default"},
		)

	assert.Len(t, g.edges["a"], 2)
	assert.Equal(t, "guarded", g.edges["a"][0].Name)
	assert.NotNil(t, g.edges["a"][0].When)
	assert.Nil(t, g.edges["a"][1].When)
}

// TestGraph_AddConditionalEdges_Empty_Panics tests that an empty edge
// set panics.
func TestGraph_AddConditionalEdges_Empty_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "travelbot: conditional edge set cannot be empty", func() {
		NewGraph().AddNode("a", passNode).AddConditionalEdges("a")
	})
}

// TestGraph_SetEntry tests entry point assignment.
func TestGraph_SetEntry(t *testing.T) {
	g := NewGraph().AddNode("a", passNode).SetEntry("a")
	assert.Equal(t, Stage("a"), g.entry)
}
