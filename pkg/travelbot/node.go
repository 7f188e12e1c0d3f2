package travelbot

// NodeFunc is the signature for all stage nodes. Nodes receive the
// current state by value and return the updated state, an outcome,
// and any error.
//
// An error out of a node is fatal for the conversation. Recoverable
// failures (provider errors, unusable interpretations) are absorbed
// into state by the node itself: fallback-marking a slot, recording an
// error-log entry, or re-asking the user.
type NodeFunc func(ctx Context, s State) (State, Outcome, error)

// Outcome is what a node's execution produced beyond the state update.
type Outcome struct {
	// Reply is text to relay to the user: the clarification question
	// when awaiting input, or the rendered itinerary at the end.
	Reply string

	// Await suspends the conversation until the next user message.
	Await bool
}

// awaitInput builds the suspension outcome for a clarification prompt.
func awaitInput(prompt string) Outcome {
	return Outcome{Reply: prompt, Await: true}
}

// Predicate decides whether a conditional edge applies. Predicates
// must be total and side-effect-free over state.
type Predicate func(s *State) bool

// Edge is one outgoing transition. A node's edges are evaluated in
// declaration order and the first match wins; a nil When always
// matches, making it the catch-all tail of a conditional set.
type Edge struct {
	// To is the target stage, or End.
	To Stage

	// When guards the edge. Nil means always.
	When Predicate

	// Name labels the edge in routing diagnostics.
	Name string
}

// NodeOption declares how a node touches state.
type NodeOption func(*nodeSpec)

// Reads declares the state fields a node requires. Compile verifies
// every path into the node writes them first.
func Reads(fields ...StateField) NodeOption {
	return func(n *nodeSpec) {
		n.reads = append(n.reads, fields...)
	}
}

// Writes declares the state fields a node produces.
func Writes(fields ...StateField) NodeOption {
	return func(n *nodeSpec) {
		n.writes = append(n.writes, fields...)
	}
}

// Repeatable marks a node that may legally run more than once in a
// conversation, such as the clarification loop. Routing into a
// non-repeatable node a second time is a router inconsistency.
func Repeatable() NodeOption {
	return func(n *nodeSpec) {
		n.repeatable = true
	}
}

// nodeSpec is a registered node with its declarations.
type nodeSpec struct {
	id         Stage
	fn         NodeFunc
	reads      []StateField
	writes     []StateField
	repeatable bool
}

// writesField reports whether the node declares a write of field.
func (n *nodeSpec) writesField(field StateField) bool {
	for _, w := range n.writes {
		if w == field {
			return true
		}
	}
	return false
}
