package travelbot

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNoEntryPoint indicates SetEntry() was not called before Compile().
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point references a non-existent node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrNodeNotFound indicates an edge or a checkpoint references a
	// non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPathToEnd indicates a node cannot reach the terminal stage.
	ErrNoPathToEnd = errors.New("no path to terminal stage")

	// ErrReadBeforeWrite indicates a node declares a read of a state
	// field that some path reaches it without writing first.
	ErrReadBeforeWrite = errors.New("field read before every path writes it")

	// ErrForbiddenCycle indicates a cycle through a node that may only
	// run once per conversation.
	ErrForbiddenCycle = errors.New("cycle through a non-repeatable node")
)

// Sentinel errors for execution.
var (
	// ErrMaxIterations indicates the step loop exceeded the configured limit.
	ErrMaxIterations = errors.New("exceeded maximum iterations")

	// ErrNoPredicateMatched indicates a routing decision where no
	// outgoing edge applied to the current state.
	ErrNoPredicateMatched = errors.New("no edge predicate matched")

	// ErrStageRevisit indicates a routing decision that would re-enter
	// a completed non-repeatable stage.
	ErrStageRevisit = errors.New("route revisits a completed stage")
)

// RouterInconsistencyError reports a routing decision the graph cannot
// make: no predicate matched, or the matched edge would re-enter a
// completed stage. Either one is a graph-construction defect, never a
// user error, and aborts the conversation with a diagnostic.
type RouterInconsistencyError struct {
	// From is the node whose outgoing edges were evaluated.
	From Stage
	// To is the offending target for revisit errors, empty otherwise.
	To Stage
	// Diagnostic summarizes the routing-relevant state.
	Diagnostic string
	// Err is ErrNoPredicateMatched or ErrStageRevisit.
	Err error
}

// Error implements the error interface.
func (e *RouterInconsistencyError) Error() string {
	if e.To != "" {
		return fmt.Sprintf("router from %s to %s: %v (%s)", e.From, e.To, e.Err, e.Diagnostic)
	}
	return fmt.Sprintf("router from %s: %v (%s)", e.From, e.Err, e.Diagnostic)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RouterInconsistencyError) Unwrap() error {
	return e.Err
}

// NodeError wraps an error with stage context.
type NodeError struct {
	// Stage is the node that failed.
	Stage Stage
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the node.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from node execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// Stage is the node that panicked.
	Stage Stage
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// CheckpointError wraps errors from checkpoint operations. A failed
// save or load aborts the step; the conversation resumes from the
// prior snapshot.
type CheckpointError struct {
	// Stage is the stage the conversation was at, empty for load
	// failures before any stage is known.
	Stage Stage
	// Op is the operation that failed ("serialize", "save", "load", "decode").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CheckpointError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("checkpoint %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("checkpoint %s at stage %s: %v", e.Op, e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// MaxIterationsError provides context when the step loop limit is
// exceeded.
type MaxIterationsError struct {
	// Max is the configured iteration limit.
	Max int
	// Stage is the node that would have executed next.
	Stage Stage
}

// Error implements the error interface.
func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("exceeded maximum iterations (%d) at stage %s", e.Max, e.Stage)
}

// Unwrap returns ErrMaxIterations for errors.Is support.
func (e *MaxIterationsError) Unwrap() error {
	return ErrMaxIterations
}
