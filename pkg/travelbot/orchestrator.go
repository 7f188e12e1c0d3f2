package travelbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/mansiraturi/travelbot/pkg/travelbot/checkpoint"
	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// Orchestrator drives conversations through the planning graph. One
// orchestrator serves many conversations concurrently; steps for the
// same conversation are serialized.
type Orchestrator struct {
	graph *CompiledGraph
	store checkpoint.Store

	interp      interpret.Interpreter
	flights     search.FlightProvider
	hotels      search.HotelProvider
	attractions search.AttractionProvider

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	tracing bool

	now           func() time.Time
	stepTimeout   time.Duration
	maxIterations int

	locks *lockTable
}

// New creates an orchestrator over the standard planning graph.
// The store persists one snapshot per conversation after every node;
// the interpreter and the three providers are the collaborators nodes
// call. All of them are required.
func New(store checkpoint.Store, interp interpret.Interpreter, flights search.FlightProvider, hotels search.HotelProvider, attractions search.AttractionProvider, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("travelbot: checkpoint store is required")
	}
	if interp == nil {
		return nil, errors.New("travelbot: interpreter is required")
	}
	if flights == nil || hotels == nil || attractions == nil {
		return nil, errors.New("travelbot: all three search providers are required")
	}

	graph, err := buildGraph().Compile()
	if err != nil {
		return nil, fmt.Errorf("compile conversation graph: %w", err)
	}

	o := &Orchestrator{
		graph:         graph,
		store:         store,
		interp:        interp,
		flights:       flights,
		hotels:        hotels,
		attractions:   attractions,
		logger:        slog.Default(),
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		now:           time.Now,
		stepTimeout:   DefaultStepTimeout,
		maxIterations: DefaultMaxIterations,
		locks:         newLockTable(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// StepResult is what one orchestrator step produced.
type StepResult struct {
	// ConversationID identifies the conversation, generated on the
	// first step when the caller passed none.
	ConversationID string

	// Stage is where the conversation stands after the step: the
	// suspended stage when awaiting input, otherwise the stage that
	// runs next.
	Stage Stage

	// Prompt is the question to relay when the conversation suspended
	// for user input.
	Prompt string

	// Done reports that the conversation reached its terminal stage.
	Done bool

	// Itinerary is the finished plan, set only when Done.
	Itinerary *Itinerary
}

// Step advances a conversation by one user turn: it loads the latest
// snapshot (or starts fresh), appends the message, and runs nodes
// until the conversation suspends for input, completes, or fails.
//
// An empty conversationID starts a new conversation under a generated
// ID. An empty message while the conversation awaits input re-delivers
// the pending question without running anything, so lost replies are
// recoverable. Stepping a completed conversation returns the finished
// itinerary again.
//
// Any returned error left the conversation at its last saved snapshot;
// stepping again resumes from there.
func (o *Orchestrator) Step(ctx context.Context, conversationID, message string) (res *StepResult, retErr error) {
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	release := o.locks.acquire(conversationID)
	defer release()

	if o.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.stepTimeout)
		defer cancel()
	}

	s, err := o.load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.LogStepStart(o.logger, s.ID, string(s.Stage))

	if o.tracing {
		var span trace.Span
		ctx, span = o.spans.StartStepSpan(ctx, s.ID, string(s.Stage))
		defer func() { o.spans.EndSpanWithError(span, retErr) }()
	}
	defer func() {
		if retErr != nil {
			observability.LogStepError(o.logger, s.ID, retErr, float64(time.Since(start).Milliseconds()), string(s.Stage))
		}
	}()

	if s.Done() {
		return &StepResult{ConversationID: s.ID, Stage: s.Stage, Done: true, Itinerary: s.Itinerary}, nil
	}

	if message != "" {
		s.AppendMessage(RoleUser, message, o.now())
	} else if s.Awaiting {
		// Nothing new to consume. Re-deliver the pending question
		// instead of running the suspended node against a stale
		// message.
		observability.LogAwaitingInput(o.logger, s.ID, string(s.Stage))
		return &StepResult{ConversationID: s.ID, Stage: s.Stage, Prompt: s.Prompt}, nil
	}

	result, nodesRun, err := o.run(ctx, &s)
	if err != nil {
		return nil, err
	}

	observability.LogStepComplete(o.logger, s.ID, string(s.Stage), float64(time.Since(start).Milliseconds()), nodesRun, s.Awaiting)
	o.metrics.RecordStep(ctx, result.Done, time.Since(start))
	return result, nil
}

// run executes nodes from the current stage until the conversation
// suspends, completes, or fails. A snapshot is saved after every node,
// so the worst an abort can lose is the node that was running.
func (o *Orchestrator) run(ctx context.Context, s *State) (*StepResult, int, error) {
	nodesRun := 0
	for {
		if nodesRun >= o.maxIterations {
			return nil, nodesRun, &MaxIterationsError{Max: o.maxIterations, Stage: s.Stage}
		}
		select {
		case <-ctx.Done():
			return nil, nodesRun, fmt.Errorf("stage %s: %w", s.Stage, ctx.Err())
		default:
		}

		spec, ok := o.graph.node(s.Stage)
		if !ok {
			return nil, nodesRun, fmt.Errorf("%w: checkpointed stage %s", ErrNodeNotFound, s.Stage)
		}

		s.Visits[s.Stage]++
		nodesRun++

		execCtx := ctx
		var nodeSpan trace.Span
		if o.tracing {
			execCtx, nodeSpan = o.spans.StartNodeSpan(ctx, string(s.Stage))
		}
		nodeCtx := o.nodeContext(execCtx, s)

		observability.LogNodeStart(nodeCtx.Logger(), string(s.Stage))
		nodeStart := time.Now()

		ns, out, err := runNode(nodeCtx, spec, *s)

		elapsed := time.Since(nodeStart)
		o.metrics.RecordNodeExecution(execCtx, string(s.Stage), elapsed, err)
		if o.tracing {
			o.spans.EndSpanWithError(nodeSpan, err)
		}
		if err != nil {
			observability.LogNodeError(nodeCtx.Logger(), string(s.Stage), err)
			var pe *PanicError
			if errors.As(err, &pe) {
				return nil, nodesRun, err
			}
			return nil, nodesRun, &NodeError{Stage: s.Stage, Op: "execute", Err: err}
		}
		*s = ns
		observability.LogNodeComplete(nodeCtx.Logger(), string(s.Stage), float64(elapsed.Milliseconds()))

		if out.Reply != "" {
			s.AppendMessage(RoleAssistant, out.Reply, o.now())
		}

		if out.Await {
			s.Awaiting = true
			s.Prompt = out.Reply
			if err := o.save(ctx, s); err != nil {
				return nil, nodesRun, err
			}
			observability.LogAwaitingInput(o.logger, s.ID, string(s.Stage))
			return &StepResult{ConversationID: s.ID, Stage: s.Stage, Prompt: out.Reply}, nodesRun, nil
		}

		target, err := o.graph.Next(s, s.Stage)
		if err != nil {
			// Routing failures are graph defects; leave the snapshot
			// at the completed node rather than pin a bad stage.
			return nil, nodesRun, err
		}
		s.Stage = target

		if err := o.save(ctx, s); err != nil {
			return nil, nodesRun, err
		}

		if target == End {
			return &StepResult{ConversationID: s.ID, Stage: End, Done: true, Itinerary: s.Itinerary}, nodesRun, nil
		}
	}
}

// runNode invokes the node function, converting panics into errors.
func runNode(ctx Context, spec *nodeSpec, s State) (ns State, out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			ns = s
			out = Outcome{}
			err = &PanicError{Stage: spec.id, Value: r, Stack: string(debug.Stack())}
		}
	}()
	return spec.fn(ctx, s)
}

// nodeContext builds the execution context one node sees.
func (o *Orchestrator) nodeContext(ctx context.Context, s *State) Context {
	return &executionContext{
		Context:        ctx,
		logger:         observability.EnrichLogger(o.logger, s.ID, string(s.Stage), s.Visits[s.Stage]),
		interp:         o.interp,
		flights:        o.flights,
		hotels:         o.hotels,
		attractions:    o.attractions,
		now:            o.now,
		conversationID: s.ID,
		stage:          s.Stage,
	}
}

// load retrieves the conversation state, starting a fresh one when no
// snapshot exists. The snapshot's stage and sequence are authoritative.
func (o *Orchestrator) load(ctx context.Context, conversationID string) (State, error) {
	snap, err := o.store.Load(ctx, conversationID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return NewState(conversationID, o.now()), nil
	}
	if err != nil {
		return State{}, &CheckpointError{Op: "load", Err: err}
	}

	var s State
	if err := json.Unmarshal(snap.State, &s); err != nil {
		return State{}, &CheckpointError{Stage: Stage(snap.Stage), Op: "decode", Err: err}
	}
	s.ID = snap.ConversationID
	s.Stage = Stage(snap.Stage)
	s.Sequence = snap.Sequence
	if s.Visits == nil {
		s.Visits = make(map[Stage]int)
	}
	return s, nil
}

// save persists the state under the stage to run next. Save failures
// are fatal for the step; the conversation resumes from the prior
// snapshot.
func (o *Orchestrator) save(ctx context.Context, s *State) error {
	s.Sequence++
	s.UpdatedAt = o.now()

	data, err := json.Marshal(s)
	if err != nil {
		return &CheckpointError{Stage: s.Stage, Op: "serialize", Err: err}
	}

	snap := checkpoint.New(s.ID, string(s.Stage), s.Sequence, data)
	if err := o.store.Save(ctx, snap); err != nil {
		observability.LogCheckpointError(o.logger, string(s.Stage), "save", err)
		return &CheckpointError{Stage: s.Stage, Op: "save", Err: err}
	}

	observability.LogCheckpoint(o.logger, string(s.Stage), len(data))
	o.metrics.RecordCheckpoint(ctx, string(s.Stage), int64(len(data)))
	return nil
}

// Conversations lists the stored conversations, most recent first.
func (o *Orchestrator) Conversations(ctx context.Context) ([]checkpoint.Info, error) {
	return o.store.List(ctx)
}

// History returns the message history of a stored conversation.
func (o *Orchestrator) History(ctx context.Context, conversationID string) ([]Message, error) {
	s, err := o.load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return s.History, nil
}

// lockTable serializes steps per conversation without holding a global
// lock across a step.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*convLock
}

type convLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[string]*convLock)}
}

// acquire locks a conversation and returns its release function.
func (t *lockTable) acquire(id string) func() {
	t.mu.Lock()
	l, ok := t.entries[id]
	if !ok {
		l = &convLock{}
		t.entries[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.entries, id)
		}
		t.mu.Unlock()
	}
}
