package travelbot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/checkpoint"
	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// Shared doubles for orchestrator and node tests. The interpreter and
// providers are scripted per test; the clock is pinned so histories
// and checkpoints come out identical run to run.

var testTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testTime }

// fakeInterp scripts the interpreter. Nil hooks mean "understood
// nothing": extraction returns zero fields and classification returns
// ErrNoChoice.
type fakeInterp struct {
	extractTrip   func(message string) (interpret.TripFields, error)
	extractUpdate func(message, focus string, current interpret.TripFields) (interpret.TripFields, error)
	classify      func(message, question string, options []interpret.Option) (string, error)
}

func (f *fakeInterp) ExtractTrip(_ context.Context, message string) (interpret.TripFields, error) {
	if f.extractTrip == nil {
		return interpret.TripFields{}, nil
	}
	return f.extractTrip(message)
}

func (f *fakeInterp) ExtractUpdate(_ context.Context, message, focus string, current interpret.TripFields) (interpret.TripFields, error) {
	if f.extractUpdate == nil {
		return interpret.TripFields{}, nil
	}
	return f.extractUpdate(message, focus, current)
}

func (f *fakeInterp) Classify(_ context.Context, message, question string, options []interpret.Option) (string, error) {
	if f.classify == nil {
		return "", interpret.ErrNoChoice
	}
	return f.classify(message, question, options)
}

// fullTripFields is an opening extraction with nothing missing.
func fullTripFields() interpret.TripFields {
	return interpret.TripFields{
		Origin:      "New York",
		Destination: "Paris",
		DepartDate:  "2026-06-01",
		ReturnDate:  "2026-06-08",
		Travelers:   2,
		Interests:   []string{"food", "art"},
	}
}

// fullTripInterp extracts a complete trip from the opening message and
// classifies every reply as the given finish choice.
func fullTripInterp(finish string) *fakeInterp {
	return &fakeInterp{
		extractTrip: func(string) (interpret.TripFields, error) {
			return fullTripFields(), nil
		},
		classify: func(string, string, []interpret.Option) (string, error) {
			return finish, nil
		},
	}
}

type stubFlights struct {
	flights []search.Flight
	err     error
	calls   int
	last    search.FlightQuery
}

func (s *stubFlights) Search(_ context.Context, q search.FlightQuery) ([]search.Flight, error) {
	s.calls++
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	return s.flights, nil
}

type stubHotels struct {
	hotels []search.Hotel
	err    error
	calls  int
	last   search.HotelQuery
}

func (s *stubHotels) Search(_ context.Context, q search.HotelQuery) ([]search.Hotel, error) {
	s.calls++
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	return s.hotels, nil
}

type stubAttractions struct {
	attractions []search.Attraction
	err         error
	calls       int
	last        search.AttractionQuery
}

func (s *stubAttractions) Search(_ context.Context, q search.AttractionQuery) ([]search.Attraction, error) {
	s.calls++
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	return s.attractions, nil
}

func testFlights() []search.Flight {
	return []search.Flight{
		{Airline: "Air France", Number: "AF 23", Departure: "JFK 19:30", Arrival: "CDG 08:45"},
		{Airline: "Delta", Number: "DL 264", Departure: "JFK 22:10", Arrival: "CDG 11:30"},
	}
}

func testHotels() []search.Hotel {
	return []search.Hotel{
		{Name: "Hotel du Marais", PricePerNight: 240, TotalPrice: 1680, Location: "Le Marais", Rating: 8.6},
	}
}

func testAttractions() []search.Attraction {
	return []search.Attraction{
		{Name: "Louvre Museum", Rating: 4.7, Category: "Museum"},
		{Name: "Eiffel Tower", Rating: 4.6, Category: "Monument"},
		{Name: "Musee d'Orsay", Rating: 4.7, Category: "Museum"},
	}
}

// providerSet bundles the three stubs for one test conversation.
type providerSet struct {
	flights     *stubFlights
	hotels      *stubHotels
	attractions *stubAttractions
}

func workingProviders() providerSet {
	return providerSet{
		flights:     &stubFlights{flights: testFlights()},
		hotels:      &stubHotels{hotels: testHotels()},
		attractions: &stubAttractions{attractions: testAttractions()},
	}
}

// countingStore counts saves on the way through to the wrapped store.
type countingStore struct {
	checkpoint.Store
	saves int
}

func (c *countingStore) Save(ctx context.Context, snap *checkpoint.Snapshot) error {
	c.saves++
	return c.Store.Save(ctx, snap)
}

// brokenStore fails every save.
type brokenStore struct {
	checkpoint.Store
	err error
}

func (b *brokenStore) Save(context.Context, *checkpoint.Snapshot) error {
	return b.err
}

func newTestOrchestrator(t *testing.T, store checkpoint.Store, interp interpret.Interpreter, p providerSet, opts ...Option) *Orchestrator {
	t.Helper()
	base := []Option{
		WithLogger(observability.NewNop()),
		WithClock(testClock),
	}
	o, err := New(store, interp, p.flights, p.hotels, p.attractions, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return o
}

// loadedState fetches and decodes the stored snapshot for assertions
// on fields StepResult does not expose.
func loadedState(t *testing.T, store checkpoint.Store, conversationID string) State {
	t.Helper()
	snap, err := store.Load(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	var s State
	if err := json.Unmarshal(snap.State, &s); err != nil {
		t.Fatalf("decode snapshot state: %v", err)
	}
	s.Stage = Stage(snap.Stage)
	return s
}

// passNode is a node that changes nothing, for graph shape tests.
func passNode(_ Context, s State) (State, Outcome, error) {
	return s, Outcome{}, nil
}

// testContext builds a node execution context over the given doubles,
// for calling nodes directly.
func testContext(interp interpret.Interpreter, p providerSet) Context {
	return &executionContext{
		Context:        context.Background(),
		logger:         observability.NewNop(),
		interp:         interp,
		flights:        p.flights,
		hotels:         p.hotels,
		attractions:    p.attractions,
		now:            testClock,
		conversationID: "test-conv",
	}
}
