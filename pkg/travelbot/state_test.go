package travelbot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// TestNewState verifies a fresh conversation starts at the entry stage
// with all slots empty.
func TestNewState(t *testing.T) {
	s := NewState("conv-1", testTime)

	assert.Equal(t, "conv-1", s.ID)
	assert.Equal(t, StageExtractInfo, s.Stage)
	assert.Equal(t, SlotEmpty, s.Results.Flights.Status)
	assert.Equal(t, SlotEmpty, s.Results.Hotels.Status)
	assert.Equal(t, SlotEmpty, s.Results.Attractions.Status)
	assert.NotNil(t, s.Visits)
	assert.False(t, s.Done())
	assert.Equal(t, testTime, s.CreatedAt)
}

// TestTripRequest_Apply_MergeKeepsKnownValues verifies unset update
// fields never erase prior knowledge.
func TestTripRequest_Apply_MergeKeepsKnownValues(t *testing.T) {
	var trip TripRequest
	trip.Apply(interpret.TripFields{Origin: "Boston", Destination: "Rome"})
	trip.Apply(interpret.TripFields{Travelers: 3})

	assert.Equal(t, "Boston", trip.Origin)
	assert.Equal(t, "Rome", trip.Destination)
	assert.Equal(t, 3, trip.Travelers)
}

// TestTripRequest_Apply_ParsesDates verifies the wire date format and
// that unparseable dates are dropped rather than guessed at.
func TestTripRequest_Apply_ParsesDates(t *testing.T) {
	var trip TripRequest
	trip.Apply(interpret.TripFields{DepartDate: "2026-06-01", ReturnDate: "not a date"})

	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), trip.DepartDate)
	assert.True(t, trip.ReturnDate.IsZero())
}

// TestTripRequest_Apply_DurationPinsReturnDate verifies a stated trip
// length plus a departure date produces the return date.
func TestTripRequest_Apply_DurationPinsReturnDate(t *testing.T) {
	var trip TripRequest
	trip.Apply(interpret.TripFields{DepartDate: "2026-06-01", DurationDays: 7})

	assert.Equal(t, time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC), trip.ReturnDate)
	assert.Equal(t, 7, trip.Days())
}

// TestTripRequest_Apply_LowercasesStyle verifies style values are
// normalized to the catalog's casing.
func TestTripRequest_Apply_LowercasesStyle(t *testing.T) {
	var trip TripRequest
	trip.Apply(interpret.TripFields{Style: "Adventure"})
	assert.Equal(t, "adventure", trip.Style)
}

// TestTripRequest_Days covers the unknown and inverted windows.
func TestTripRequest_Days(t *testing.T) {
	var trip TripRequest
	assert.Equal(t, 0, trip.Days())

	trip.DepartDate = time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)
	trip.ReturnDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, trip.Days())
}

// TestState_RecomputeMissing verifies the missing list is derived from
// the trip in priority order.
func TestState_RecomputeMissing(t *testing.T) {
	s := NewState("c", testTime)

	s.RecomputeMissing()
	assert.Equal(t, []string{
		interpret.FieldOrigin,
		interpret.FieldDestination,
		interpret.FieldDepartDate,
		interpret.FieldReturnDate,
		interpret.FieldTravelers,
		interpret.FieldInterests,
	}, s.Missing)

	s.Trip.Apply(fullTripFields())
	s.RecomputeMissing()
	assert.Empty(t, s.Missing)
}

// TestState_RecomputeMissing_BudgetAndStyleOptional verifies budget
// and style never appear in the missing list.
func TestState_RecomputeMissing_BudgetAndStyleOptional(t *testing.T) {
	s := NewState("c", testTime)
	s.Trip.Apply(fullTripFields())
	s.RecomputeMissing()

	assert.NotContains(t, s.Missing, interpret.FieldBudget)
	assert.NotContains(t, s.Missing, interpret.FieldStyle)
	assert.Empty(t, s.Trip.Budget)
	assert.Empty(t, s.Trip.Style)
}

// TestState_LastUserMessage verifies the newest user message wins and
// assistant messages are skipped.
func TestState_LastUserMessage(t *testing.T) {
	s := NewState("c", testTime)
	assert.Empty(t, s.LastUserMessage())

	s.AppendMessage(RoleUser, "first", testTime)
	s.AppendMessage(RoleAssistant, "question", testTime)
	s.AppendMessage(RoleUser, "second", testTime)
	assert.Equal(t, "second", s.LastUserMessage())
}

// TestState_Clone verifies the copy shares nothing mutable with the
// original.
func TestState_Clone(t *testing.T) {
	s := NewState("c", testTime)
	s.Trip.Apply(fullTripFields())
	s.RecomputeMissing()
	s.AppendMessage(RoleUser, "hello", testTime)
	s.RecordError("flights", "transient", "boom", testTime)
	s.Results.Flights = Populated(testFlights())
	s.Choice = &UserChoice{Value: choiceQuick, Provenance: ProvenanceInferred}
	s.Visits[StageValidate] = 2
	it := buildItinerary(&s, testTime)
	s.Itinerary = &it

	c := s.Clone()
	c.Trip.Interests[0] = "changed"
	c.History[0].Content = "changed"
	c.Errors[0].Message = "changed"
	c.Results.Flights.Items[0].Airline = "changed"
	c.Choice.Value = "changed"
	c.Visits[StageValidate] = 99
	c.Itinerary.Notices = append(c.Itinerary.Notices, "changed")

	assert.Equal(t, "food", s.Trip.Interests[0])
	assert.Equal(t, "hello", s.History[0].Content)
	assert.Equal(t, "boom", s.Errors[0].Message)
	assert.Equal(t, "Air France", s.Results.Flights.Items[0].Airline)
	assert.Equal(t, choiceQuick, s.Choice.Value)
	assert.Equal(t, 2, s.Visits[StageValidate])
	assert.Empty(t, s.Itinerary.Notices)
}

// TestState_JSONRoundTrip verifies a populated state survives the
// checkpoint serialization unchanged.
func TestState_JSONRoundTrip(t *testing.T) {
	s := NewState("c", testTime)
	s.Trip.Apply(fullTripFields())
	s.RecomputeMissing()
	s.Stage = StageStyleDecision
	s.Awaiting = true
	s.Prompt = "How would you like to finish?"
	s.AppendMessage(RoleUser, "plan my trip", testTime)
	s.RecordError("hotels", "quota", "rate limited", testTime)
	s.Results.Hotels = FallbackSlot(search.FallbackHotels("Paris", 7), "rate limited")
	s.Visits[StageExtractInfo] = 1

	data, err := json.Marshal(&s)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Stage, back.Stage)
	assert.Equal(t, s.Trip, back.Trip)
	assert.Equal(t, s.Missing, back.Missing)
	assert.True(t, back.Awaiting)
	assert.Equal(t, s.Prompt, back.Prompt)
	assert.Equal(t, s.History, back.History)
	assert.Equal(t, s.Errors, back.Errors)
	assert.Equal(t, SlotFallback, back.Results.Hotels.Status)
	assert.Equal(t, "rate limited", back.Results.Hotels.FailedWith)
	assert.Equal(t, 1, back.Visits[StageExtractInfo])
}

// TestResultSlot_Produced verifies both live and fallback slots count
// as produced.
func TestResultSlot_Produced(t *testing.T) {
	var empty ResultSlot[search.Flight]
	empty.Status = SlotEmpty
	assert.False(t, empty.Produced())

	assert.True(t, Populated(testFlights()).Produced())
	assert.True(t, FallbackSlot(testFlights(), "boom").Produced())
}
