package travelbot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
)

const (
	// providerInterpreter tags interpreter failures in the error log,
	// alongside the three search provider names.
	providerInterpreter = "interpreter"

	// kindInterpretation is the error-log kind for messages the
	// interpreter could not turn into usable data.
	kindInterpretation = "interpretation_failure"

	// maxTripDays caps the plannable trip length.
	maxTripDays = 30
)

// extractInfo reads the opening message and pulls every trip field it
// mentions. An interpreter failure is absorbed: the trip stays empty
// and the clarification loop collects the fields one question at a
// time.
func extractInfo(ctx Context, s State) (State, Outcome, error) {
	message := s.LastUserMessage()
	fields, err := ctx.Interpreter().ExtractTrip(ctx, message)
	if err != nil {
		s.RecordError(providerInterpreter, kindInterpretation, err.Error(), ctx.Now())
		ctx.Logger().Warn("opening message not interpretable", "error", err)
	} else {
		s.Trip.Apply(fields)
	}
	s.RecomputeMissing()
	return s, Outcome{}, nil
}

// validateInfo cross-checks the accumulated trip fields and clears the
// ones that cannot stand together, leaving a note for the next
// clarification question. Clearing a field reopens it in the missing
// list, so the loop asks for it again instead of planning around
// nonsense.
func validateInfo(ctx Context, s State) (State, Outcome, error) {
	t := &s.Trip

	if t.Origin != "" && t.Destination != "" && strings.EqualFold(t.Origin, t.Destination) {
		s.ValidationNote = fmt.Sprintf("Your origin and destination are both %s.", t.Destination)
		t.Destination = ""
	}

	if !t.DepartDate.IsZero() && !t.ReturnDate.IsZero() {
		switch d := t.Days(); {
		case d < 1:
			s.ValidationNote = "Your return date isn't after your departure date."
			t.ReturnDate = time.Time{}
		case d > maxTripDays:
			s.ValidationNote = fmt.Sprintf("A %d-day trip is longer than I can plan (up to %d days).", d, maxTripDays)
			// Clear the duration too, or the next date answer would
			// re-derive the same overlong return date.
			t.ReturnDate = time.Time{}
			t.DurationDays = 0
		}
	}

	if s.ValidationNote != "" {
		ctx.Logger().Warn("cleared conflicting trip fields", "note", s.ValidationNote)
	}

	s.RecomputeMissing()
	return s, Outcome{}, nil
}

// missingInfo asks for the highest-priority missing field and suspends
// until the answer arrives. On resume it interprets the answer as an
// update focused on that field; an answer that does not fill the field
// gets one polite re-ask per turn rather than an error.
func missingInfo(ctx Context, s State) (State, Outcome, error) {
	if s.Awaiting {
		return consumeClarification(ctx, s)
	}

	if len(s.Missing) == 0 {
		return s, Outcome{}, errors.New("clarification entered with no missing fields")
	}

	field := s.Missing[0]
	question := fieldQuestion(field)
	if s.ValidationNote != "" {
		question = s.ValidationNote + " " + question
		s.ValidationNote = ""
	}
	s.PendingField = field
	return s, awaitInput(question), nil
}

func consumeClarification(ctx Context, s State) (State, Outcome, error) {
	s.Awaiting = false
	s.Prompt = ""
	field := s.PendingField
	answer := s.LastUserMessage()

	fields, err := ctx.Interpreter().ExtractUpdate(ctx, answer, field, currentTripFields(&s))
	if err != nil {
		s.RecordError(providerInterpreter, kindInterpretation, err.Error(), ctx.Now())
		ctx.Logger().Warn("clarification answer not interpretable", "field", field, "error", err)
	} else {
		s.Trip.Apply(fields)
	}
	s.RecomputeMissing()

	if s.Trip.has(field) {
		s.PendingField = ""
		return s, Outcome{}, nil
	}

	if err == nil {
		s.RecordError(providerInterpreter, kindInterpretation, "no usable answer for "+field, ctx.Now())
	}
	return s, awaitInput("Sorry, I didn't catch that. " + fieldQuestion(field)), nil
}

// currentTripFields projects the trip request back into the wire shape
// the interpreter takes as known context.
func currentTripFields(s *State) interpret.TripFields {
	t := s.Trip
	f := interpret.TripFields{
		Origin:       t.Origin,
		Destination:  t.Destination,
		DurationDays: t.DurationDays,
		Travelers:    t.Travelers,
		Budget:       t.Budget,
		Style:        t.Style,
		Interests:    t.Interests,
	}
	if !t.DepartDate.IsZero() {
		f.DepartDate = t.DepartDate.Format(dateLayout)
	}
	if !t.ReturnDate.IsZero() {
		f.ReturnDate = t.ReturnDate.Format(dateLayout)
	}
	return f
}

func fieldQuestion(field string) string {
	switch field {
	case interpret.FieldOrigin:
		return "Which city will you be traveling from?"
	case interpret.FieldDestination:
		return "Where would you like to go?"
	case interpret.FieldDepartDate:
		return "When would you like to depart? A date like 2026-06-01 or \"June 1\" works."
	case interpret.FieldReturnDate:
		return "When will you head back? A date or a length like \"7 days\" works."
	case interpret.FieldTravelers:
		return "How many people are traveling?"
	case interpret.FieldInterests:
		return "What would you like the trip to focus on? For example food, history, art, or nature."
	default:
		return "Could you tell me more about your trip?"
	}
}

// chose builds a predicate matching a recorded user choice.
func chose(value string) Predicate {
	return func(s *State) bool {
		return s.Choice != nil && s.Choice.Value == value
	}
}

// buildGraph wires the planning conversation. The clarification loop
// (validate, missing_info) is the only cycle; every other node runs at
// most once per conversation.
func buildGraph() *Graph {
	g := NewGraph()

	g.AddNode(StageExtractInfo, extractInfo,
		Writes(StateTrip, StateMissing))
	g.AddNode(StageValidate, validateInfo,
		Reads(StateTrip), Writes(StateMissing), Repeatable())
	g.AddNode(StageMissingInfo, missingInfo,
		Reads(StateTrip, StateMissing), Writes(StateTrip, StateMissing), Repeatable())
	g.AddNode(StageSearchFlights, searchFlights,
		Reads(StateTrip), Writes(StateFlights))
	g.AddNode(StageSearchHotels, searchHotels,
		Reads(StateTrip), Writes(StateHotels))
	g.AddNode(StageSearchAttractions, searchAttractions,
		Reads(StateTrip), Writes(StateAttractions))
	g.AddNode(StageStyleDecision, styleDecision,
		Reads(StateFlights, StateHotels, StateAttractions), Writes(StateChoice))
	g.AddNode(StageChooseStyle, chooseStyle,
		Reads(StateTrip), Writes(StateChoice, StateTrip))
	g.AddNode(StageCreateItinerary, createItinerary,
		Reads(StateTrip, StateFlights, StateHotels, StateAttractions, StateChoice),
		Writes(StateItinerary))

	g.AddEdge(StageExtractInfo, StageValidate)
	g.AddConditionalEdges(StageValidate,
		Edge{To: StageMissingInfo, Name: "fields missing", When: func(s *State) bool { return len(s.Missing) > 0 }},
		Edge{To: StageSearchFlights, Name: "info complete"},
	)
	g.AddEdge(StageMissingInfo, StageValidate)
	g.AddEdge(StageSearchFlights, StageSearchHotels)
	g.AddEdge(StageSearchHotels, StageSearchAttractions)
	g.AddEdge(StageSearchAttractions, StageStyleDecision)
	g.AddConditionalEdges(StageStyleDecision,
		Edge{To: StageChooseStyle, Name: "customize", When: chose(choiceCustomize)},
		Edge{To: StageCreateItinerary, Name: "quick finish", When: chose(choiceQuick)},
	)
	g.AddEdge(StageChooseStyle, StageCreateItinerary)
	g.AddEdge(StageCreateItinerary, End)
	g.SetEntry(StageExtractInfo)

	return g
}
