package travelbot

import (
	"fmt"
	"strings"

	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
)

// Choice values recorded by the finish decision.
const (
	choiceCustomize = "customize"
	choiceQuick     = "quick"
)

// defaultStyle applies when the user takes the quick finish without
// ever naming a style.
const defaultStyle = "cultural"

var finishOptions = []interpret.Option{
	{
		ID:    choiceCustomize,
		Label: "Customize the travel style before I build the itinerary",
		Hints: []string{"customize", "custom", "style", "personalize", "tailor", "options"},
	},
	{
		ID:    choiceQuick,
		Label: "Just give me a quick itinerary now",
		Hints: []string{"quick", "fast", "just", "now", "right away", "whatever", "surprise"},
	},
}

var travelStyles = []interpret.Option{
	{ID: "adventure", Label: "Adventure: hikes, adrenaline, off the beaten path", Hints: []string{"adventure", "hike", "hiking", "adrenaline", "thrill"}},
	{ID: "leisure", Label: "Leisure: slow mornings, beaches, spas", Hints: []string{"leisure", "relax", "relaxing", "beach", "spa"}},
	{ID: "business", Label: "Business: central, efficient, well connected", Hints: []string{"business", "work", "efficient", "meetings"}},
	{ID: "cultural", Label: "Cultural: museums, history, local food", Hints: []string{"cultural", "culture", "museum", "history", "food"}},
	{ID: "outdoor", Label: "Outdoor: parks, nature, fresh air", Hints: []string{"outdoor", "nature", "park", "hiking", "camping"}},
}

// styleDecision presents the search summary and asks whether to
// customize the style or finish right away. The recorded choice keeps
// its provenance: a bare option ID or number counts as explicit, a
// choice dug out of free text counts as inferred.
func styleDecision(ctx Context, s State) (State, Outcome, error) {
	if !s.Awaiting {
		return s, awaitInput(styleDecisionPrompt(&s)), nil
	}

	s.Awaiting = false
	question := s.Prompt
	s.Prompt = ""

	id, provenance, err := classifyChoice(ctx, s.LastUserMessage(), question, finishOptions)
	if err != nil {
		s.RecordError(providerInterpreter, kindInterpretation, err.Error(), ctx.Now())
		return s, awaitInput("Sorry, I didn't catch that. " + finishPrompt()), nil
	}

	s.Choice = &UserChoice{Value: id, Provenance: provenance}
	return s, Outcome{}, nil
}

// chooseStyle runs only when the user asked to customize. It offers
// the style catalog and records the pick both as the trip style and as
// the latest choice.
func chooseStyle(ctx Context, s State) (State, Outcome, error) {
	if !s.Awaiting {
		return s, awaitInput(styleListPrompt()), nil
	}

	s.Awaiting = false
	question := s.Prompt
	s.Prompt = ""

	id, provenance, err := classifyChoice(ctx, s.LastUserMessage(), question, travelStyles)
	if err != nil {
		s.RecordError(providerInterpreter, kindInterpretation, err.Error(), ctx.Now())
		return s, awaitInput("Sorry, I didn't catch that. " + styleListPrompt()), nil
	}

	s.Trip.Style = id
	s.Choice = &UserChoice{Value: id, Provenance: provenance}
	return s, Outcome{}, nil
}

// classifyChoice resolves a reply against the offered options. An
// outright selection never goes near the interpreter; free text does,
// and comes back marked as inferred.
func classifyChoice(ctx Context, answer, question string, options []interpret.Option) (id, provenance string, err error) {
	if id, ok := interpret.ExplicitChoice(answer, options); ok {
		return id, ProvenanceExplicit, nil
	}
	id, err = ctx.Interpreter().Classify(ctx, answer, question, options)
	if err != nil {
		return "", "", err
	}
	return id, ProvenanceInferred, nil
}

func styleDecisionPrompt(s *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d flight options, %d hotels, and %d attractions for %s.\n\n",
		len(s.Results.Flights.Items),
		len(s.Results.Hotels.Items),
		len(s.Results.Attractions.Items),
		s.Trip.Destination,
	)
	b.WriteString(finishPrompt())
	return b.String()
}

func finishPrompt() string {
	var b strings.Builder
	b.WriteString("How would you like to finish?\n")
	writeOptions(&b, finishOptions)
	b.WriteString("Reply with a number or tell me in your own words.")
	return b.String()
}

func styleListPrompt() string {
	var b strings.Builder
	b.WriteString("Which travel style fits this trip?\n")
	writeOptions(&b, travelStyles)
	b.WriteString("Reply with a number or a style name.")
	return b.String()
}

func writeOptions(b *strings.Builder, options []interpret.Option) {
	for i, opt := range options {
		fmt.Fprintf(b, "  %d. %s\n", i+1, opt.Label)
	}
}
