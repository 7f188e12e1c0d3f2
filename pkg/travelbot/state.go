package travelbot

import (
	"strings"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// Stage identifies a node in the conversation graph. A state's current
// stage is the only field defining where the conversation resumes.
type Stage string

// The conversation stages, in spine order.
const (
	StageExtractInfo       Stage = "extract_info"
	StageValidate          Stage = "validate"
	StageMissingInfo       Stage = "missing_info"
	StageSearchFlights     Stage = "search_flights"
	StageSearchHotels      Stage = "search_hotels"
	StageSearchAttractions Stage = "search_attractions"
	StageStyleDecision     Stage = "style_decision"
	StageChooseStyle       Stage = "choose_style"
	StageCreateItinerary   Stage = "create_itinerary"
)

// End is the terminal stage identifier.
// Use it as an edge target to mark where the conversation completes.
const End Stage = "__end__"

// StateField names a region of ConversationState for node read/write
// declarations. Compile uses the declarations to verify no node can
// read a field before every incoming path has written it.
type StateField string

// The declarable state fields. History and the error log are ambient:
// every node may read and append to them without declaring it.
const (
	StateTrip        StateField = "trip_request"
	StateMissing     StateField = "missing_fields"
	StateFlights     StateField = "results.flights"
	StateHotels      StateField = "results.hotels"
	StateAttractions StateField = "results.attractions"
	StateChoice      StateField = "user_choice"
	StateItinerary   StateField = "itinerary"
)

// dateLayout is the wire format for trip dates.
const dateLayout = "2006-01-02"

// TripRequest accumulates the trip details extracted from the
// conversation. Zero values mean not yet provided; no field has a
// meaningful value equal to its zero value.
type TripRequest struct {
	Origin       string    `json:"origin,omitempty"`
	Destination  string    `json:"destination,omitempty"`
	DepartDate   time.Time `json:"depart_date,omitzero"`
	ReturnDate   time.Time `json:"return_date,omitzero"`
	DurationDays int       `json:"duration_days,omitempty"`
	Travelers    int       `json:"travelers,omitempty"`
	Budget       string    `json:"budget,omitempty"`
	Style        string    `json:"style,omitempty"`
	Interests    []string  `json:"interests,omitempty"`
}

// Apply merges one extraction pass into the request. Unset fields in
// the update never erase known values. Dates arrive as 2006-01-02
// strings; unparseable ones are dropped rather than guessed at.
func (t *TripRequest) Apply(f interpret.TripFields) {
	if f.Origin != "" {
		t.Origin = f.Origin
	}
	if f.Destination != "" {
		t.Destination = f.Destination
	}
	if f.DepartDate != "" {
		if d, err := time.Parse(dateLayout, f.DepartDate); err == nil {
			t.DepartDate = d
		}
	}
	if f.ReturnDate != "" {
		if d, err := time.Parse(dateLayout, f.ReturnDate); err == nil {
			t.ReturnDate = d
		}
	}
	if f.DurationDays > 0 {
		t.DurationDays = f.DurationDays
	}
	if f.Travelers > 0 {
		t.Travelers = f.Travelers
	}
	if f.Budget != "" {
		t.Budget = f.Budget
	}
	if f.Style != "" {
		t.Style = strings.ToLower(f.Style)
	}
	if len(f.Interests) > 0 {
		t.Interests = append([]string(nil), f.Interests...)
	}
	// A stated trip length plus a departure date pins the return date.
	if t.ReturnDate.IsZero() && !t.DepartDate.IsZero() && t.DurationDays > 0 {
		t.ReturnDate = t.DepartDate.AddDate(0, 0, t.DurationDays)
	}
}

// Days returns the trip length in days, or 0 when the window is not
// yet known or is inverted.
func (t TripRequest) Days() int {
	if t.DepartDate.IsZero() || t.ReturnDate.IsZero() {
		return 0
	}
	d := int(t.ReturnDate.Sub(t.DepartDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// requiredFields is the declared priority order for clarification
// questions. Budget and style stay optional; they get defaults at
// search and itinerary time instead of a question.
var requiredFields = []string{
	interpret.FieldOrigin,
	interpret.FieldDestination,
	interpret.FieldDepartDate,
	interpret.FieldReturnDate,
	interpret.FieldTravelers,
	interpret.FieldInterests,
}

// missingFields lists the required fields the request does not cover
// yet, in priority order.
func (t TripRequest) missingFields() []string {
	var missing []string
	for _, f := range requiredFields {
		if !t.has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (t TripRequest) has(field string) bool {
	switch field {
	case interpret.FieldOrigin:
		return t.Origin != ""
	case interpret.FieldDestination:
		return t.Destination != ""
	case interpret.FieldDepartDate:
		return !t.DepartDate.IsZero()
	case interpret.FieldReturnDate:
		return !t.ReturnDate.IsZero()
	case interpret.FieldTravelers:
		return t.Travelers > 0
	case interpret.FieldInterests:
		return len(t.Interests) > 0
	default:
		return true
	}
}

// SlotStatus tracks whether a search slot holds live provider data,
// canned fallback data, or nothing yet.
type SlotStatus string

const (
	SlotEmpty     SlotStatus = "empty"
	SlotPopulated SlotStatus = "populated"
	SlotFallback  SlotStatus = "fallback"
)

// ResultSlot holds one provider's records along with how they were
// obtained. FailedWith explains the degradation when Status is
// fallback.
type ResultSlot[T any] struct {
	Status     SlotStatus `json:"status"`
	Items      []T        `json:"items,omitempty"`
	FailedWith string     `json:"failed_with,omitempty"`
}

// Produced reports whether the slot has been written by its search
// stage, with either live or fallback records.
func (s ResultSlot[T]) Produced() bool {
	return s.Status == SlotPopulated || s.Status == SlotFallback
}

// Populated builds a slot holding live provider records.
func Populated[T any](items []T) ResultSlot[T] {
	return ResultSlot[T]{Status: SlotPopulated, Items: items}
}

// FallbackSlot builds a fallback-marked slot carrying the failure that
// caused the degradation.
func FallbackSlot[T any](items []T, cause string) ResultSlot[T] {
	return ResultSlot[T]{Status: SlotFallback, Items: items, FailedWith: cause}
}

// SearchResults carries the three independent search slots.
type SearchResults struct {
	Flights     ResultSlot[search.Flight]     `json:"flights"`
	Hotels      ResultSlot[search.Hotel]      `json:"hotels"`
	Attractions ResultSlot[search.Attraction] `json:"attractions"`
}

// Choice provenance values.
const (
	ProvenanceExplicit = "explicit"
	ProvenanceInferred = "inferred"
)

// UserChoice is the last discrete choice the user made and how it was
// obtained: an outright selection (an option ID or its number) or an
// inference from free text.
type UserChoice struct {
	Value      string `json:"value"`
	Provenance string `json:"provenance"`
}

// Message roles in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one exchanged message. History is append-only; messages
// are never edited after the fact.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ErrorEntry records one absorbed failure, for diagnostics and for the
// degraded-data notices in the final itinerary.
type ErrorEntry struct {
	Provider string    `json:"provider"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// State is the full conversation record threaded through every stage
// and serialized into each checkpoint.
type State struct {
	ID       string `json:"conversation_id"`
	Stage    Stage  `json:"stage"`
	Sequence int    `json:"sequence"`

	Trip    TripRequest   `json:"trip_request"`
	Missing []string      `json:"missing_fields,omitempty"`
	Results SearchResults `json:"results"`
	Choice  *UserChoice   `json:"choice,omitempty"`

	// Awaiting marks a suspended conversation. Prompt is the question
	// pending an answer and PendingField the trip field it asks about.
	Awaiting     bool   `json:"awaiting,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
	PendingField string `json:"pending_field,omitempty"`

	// ValidationNote explains a field cleared by validation, so the
	// next clarification question can say why it is asked again.
	ValidationNote string `json:"validation_note,omitempty"`

	History []Message     `json:"history"`
	Errors  []ErrorEntry  `json:"error_log,omitempty"`
	Visits  map[Stage]int `json:"visits,omitempty"`

	Itinerary *Itinerary `json:"itinerary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a fresh conversation positioned at the entry stage.
func NewState(conversationID string, now time.Time) State {
	return State{
		ID:    conversationID,
		Stage: StageExtractInfo,
		Results: SearchResults{
			Flights:     ResultSlot[search.Flight]{Status: SlotEmpty},
			Hotels:      ResultSlot[search.Hotel]{Status: SlotEmpty},
			Attractions: ResultSlot[search.Attraction]{Status: SlotEmpty},
		},
		Visits:    make(map[Stage]int),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendMessage appends one message to the history.
func (s *State) AppendMessage(role, content string, at time.Time) {
	s.History = append(s.History, Message{Role: role, Content: content, At: at})
}

// LastUserMessage returns the content of the most recent user message,
// or "" when none exists.
func (s *State) LastUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Content
		}
	}
	return ""
}

// RecordError appends one absorbed failure to the error log.
func (s *State) RecordError(provider, kind, message string, at time.Time) {
	s.Errors = append(s.Errors, ErrorEntry{Provider: provider, Kind: kind, Message: message, At: at})
}

// RecomputeMissing rederives the missing-field list from the trip
// request. It is the only writer of Missing; nodes never hand-edit
// the list.
func (s *State) RecomputeMissing() {
	s.Missing = s.Trip.missingFields()
}

// Done reports whether the conversation reached its terminal stage.
func (s *State) Done() bool {
	return s.Stage == End
}

// Clone returns a deep copy, safe to hold across steps.
func (s *State) Clone() State {
	out := *s
	out.Trip.Interests = append([]string(nil), s.Trip.Interests...)
	out.Missing = append([]string(nil), s.Missing...)
	out.History = append([]Message(nil), s.History...)
	out.Errors = append([]ErrorEntry(nil), s.Errors...)
	out.Results.Flights.Items = append([]search.Flight(nil), s.Results.Flights.Items...)
	out.Results.Hotels.Items = append([]search.Hotel(nil), s.Results.Hotels.Items...)
	out.Results.Attractions.Items = append([]search.Attraction(nil), s.Results.Attractions.Items...)
	if s.Choice != nil {
		c := *s.Choice
		out.Choice = &c
	}
	if s.Visits != nil {
		out.Visits = make(map[Stage]int, len(s.Visits))
		for k, v := range s.Visits {
			out.Visits[k] = v
		}
	}
	if s.Itinerary != nil {
		out.Itinerary = s.Itinerary.clone()
	}
	return out
}
