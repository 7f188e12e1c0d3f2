// Package interpret turns free-text user messages into structured trip
// data. Two capabilities cover everything the planner needs: extracting
// trip fields from a message, and classifying a reply against an
// enumerated set of choices.
//
// The LLM-backed implementation handles arbitrary phrasing; the rules
// implementation covers common phrasings with no external dependency
// and doubles as the test double.
package interpret

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Field names used to focus a narrow extraction on the one detail the
// planner just asked about.
const (
	FieldOrigin      = "origin"
	FieldDestination = "destination"
	FieldDepartDate  = "depart_date"
	FieldReturnDate  = "return_date"
	FieldTravelers   = "travelers"
	FieldBudget      = "budget"
	FieldStyle       = "style"
	FieldInterests   = "interests"
)

// ErrNoChoice reports that a reply could not be matched to any offered
// option. Callers re-prompt rather than assuming a default.
var ErrNoChoice = errors.New("no option matched the reply")

// TripFields is the outcome of one extraction pass. Zero values mean
// the message did not mention the field, so results merge over prior
// knowledge without erasing it.
type TripFields struct {
	Origin       string   `json:"origin,omitempty" mapstructure:"origin"`
	Destination  string   `json:"destination,omitempty" mapstructure:"destination"`
	DepartDate   string   `json:"depart_date,omitempty" mapstructure:"depart_date"`
	ReturnDate   string   `json:"return_date,omitempty" mapstructure:"return_date"`
	DurationDays int      `json:"duration_days,omitempty" mapstructure:"duration_days"`
	Travelers    int      `json:"travelers,omitempty" mapstructure:"travelers"`
	Budget       string   `json:"budget,omitempty" mapstructure:"budget"`
	Style        string   `json:"style,omitempty" mapstructure:"style"`
	Interests    []string `json:"interests,omitempty" mapstructure:"interests"`
}

// Merge overlays update on f, keeping f's value wherever update is
// unset.
func (f TripFields) Merge(update TripFields) TripFields {
	if update.Origin != "" {
		f.Origin = update.Origin
	}
	if update.Destination != "" {
		f.Destination = update.Destination
	}
	if update.DepartDate != "" {
		f.DepartDate = update.DepartDate
	}
	if update.ReturnDate != "" {
		f.ReturnDate = update.ReturnDate
	}
	if update.DurationDays > 0 {
		f.DurationDays = update.DurationDays
	}
	if update.Travelers > 0 {
		f.Travelers = update.Travelers
	}
	if update.Budget != "" {
		f.Budget = update.Budget
	}
	if update.Style != "" {
		f.Style = update.Style
	}
	if len(update.Interests) > 0 {
		f.Interests = update.Interests
	}
	return f
}

// IsZero reports whether no field was extracted at all.
func (f TripFields) IsZero() bool {
	return f.Origin == "" && f.Destination == "" &&
		f.DepartDate == "" && f.ReturnDate == "" &&
		f.DurationDays == 0 && f.Travelers == 0 &&
		f.Budget == "" && f.Style == "" && len(f.Interests) == 0
}

// Option is one enumerated choice offered to the user.
type Option struct {
	// ID is the stable identifier Classify returns.
	ID string

	// Label is the human-readable description presented to the user
	// and, for the LLM interpreter, to the model.
	Label string

	// Hints are words and phrases that indicate this option. The
	// rules interpreter matches on them; the LLM interpreter treats
	// them as extra context.
	Hints []string
}

// Interpreter is the capability nodes use to understand user text.
type Interpreter interface {
	// ExtractTrip pulls every trip field the message mentions.
	ExtractTrip(ctx context.Context, message string) (TripFields, error)

	// ExtractUpdate interprets a reply to a question about one
	// specific field. current carries what is already known so the
	// interpretation can stay consistent with it; the result holds
	// only newly mentioned fields.
	ExtractUpdate(ctx context.Context, message, focus string, current TripFields) (TripFields, error)

	// Classify matches a reply against the offered options and
	// returns the winning option's ID, or ErrNoChoice when the reply
	// fits none of them.
	Classify(ctx context.Context, message, question string, options []Option) (string, error)
}

// ExplicitChoice resolves a reply that names an option outright: the
// bare option ID or its 1-based ordinal, nothing more. Callers use it
// before Classify to tell explicit selections apart from choices
// inferred out of free text.
func ExplicitChoice(message string, options []Option) (string, bool) {
	answer := strings.ToLower(strings.TrimSpace(message))
	answer = strings.TrimRight(answer, ".!")
	if answer == "" {
		return "", false
	}
	for i, opt := range options {
		if answer == strings.ToLower(opt.ID) || answer == strconv.Itoa(i+1) {
			return opt.ID, true
		}
	}
	return "", false
}

// matchOption resolves a raw answer (an option ID, a 1-based ordinal,
// or a label fragment) to an option ID. Shared by both interpreters to
// validate answers.
func matchOption(answer string, options []Option) (string, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return "", false
	}
	for i, opt := range options {
		if answer == strings.ToLower(opt.ID) || answer == strconv.Itoa(i+1) {
			return opt.ID, true
		}
	}
	for _, opt := range options {
		if strings.Contains(answer, strings.ToLower(opt.ID)) {
			return opt.ID, true
		}
	}
	return "", false
}
