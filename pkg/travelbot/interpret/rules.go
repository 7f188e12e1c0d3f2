package interpret

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RulesInterpreter is a deterministic, dependency-free Interpreter.
// It covers the common phrasings with regular expressions and keyword
// tables. The chat CLI runs on it when no model is configured, and it
// backs tests that need reproducible interpretations.
type RulesInterpreter struct {
	// Now resolves relative dates. Nil means time.Now.
	Now func() time.Time
}

var _ Interpreter = (*RulesInterpreter)(nil)

// NewRules builds a rules interpreter.
func NewRules() *RulesInterpreter {
	return &RulesInterpreter{}
}

func (r *RulesInterpreter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

var (
	routePattern    = regexp.MustCompile(`(?i)\bfrom\s+([a-z][a-z .'-]{0,30}?)\s+to\s+([a-z][a-z .'-]{0,30}?)(?:$|[,.!?]|\s+(?:for|on|in|with|next|this|departing|leaving|around)\b)`)
	destOnlyPattern = regexp.MustCompile(`(?i)\b(?:to|visit|visiting)\s+([a-z][a-z'-]*(?:\s+[a-z][a-z'-]*){0,3})(?:$|[,.!?]|\s+(?:for|on|in|with|next|this)\b)`)
	isoDatePattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	monthPattern    = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+(\d{1,2})(?:\s*(?:-|–|to|through|until)\s*(\d{1,2}))?\b`)
	durationPattern = regexp.MustCompile(`(?i)\b(\d{1,2})[-\s]?days?\b`)
	weeksPattern    = regexp.MustCompile(`(?i)\b(\d{1,2})[-\s]?weeks?\b`)
	partyPattern    = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:travelers?|travellers?|people|persons?|adults?|of us)\b`)
	budgetPattern   = regexp.MustCompile(`(?i)(\$\s?\d[\d,]*(?:\s*(?:per person|pp|total|each))?|luxury|cheap|budget[- ]friendly|flexible budget|mid-?range)`)
	interestPattern = regexp.MustCompile(`(?i)\binterested in\s+([^.!?]+)`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var styleKeywords = []struct {
	style string
	words []string
}{
	{"adventure", []string{"adventure", "adventurous", "thrill", "extreme"}},
	{"leisure", []string{"leisure", "relax", "relaxing", "beach", "unwind"}},
	{"business", []string{"business", "work trip", "conference"}},
	{"cultural", []string{"cultural", "culture", "museum", "history", "historical"}},
	{"outdoor", []string{"outdoor", "hiking", "nature", "camping"}},
}

// ExtractTrip scans the message with every field pattern.
func (r *RulesInterpreter) ExtractTrip(ctx context.Context, message string) (TripFields, error) {
	if err := ctx.Err(); err != nil {
		return TripFields{}, err
	}

	var fields TripFields

	if m := routePattern.FindStringSubmatch(message); m != nil {
		fields.Origin = cleanCity(m[1])
		fields.Destination = cleanDestination(m[2])
	} else if m := destOnlyPattern.FindStringSubmatch(message); m != nil {
		fields.Destination = cleanDestination(m[1])
	}

	fields.DepartDate, fields.ReturnDate = r.extractDates(message)

	if m := durationPattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 30 {
			fields.DurationDays = n
		}
	} else if m := weeksPattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 4 {
			fields.DurationDays = n * 7
		}
	}

	if m := partyPattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			fields.Travelers = n
		}
	} else {
		lower := strings.ToLower(message)
		if strings.Contains(lower, "solo") || strings.Contains(lower, "by myself") {
			fields.Travelers = 1
		} else if strings.Contains(lower, "couple") || strings.Contains(lower, "my partner") {
			fields.Travelers = 2
		}
	}

	if m := budgetPattern.FindStringSubmatch(message); m != nil {
		fields.Budget = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(message)
	for _, sk := range styleKeywords {
		for _, w := range sk.words {
			if strings.Contains(lower, w) {
				fields.Style = sk.style
				break
			}
		}
		if fields.Style != "" {
			break
		}
	}

	if m := interestPattern.FindStringSubmatch(message); m != nil {
		fields.Interests = splitList(m[1])
	}

	return fields, nil
}

// ExtractUpdate runs a full extraction, then falls back to treating
// the whole reply as the answer to the focused field. Users answering
// "Boston" to "where from?" never phrase it as a sentence.
func (r *RulesInterpreter) ExtractUpdate(ctx context.Context, message, focus string, current TripFields) (TripFields, error) {
	fields, err := r.ExtractTrip(ctx, message)
	if err != nil {
		return TripFields{}, err
	}

	reply := strings.TrimSpace(message)
	switch focus {
	case FieldOrigin:
		if fields.Origin == "" && looksLikeCity(reply) {
			city := reply
			if strings.HasPrefix(strings.ToLower(city), "from ") {
				city = city[len("from "):]
			}
			fields.Origin = cleanCity(city)
		}
	case FieldDestination:
		if fields.Destination == "" && looksLikeCity(reply) {
			fields.Destination = cleanCity(reply)
		}
	case FieldTravelers:
		if fields.Travelers == 0 {
			if n, err := strconv.Atoi(reply); err == nil && n >= 1 && n <= 20 {
				fields.Travelers = n
			}
		}
	case FieldDepartDate:
		if fields.DepartDate == "" && fields.DurationDays == 0 {
			if d, _ := r.extractDates(reply); d != "" {
				fields.DepartDate = d
			}
		}
	case FieldReturnDate:
		if fields.ReturnDate == "" && fields.DurationDays == 0 {
			if d, _ := r.extractDates(reply); d != "" {
				fields.ReturnDate = d
			}
		}
	case FieldBudget:
		if fields.Budget == "" && reply != "" {
			fields.Budget = reply
		}
	case FieldInterests:
		if len(fields.Interests) == 0 && reply != "" {
			fields.Interests = splitList(reply)
		}
	}
	return fields, nil
}

// Classify matches the reply against option IDs, ordinals, then hints.
func (r *RulesInterpreter) Classify(ctx context.Context, message, question string, options []Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id, ok := matchOption(message, options); ok {
		return id, nil
	}
	lower := strings.ToLower(message)
	for _, opt := range options {
		for _, hint := range opt.Hints {
			if strings.Contains(lower, strings.ToLower(hint)) {
				return opt.ID, nil
			}
		}
	}
	return "", ErrNoChoice
}

// extractDates finds up to two dates, ISO form first, then
// month-and-day phrases like "June 1-8" resolved to their next
// occurrence.
func (r *RulesInterpreter) extractDates(message string) (depart, ret string) {
	if dates := isoDatePattern.FindAllStringSubmatch(message, 2); len(dates) > 0 {
		depart = dates[0][1]
		if len(dates) > 1 {
			ret = dates[1][1]
		}
		return depart, ret
	}

	m := monthPattern.FindStringSubmatch(message)
	if m == nil {
		return "", ""
	}
	month, ok := monthsByPrefix[strings.ToLower(m[1])[:3]]
	if !ok {
		return "", ""
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return "", ""
	}

	start := nextOccurrence(r.now(), month, day)
	depart = start.Format("2006-01-02")

	if m[3] != "" {
		if endDay, err := strconv.Atoi(m[3]); err == nil && endDay >= 1 && endDay <= 31 {
			end := time.Date(start.Year(), month, endDay, 0, 0, 0, 0, time.UTC)
			if !end.After(start) {
				end = end.AddDate(0, 1, 0)
			}
			ret = end.Format("2006-01-02")
		}
	}
	return depart, ret
}

// nextOccurrence returns the next future date with the given month and
// day, at UTC midnight.
func nextOccurrence(now time.Time, month time.Month, day int) time.Time {
	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

// cityStopwords are captures that are grammar, not places.
var cityStopwords = map[string]bool{
	"go": true, "travel": true, "fly": true, "leave": true,
	"there": true, "somewhere": true, "anywhere": true,
	"it": true, "the": true, "a": true,
}

// destinationLeadIns are verbs that sneak into a "to ..." capture
// ahead of the actual place, as in "want to visit Paris".
var destinationLeadIns = map[string]bool{
	"visit": true, "visiting": true, "see": true, "explore": true,
	"go": true, "travel": true, "fly": true, "to": true,
}

func cleanCity(s string) string {
	s = strings.TrimSpace(strings.Trim(s, ".,!?"))
	if len(s) < 2 || cityStopwords[strings.ToLower(s)] {
		return ""
	}
	return s
}

func cleanDestination(s string) string {
	words := strings.Fields(strings.Trim(s, ".,!?"))
	for len(words) > 0 && destinationLeadIns[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return cleanCity(strings.Join(words, " "))
}

// looksLikeCity filters replies that cannot be a city name: empty,
// numeric, or whole sentences.
func looksLikeCity(s string) bool {
	if s == "" || len(s) > 40 {
		return false
	}
	if strings.ContainsAny(s, "0123456789") {
		return false
	}
	return len(strings.Fields(s)) <= 4
}

func splitList(s string) []string {
	s = strings.ReplaceAll(s, " and ", ",")
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(p, ".,!?"))
		if len(p) > 1 {
			out = append(out, p)
		}
	}
	return out
}
