package interpret

import (
	"fmt"
	"strings"
	"time"
)

// Prompt builders for the LLM interpreter. Every prompt demands JSON
// output so parsing stays uniform across models.

func extractTripPrompt(message string, today time.Time) string {
	var b strings.Builder
	b.WriteString("Extract travel planning details from the user's message.\n\n")
	fmt.Fprintf(&b, "User message: %q\n\n", message)
	fmt.Fprintf(&b, "Today's date is %s.\n\n", today.Format("2006-01-02"))
	b.WriteString(`Reply with a JSON object containing only the fields the message actually mentions:
{
  "origin": "departure city",
  "destination": "destination city",
  "depart_date": "YYYY-MM-DD",
  "return_date": "YYYY-MM-DD",
  "duration_days": 7,
  "travelers": 2,
  "budget": "budget description",
  "style": "adventure|leisure|business|cultural|outdoor",
  "interests": ["list", "of", "interests"]
}

Resolve relative dates against today's date. Omit every field the message does not mention. Reply with JSON only.`)
	return b.String()
}

func extractUpdatePrompt(message, focus string, current TripFields, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user was asked about their trip's %s and replied: %q\n\n", strings.ReplaceAll(focus, "_", " "), message)
	fmt.Fprintf(&b, "Today's date is %s.\n\n", today.Format("2006-01-02"))
	b.WriteString("Already known:\n")
	writeKnown(&b, current)
	b.WriteString(`
Extract any NEW details from the reply, the asked-about field first. Reply with a JSON object using these keys where mentioned: origin, destination, depart_date (YYYY-MM-DD), return_date (YYYY-MM-DD), duration_days, travelers, budget, style, interests. Omit fields the reply does not mention. Reply with JSON only.`)
	return b.String()
}

func writeKnown(b *strings.Builder, f TripFields) {
	known := func(label, value string) {
		if value == "" {
			value = "missing"
		}
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
	known("origin", f.Origin)
	known("destination", f.Destination)
	known("depart date", f.DepartDate)
	known("return date", f.ReturnDate)
	if f.Travelers > 0 {
		known("travelers", fmt.Sprintf("%d", f.Travelers))
	} else {
		known("travelers", "")
	}
	known("budget", f.Budget)
	if len(f.Interests) > 0 {
		known("interests", strings.Join(f.Interests, ", "))
	}
}

func classifyPrompt(message, question string, options []Option) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user was asked: %q\n", question)
	fmt.Fprintf(&b, "The user replied: %q\n\n", message)
	b.WriteString("Options:\n")
	for i, opt := range options {
		fmt.Fprintf(&b, "%d. %s - %s", i+1, opt.ID, opt.Label)
		if len(opt.Hints) > 0 {
			fmt.Fprintf(&b, " (e.g. %s)", strings.Join(opt.Hints, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nWhich option did the user choose? Reply with exactly one option id from the list, or \"none\" if the reply does not fit any option.")
	return b.String()
}
