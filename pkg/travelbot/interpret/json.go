package interpret

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Models wrap JSON in markdown fences, prose, or both. extractJSON
// digs the first valid JSON object out of a raw completion.

var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// extractJSON returns the first valid JSON object in the response,
// preferring fenced code blocks over raw text.
func extractJSON(response string) (string, error) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if json.Valid([]byte(content)) {
			return content, nil
		}
	}

	start := strings.Index(response, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}
	if obj := matchBraces(response[start:]); obj != "" && json.Valid([]byte(obj)) {
		return obj, nil
	}
	return "", fmt.Errorf("no valid JSON object in response")
}

// matchBraces returns the prefix of s up to the brace that closes its
// opening one, accounting for strings and escapes.
func matchBraces(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// decodeFields maps a decoded JSON object onto TripFields. Weak typing
// tolerates the shapes models actually produce: numbers as strings,
// a single interest as a bare string.
func decodeFields(raw map[string]any) (TripFields, error) {
	var fields TripFields
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fields,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fields, err
	}
	if err := dec.Decode(raw); err != nil {
		return fields, fmt.Errorf("decode trip fields: %w", err)
	}
	return fields, nil
}

// parseTripFields extracts and decodes trip fields from a raw model
// completion.
func parseTripFields(response string) (TripFields, error) {
	text, err := extractJSON(response)
	if err != nil {
		return TripFields{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return TripFields{}, fmt.Errorf("unmarshal trip fields: %w", err)
	}
	return decodeFields(raw)
}
