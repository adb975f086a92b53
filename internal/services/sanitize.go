package services

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// SanitizeModelJSON extracts the JSON object embedded in raw model output.
// Models wrap responses in markdown fences and surround them with prose;
// when a fence is present only its inner content is considered, otherwise
// the whole string is parsed. Returns nil on any parse failure; it never
// panics, including on mojibake or truncated bytes.
func SanitizeModelJSON(raw string) map[string]any {
	candidate := strings.TrimSpace(raw)
	if match := fencedBlock.FindStringSubmatch(candidate); match != nil {
		candidate = strings.TrimSpace(match[1])
	}
	if candidate == "" {
		return nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil
	}
	if out == nil {
		// A literal "null" parses cleanly but carries nothing.
		return nil
	}
	return out
}
