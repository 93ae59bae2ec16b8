package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON value can be located in model output.
var ErrNoJSON = errors.New("llm: no JSON value found in content")

// StripFences removes a surrounding Markdown code fence, with or without a
// language tag, from model output.
func StripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", ...).
		firstLine := strings.TrimSpace(trimmed[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ExtractJSON returns the first JSON value (object or array) embedded in
// possibly-fenced model output. The returned string is valid JSON.
func ExtractJSON(content string) (string, error) {
	cleaned := StripFences(content)
	start := strings.IndexAny(cleaned, "{[")
	if start < 0 {
		return "", ErrNoJSON
	}
	dec := json.NewDecoder(strings.NewReader(cleaned[start:]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", ErrNoJSON
	}
	return string(raw), nil
}

// ExtractJSONObject decodes the first JSON object found in content into a map.
func ExtractJSONObject(content string) (map[string]interface{}, error) {
	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, ErrNoJSON
	}
	return out, nil
}

// ExtractStringArray decodes the first JSON array of strings found in content.
// Non-string elements are skipped.
func ExtractStringArray(content string) ([]string, error) {
	cleaned := StripFences(content)
	start := strings.Index(cleaned, "[")
	if start < 0 {
		return nil, ErrNoJSON
	}
	dec := json.NewDecoder(strings.NewReader(cleaned[start:]))
	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, ErrNoJSON
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, nil
}
