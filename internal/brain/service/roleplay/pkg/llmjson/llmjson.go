// Package llmjson extracts JSON payloads from chat-model responses.
//
// Models wrap JSON in code fences or prose despite instructions; every
// structured-output call site in this service funnels through Extract.
package llmjson

import "strings"

// Extract returns the JSON object embedded in a model response.
//
// Code fences are stripped first, then the substring from the first '{'
// to the last '}' is taken. Returns ok=false when no object is present.
func Extract(s string) (string, bool) {
	s = StripFences(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// StripFences removes a surrounding markdown code fence, with or without a
// language marker.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language marker line ("json", "JSON", or empty)
		first := strings.TrimSpace(s[:i])
		if first == "" || len(first) <= 8 && !strings.Contains(first, "{") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
