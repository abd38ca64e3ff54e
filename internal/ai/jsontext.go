package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON strips Markdown code fences and surrounding chatter from a
// model reply, leaving the first '{' through the last '}'. Both ```json and
// bare ``` fences are accepted; a missing closing fence is tolerated.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			// Drop the opening fence line (``` or ```json).
			s = s[idx+1:]
		} else {
			// Single line: ```json {...}```
			s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// DecodeJSON extracts the JSON object from raw and unmarshals it into v.
// Failures wrap ErrMalformedResponse.
func DecodeJSON(raw string, v interface{}) error {
	clean := ExtractJSON(raw)
	if clean == "" {
		return fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
