package service

import (
	"encoding/json"
	"strings"
)

// The generation collaborator is not a guaranteed-compliant structured
// output source: the same prompt can come back as a clean JSON object,
// an object wrapped in a markdown code fence, or prose with an object
// buried inside. extractJSON tries each shape in order and stops at the
// first one that decodes.

func extractJSON(text string, v any) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if json.Unmarshal([]byte(stripCodeFence(trimmed)), v) == nil {
		return true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(trimmed[start:end+1]), v) == nil {
			return true
		}
	}

	return false
}

// stripCodeFence removes a surrounding markdown fence, including an
// optional language tag on the opening line.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := s[3:]
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		return s
	}

	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}

	return strings.TrimSpace(body)
}

// sanitizeText normalizes line endings to LF and trims outer
// whitespace. Applied to any raw model text returned to a caller.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
