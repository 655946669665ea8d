package util

import (
	"strings"
	"unicode"
)

// ExtractJSON returns the outermost JSON object (or, failing that, array)
// embedded in s, e.g. a model reply wrapped in prose.
func ExtractJSON(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return trimmed[start : end+1], true
		}
	}
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			return trimmed[start : end+1], true
		}
	}
	return "", false
}

// StripCodeFence removes a surrounding markdown code fence (with optional
// language tag) and trims the result.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	inner := strings.TrimLeft(trimmed, "`")
	if i := strings.IndexByte(inner, '\n'); i >= 0 {
		inner = inner[i+1:]
	}
	if end := strings.LastIndex(inner, "```"); end >= 0 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

// SplitCommand splits "name rest of line" into its first word and the trimmed
// remainder.
func SplitCommand(s string) (name, rest string) {
	trimmed := strings.TrimSpace(s)
	i := strings.IndexFunc(trimmed, unicode.IsSpace)
	if i < 0 {
		return trimmed, ""
	}
	return trimmed[:i], strings.TrimSpace(trimmed[i:])
}
