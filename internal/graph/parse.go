package graph

import "strings"

// Separator splits the two endpoints of an edge line.
const Separator = "->"

// ParseLine validates a single "LEFT -> RIGHT" line. The line is valid iff it
// contains exactly one separator and both sides are non-empty after trimming.
func ParseLine(line string) (left, right string, ok bool) {
	parts := strings.Split(line, Separator)
	if len(parts) != 2 {
		return "", "", false
	}
	left = strings.TrimSpace(parts[0])
	right = strings.TrimSpace(parts[1])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// line is one valid edge line of the input text.
type line struct {
	left, right string
}

// parseText returns the valid edge lines of text in order. Blank and invalid
// lines are skipped without a trace.
func parseText(text string) []line {
	var out []line
	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if left, right, ok := ParseLine(trimmed); ok {
			out = append(out, line{left: left, right: right})
		}
	}
	return out
}
