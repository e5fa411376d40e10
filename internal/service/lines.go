package service

import "strings"

// splitLines returns the trimmed, non-empty lines of text in order
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// joinPrefixed renders one prefixed line per entry
func joinPrefixed(prefix string, entries []string) string {
	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(prefix)
		b.WriteString(entry)
	}
	return b.String()
}
