// Package strings holds text helpers for table cells and log lines.
package strings

import (
	"fmt"
	"strings"
)

// DefaultCellMaxLen is the widest cell the CLI tables print.
const DefaultCellMaxLen = 80

// MinTruncateLen is the smallest maxLen SingleLine accepts; it leaves room
// for one character plus "...".
const MinTruncateLen = 4

// SingleLine collapses every whitespace run in s (newlines included) into a
// single space and cuts the result to maxLen runes, ending in "..." when
// cut. A maxLen below MinTruncateLen is raised to it.
func SingleLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// JoinLimited joins at most limit items with sep and reports how many were
// left out. A limit of zero or less joins everything.
func JoinLimited(items []string, sep string, limit int) string {
	if limit <= 0 || len(items) <= limit {
		return strings.Join(items, sep)
	}
	return fmt.Sprintf("%s%s(+%d more)", strings.Join(items[:limit], sep), sep, len(items)-limit)
}
