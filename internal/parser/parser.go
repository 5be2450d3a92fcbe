// Package parser extracts timestamped events from the two text formats the
// pipeline passes around: the cast listing and the MRT note.
package parser

import (
	"sort"
	"strings"
)

// Timed is anything that carries a fight offset in seconds.
type Timed interface {
	Seconds() int
}

// SortByTime stable-sorts events ascending by offset; equal offsets keep input order.
func SortByTime[T Timed](events []T) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Seconds() < events[j].Seconds()
	})
}

// splitLines splits on '\n' and drops a trailing '\r' from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
