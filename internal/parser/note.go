package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdt-generator/backend/internal/models"
)

var (
	// noteTimeRegex matches the leading marker: {time:1:30}1:30
	noteTimeRegex = regexp.MustCompile(`^\{time:(\d+:\d+)\}(\d+:\d+)`)
	// noteSpellRegex matches one segment: Playername {spell:64843}
	noteSpellRegex = regexp.MustCompile(`(\p{L}+)\s+\{spell:(\d+)\}`)
)

// ParseNote extracts (time, player, spell) entries from MRT note text.
// The display timestamp (after the braces) is the event time. Lines that do
// not start with a time marker are skipped whole.
func ParseNote(text string) ([]models.NoteEntry, error) {
	entries := make([]models.NoteEntry, 0)

	for i, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		m := noteTimeRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		timestamp := m[2]
		seconds, err := ParseClock(timestamp)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		for _, seg := range noteSpellRegex.FindAllStringSubmatch(line[len(m[0]):], -1) {
			entries = append(entries, models.NoteEntry{
				Time:        timestamp,
				TimeSeconds: seconds,
				PlayerName:  seg[1],
				SpellID:     seg[2],
			})
		}
	}

	SortByTime(entries)
	return entries, nil
}
