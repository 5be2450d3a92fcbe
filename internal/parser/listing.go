package parser

import (
	"fmt"
	"regexp"

	"github.com/mdt-generator/backend/internal/models"
)

// castLineRegex matches: Time(0:00) SpellID(1122) Spell(Summon Infernal)
var castLineRegex = regexp.MustCompile(`Time\((\d+:\d+)\) SpellID\((\d+)\) Spell\(([^)]+)\)`)

// ParseCastListing extracts cast lines from a formatted listing.
// Headers, footers and any other non-matching lines are skipped.
func ParseCastListing(text string) ([]models.CastLine, error) {
	events := make([]models.CastLine, 0)

	for i, line := range splitLines(text) {
		m := castLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		seconds, err := ParseClock(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		events = append(events, models.CastLine{
			Time:        m[1],
			TimeSeconds: seconds,
			SpellID:     m[2],
			SpellName:   m[3],
		})
	}

	SortByTime(events)
	return events, nil
}
