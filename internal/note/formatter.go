package note

import (
	"fmt"
	"strings"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/rules"
)

// Format renders one note line per group:
//
//	{time:1:30}1:30 - Treehugger {spell:740} - Priest {spell:64843}
//
// The group's time is its first member's verbatim time string.
func Format(groups []models.EventGroup[models.CastLine], resolver *rules.Resolver) string {
	var sb strings.Builder

	for _, g := range groups {
		if len(g.Events) == 0 {
			continue
		}
		t := g.Events[0].Time
		fmt.Fprintf(&sb, "{time:%s}%s", t, t)
		for _, ev := range g.Events {
			name := resolver.DisplayNameForSpell(ev.SpellID)
			fmt.Fprintf(&sb, " - %s {spell:%s}", name, ev.SpellID)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// ConvertToNote parses a cast listing, groups it and renders the note.
// A window <= 0 uses DefaultWindowSeconds.
func ConvertToNote(listing string, resolver *rules.Resolver, window int) (string, error) {
	if window <= 0 {
		window = DefaultWindowSeconds
	}

	events, err := parser.ParseCastListing(listing)
	if err != nil {
		return "", fmt.Errorf("parse cast listing: %w", err)
	}

	return Format(Group(events, window), resolver), nil
}
