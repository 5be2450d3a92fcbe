package note

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/parser"
)

const (
	noCastData        = "No cast data available"
	noCastEventsFound = "No cast events found for this fight."
	unknownSpell      = "Unknown"
)

// FormatOptions controls how a cast listing is rendered.
type FormatOptions struct {
	// FilterEnabled keeps only events whose spell ID appears in Filters.
	FilterEnabled bool
	// Filters supplies the spell ID whitelist and custom display names.
	// Names apply whether or not filtering is enabled.
	Filters []models.SpellFilter
}

// FormatCastData renders fetched cast events as the stage-1 listing:
//
//	Report: <title>
//	Fight: <name> (<duration>)
//	Data retrieved from N page(s)
//	Total Events: N
//
//	Time(0:12) SpellID(740) Spell(Tranquility)
func FormatCastData(data *models.CastData, opts FormatOptions) string {
	if data == nil || len(data.CastEvents) == 0 {
		return noCastData
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Report: %s\n", data.ReportTitle)
	fmt.Fprintf(&sb, "Fight: %s (%s)\n", data.Fight.Name, parser.FormatMillis(data.Fight.Duration()))

	if data.PagesRetrieved > 0 {
		plural := ""
		if data.PagesRetrieved > 1 {
			plural = "s"
		}
		fmt.Fprintf(&sb, "Data retrieved from %d page%s\n", data.PagesRetrieved, plural)
	}

	names := make(map[string]string, len(opts.Filters))
	allowed := make(map[string]bool, len(opts.Filters))
	for _, f := range opts.Filters {
		allowed[f.ID] = true
		if f.Name != "" {
			names[f.ID] = f.Name
		}
	}

	events := data.CastEvents
	if opts.FilterEnabled {
		events = make([]models.CastEvent, 0, len(data.CastEvents))
		for _, ev := range data.CastEvents {
			if allowed[strconv.Itoa(ev.AbilityGameID)] {
				events = append(events, ev)
			}
		}
		fmt.Fprintf(&sb, "Total Events: %d (filtered from %d)\n\n", len(events), len(data.CastEvents))
	} else {
		suffix := ""
		if data.HasMoreEvents {
			suffix = " (maximum page limit reached, more events may be available)"
		}
		fmt.Fprintf(&sb, "Total Events: %d%s\n\n", len(events), suffix)
	}

	if len(events) == 0 {
		sb.WriteString(noCastEventsFound)
		return sb.String()
	}

	sorted := make([]models.CastEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	for _, ev := range sorted {
		spellID := unknownSpell
		if ev.AbilityGameID != 0 {
			spellID = strconv.Itoa(ev.AbilityGameID)
		}

		name, ok := names[spellID]
		if !ok {
			name = ev.AbilityName
		}
		if name == "" {
			name = unknownSpell
		}

		fmt.Fprintf(&sb, "Time(%s) SpellID(%s) Spell(%s)\n",
			parser.FormatMillis(ev.Timestamp-data.Fight.StartTime), spellID, name)
	}

	if data.HasMoreEvents && !opts.FilterEnabled {
		sb.WriteString("\n(Note: Maximum page limit reached, more events may be available.)")
	}

	return sb.String()
}
