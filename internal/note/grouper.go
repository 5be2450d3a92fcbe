// Package note turns cast listings into MRT timeline notes.
package note

import (
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/parser"
)

// DefaultWindowSeconds is the grouping window used when none is configured.
const DefaultWindowSeconds = 5

// Group clusters time-sorted events into groups anchored at their first
// member. An event joins the open group while it is within window seconds of
// the anchor; the anchor itself never moves, so a slow trickle of casts two
// seconds apart still splits every window+1 seconds.
func Group[T parser.Timed](events []T, window int) []models.EventGroup[T] {
	groups := make([]models.EventGroup[T], 0)
	if len(events) == 0 {
		return groups
	}

	current := models.EventGroup[T]{Anchor: events[0].Seconds()}
	for _, ev := range events {
		t := ev.Seconds()
		if len(current.Events) > 0 && abs(t-current.Anchor) > window {
			groups = append(groups, current)
			current = models.EventGroup[T]{Anchor: t}
		}
		current.Events = append(current.Events, ev)
	}
	groups = append(groups, current)

	return groups
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
