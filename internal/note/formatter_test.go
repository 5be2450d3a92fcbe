package note

import (
	"strings"
	"testing"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/rules"
)

const sampleListing = `Report: Raid Night
Fight: Council (4:10)
Data retrieved from 1 page
Total Events: 5

Time(0:12) SpellID(740) Spell(Tranquility)
Time(0:15) SpellID(64843) Spell(Divine Hymn)
Time(1:30) SpellID(31821) Spell(Aura Mastery)
Time(1:33) SpellID(999999) Spell(Mystery)
Time(2:00) SpellID(196718) Spell(Darkness)
`

func newResolver(t *testing.T, mappings ...models.ClassMapping) *rules.Resolver {
	t.Helper()
	rs, err := rules.Default()
	if err != nil {
		t.Fatalf("Failed to load ruleset: %v", err)
	}
	return rules.NewResolver(rs, models.NewClassMappings(mappings))
}

func TestConvertToNote(t *testing.T) {
	resolver := newResolver(t, models.ClassMapping{ClassName: "Druid", PlayerName: "Treehugger"})

	got, err := ConvertToNote(sampleListing, resolver, DefaultWindowSeconds)
	if err != nil {
		t.Fatalf("ConvertToNote failed: %v", err)
	}

	want := "{time:0:12}0:12 - Treehugger {spell:740} - Priest {spell:64843}\n" +
		"{time:1:30}1:30 - Paladin {spell:31821} - Unknown {spell:999999}\n" +
		"{time:2:00}2:00 - Demon Hunter {spell:196718}\n"
	if got != want {
		t.Errorf("ConvertToNote mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestConvertToNote_DefaultWindow(t *testing.T) {
	resolver := newResolver(t)
	listing := "Time(0:00) SpellID(740) Spell(T)\nTime(0:05) SpellID(740) Spell(T)\n"

	got, err := ConvertToNote(listing, resolver, 0)
	if err != nil {
		t.Fatalf("ConvertToNote failed: %v", err)
	}
	if strings.Count(got, "\n") != 1 {
		t.Errorf("Expected one line with the default window, got %q", got)
	}
}

func TestConvertToNote_Empty(t *testing.T) {
	got, err := ConvertToNote("Report: nothing here\n", newResolver(t), DefaultWindowSeconds)
	if err != nil {
		t.Fatalf("ConvertToNote failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty note, got %q", got)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	resolver := newResolver(t)
	events, err := parser.ParseCastListing(sampleListing)
	if err != nil {
		t.Fatalf("ParseCastListing failed: %v", err)
	}
	groups := Group(events, DefaultWindowSeconds)

	first := Format(groups, resolver)
	second := Format(groups, resolver)
	if first != second {
		t.Errorf("Format is not deterministic:\n%s\n%s", first, second)
	}
}

func TestFormat_SkipsEmptyGroups(t *testing.T) {
	groups := []models.EventGroup[models.CastLine]{
		{Anchor: 0},
		{Anchor: 3, Events: []models.CastLine{{Time: "0:03", TimeSeconds: 3, SpellID: "740"}}},
	}
	got := Format(groups, newResolver(t))
	if got != "{time:0:03}0:03 - Druid {spell:740}\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestNoteRoundTrip(t *testing.T) {
	resolver := newResolver(t,
		models.ClassMapping{ClassName: "Druid", PlayerName: "Treehugger"},
		models.ClassMapping{ClassName: "Priest", PlayerName: "Holyguy"},
	)
	text, err := ConvertToNote(sampleListing, resolver, DefaultWindowSeconds)
	if err != nil {
		t.Fatalf("ConvertToNote failed: %v", err)
	}

	entries, err := parser.ParseNote(text)
	if err != nil {
		t.Fatalf("ParseNote failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}

	want := []struct {
		name, spell string
		seconds     int
	}{
		{"Treehugger", "740", 12},
		{"Holyguy", "64843", 12},
		{"Paladin", "31821", 90},
		{"Unknown", "999999", 90},
		// "Demon Hunter" only keeps the last word
		{"Hunter", "196718", 120},
	}
	for i, w := range want {
		e := entries[i]
		if e.PlayerName != w.name || e.SpellID != w.spell || e.TimeSeconds != w.seconds {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}
}
