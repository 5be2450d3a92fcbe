package parser

import (
	"testing"
)

func TestParseNote(t *testing.T) {
	t.Run("round trip of a formatted line", func(t *testing.T) {
		entries, err := ParseNote("{time:1:30}1:30 - Priestname {spell:64843}")
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(entries))
		}
		e := entries[0]
		if e.Time != "1:30" || e.PlayerName != "Priestname" || e.SpellID != "64843" || e.TimeSeconds != 90 {
			t.Errorf("unexpected entry: %+v", e)
		}
	})

	t.Run("multiple segments on one line", func(t *testing.T) {
		entries, err := ParseNote("{time:0:10}0:10 - Treehugger {spell:740} - Holybro {spell:31821} - Shammy {spell:98008}")
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("Expected 3 entries, got %d", len(entries))
		}
		want := []string{"Treehugger", "Holybro", "Shammy"}
		for i, e := range entries {
			if e.PlayerName != want[i] {
				t.Errorf("entry %d: got %s, want %s", i, e.PlayerName, want[i])
			}
			if e.TimeSeconds != 10 {
				t.Errorf("entry %d: got %ds, want 10s", i, e.TimeSeconds)
			}
		}
	})

	t.Run("unicode player names", func(t *testing.T) {
		entries, err := ParseNote("{time:2:00}2:00 - Élunë {spell:64843} - Þórr {spell:740}")
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		if len(entries) != 2 || entries[0].PlayerName != "Élunë" || entries[1].PlayerName != "Þórr" {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("two-word class fallback keeps last word", func(t *testing.T) {
		entries, err := ParseNote("{time:0:30}0:30 - Demon Hunter {spell:196718}")
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		if len(entries) != 1 || entries[0].PlayerName != "Hunter" {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("lines without marker are skipped entirely", func(t *testing.T) {
		text := `Phase 1
Treehugger {spell:740}
  {time:0:05}0:05 - Treehugger {spell:740}
note: {time:0:06}0:06 - Holybro {spell:31821}`
		entries, err := ParseNote(text)
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		if len(entries) != 1 || entries[0].TimeSeconds != 5 {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("marker without segments yields nothing", func(t *testing.T) {
		entries, err := ParseNote("{time:0:05}0:05")
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected no entries, got %d", len(entries))
		}
	})

	t.Run("output is time sorted and stable", func(t *testing.T) {
		text := `{time:1:00}1:00 - Alpha {spell:1} - Bravo {spell:2}
{time:0:30}0:30 - Charlie {spell:3}
{time:1:00}1:00 - Delta {spell:4}`
		entries, err := ParseNote(text)
		if err != nil {
			t.Fatalf("ParseNote failed: %v", err)
		}
		want := []string{"Charlie", "Alpha", "Bravo", "Delta"}
		if len(entries) != len(want) {
			t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
		}
		for i, e := range entries {
			if e.PlayerName != want[i] {
				t.Errorf("position %d: got %s, want %s", i, e.PlayerName, want[i])
			}
		}
	})
}
