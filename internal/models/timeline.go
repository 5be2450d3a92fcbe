package models

// CastLine is one event parsed from a cast listing ("Time(1:30) SpellID(740) Spell(Tranquility)").
type CastLine struct {
	Time        string `json:"time"` // verbatim M:SS
	TimeSeconds int    `json:"timeSeconds"`
	SpellID     string `json:"spellId"`
	SpellName   string `json:"spellName"`
}

// Seconds returns the event offset into the fight.
func (c CastLine) Seconds() int { return c.TimeSeconds }

// NoteEntry is one (player, spell) pair parsed from an MRT note line.
type NoteEntry struct {
	Time        string `json:"time"`
	TimeSeconds int    `json:"timeSeconds"`
	PlayerName  string `json:"playerName"`
	SpellID     string `json:"spellId"`
}

// Seconds returns the event offset into the fight.
func (n NoteEntry) Seconds() int { return n.TimeSeconds }

// EventGroup is a run of events that share one anchor time.
// Anchor is the first member's time and never moves once the group is opened.
type EventGroup[T any] struct {
	Anchor int `json:"anchor"`
	Events []T `json:"events"`
}
