package models

// CooldownCategory classifies a spell's raid-utility role.
type CooldownCategory string

const (
	CooldownMajor   CooldownCategory = "Major cds"
	CooldownMinor   CooldownCategory = "Minor cds"
	CooldownGroupDR CooldownCategory = "Group DR"
)

// Valid reports whether c is one of the known categories.
func (c CooldownCategory) Valid() bool {
	switch c {
	case CooldownMajor, CooldownMinor, CooldownGroupDR:
		return true
	}
	return false
}

// SpellMetadata describes a tracked cooldown for the Viserio planner.
type SpellMetadata struct {
	Name            string           `json:"name" yaml:"name"`
	WowheadLink     string           `json:"wowheadLink" yaml:"wowhead_link"`
	IconLink        string           `json:"iconLink" yaml:"icon_link"`
	PlayerSpellType CooldownCategory `json:"playerSpellType" yaml:"player_spell_type"`
	Spec            string           `json:"spec" yaml:"spec"`
	Duration        int              `json:"duration" yaml:"duration"` // seconds
	Class           string           `json:"class" yaml:"class"`
}

// SpellFilter is a user-maintained spell ID, optionally with a display name
// that overrides the API-provided ability name.
type SpellFilter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
