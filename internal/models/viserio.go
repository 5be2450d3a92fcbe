package models

// ViserioPlayer is one roster row in the Viserio planner export.
// Field order is the wire order.
type ViserioPlayer struct {
	Name        string              `json:"name" msgpack:"name"`
	PlayerClass string              `json:"playerClass" msgpack:"playerClass"`
	PlayerSpec  string              `json:"playerSpec" msgpack:"playerSpec"`
	Spells      []ViserioSpellEntry `json:"spells" msgpack:"spells"`
	Notes       []string            `json:"notes" msgpack:"notes"`
}

// ViserioSpellEntry is a single planned cast on the timeline.
type ViserioSpellEntry struct {
	Spell           ViserioSpell     `json:"spell" msgpack:"spell"`
	PlayerSpellType CooldownCategory `json:"playerSpellType" msgpack:"playerSpellType"`
	GUID            string           `json:"guid" msgpack:"guid"`
	StartTime       int              `json:"startTime" msgpack:"startTime"`
	Actor           string           `json:"actor" msgpack:"actor"`
	Spec            string           `json:"spec" msgpack:"spec"`
	Notes           []string         `json:"notes" msgpack:"notes"`
}

// ViserioSpell carries the per-cast spell record.
type ViserioSpell struct {
	SpellID     int            `json:"spellId" msgpack:"spellId"`
	SpellName   string         `json:"spellName" msgpack:"spellName"`
	WowheadLink string         `json:"wowheadLink" msgpack:"wowheadLink"`
	IconLink    string         `json:"iconLink" msgpack:"iconLink"`
	Note        string         `json:"note" msgpack:"note"`
	Checks      map[string]any `json:"checks" msgpack:"checks"`
	Cooldown    int            `json:"cooldown" msgpack:"cooldown"`
	Duration    int            `json:"duration" msgpack:"duration"`
}
