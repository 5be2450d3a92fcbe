// Package viserio converts MRT notes into the Viserio cooldown planner's
// clipboard format: a MessagePack array of player records, base64 encoded.
package viserio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultCooldown is written for every spell; the planner recomputes it.
const DefaultCooldown = 180

// Skipped is a parsed entry that could not be mapped.
type Skipped struct {
	Entry  models.NoteEntry `json:"entry"`
	Reason string           `json:"reason"`
}

// Result is the outcome of a full conversion.
type Result struct {
	Data    string                 `json:"data"` // base64
	Raw     []byte                 `json:"-"`    // MessagePack
	Players []models.ViserioPlayer `json:"players"`
	Skipped []Skipped              `json:"skipped"`
}

// Encoder maps note entries onto Viserio players. Safe for concurrent use
// as long as newGUID is.
type Encoder struct {
	ruleset *rules.Ruleset
	newGUID func() string
}

// NewEncoder creates an encoder. A nil newGUID uses random v4 UUIDs.
func NewEncoder(rs *rules.Ruleset, newGUID func() string) *Encoder {
	if newGUID == nil {
		newGUID = uuid.NewString
	}
	return &Encoder{ruleset: rs, newGUID: newGUID}
}

// Map groups entries by player in first-seen order. A player's class and
// spec come from their first mapped spell. Entries without metadata are
// returned as skipped.
func (e *Encoder) Map(entries []models.NoteEntry) ([]models.ViserioPlayer, []Skipped) {
	players := make([]models.ViserioPlayer, 0)
	skipped := make([]Skipped, 0)
	index := make(map[string]int)

	for _, entry := range entries {
		spellID := e.ruleset.Canonical(entry.SpellID)
		if spellID != entry.SpellID {
			logger.Debug("[Viserio] Mapping spell %s to %s for %s", entry.SpellID, spellID, entry.PlayerName)
		}

		meta, ok := e.ruleset.Metadata(spellID)
		if !ok {
			logger.Info("[Viserio] No spell info for %s (original: %s) for %s, skipping", spellID, entry.SpellID, entry.PlayerName)
			skipped = append(skipped, Skipped{Entry: entry, Reason: "unknown spell " + spellID})
			continue
		}
		numericID, err := strconv.Atoi(spellID)
		if err != nil {
			skipped = append(skipped, Skipped{Entry: entry, Reason: "non-numeric spell id " + spellID})
			continue
		}

		i, seen := index[entry.PlayerName]
		if !seen {
			players = append(players, models.ViserioPlayer{
				Name:        entry.PlayerName,
				PlayerClass: meta.Class,
				PlayerSpec:  meta.Spec,
				Spells:      make([]models.ViserioSpellEntry, 0),
				Notes:       make([]string, 0),
			})
			i = len(players) - 1
			index[entry.PlayerName] = i
		}

		players[i].Spells = append(players[i].Spells, models.ViserioSpellEntry{
			Spell: models.ViserioSpell{
				SpellID:     numericID,
				SpellName:   meta.Name,
				WowheadLink: meta.WowheadLink,
				IconLink:    meta.IconLink,
				Note:        "",
				Checks:      map[string]any{},
				Cooldown:    DefaultCooldown,
				Duration:    meta.Duration,
			},
			PlayerSpellType: meta.PlayerSpellType,
			GUID:            e.newGUID(),
			StartTime:       entry.TimeSeconds,
			Actor:           entry.PlayerName,
			Spec:            meta.Spec,
			Notes:           make([]string, 0),
		})
	}

	logger.Info("[Viserio] Mapped %d players, skipped %d entries", len(players), len(skipped))
	return players, skipped
}

// Marshal packs players with minimal-width integers.
func Marshal(players []models.ViserioPlayer) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(players); err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode packs players and returns standard base64.
func (e *Encoder) Encode(players []models.ViserioPlayer) (string, error) {
	raw, err := Marshal(players)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Convert runs the whole note to Viserio pipeline.
func (e *Encoder) Convert(noteText string) (*Result, error) {
	entries, err := parser.ParseNote(noteText)
	if err != nil {
		return nil, fmt.Errorf("parse note: %w", err)
	}
	if len(entries) == 0 {
		return nil, &NoEntriesError{}
	}

	players, skipped := e.Map(entries)
	if len(players) == 0 {
		return nil, &NoEntriesError{Parsed: len(entries), Skipped: len(skipped)}
	}

	raw, err := Marshal(players)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:    base64.StdEncoding.EncodeToString(raw),
		Raw:     raw,
		Players: players,
		Skipped: skipped,
	}, nil
}

// Decode reverses Encode. Used to inspect planner strings.
func Decode(data string) ([]models.ViserioPlayer, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	var players []models.ViserioPlayer
	if err := msgpack.Unmarshal(raw, &players); err != nil {
		return nil, fmt.Errorf("msgpack decode: %w", err)
	}
	return players, nil
}
