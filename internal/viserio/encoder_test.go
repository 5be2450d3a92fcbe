package viserio

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialGUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("guid-%d", n)
	}
}

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	rs, err := rules.Default()
	require.NoError(t, err)
	return NewEncoder(rs, sequentialGUIDs())
}

func TestConvert_NoEntries(t *testing.T) {
	enc := newTestEncoder(t)

	for _, input := range []string{"", "just some text\nand more", "{time:0:10}0:10"} {
		_, err := enc.Convert(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, ErrNoEntries))

		var noEntries *NoEntriesError
		require.True(t, errors.As(err, &noEntries))
		assert.Equal(t, 0, noEntries.Parsed)
	}
}

func TestConvert_AllEntriesSkipped(t *testing.T) {
	enc := newTestEncoder(t)

	_, err := enc.Convert("{time:0:10}0:10 - Someone {spell:1}\n{time:0:20}0:20 - Other {spell:2}\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntries)

	var noEntries *NoEntriesError
	require.ErrorAs(t, err, &noEntries)
	assert.Equal(t, 2, noEntries.Parsed)
	assert.Equal(t, 2, noEntries.Skipped)
}

func TestConvert_MalformedTimestamp(t *testing.T) {
	enc := newTestEncoder(t)
	// The marker grammar only admits digits, so a malformed time never parses.
	_, err := enc.Convert("{time:a:10}a:10 - Someone {spell:740}\n")
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestConvert_AscendanceRemap(t *testing.T) {
	enc := newTestEncoder(t)

	res, err := enc.Convert("{time:1:00}1:00 - Stormy {spell:114052}\n")
	require.NoError(t, err)
	require.Len(t, res.Players, 1)
	require.Len(t, res.Players[0].Spells, 1)

	spell := res.Players[0].Spells[0]
	assert.Equal(t, 114049, spell.Spell.SpellID)
	assert.Equal(t, "Ascendance", spell.Spell.SpellName)
	assert.Equal(t, "Shaman", res.Players[0].PlayerClass)
	assert.Equal(t, 60, spell.StartTime)
	assert.Empty(t, res.Skipped)
}

func TestMap(t *testing.T) {
	enc := newTestEncoder(t)
	entries := []models.NoteEntry{
		{Time: "0:10", TimeSeconds: 10, PlayerName: "Multi", SpellID: "64843"},
		{Time: "0:12", TimeSeconds: 12, PlayerName: "Tree", SpellID: "740"},
		{Time: "0:30", TimeSeconds: 30, PlayerName: "Multi", SpellID: "740"},
		{Time: "0:40", TimeSeconds: 40, PlayerName: "Tree", SpellID: "424242"},
	}

	players, skipped := enc.Map(entries)
	require.Len(t, players, 2)

	t.Run("first seen order", func(t *testing.T) {
		assert.Equal(t, "Multi", players[0].Name)
		assert.Equal(t, "Tree", players[1].Name)
	})

	t.Run("class from first spell", func(t *testing.T) {
		assert.Equal(t, "Priest", players[0].PlayerClass)
		assert.Equal(t, "Holy", players[0].PlayerSpec)
		require.Len(t, players[0].Spells, 2)
		assert.Equal(t, "Restoration", players[0].Spells[1].Spec)
	})

	t.Run("spell entry fields", func(t *testing.T) {
		s := players[1].Spells[0]
		assert.Equal(t, 740, s.Spell.SpellID)
		assert.Equal(t, DefaultCooldown, s.Spell.Cooldown)
		assert.Equal(t, "Tree", s.Actor)
		assert.Equal(t, 12, s.StartTime)
		assert.Equal(t, models.CooldownMajor, s.PlayerSpellType)
		assert.NotNil(t, s.Spell.Checks)
		assert.NotNil(t, s.Notes)
		assert.Equal(t, "guid-2", s.GUID)
	})

	t.Run("skipped", func(t *testing.T) {
		require.Len(t, skipped, 1)
		assert.Equal(t, "424242", skipped[0].Entry.SpellID)
		assert.Contains(t, skipped[0].Reason, "424242")
	})
}

func TestConvert_DefaultGUIDs(t *testing.T) {
	rs, err := rules.Default()
	require.NoError(t, err)
	enc := NewEncoder(rs, nil)

	res, err := enc.Convert("{time:0:10}0:10 - A {spell:740} - B {spell:64843}\n")
	require.NoError(t, err)

	guidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	seen := map[string]bool{}
	for _, p := range res.Players {
		for _, s := range p.Spells {
			assert.Regexp(t, guidRegex, s.GUID)
			assert.False(t, seen[s.GUID], "duplicate guid %s", s.GUID)
			seen[s.GUID] = true
		}
	}
	assert.Len(t, seen, 2)
}

func TestEncode_WireFormat(t *testing.T) {
	enc := newTestEncoder(t)
	res, err := enc.Convert("{time:0:00}0:00 - Stormy {spell:114052}\n")
	require.NoError(t, err)
	raw := res.Raw

	// one-element array holding a five-key map starting with "name"
	assert.True(t, bytes.HasPrefix(raw, []byte{0x91, 0x85, 0xa4, 'n', 'a', 'm', 'e'}), "prefix % x", raw[:8])

	cooldown := append([]byte{0xa8}, "cooldown"...)
	assert.True(t, bytes.Contains(raw, append(cooldown, 0xcc, 0xb4)), "cooldown not packed as uint8")

	spellID := append([]byte{0xa7}, "spellId"...)
	assert.True(t, bytes.Contains(raw, append(spellID, 0xce, 0x00, 0x01, 0xbd, 0x81)), "spellId not packed as uint32")

	checks := append([]byte{0xa6}, "checks"...)
	assert.True(t, bytes.Contains(raw, append(checks, 0x80)), "checks not an empty map")

	notes := append([]byte{0xa5}, "notes"...)
	assert.True(t, bytes.Contains(raw, append(notes, 0x90)), "notes not an empty array")

	startTime := append([]byte{0xa9}, "startTime"...)
	assert.True(t, bytes.Contains(raw, append(startTime, 0x00)), "startTime not a positive fixint")

	// field order of the inner spell record
	order := []string{"spellId", "spellName", "wowheadLink", "iconLink", "note", "checks", "cooldown", "duration"}
	last := -1
	for _, key := range order {
		i := bytes.Index(raw, append([]byte{byte(0xa0 | len(key))}, key...))
		require.GreaterOrEqual(t, i, 0, "key %s missing", key)
		assert.Greater(t, i, last, "key %s out of order", key)
		last = i
	}
}

func TestEncode_Str8ForLongStrings(t *testing.T) {
	rs, err := rules.Default()
	require.NoError(t, err)
	enc := NewEncoder(rs, func() string { return "6f1c0e5a-3b9d-4c2e-8a7f-1d2e3f4a5b6c" })

	players, _ := enc.Map([]models.NoteEntry{{TimeSeconds: 1, PlayerName: "P", SpellID: "740"}})
	raw, err := Marshal(players)
	require.NoError(t, err)

	guid := players[0].Spells[0].GUID
	require.Len(t, guid, 36)
	assert.True(t, bytes.Contains(raw, append([]byte{0xd9, 36}, guid...)), "36 byte string not packed as str8")
}

func TestEncodeDecode(t *testing.T) {
	enc := newTestEncoder(t)
	res, err := enc.Convert("{time:0:05}0:05 - Tree {spell:740}\n{time:1:05}1:05 - Tree {spell:33891}\n")
	require.NoError(t, err)

	data, err := enc.Encode(res.Players)
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Tree", decoded[0].Name)
	require.Len(t, decoded[0].Spells, 2)
	assert.Equal(t, 65, decoded[0].Spells[1].StartTime)
	assert.Equal(t, 33891, decoded[0].Spells[1].Spell.SpellID)

	_, err = Decode("not base64!")
	assert.Error(t, err)
}
