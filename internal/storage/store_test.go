package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	duck, err := Open(DriverDuckDB, filepath.Join(dir, "test.duckdb"))
	require.NoError(t, err)
	lite, err := Open(DriverSQLite, filepath.Join(dir, "test.sqlite"))
	require.NoError(t, err)

	t.Cleanup(func() {
		duck.Close()
		lite.Close()
	})
	return map[string]Store{DriverDuckDB: duck, DriverSQLite: lite}
}

func TestStore_Spells(t *testing.T) {
	ctx := context.Background()

	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			spells, err := s.ListSpells(ctx)
			require.NoError(t, err)
			assert.Empty(t, spells)
			assert.NotNil(t, spells)

			require.NoError(t, s.AddSpell(ctx, "740", ""))
			require.NoError(t, s.AddSpell(ctx, "64843", "Hymn"))
			require.NoError(t, s.AddSpell(ctx, "31821", "Aura Mastery"))

			// upsert keeps position
			require.NoError(t, s.AddSpell(ctx, "740", "Tranq"))

			spells, err = s.ListSpells(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.SpellFilter{
				{ID: "740", Name: "Tranq"},
				{ID: "64843", Name: "Hymn"},
				{ID: "31821", Name: "Aura Mastery"},
			}, spells)

			require.NoError(t, s.RemoveSpell(ctx, "64843"))
			err = s.RemoveSpell(ctx, "64843")
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

			require.NoError(t, s.ClearSpells(ctx))
			spells, err = s.ListSpells(ctx)
			require.NoError(t, err)
			assert.Empty(t, spells)
		})
	}
}

func TestStore_ClassMappings(t *testing.T) {
	ctx := context.Background()

	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SetClassMapping(ctx, "Druid", "Treehugger"))
			require.NoError(t, s.SetClassMapping(ctx, "Priest", "Holyguy"))
			require.NoError(t, s.SetClassMapping(ctx, "Druid", "Barkskin"))

			mappings, err := s.ListClassMappings(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.ClassMapping{
				{ClassName: "Druid", PlayerName: "Barkskin"},
				{ClassName: "Priest", PlayerName: "Holyguy"},
			}, mappings)

			snapshot, err := ClassMappingSnapshot(ctx, s)
			require.NoError(t, err)
			player, ok := snapshot.PlayerFor("Priest")
			assert.True(t, ok)
			assert.Equal(t, "Holyguy", player)

			assert.ErrorIs(t, s.RemoveClassMapping(ctx, "Mage"), ErrNotFound)
			require.NoError(t, s.RemoveClassMapping(ctx, "Druid"))

			require.NoError(t, s.ClearClassMappings(ctx))
			mappings, err = s.ListClassMappings(ctx)
			require.NoError(t, err)
			assert.Empty(t, mappings)
		})
	}
}

func TestDuckStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.duckdb")

	s, err := NewDuckStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AddSpell(ctx, "740", "Tranq"))
	require.NoError(t, s.Close())

	s, err = NewDuckStore(path)
	require.NoError(t, err)
	defer s.Close()

	// new rows keep sorting after rows from the previous session
	require.NoError(t, s.AddSpell(ctx, "1", ""))
	spells, err := s.ListSpells(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SpellFilter{{ID: "740", Name: "Tranq"}, {ID: "1"}}, spells)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}
