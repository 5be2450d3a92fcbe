// Package storage persists the user-maintained spell filter and the
// class-to-player mapping.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mdt-generator/backend/internal/models"
)

// ErrNotFound is returned when removing a spell or mapping that does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations. Listings preserve insertion
// order; upserts keep an existing row's position.
type Store interface {
	ListSpells(ctx context.Context) ([]models.SpellFilter, error)
	// AddSpell inserts a spell or updates the name of an existing one.
	AddSpell(ctx context.Context, id, name string) error
	RemoveSpell(ctx context.Context, id string) error
	ClearSpells(ctx context.Context) error

	ListClassMappings(ctx context.Context) ([]models.ClassMapping, error)
	// SetClassMapping inserts a mapping or replaces the player of an existing one.
	SetClassMapping(ctx context.Context, className, playerName string) error
	RemoveClassMapping(ctx context.Context, className string) error
	ClearClassMappings(ctx context.Context) error

	Close() error
}

const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// Open creates a store for the given driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverDuckDB, "":
		return NewDuckStore(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown storage driver: %s", driver)
}

// ClassMappingSnapshot loads the mappings into a lookup for one conversion.
func ClassMappingSnapshot(ctx context.Context, s Store) (models.ClassMappings, error) {
	list, err := s.ListClassMappings(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewClassMappings(list), nil
}
