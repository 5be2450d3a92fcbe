package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/models"
)

// duckSchema uses sequences so rows list in the order they were first added.
var duckSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS spells_seq START 1`,
	`CREATE TABLE IF NOT EXISTS spells (
		id       VARCHAR PRIMARY KEY,
		name     VARCHAR NOT NULL DEFAULT '',
		position BIGINT NOT NULL DEFAULT nextval('spells_seq')
	)`,
	`CREATE SEQUENCE IF NOT EXISTS class_mappings_seq START 1`,
	`CREATE TABLE IF NOT EXISTS class_mappings (
		class_name  VARCHAR PRIMARY KEY,
		player_name VARCHAR NOT NULL,
		position    BIGINT NOT NULL DEFAULT nextval('class_mappings_seq')
	)`,
}

// DuckStore is the default Store, backed by a DuckDB file.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) a DuckDB database at dbPath.
// An empty path opens an in-memory database.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	logger.Info("[DuckStore] Opening database at: %s", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				logger.Warn("[DuckStore] Pragma warning: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	for _, stmt := range duckSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

func (ds *DuckStore) ListSpells(ctx context.Context) ([]models.SpellFilter, error) {
	rows, err := ds.db.QueryContext(ctx, `SELECT id, name FROM spells ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list spells: %w", err)
	}
	defer rows.Close()

	spells := make([]models.SpellFilter, 0)
	for rows.Next() {
		var s models.SpellFilter
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		spells = append(spells, s)
	}
	return spells, rows.Err()
}

func (ds *DuckStore) AddSpell(ctx context.Context, id, name string) error {
	_, err := ds.db.ExecContext(ctx,
		`INSERT INTO spells (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`, id, name)
	if err != nil {
		return fmt.Errorf("add spell %s: %w", id, err)
	}
	return nil
}

func (ds *DuckStore) RemoveSpell(ctx context.Context, id string) error {
	return ds.deleteOne(ctx, `DELETE FROM spells WHERE id = ?`, id)
}

func (ds *DuckStore) ClearSpells(ctx context.Context) error {
	_, err := ds.db.ExecContext(ctx, `DELETE FROM spells`)
	return err
}

func (ds *DuckStore) ListClassMappings(ctx context.Context) ([]models.ClassMapping, error) {
	rows, err := ds.db.QueryContext(ctx, `SELECT class_name, player_name FROM class_mappings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list class mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]models.ClassMapping, 0)
	for rows.Next() {
		var m models.ClassMapping
		if err := rows.Scan(&m.ClassName, &m.PlayerName); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (ds *DuckStore) SetClassMapping(ctx context.Context, className, playerName string) error {
	_, err := ds.db.ExecContext(ctx,
		`INSERT INTO class_mappings (class_name, player_name) VALUES (?, ?)
		 ON CONFLICT (class_name) DO UPDATE SET player_name = excluded.player_name`, className, playerName)
	if err != nil {
		return fmt.Errorf("set class mapping %s: %w", className, err)
	}
	return nil
}

func (ds *DuckStore) RemoveClassMapping(ctx context.Context, className string) error {
	return ds.deleteOne(ctx, `DELETE FROM class_mappings WHERE class_name = ?`, className)
}

func (ds *DuckStore) ClearClassMappings(ctx context.Context) error {
	_, err := ds.db.ExecContext(ctx, `DELETE FROM class_mappings`)
	return err
}

func (ds *DuckStore) deleteOne(ctx context.Context, query, key string) error {
	res, err := ds.db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return nil
}

// Close closes the database. The file is kept.
func (ds *DuckStore) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}
