package storage

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/mdt-generator/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// spellRow is the gorm model for the spell filter. ID is the autoincrement
// position; SpellID is the natural key.
type spellRow struct {
	ID      uint   `gorm:"primaryKey"`
	SpellID string `gorm:"uniqueIndex;size:32;not null"`
	Name    string `gorm:"size:255"`
}

func (spellRow) TableName() string { return "spells" }

type classMappingRow struct {
	ID         uint   `gorm:"primaryKey"`
	ClassName  string `gorm:"uniqueIndex;size:64;not null"`
	PlayerName string `gorm:"size:255;not null"`
}

func (classMappingRow) TableName() string { return "class_mappings" }

// SQLiteStore is a Store backed by SQLite through gorm, for hosts where
// DuckDB's cgo build is unavailable.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&spellRow{}, &classMappingRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListSpells(ctx context.Context) ([]models.SpellFilter, error) {
	var rows []spellRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list spells: %w", err)
	}
	spells := make([]models.SpellFilter, len(rows))
	for i, r := range rows {
		spells[i] = models.SpellFilter{ID: r.SpellID, Name: r.Name}
	}
	return spells, nil
}

func (s *SQLiteStore) AddSpell(ctx context.Context, id, name string) error {
	row := spellRow{SpellID: id, Name: name}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spell_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("add spell %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveSpell(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("spell_id = ?", id).Delete(&spellRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ClearSpells(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&spellRow{}).Error
}

func (s *SQLiteStore) ListClassMappings(ctx context.Context) ([]models.ClassMapping, error) {
	var rows []classMappingRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list class mappings: %w", err)
	}
	mappings := make([]models.ClassMapping, len(rows))
	for i, r := range rows {
		mappings[i] = models.ClassMapping{ClassName: r.ClassName, PlayerName: r.PlayerName}
	}
	return mappings, nil
}

func (s *SQLiteStore) SetClassMapping(ctx context.Context, className, playerName string) error {
	row := classMappingRow{ClassName: className, PlayerName: playerName}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"player_name"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set class mapping %s: %w", className, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveClassMapping(ctx context.Context, className string) error {
	res := s.db.WithContext(ctx).Where("class_name = ?", className).Delete(&classMappingRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", className, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ClearClassMappings(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&classMappingRow{}).Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
