// mock_storage.go - In-memory storage implementation for testing
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/storage"
)

// MockStorage implements storage.Store in memory, preserving insertion order.
type MockStorage struct {
	mu       sync.RWMutex
	spells   []models.SpellFilter
	mappings []models.ClassMapping

	// Err, when set, is returned by every operation.
	Err error
}

var _ storage.Store = (*MockStorage)(nil)

// NewMockStorage creates an empty mock store
func NewMockStorage() *MockStorage {
	return &MockStorage{
		spells:   make([]models.SpellFilter, 0),
		mappings: make([]models.ClassMapping, 0),
	}
}

func (m *MockStorage) ListSpells(ctx context.Context) ([]models.SpellFilter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.SpellFilter, len(m.spells))
	copy(out, m.spells)
	return out, nil
}

func (m *MockStorage) AddSpell(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.spells {
		if m.spells[i].ID == id {
			m.spells[i].Name = name
			return nil
		}
	}
	m.spells = append(m.spells, models.SpellFilter{ID: id, Name: name})
	return nil
}

func (m *MockStorage) RemoveSpell(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.spells {
		if m.spells[i].ID == id {
			m.spells = append(m.spells[:i], m.spells[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", id, storage.ErrNotFound)
}

func (m *MockStorage) ClearSpells(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.spells = m.spells[:0]
	return nil
}

func (m *MockStorage) ListClassMappings(ctx context.Context) ([]models.ClassMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.ClassMapping, len(m.mappings))
	copy(out, m.mappings)
	return out, nil
}

func (m *MockStorage) SetClassMapping(ctx context.Context, className, playerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.mappings {
		if m.mappings[i].ClassName == className {
			m.mappings[i].PlayerName = playerName
			return nil
		}
	}
	m.mappings = append(m.mappings, models.ClassMapping{ClassName: className, PlayerName: playerName})
	return nil
}

func (m *MockStorage) RemoveClassMapping(ctx context.Context, className string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.mappings {
		if m.mappings[i].ClassName == className {
			m.mappings = append(m.mappings[:i], m.mappings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", className, storage.ErrNotFound)
}

func (m *MockStorage) ClearClassMappings(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.mappings = m.mappings[:0]
	return nil
}

func (m *MockStorage) Close() error { return nil }

// SpellCount returns the number of stored spells
func (m *MockStorage) SpellCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.spells)
}
