// Package rules holds the spell lookup tables and resolves spells to classes
// and classes to player names.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mdt-generator/backend/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_ruleset.yaml
var defaultRulesetYAML []byte

// rulesetFile mirrors the YAML layout of a ruleset.
type rulesetFile struct {
	Aliases      map[string]string               `yaml:"aliases"`
	SpellClasses map[string]string               `yaml:"spell_classes"`
	Spells       map[string]models.SpellMetadata `yaml:"spells"`
}

// Ruleset is an immutable set of spell tables. Safe for concurrent use.
type Ruleset struct {
	aliases      map[string]string
	spellClasses map[string]string
	spells       map[string]models.SpellMetadata
}

// New builds a Ruleset from copies of the given tables.
func New(aliases, spellClasses map[string]string, spells map[string]models.SpellMetadata) (*Ruleset, error) {
	rs := &Ruleset{
		aliases:      make(map[string]string, len(aliases)),
		spellClasses: make(map[string]string, len(spellClasses)),
		spells:       make(map[string]models.SpellMetadata, len(spells)),
	}
	for k, v := range aliases {
		rs.aliases[k] = v
	}
	for k, v := range spellClasses {
		rs.spellClasses[k] = v
	}
	for k, v := range spells {
		rs.spells[k] = v
	}

	if err := rs.validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

var (
	defaultOnce    sync.Once
	defaultRuleset *Ruleset
	defaultErr     error
)

// Default returns the built-in ruleset, parsed once.
func Default() (*Ruleset, error) {
	defaultOnce.Do(func() {
		defaultRuleset, defaultErr = LoadFromReader(bytes.NewReader(defaultRulesetYAML))
		if defaultErr != nil {
			defaultErr = fmt.Errorf("built-in ruleset: %w", defaultErr)
		}
	})
	return defaultRuleset, defaultErr
}

// MustDefault is Default for callers that cannot recover from a broken build.
func MustDefault() *Ruleset {
	rs, err := Default()
	if err != nil {
		panic(err)
	}
	return rs
}

// Load reads a ruleset from a YAML file.
func Load(filePath string) (*Ruleset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader parses a ruleset from an io.Reader.
func LoadFromReader(r io.Reader) (*Ruleset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var f rulesetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset: %w", err)
	}

	return New(f.Aliases, f.SpellClasses, f.Spells)
}

// LoadOrDefault loads filePath, or the built-in ruleset when filePath is empty.
func LoadOrDefault(filePath string) (*Ruleset, error) {
	if filePath == "" {
		return Default()
	}
	return Load(filePath)
}

func (rs *Ruleset) validate() error {
	for id, meta := range rs.spells {
		if meta.Name == "" {
			return fmt.Errorf("spell %s: name is required", id)
		}
		if !meta.PlayerSpellType.Valid() {
			return fmt.Errorf("spell %s: unknown player_spell_type %q", id, meta.PlayerSpellType)
		}
		if meta.Duration < 0 {
			return fmt.Errorf("spell %s: duration must not be negative", id)
		}
	}
	for from, to := range rs.aliases {
		if from == to {
			return fmt.Errorf("alias %s points to itself", from)
		}
		if _, ok := rs.aliases[to]; ok {
			return fmt.Errorf("alias %s -> %s is chained", from, to)
		}
	}
	return nil
}

// Canonical applies the alias table to a spell ID.
func (rs *Ruleset) Canonical(spellID string) string {
	if to, ok := rs.aliases[spellID]; ok {
		return to
	}
	return spellID
}

// ClassFor returns the class a spell belongs to in the note table.
func (rs *Ruleset) ClassFor(spellID string) (string, bool) {
	class, ok := rs.spellClasses[spellID]
	return class, ok
}

// Metadata returns the Viserio metadata for a spell ID. Aliases are not applied.
func (rs *Ruleset) Metadata(spellID string) (models.SpellMetadata, bool) {
	meta, ok := rs.spells[spellID]
	return meta, ok
}

// Counts reports the table sizes.
func (rs *Ruleset) Counts() (aliases, spellClasses, spells int) {
	return len(rs.aliases), len(rs.spellClasses), len(rs.spells)
}
