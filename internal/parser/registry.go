package parser

import (
	"fmt"
	"strings"
)

// Grammar is one of the line formats the pipeline understands.
type Grammar interface {
	// Name returns the unique name of the grammar.
	Name() string
	// Match reports whether a single line belongs to this grammar.
	Match(line string) bool
}

const (
	GrammarCastListing = "cast_listing"
	GrammarNote        = "mrt_note"
)

// detectSampleLines caps how many non-blank lines Detect inspects.
const detectSampleLines = 50

type castListingGrammar struct{}

func (castListingGrammar) Name() string { return GrammarCastListing }

func (castListingGrammar) Match(line string) bool {
	return castLineRegex.MatchString(line)
}

type noteGrammar struct{}

func (noteGrammar) Name() string { return GrammarNote }

func (noteGrammar) Match(line string) bool {
	return noteTimeRegex.MatchString(strings.TrimSpace(line))
}

// Registry holds the known grammars and picks one for a block of text.
type Registry struct {
	grammars []Grammar
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		grammars: []Grammar{
			castListingGrammar{},
			noteGrammar{},
		},
	}
}

// Detect returns the grammar matching the most of the first sampled lines.
// Ties go to the grammar registered first.
func (r *Registry) Detect(text string) (Grammar, error) {
	counts := make([]int, len(r.grammars))
	checked := 0

	for _, line := range splitLines(text) {
		if checked >= detectSampleLines {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		checked++
		for i, g := range r.grammars {
			if g.Match(line) {
				counts[i]++
			}
		}
	}

	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("no known format found in %d lines", checked)
	}
	return r.grammars[best], nil
}

// GetGrammarByName returns a grammar by its name.
func (r *Registry) GetGrammarByName(name string) (Grammar, error) {
	name = strings.ToLower(name)
	for _, g := range r.grammars {
		if strings.ToLower(g.Name()) == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("grammar not found: %s", name)
}

// Detect runs detection against the global registry.
func Detect(text string) (Grammar, error) {
	return globalRegistry.Detect(text)
}

// Resolve returns the named grammar, or detects one when name is empty.
func Resolve(name, text string) (Grammar, error) {
	if strings.TrimSpace(name) == "" {
		return globalRegistry.Detect(text)
	}
	return globalRegistry.GetGrammarByName(strings.TrimSpace(name))
}
