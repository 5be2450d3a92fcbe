package rules

// UnknownClass is what unresolved spell IDs resolve to.
const UnknownClass = "Unknown"

// PlayerLookup maps a class name to the player assigned to it.
type PlayerLookup interface {
	PlayerFor(className string) (string, bool)
}

// Resolver turns spell IDs into the names written into the MRT note.
// It never fails: unknown spells become UnknownClass and unmapped classes
// are shown as the class name.
type Resolver struct {
	ruleset *Ruleset
	players PlayerLookup
}

// NewResolver creates a resolver. players may be nil.
func NewResolver(rs *Ruleset, players PlayerLookup) *Resolver {
	return &Resolver{ruleset: rs, players: players}
}

// ResolveClass returns the class for a spell ID, or UnknownClass.
func (r *Resolver) ResolveClass(spellID string) string {
	if r.ruleset != nil {
		if class, ok := r.ruleset.ClassFor(spellID); ok {
			return class
		}
	}
	return UnknownClass
}

// ResolveDisplayName returns the player mapped to className, or className itself.
func (r *Resolver) ResolveDisplayName(className string) string {
	if r.players != nil {
		if name, ok := r.players.PlayerFor(className); ok {
			return name
		}
	}
	return className
}

// DisplayNameForSpell chains ResolveClass and ResolveDisplayName.
func (r *Resolver) DisplayNameForSpell(spellID string) string {
	return r.ResolveDisplayName(r.ResolveClass(spellID))
}
