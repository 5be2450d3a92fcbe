package models

// ClassMapping assigns a player name to a class.
type ClassMapping struct {
	ClassName  string `json:"className"`
	PlayerName string `json:"playerName"`
}

// ClassMappings is a read-only className -> playerName snapshot.
type ClassMappings map[string]string

// NewClassMappings builds a lookup from a mapping list. Later entries win.
func NewClassMappings(list []ClassMapping) ClassMappings {
	m := make(ClassMappings, len(list))
	for _, cm := range list {
		m[cm.ClassName] = cm.PlayerName
	}
	return m
}

// PlayerFor returns the mapped player name for a class.
func (m ClassMappings) PlayerFor(className string) (string, bool) {
	name, ok := m[className]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
