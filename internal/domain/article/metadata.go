package article

import "fmt"

// Metadata is the editorial record attached to an article id in the rule
// tables. Every field is optional; Lookup fills the gaps with defaults.
type Metadata struct {
	ID       string
	Numero   string
	Tome     string
	Title    string
	Section  string
	Priority *int
	Type     Type
}

// EffectivePriority returns the editorial priority or DefaultPriority.
func (m Metadata) EffectivePriority() int {
	if m.Priority == nil {
		return DefaultPriority
	}
	return *m.Priority
}

// EffectiveType returns the article type or TypeApplication.
func (m Metadata) EffectiveType() Type {
	if m.Type == "" {
		return TypeApplication
	}
	return m.Type
}

// MetadataIndex is the merged per-version metadata table.
type MetadataIndex map[string]Metadata

// Lookup returns the metadata of id, or a default record when it is unknown.
func (idx MetadataIndex) Lookup(id string) Metadata {
	if m, ok := idx[id]; ok {
		return m
	}
	return Metadata{ID: id}
}

// Merge adds entries from other. An id defined twice is a configuration error.
func (idx MetadataIndex) Merge(other MetadataIndex) error {
	for id, m := range other {
		if _, dup := idx[id]; dup {
			return fmt.Errorf("article %q has metadata in more than one table", id)
		}
		idx[id] = m
	}
	return nil
}
