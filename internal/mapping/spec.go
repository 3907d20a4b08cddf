// Package mapping describes how source columns map onto graph entities and
// relationships, infers such mappings from column names, validates them
// against a record set, and round-trips them through template files.
package mapping

import "sort"

// EntityRule maps one entity type: which column carries the unique key and
// which columns feed which canonical properties.
type EntityRule struct {
	// IdentifierColumn is the source column whose value becomes the
	// entity's unique key.
	IdentifierColumn string `yaml:"identifier_column"`

	// Properties maps canonical property name to source column name.
	Properties map[string]string `yaml:"properties,omitempty"`
}

// RelationshipRule maps one relationship type between two entity types
// declared in the same Spec.
type RelationshipRule struct {
	Type       string `yaml:"type"`
	SourceType string `yaml:"source_type"`
	TargetType string `yaml:"target_type"`

	// Column holds the target identifier(s) for each row.
	Column string `yaml:"column"`

	// Delimiter splits multi-valued cells. Empty means the column holds
	// exactly one value.
	Delimiter string `yaml:"delimiter,omitempty"`
}

// Spec is a complete column-to-graph mapping. Entities are keyed by entity
// type. A Spec is never mutated after creation.
type Spec struct {
	Name          string                `yaml:"name,omitempty"`
	Entities      map[string]EntityRule `yaml:"entities"`
	Relationships []RelationshipRule    `yaml:"relationships,omitempty"`
}

// EntityTypes returns the entity types in sorted order, so every consumer
// walks the spec deterministically.
func (s *Spec) EntityTypes() []string {
	types := make([]string, 0, len(s.Entities))
	for t := range s.Entities {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsEmpty reports whether the spec identifies no entities at all.
func (s *Spec) IsEmpty() bool {
	return len(s.Entities) == 0
}
