package mapping

import (
	"strings"

	"github.com/pharmakb/graphload/internal/tabular"
)

// Mapper infers a Spec from a record set's column names by pure pattern
// matching against its catalog. Inference is deterministic: catalog entries
// are tried in declared order and the earliest matching column wins.
type Mapper struct {
	catalog Catalog
}

// NewMapper creates a mapper over the given catalog.
func NewMapper(catalog Catalog) *Mapper {
	return &Mapper{catalog: catalog}
}

// Infer proposes a mapping for the record set. It never fails; if nothing
// matches, the returned spec is empty and validation will reject it.
func (m *Mapper) Infer(rs *tabular.RecordSet) *Spec {
	spec := &Spec{
		Name:     "inferred",
		Entities: make(map[string]EntityRule),
	}

	for _, def := range m.catalog.Entities {
		idCol, ok := firstMatch(rs, def.IdentifierPatterns)
		if !ok {
			// No identifiable column, so this entity type is simply
			// absent from the mapping.
			continue
		}

		rule := EntityRule{IdentifierColumn: idCol}
		for _, prop := range def.Properties {
			col, ok := firstMatch(rs, prop.Patterns)
			if !ok {
				continue
			}
			if rule.Properties == nil {
				rule.Properties = make(map[string]string)
			}
			rule.Properties[prop.Name] = col
		}
		spec.Entities[def.Type] = rule
	}

	for _, def := range m.catalog.Relationships {
		col, ok := firstMatch(rs, def.ColumnPatterns)
		if !ok {
			continue
		}
		if _, ok := spec.Entities[def.SourceType]; !ok {
			continue
		}
		if _, ok := spec.Entities[def.TargetType]; !ok {
			continue
		}
		spec.Relationships = append(spec.Relationships, RelationshipRule{
			Type:       def.Type,
			SourceType: def.SourceType,
			TargetType: def.TargetType,
			Column:     col,
			Delimiter:  DefaultDelimiter,
		})
	}

	return spec
}

// firstMatch scans columns in record-set order and returns the first one
// matching any pattern. A column matches a pattern when either contains the
// other, after case folding and whitespace trimming.
func firstMatch(rs *tabular.RecordSet, patterns []string) (string, bool) {
	for i, norm := range rs.NormalizedColumns() {
		for _, p := range patterns {
			if columnMatches(norm, p) {
				return rs.Columns[i], true
			}
		}
	}
	return "", false
}

func columnMatches(normalizedColumn, pattern string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if normalizedColumn == "" || p == "" {
		return false
	}
	return strings.Contains(normalizedColumn, p) || strings.Contains(p, normalizedColumn)
}
