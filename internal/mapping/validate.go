package mapping

import (
	"fmt"
	"sort"

	"github.com/pharmakb/graphload/internal/tabular"
)

// ValidationResult is the ordered list of problems found in a mapping.
// An empty result means the mapping is safe to ingest.
type ValidationResult struct {
	Errors []string
}

// OK reports whether validation found no problems.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks every reference in the spec against the record set's
// columns and collects one error per violation rather than failing fast,
// so a caller can report all problems at once. It has no side effects and
// is safe to call repeatedly.
func Validate(rs *tabular.RecordSet, spec *Spec) ValidationResult {
	var result ValidationResult

	if spec.IsEmpty() {
		result.Errors = append(result.Errors, "no entities could be identified in the mapping")
		return result
	}

	for _, typ := range spec.EntityTypes() {
		rule := spec.Entities[typ]
		if !rs.HasColumn(rule.IdentifierColumn) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"entity %s: identifier column %q not found in input", typ, rule.IdentifierColumn))
		}

		props := make([]string, 0, len(rule.Properties))
		for p := range rule.Properties {
			props = append(props, p)
		}
		sort.Strings(props)
		for _, p := range props {
			col := rule.Properties[p]
			if !rs.HasColumn(col) {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"entity %s: property %q references column %q not found in input", typ, p, col))
			}
		}
	}

	for _, rel := range spec.Relationships {
		if !rs.HasColumn(rel.Column) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"relationship %s: column %q not found in input", rel.Type, rel.Column))
		}
		if _, ok := spec.Entities[rel.SourceType]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"relationship %s: source entity type %q not defined in mapping", rel.Type, rel.SourceType))
		}
		if _, ok := spec.Entities[rel.TargetType]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"relationship %s: target entity type %q not defined in mapping", rel.Type, rel.TargetType))
		}
	}

	return result
}
