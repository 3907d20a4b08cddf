package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmakb/graphload/internal/tabular"
)

func recordSet(columns ...string) *tabular.RecordSet {
	return tabular.NewRecordSet(columns, nil)
}

func TestInfer_DrugTargetColumns(t *testing.T) {
	rs := recordSet("drug_name", "mechanism_of_action", "targets")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	require.Contains(t, spec.Entities, "Drug")
	drug := spec.Entities["Drug"]
	assert.Equal(t, "drug_name", drug.IdentifierColumn)
	assert.Equal(t, "mechanism_of_action", drug.Properties["moa"])

	require.Contains(t, spec.Entities, "Target")
	assert.Equal(t, "targets", spec.Entities["Target"].IdentifierColumn)

	require.Len(t, spec.Relationships, 1)
	rel := spec.Relationships[0]
	assert.Equal(t, "TARGETS", rel.Type)
	assert.Equal(t, "Drug", rel.SourceType)
	assert.Equal(t, "Target", rel.TargetType)
	assert.Equal(t, "targets", rel.Column)
	assert.Equal(t, ",", rel.Delimiter)
}

func TestInfer_Deterministic(t *testing.T) {
	rs := recordSet("compound", "clinical_phase", "protein_targets", "disease_area")
	mapper := NewMapper(DefaultCatalog())

	first := mapper.Infer(rs)
	second := mapper.Infer(rs)
	assert.Equal(t, first, second)
}

func TestInfer_FirstColumnWins(t *testing.T) {
	// Both columns match Drug's identifier patterns; the earlier one in
	// column order is chosen.
	rs := recordSet("compound_id", "drug_name")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	require.Contains(t, spec.Entities, "Drug")
	assert.Equal(t, "compound_id", spec.Entities["Drug"].IdentifierColumn)
}

func TestInfer_CaseAndWhitespaceInsensitive(t *testing.T) {
	rs := recordSet(" Drug_Name ", "MOA")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	require.Contains(t, spec.Entities, "Drug")
	assert.Equal(t, " Drug_Name ", spec.Entities["Drug"].IdentifierColumn)
	assert.Equal(t, "MOA", spec.Entities["Drug"].Properties["moa"])
}

func TestInfer_NoMatchesYieldsEmptySpec(t *testing.T) {
	rs := recordSet("foo", "bar", "baz")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	assert.True(t, spec.IsEmpty())
	assert.Empty(t, spec.Relationships)
}

func TestInfer_RelationshipNeedsBothEndpoints(t *testing.T) {
	// "targets" matches both Target's identifier and the TARGETS
	// relationship, but without a Drug column there is no source entity,
	// so no relationship rule is emitted.
	rs := recordSet("targets", "organism")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	assert.Contains(t, spec.Entities, "Target")
	assert.NotContains(t, spec.Entities, "Drug")
	assert.Empty(t, spec.Relationships)
}

func TestInfer_ColumnsNotReserved(t *testing.T) {
	// A single "target" column serves as Target's identifier and as the
	// relationship column; the mapper does not reserve columns.
	rs := recordSet("drug", "target")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	assert.Equal(t, "target", spec.Entities["Target"].IdentifierColumn)
	require.Len(t, spec.Relationships, 1)
	assert.Equal(t, "target", spec.Relationships[0].Column)
}

func TestInfer_CustomCatalogOrder(t *testing.T) {
	catalog := Catalog{
		Entities: []EntityDef{
			{Type: "Sample", IdentifierPatterns: []string{"id"}},
			{Type: "Patient", IdentifierPatterns: []string{"id"}},
		},
	}
	rs := recordSet("id", "value")
	spec := NewMapper(catalog).Infer(rs)

	// Catalog order decides ties: both defs match, both get the column.
	assert.Equal(t, "id", spec.Entities["Sample"].IdentifierColumn)
	assert.Equal(t, "id", spec.Entities["Patient"].IdentifierColumn)
}
