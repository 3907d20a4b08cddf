package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_OK(t *testing.T) {
	rs := recordSet("drug_name", "mechanism_of_action", "targets")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	result := Validate(rs, spec)
	assert.True(t, result.OK())
	assert.Empty(t, result.Errors)
}

func TestValidate_EmptySpec(t *testing.T) {
	rs := recordSet("foo", "bar")
	spec := &Spec{Entities: map[string]EntityRule{}}

	result := Validate(rs, spec)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no entities")
}

func TestValidate_ReportsEveryMissingColumn(t *testing.T) {
	rs := recordSet("drug_name")
	spec := &Spec{
		Entities: map[string]EntityRule{
			"Drug": {
				IdentifierColumn: "drug_name",
				Properties: map[string]string{
					"moa":   "mechanism_of_action", // missing
					"phase": "clinical_phase",      // missing
				},
			},
		},
	}

	// One error per violation, not just the first.
	result := Validate(rs, spec)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "mechanism_of_action")
	assert.Contains(t, result.Errors[1], "clinical_phase")
}

func TestValidate_MissingIdentifierColumn(t *testing.T) {
	rs := recordSet("something_else", "other")
	spec := &Spec{
		Entities: map[string]EntityRule{
			"Drug": {IdentifierColumn: "drug_name"},
		},
	}

	result := Validate(rs, spec)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "identifier column")
	assert.Contains(t, result.Errors[0], "drug_name")
}

func TestValidate_RelationshipErrors(t *testing.T) {
	rs := recordSet("drug_name")
	spec := &Spec{
		Entities: map[string]EntityRule{
			"Drug": {IdentifierColumn: "drug_name"},
		},
		Relationships: []RelationshipRule{
			{
				Type:       "TARGETS",
				SourceType: "Drug",
				TargetType: "Target", // not defined in the spec
				Column:     "targets", // not in the record set
			},
		},
	}

	result := Validate(rs, spec)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `column "targets"`)
	assert.Contains(t, result.Errors[1], "target entity type")
}

func TestValidate_Repeatable(t *testing.T) {
	rs := recordSet("drug_name")
	spec := &Spec{
		Entities: map[string]EntityRule{
			"Drug": {IdentifierColumn: "missing_col"},
		},
	}

	first := Validate(rs, spec)
	second := Validate(rs, spec)
	assert.Equal(t, first, second)
}

func TestValidate_NormalizedColumnComparison(t *testing.T) {
	// Template columns match the record set under case and whitespace
	// normalization.
	rs := recordSet("Drug_Name")
	spec := &Spec{
		Entities: map[string]EntityRule{
			"Drug": {IdentifierColumn: "drug_name"},
		},
	}

	result := Validate(rs, spec)
	assert.True(t, result.OK())
}
