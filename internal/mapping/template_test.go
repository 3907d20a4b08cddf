package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_RoundTrip(t *testing.T) {
	spec := &Spec{
		Name: "inferred",
		Entities: map[string]EntityRule{
			"Drug": {
				IdentifierColumn: "drug_name",
				Properties: map[string]string{
					"moa":   "mechanism_of_action",
					"phase": "clinical_phase",
				},
			},
			"Target": {IdentifierColumn: "targets"},
		},
		Relationships: []RelationshipRule{
			{
				Type:       "TARGETS",
				SourceType: "Drug",
				TargetType: "Target",
				Column:     "targets",
				Delimiter:  "|",
			},
		},
	}

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, SaveTemplate(spec, path))

	loaded, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, spec, loaded)
}

func TestTemplate_RoundTripInferred(t *testing.T) {
	rs := recordSet("drug_name", "mechanism_of_action", "targets")
	spec := NewMapper(DefaultCatalog()).Infer(rs)

	path := filepath.Join(t.TempDir(), "inferred.yaml")
	require.NoError(t, SaveTemplate(spec, path))

	loaded, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, spec, loaded)
}

func TestTemplate_VersionMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 99\nentities: {}\n"), 0644))

	_, err := LoadTemplate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestTemplate_HumanEditable(t *testing.T) {
	// A hand-written template, the way a corrected inference would look.
	doc := `version: 1
name: corrected
entities:
  Drug:
    identifier_column: compound
    properties:
      moa: mechanism
relationships:
  - type: TARGETS
    source_type: Drug
    target_type: Target
    column: protein_targets
    delimiter: ";"
`
	path := filepath.Join(t.TempDir(), "hand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	spec, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "corrected", spec.Name)
	assert.Equal(t, "compound", spec.Entities["Drug"].IdentifierColumn)
	require.Len(t, spec.Relationships, 1)
	assert.Equal(t, ";", spec.Relationships[0].Delimiter)
}

func TestTemplate_MissingFile(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
