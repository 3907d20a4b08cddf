package mapping

// PropertyDef binds a canonical property name to the column-name substrings
// that identify it.
type PropertyDef struct {
	Name     string
	Patterns []string
}

// EntityDef describes one candidate entity type for inference.
type EntityDef struct {
	Type string

	// IdentifierPatterns are substrings marking a column as this entity's
	// unique key.
	IdentifierPatterns []string

	// Properties are tried in declared order.
	Properties []PropertyDef
}

// RelationshipDef describes one candidate relationship type with its fixed
// endpoint entity types.
type RelationshipDef struct {
	Type           string
	SourceType     string
	TargetType     string
	ColumnPatterns []string
}

// Catalog is the static, ordered pattern catalog the Mapper scans with.
// Entries are tried in declared order, which makes inference deterministic.
// Treat a Catalog as an immutable value; build a new one per domain rather
// than mutating a shared instance.
type Catalog struct {
	Entities      []EntityDef
	Relationships []RelationshipDef
}

// DefaultDelimiter is assigned to inferred relationship rules.
const DefaultDelimiter = ","

// DefaultCatalog returns the biomedical catalog the loader ships with:
// drug and target entities plus the drug-targets relationship.
func DefaultCatalog() Catalog {
	return Catalog{
		Entities: []EntityDef{
			{
				Type: "Drug",
				IdentifierPatterns: []string{
					"drug_name", "drug", "compound", "molecule", "pert_iname", "product",
				},
				Properties: []PropertyDef{
					{Name: "moa", Patterns: []string{"moa", "mechanism_of_action", "mechanism"}},
					{Name: "phase", Patterns: []string{"phase", "clinical_phase", "max_phase", "status"}},
					{Name: "disease_area", Patterns: []string{"disease_area", "disease", "therapeutic_area"}},
					{Name: "indication", Patterns: []string{"indication"}},
					{Name: "vendor", Patterns: []string{"vendor", "supplier", "source"}},
					{Name: "purity", Patterns: []string{"purity"}},
					{Name: "smiles", Patterns: []string{"smiles"}},
					{Name: "inchi_key", Patterns: []string{"inchi_key", "inchikey"}},
				},
			},
			{
				Type: "Target",
				IdentifierPatterns: []string{
					"target", "protein", "gene", "gene_symbol", "uniprot",
				},
				Properties: []PropertyDef{
					{Name: "organism", Patterns: []string{"organism", "species"}},
					{Name: "family", Patterns: []string{"target_family", "protein_family", "family"}},
				},
			},
		},
		Relationships: []RelationshipDef{
			{
				Type:       "TARGETS",
				SourceType: "Drug",
				TargetType: "Target",
				ColumnPatterns: []string{
					"targets", "target_list", "target", "protein_targets",
				},
			},
		},
	}
}
