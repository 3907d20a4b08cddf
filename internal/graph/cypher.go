package graph

import (
	"fmt"
	"regexp"
)

// Labels, relationship types, and property names are interpolated into
// Cypher text (they cannot be parameterized), so they must pass this
// validation. All values go through query parameters.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// buildEntityUpsert renders the UNWIND + MERGE statement for a bulk entity
// upsert. MERGE on the key makes the write idempotent; SET n += row.props
// overwrites supplied properties and leaves the rest untouched.
func buildEntityUpsert(label, keyProperty string) (string, error) {
	if !validIdentifier(label) {
		return "", fmt.Errorf("invalid node label: %q", label)
	}
	if !validIdentifier(keyProperty) {
		return "", fmt.Errorf("invalid key property: %q", keyProperty)
	}
	return fmt.Sprintf(
		"UNWIND $rows AS row MERGE (n:%s {%s: row.key}) SET n += row.props",
		label, keyProperty,
	), nil
}

// buildRelationshipUpsert renders the UNWIND + MERGE statement for a bulk
// relationship upsert. Both endpoints are MERGEd too, so an edge to an
// entity this run never wrote still lands (the node is created with just
// its key if the store does not hold it yet).
func buildRelationshipUpsert(relType, sourceLabel, targetLabel, keyProperty string) (string, error) {
	for _, id := range []string{relType, sourceLabel, targetLabel, keyProperty} {
		if !validIdentifier(id) {
			return "", fmt.Errorf("invalid identifier: %q", id)
		}
	}
	return fmt.Sprintf(
		"UNWIND $rows AS row "+
			"MERGE (a:%s {%s: row.source}) "+
			"MERGE (b:%s {%s: row.target}) "+
			"MERGE (a)-[r:%s]->(b)",
		sourceLabel, keyProperty, targetLabel, keyProperty, relType,
	), nil
}
