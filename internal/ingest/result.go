package ingest

import "time"

// Result summarizes one ingestion run. It is reported to the caller and
// then discarded; the graph store is the only persistent state.
type Result struct {
	RunID    string
	Duration time.Duration

	EntitiesCreated      int
	EntitiesUpdated      int
	RelationshipsCreated int
	RelationshipsUpdated int

	// RowErrors holds one message per skipped row occurrence. Row errors
	// are non-fatal: the offending row is skipped and everything else
	// proceeds.
	RowErrors []string
}

// RowErrorCount returns the number of skipped-row occurrences.
func (r *Result) RowErrorCount() int {
	return len(r.RowErrors)
}
