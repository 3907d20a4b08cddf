// Package history records ingestion runs in a local ledger so past loads
// can be audited without querying the graph store.
package history

import (
	"context"
	"time"
)

// Run is one recorded ingestion run.
type Run struct {
	ID                   string        `db:"id"`
	SourceFile           string        `db:"source_file"`
	MappingName          string        `db:"mapping_name"`
	EntitiesCreated      int           `db:"entities_created"`
	EntitiesUpdated      int           `db:"entities_updated"`
	RelationshipsCreated int           `db:"relationships_created"`
	RelationshipsUpdated int           `db:"relationships_updated"`
	RowErrors            int           `db:"row_errors"`
	Status               string        `db:"status"` // "completed" or "failed"
	Error                string        `db:"error"`
	StartedAt            time.Time     `db:"started_at"`
	Duration             time.Duration `db:"duration_ns"`
}

// Store persists ingestion runs.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}
