package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore keeps the run ledger in a local SQLite file.
type SQLiteStore struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewSQLiteStore opens (creating if needed) the ledger database at path.
func NewSQLiteStore(path string, log *logrus.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{db: db, log: log}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingestion_runs (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		mapping_name TEXT,
		entities_created INTEGER NOT NULL DEFAULT 0,
		entities_updated INTEGER NOT NULL DEFAULT 0,
		relationships_created INTEGER NOT NULL DEFAULT 0,
		relationships_updated INTEGER NOT NULL DEFAULT 0,
		row_errors INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		started_at DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON ingestion_runs(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts one completed or failed run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO ingestion_runs (
			id, source_file, mapping_name,
			entities_created, entities_updated,
			relationships_created, relationships_updated,
			row_errors, status, error, started_at, duration_ns
		) VALUES (
			:id, :source_file, :mapping_name,
			:entities_created, :entities_updated,
			:relationships_created, :relationships_updated,
			:row_errors, :status, :error, :started_at, :duration_ns
		)`, run)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	s.log.WithFields(logrus.Fields{
		"run_id": run.ID,
		"file":   run.SourceFile,
		"status": run.Status,
	}).Debug("Run recorded")
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, source_file, mapping_name,
		       entities_created, entities_updated,
		       relationships_created, relationships_updated,
		       row_errors, status, error, started_at, duration_ns
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
