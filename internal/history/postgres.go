package history

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PostgresStore keeps the run ledger in PostgreSQL, for deployments where
// several operators share one loading history.
type PostgresStore struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewPostgresStore connects to PostgreSQL with the given DSN.
func NewPostgresStore(dsn string, log *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{db: db, log: log}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
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
		started_at TIMESTAMPTZ NOT NULL,
		duration_ns BIGINT NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON ingestion_runs(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts one completed or failed run.
func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
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
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*Run
	err := s.db.SelectContext(ctx, &runs, s.db.Rebind(`
		SELECT id, source_file, mapping_name,
		       entities_created, entities_updated,
		       relationships_created, relationships_updated,
		       row_errors, status, error, started_at, duration_ns
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
