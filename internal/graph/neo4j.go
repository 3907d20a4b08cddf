package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

// Neo4jStore implements Store against Neo4j using parameterized
// UNWIND + MERGE batches.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logrus.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity before
// returning.
func NewNeo4jStore(ctx context.Context, uri, username, password, database string, log *logrus.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to Neo4j at %s: %w", uri, err)
	}
	return &Neo4jStore{driver: driver, database: database, log: log}, nil
}

// UpsertEntities merges the batch in a single query. Created-vs-updated
// counts come from the server-side query counters.
func (s *Neo4jStore) UpsertEntities(ctx context.Context, batch EntityBatch) (UpsertStats, error) {
	if len(batch.Records) == 0 {
		return UpsertStats{}, nil
	}

	query, err := buildEntityUpsert(batch.Type, batch.KeyProperty)
	if err != nil {
		return UpsertStats{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	rows := make([]map[string]any, len(batch.Records))
	for i, rec := range batch.Records {
		rows[i] = map[string]any{"key": rec.Key, "props": rec.Properties}
	}

	result, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]any{"rows": rows},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return UpsertStats{}, fmt.Errorf("%w: entity batch %s (%d records): %v",
			ErrStoreWrite, batch.Type, len(batch.Records), err)
	}

	created := result.Summary.Counters().NodesCreated()
	stats := UpsertStats{Created: created, Updated: len(batch.Records) - created}

	s.log.WithFields(logrus.Fields{
		"label":   batch.Type,
		"records": len(batch.Records),
		"created": stats.Created,
		"updated": stats.Updated,
	}).Debug("Entity batch upserted")

	return stats, nil
}

// UpsertRelationships merges the batch in a single query. Endpoint nodes
// are merged as part of the same operation, so edges referencing entities
// from prior runs resolve without a pre-check.
func (s *Neo4jStore) UpsertRelationships(ctx context.Context, batch RelationshipBatch) (UpsertStats, error) {
	if len(batch.Records) == 0 {
		return UpsertStats{}, nil
	}

	query, err := buildRelationshipUpsert(batch.Type, batch.SourceType, batch.TargetType, batch.KeyProperty)
	if err != nil {
		return UpsertStats{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	rows := make([]map[string]any, len(batch.Records))
	for i, rec := range batch.Records {
		rows[i] = map[string]any{"source": rec.SourceKey, "target": rec.TargetKey}
	}

	result, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]any{"rows": rows},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return UpsertStats{}, fmt.Errorf("%w: relationship batch %s (%d records): %v",
			ErrStoreWrite, batch.Type, len(batch.Records), err)
	}

	created := result.Summary.Counters().RelationshipsCreated()
	stats := UpsertStats{Created: created, Updated: len(batch.Records) - created}

	s.log.WithFields(logrus.Fields{
		"type":    batch.Type,
		"records": len(batch.Records),
		"created": stats.Created,
	}).Debug("Relationship batch upserted")

	return stats, nil
}

// DeleteEntities removes every node with the given label and its attached
// relationships, returning the number of nodes deleted.
func (s *Neo4jStore) DeleteEntities(ctx context.Context, label string) (int, error) {
	if !validIdentifier(label) {
		return 0, fmt.Errorf("invalid node label: %q", label)
	}

	query := fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", label)
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return 0, fmt.Errorf("%w: delete %s nodes: %v", ErrStoreWrite, label, err)
	}
	return result.Summary.Counters().NodesDeleted(), nil
}

// Close closes the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
