// Package graph holds the property-graph store boundary: two bulk upsert
// primitives plus the Neo4j implementation and an in-memory one for tests.
package graph

import (
	"context"
	"errors"
)

// ErrStoreWrite wraps any failed batch write. The batch in progress is
// lost; previously committed batches are not rolled back.
var ErrStoreWrite = errors.New("graph store write failed")

// EntityRecord is one keyed entity in a batch. Properties never contain
// explicit nulls: absent values are simply not present.
type EntityRecord struct {
	Key        string
	Properties map[string]any
}

// EntityBatch is a bulk entity upsert: create each entity if absent, else
// update in place. Every property supplied here is written; properties not
// in the batch are left untouched on existing entities.
type EntityBatch struct {
	// Type is the node label.
	Type string

	// KeyProperty is the property the key is stored under.
	KeyProperty string

	Records []EntityRecord
}

// RelationshipRecord is one keyed edge in a batch.
type RelationshipRecord struct {
	SourceKey string
	TargetKey string
}

// RelationshipBatch is a bulk relationship upsert keyed by
// (source, type, target). Existing edges are a no-op, not a duplicate.
// Endpoint entities missing from the store are created with just their key,
// so relationship writes never depend on entity-write ordering.
type RelationshipBatch struct {
	Type        string
	SourceType  string
	TargetType  string
	KeyProperty string
	Records     []RelationshipRecord
}

// UpsertStats reports how a batch landed.
type UpsertStats struct {
	Created int
	Updated int
}

// Store is the write boundary the ingestion engine needs from a property
// graph. Any store exposing these two batched primitives satisfies it.
type Store interface {
	UpsertEntities(ctx context.Context, batch EntityBatch) (UpsertStats, error)
	UpsertRelationships(ctx context.Context, batch RelationshipBatch) (UpsertStats, error)
	Close(ctx context.Context) error
}
