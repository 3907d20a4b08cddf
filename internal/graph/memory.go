package graph

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store with the same merge semantics as the
// Neo4j implementation. It backs the unit tests so the ingestion engine's
// suite never needs a running database.
type MemoryStore struct {
	mu       sync.Mutex
	entities map[string]map[string]map[string]any // label -> key -> properties
	edges    map[string]bool                      // (sourceType, sourceKey, type, targetType, targetKey)
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]map[string]map[string]any),
		edges:    make(map[string]bool),
	}
}

func (s *MemoryStore) UpsertEntities(_ context.Context, batch EntityBatch) (UpsertStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats UpsertStats
	for _, rec := range batch.Records {
		props := s.mergeEntity(batch.Type, batch.KeyProperty, rec.Key, &stats)
		for k, v := range rec.Properties {
			props[k] = v
		}
	}
	return stats, nil
}

func (s *MemoryStore) UpsertRelationships(_ context.Context, batch RelationshipBatch) (UpsertStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats UpsertStats
	for _, rec := range batch.Records {
		// MERGE semantics: missing endpoints come into existence with
		// just their key.
		var discard UpsertStats
		s.mergeEntity(batch.SourceType, batch.KeyProperty, rec.SourceKey, &discard)
		s.mergeEntity(batch.TargetType, batch.KeyProperty, rec.TargetKey, &discard)

		key := edgeKey(batch.SourceType, rec.SourceKey, batch.Type, batch.TargetType, rec.TargetKey)
		if s.edges[key] {
			stats.Updated++
			continue
		}
		s.edges[key] = true
		stats.Created++
	}
	return stats, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// mergeEntity returns the property map for (label, key), creating the
// entity if absent and counting the outcome into stats.
func (s *MemoryStore) mergeEntity(label, keyProperty, key string, stats *UpsertStats) map[string]any {
	byKey, ok := s.entities[label]
	if !ok {
		byKey = make(map[string]map[string]any)
		s.entities[label] = byKey
	}
	props, ok := byKey[key]
	if !ok {
		props = map[string]any{keyProperty: key}
		byKey[key] = props
		stats.Created++
		return props
	}
	stats.Updated++
	return props
}

func edgeKey(sourceType, sourceKey, relType, targetType, targetKey string) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s", sourceType, sourceKey, relType, targetType, targetKey)
}

// Entity returns a copy of the stored properties for (label, key).
func (s *MemoryStore) Entity(label, key string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.entities[label][key]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out, true
}

// EntityCount returns the number of stored entities with the given label.
func (s *MemoryStore) EntityCount(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities[label])
}

// RelationshipCount returns the total number of stored edges.
func (s *MemoryStore) RelationshipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

// HasRelationship reports whether the given edge exists.
func (s *MemoryStore) HasRelationship(sourceType, sourceKey, relType, targetType, targetKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edges[edgeKey(sourceType, sourceKey, relType, targetType, targetKey)]
}
