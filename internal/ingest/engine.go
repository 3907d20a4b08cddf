// Package ingest turns a validated mapping plus record set into ordered,
// batched upserts against a graph store.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pharmakb/graphload/internal/graph"
	"github.com/pharmakb/graphload/internal/mapping"
	"github.com/pharmakb/graphload/internal/tabular"
)

// EntityKeyProperty is the property every entity's unique key is stored
// under in the graph.
const EntityKeyProperty = "name"

// DefaultBatchSize bounds the size of any single write operation. Chunk
// boundaries have no semantic effect; they are the unit of failure
// isolation.
const DefaultBatchSize = 2000

// Options tunes an Engine.
type Options struct {
	// BatchSize caps records per store write. Zero means DefaultBatchSize.
	BatchSize int

	// WritesPerSecond throttles batch submission. Zero means unlimited.
	WritesPerSecond int
}

// Engine executes the two-phase batched ingestion: all entity types are
// written before any relationship type, because relationship upserts are
// defined in terms of entity existence.
type Engine struct {
	store     graph.Store
	log       *logrus.Logger
	batchSize int
	limiter   *rate.Limiter
}

// NewEngine creates an engine writing to the given store.
func NewEngine(store graph.Store, log *logrus.Logger, opts Options) *Engine {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var limiter *rate.Limiter
	if opts.WritesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.WritesPerSecond), 1)
	}
	return &Engine{
		store:     store,
		log:       log,
		batchSize: batchSize,
		limiter:   limiter,
	}
}

// Ingest runs the full pipeline for an already-validated mapping. Row-level
// problems are counted on the Result and skipped; a failed store write
// aborts the run with the partial Result, leaving prior batches committed.
func (e *Engine) Ingest(ctx context.Context, rs *tabular.RecordSet, spec *mapping.Spec) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}

	e.log.WithFields(logrus.Fields{
		"run_id":        result.RunID,
		"rows":          len(rs.Rows),
		"entity_types":  len(spec.Entities),
		"relationships": len(spec.Relationships),
	}).Info("Starting ingestion")

	if err := e.ingestEntities(ctx, rs, spec, result); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}
	if err := e.ingestRelationships(ctx, rs, spec, result); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	result.Duration = time.Since(start)
	e.log.WithFields(logrus.Fields{
		"run_id":                result.RunID,
		"entities_created":      result.EntitiesCreated,
		"entities_updated":      result.EntitiesUpdated,
		"relationships_created": result.RelationshipsCreated,
		"row_errors":            result.RowErrorCount(),
		"duration":              result.Duration.String(),
	}).Info("Ingestion completed")

	return result, nil
}

// ingestEntities writes every entity type, in parallel across types: their
// key spaces are disjoint, so concurrent batches are always safe. The
// relationship phase must not start until all of them have finished.
func (e *Engine) ingestEntities(ctx context.Context, rs *tabular.RecordSet, spec *mapping.Spec, result *Result) error {
	types := spec.EntityTypes()

	type phaseOut struct {
		stats     graph.UpsertStats
		rowErrors []string
	}
	outputs := make([]phaseOut, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, typ := range types {
		i, typ := i, typ
		g.Go(func() error {
			records, rowErrors := e.buildEntityRecords(rs, spec, typ)
			outputs[i].rowErrors = rowErrors

			for lo := 0; lo < len(records); lo += e.batchSize {
				hi := min(lo+e.batchSize, len(records))
				if err := e.waitForSlot(gctx); err != nil {
					return err
				}
				stats, err := e.store.UpsertEntities(gctx, graph.EntityBatch{
					Type:        typ,
					KeyProperty: EntityKeyProperty,
					Records:     records[lo:hi],
				})
				if err != nil {
					return fmt.Errorf("entity type %s, batch %d-%d: %w", typ, lo, hi, err)
				}
				outputs[i].stats.Created += stats.Created
				outputs[i].stats.Updated += stats.Updated
			}
			return nil
		})
	}
	err := g.Wait()

	for _, out := range outputs {
		result.EntitiesCreated += out.stats.Created
		result.EntitiesUpdated += out.stats.Updated
		result.RowErrors = append(result.RowErrors, out.rowErrors...)
	}
	return err
}

// buildEntityRecords computes the deduplicated record list for one entity
// type. Dedup is by key within the batch, keeping the last-seen row's
// property set (last-write-wins, no cross-row merging).
func (e *Engine) buildEntityRecords(rs *tabular.RecordSet, spec *mapping.Spec, typ string) ([]graph.EntityRecord, []string) {
	rule := spec.Entities[typ]
	idCol, ok := rs.Resolve(rule.IdentifierColumn)
	if !ok {
		// Validation rejects this before ingestion; nothing to do here.
		return nil, nil
	}

	props := make(map[string]string, len(rule.Properties))
	for name, col := range rule.Properties {
		if resolved, ok := rs.Resolve(col); ok {
			props[name] = resolved
		}
	}

	// When this entity's identifier column doubles as a delimited
	// relationship column, one cell names several entities.
	delimiter := entityDelimiter(rs, spec, typ, idCol)

	index := make(map[string]int)
	var records []graph.EntityRecord
	var rowErrors []string

	for i, row := range rs.Rows {
		raw := strings.TrimSpace(row[idCol])
		if raw == "" {
			rowErrors = append(rowErrors, fmt.Sprintf(
				"row %d: missing identifier %q for entity type %s", i+1, idCol, typ))
			continue
		}

		keys := []string{raw}
		if delimiter != "" {
			keys = splitTrimmed(raw, delimiter)
		}

		properties := make(map[string]any)
		for name, col := range props {
			if v, ok := row[col]; ok {
				properties[name] = v
			}
		}

		for _, key := range keys {
			rec := graph.EntityRecord{Key: key, Properties: properties}
			if at, seen := index[key]; seen {
				records[at] = rec
				continue
			}
			index[key] = len(records)
			records = append(records, rec)
		}
	}

	return records, rowErrors
}

// ingestRelationships writes every relationship type, in declared order,
// strictly after the entity phase.
func (e *Engine) ingestRelationships(ctx context.Context, rs *tabular.RecordSet, spec *mapping.Spec, result *Result) error {
	for _, rel := range spec.Relationships {
		records, rowErrors := e.buildRelationshipRecords(rs, spec, rel)
		result.RowErrors = append(result.RowErrors, rowErrors...)

		for lo := 0; lo < len(records); lo += e.batchSize {
			hi := min(lo+e.batchSize, len(records))
			if err := e.waitForSlot(ctx); err != nil {
				return err
			}
			stats, err := e.store.UpsertRelationships(ctx, graph.RelationshipBatch{
				Type:        rel.Type,
				SourceType:  rel.SourceType,
				TargetType:  rel.TargetType,
				KeyProperty: EntityKeyProperty,
				Records:     records[lo:hi],
			})
			if err != nil {
				return fmt.Errorf("relationship type %s, batch %d-%d: %w", rel.Type, lo, hi, err)
			}
			result.RelationshipsCreated += stats.Created
			result.RelationshipsUpdated += stats.Updated
		}
	}
	return nil
}

// buildRelationshipRecords expands each row into zero or more keyed edges,
// deduplicated by (source, target) within the run.
func (e *Engine) buildRelationshipRecords(rs *tabular.RecordSet, spec *mapping.Spec, rel mapping.RelationshipRule) ([]graph.RelationshipRecord, []string) {
	col, ok := rs.Resolve(rel.Column)
	if !ok {
		return nil, nil
	}
	sourceRule := spec.Entities[rel.SourceType]
	sourceCol, ok := rs.Resolve(sourceRule.IdentifierColumn)
	if !ok {
		return nil, nil
	}

	seen := make(map[string]bool)
	var records []graph.RelationshipRecord
	var rowErrors []string

	for i, row := range rs.Rows {
		source := strings.TrimSpace(row[sourceCol])
		if source == "" {
			// Already reported by the entity phase for the source type.
			continue
		}

		raw := strings.TrimSpace(row[col])
		targets := []string{}
		if raw != "" {
			if rel.Delimiter != "" {
				targets = splitTrimmed(raw, rel.Delimiter)
			} else {
				targets = []string{raw}
			}
		}
		if len(targets) == 0 {
			rowErrors = append(rowErrors, fmt.Sprintf(
				"row %d: no %s targets in column %q", i+1, rel.Type, col))
			continue
		}

		for _, target := range targets {
			pair := source + "\x00" + target
			if seen[pair] {
				continue
			}
			seen[pair] = true
			records = append(records, graph.RelationshipRecord{SourceKey: source, TargetKey: target})
		}
	}

	return records, rowErrors
}

func (e *Engine) waitForSlot(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// entityDelimiter returns the delimiter to split this entity type's
// identifier values on, if a relationship rule reads the same column as a
// delimited target list. Without the split a cell like "PTGS1|PTGS2" would
// become one bogus entity instead of two.
func entityDelimiter(rs *tabular.RecordSet, spec *mapping.Spec, typ, idCol string) string {
	for _, rel := range spec.Relationships {
		if rel.TargetType != typ || rel.Delimiter == "" {
			continue
		}
		if resolved, ok := rs.Resolve(rel.Column); ok && resolved == idCol {
			return rel.Delimiter
		}
	}
	return ""
}

func splitTrimmed(value, delimiter string) []string {
	var out []string
	for _, piece := range strings.Split(value, delimiter) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
