package history

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &Run{
		ID:                   "run-1",
		SourceFile:           "drugs.csv",
		MappingName:          "inferred",
		EntitiesCreated:      3,
		RelationshipsCreated: 2,
		Status:               "completed",
		StartedAt:            time.Now().Add(-time.Hour).UTC(),
		Duration:             2 * time.Second,
	}
	second := &Run{
		ID:         "run-2",
		SourceFile: "targets.tsv",
		RowErrors:  1,
		Status:     "failed",
		Error:      "connection reset",
		StartedAt:  time.Now().UTC(),
		Duration:   time.Second,
	}
	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "connection reset", runs[0].Error)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 3, runs[1].EntitiesCreated)
	assert.Equal(t, 2*time.Second, runs[1].Duration)
}

func TestSQLiteStore_ListLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		run := &Run{
			ID:         string(rune('a' + i)),
			SourceFile: "f.csv",
			Status:     "completed",
			StartedAt:  time.Now().Add(time.Duration(i) * time.Minute).UTC(),
		}
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
