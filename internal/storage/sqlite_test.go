//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weasel/internal/model"
)

func TestSQLiteStoreRunAndGenerationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "weasel.db")

	store := NewSQLiteStore(dbPath)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() {
		_ = store.Close()
	})

	first := Stamp(model.RunRecord{ID: "r1", Target: "CAT", CreatedAtUTC: "2026-01-01T00:00:00Z"})
	second := Stamp(model.RunRecord{ID: "r2", Target: "DOG", CreatedAtUTC: "2026-01-02T00:00:00Z"})
	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))

	loaded, ok, err := store.GetRun(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, loaded)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].ID)

	runs, err = store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	generations := []model.GenerationRecord{{Generation: 0, Text: "TAC", Score: 1}, {Generation: 1, Text: "CAT", Score: 3}}
	require.NoError(t, store.SaveGenerations(ctx, "r1", generations))
	got, ok, err := store.GetGenerations(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, generations, got)

	_, ok, err = store.GetGenerations(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreListRunsComparesInstantsNotStrings(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "weasel.db"))
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() {
		_ = store.Close()
	})

	later := Stamp(model.RunRecord{ID: "later", CreatedAtUTC: "2026-01-01T00:00:05.12Z"})
	earlier := Stamp(model.RunRecord{ID: "earlier", CreatedAtUTC: "2026-01-01T00:00:05.1Z"})
	require.NoError(t, store.SaveRun(ctx, later))
	require.NoError(t, store.SaveRun(ctx, earlier))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "later", runs[0].ID)
	assert.Equal(t, earlier, runs[1])
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "weasel.db"))
	_, _, err := store.GetRun(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNotInitialized)
}
