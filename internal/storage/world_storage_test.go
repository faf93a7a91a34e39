package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

func setupTestStorage(t *testing.T) *WorldStorage {
	t.Helper()
	ws, err := NewWorldStorage(t.TempDir())
	require.NoError(t, err, "не удалось создать хранилище")
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestSaveAndLoadGrid(t *testing.T) {
	ctx := context.Background()
	ws := setupTestStorage(t)

	g := testGrid(t, 8, 8)
	require.NoError(t, g.SetType(3, 4, tile.TopLeftID))
	info, err := ws.SaveGrid(ctx, "caves", g)
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Positive(t, info.Size)

	loaded := testGrid(t, 2, 2)
	got, err := ws.LoadGrid(ctx, "caves", loaded)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	assert.Equal(t, tile.TopLeftID, loaded.TypeAt(3, 4))
	assert.Equal(t, 8, loaded.Width())
}

func TestLoadMissingWorld(t *testing.T) {
	ws := setupTestStorage(t)
	_, err := ws.LoadGrid(context.Background(), "nowhere", testGrid(t, 2, 2))
	assert.ErrorIs(t, err, ErrNoSave)
}

func TestSnapshotHistory(t *testing.T) {
	ctx := context.Background()
	ws := setupTestStorage(t)
	g := testGrid(t, 5, 5)

	first, err := ws.SaveGrid(ctx, "w", g)
	require.NoError(t, err)
	require.NoError(t, g.SetType(2, 2, tile.BlockID))
	second, err := ws.SaveGrid(ctx, "w", g)
	require.NoError(t, err)
	_, err = ws.SaveGrid(ctx, "other", g)
	require.NoError(t, err)

	list, err := ws.ListSnapshots(ctx, "w")
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	// последний снимок содержит блок, первый - нет
	latest := testGrid(t, 1, 1)
	_, err = ws.LoadGrid(ctx, "w", latest)
	require.NoError(t, err)
	assert.Equal(t, tile.BlockID, latest.TypeAt(2, 2))

	old := testGrid(t, 1, 1)
	_, err = ws.LoadSnapshot(ctx, "w", first.ID, old)
	require.NoError(t, err)
	assert.Equal(t, tile.EmptyID, old.TypeAt(2, 2))

	require.NoError(t, ws.DeleteSnapshot(ctx, "w", first.ID))
	list, err = ws.ListSnapshots(ctx, "w")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, ws.DeleteSnapshot(ctx, "w", first.ID), world.ErrInvalidReference)
	_, err = ws.LoadSnapshot(ctx, "w", "not-a-uuid", old)
	assert.ErrorIs(t, err, world.ErrInvalidReference)
}

func TestWorldStoreAdapter(t *testing.T) {
	ctx := context.Background()
	ws, err := NewInMemoryWorldStorage()
	require.NoError(t, err)
	defer ws.Close()

	store := ws.ForWorld("default")
	g := testGrid(t, 4, 4)
	require.NoError(t, g.ClearType(0, 0))
	require.NoError(t, store.Save(ctx, g))

	loaded := testGrid(t, 4, 4)
	require.NoError(t, store.Load(ctx, loaded))
	assert.Equal(t, tile.EmptyID, loaded.TypeAt(0, 0))
}

func TestClosedStorageRejectsCalls(t *testing.T) {
	ws, err := NewInMemoryWorldStorage()
	require.NoError(t, err)
	require.NoError(t, ws.Close())
	require.NoError(t, ws.Close(), "повторное закрытие безопасно")

	_, err = ws.SaveGrid(context.Background(), "w", testGrid(t, 2, 2))
	assert.Error(t, err)
}

func TestWorldStorageLogsSnapshotsAndClose(t *testing.T) {
	logger, console := captureLogger(t)
	ws, err := NewInMemoryWorldStorage()
	require.NoError(t, err)
	ws.logger = logger

	info, err := ws.SaveGrid(context.Background(), "caves", testGrid(t, 4, 2))
	require.NoError(t, err)
	assert.Contains(t, console.String(), "Снимок "+info.ID+" мира caves: 4x2")

	require.NoError(t, ws.Close())
	assert.Contains(t, console.String(), "BadgerDB закрыта")

	console.Reset()
	require.NoError(t, ws.Close())
	assert.Empty(t, console.String(), "повторное закрытие молчит")
}
