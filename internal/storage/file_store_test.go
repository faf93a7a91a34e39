package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

func TestMain(m *testing.M) {
	logging.Configure(logging.Options{ConsoleLevel: logging.OFF, FileLevel: logging.OFF})
	os.Exit(m.Run())
}

// captureLogger логгер хранилища, пишущий в буфер
func captureLogger(t *testing.T) (*logging.Logger, *bytes.Buffer) {
	t.Helper()
	var console bytes.Buffer
	logging.Configure(logging.Options{ConsoleLevel: logging.DEBUG, FileLevel: logging.OFF, Console: &console})
	t.Cleanup(func() { logging.Configure(logging.Options{ConsoleLevel: logging.OFF, FileLevel: logging.OFF}) })
	logger, err := logging.NewLogger(logging.ComponentStorage)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger, &console
}

func testGrid(t *testing.T, w, h int) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(world.GridConfig{Width: w, Height: h, TileSize: 10}, tile.NewRegistry(), nil)
	require.NoError(t, err)
	return g
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "save.json")
	fs := NewFileStore(path)

	g := testGrid(t, 6, 4)
	require.NoError(t, g.SetType(2, 2, tile.BlockID))
	require.NoError(t, g.SetEffect(2, 2, "tint", 0.5))
	require.NoError(t, fs.Save(ctx, g))

	loaded := testGrid(t, 2, 2)
	require.NoError(t, fs.Load(ctx, loaded))
	assert.Equal(t, 6, loaded.Width())
	assert.Equal(t, 4, loaded.Height())
	assert.Equal(t, g.Get(2, 2), loaded.Get(2, 2))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "временный файл удален")
}

func TestFileStoreMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	g := testGrid(t, 3, 3)
	before := g.Version()

	err := fs.Load(context.Background(), g)
	assert.ErrorIs(t, err, ErrNoSave)
	assert.Equal(t, before, g.Version(), "сетка не изменилась")
}

func TestFileStoreMalformedKeepsGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	require.NoError(t, os.WriteFile(path, []byte(`[[{"type":"x"}]]`), 0644))

	g := testGrid(t, 3, 3)
	err := NewFileStore(path).Load(context.Background(), g)
	assert.ErrorIs(t, err, world.ErrMalformedSave)
	assert.Equal(t, 3, g.Width())
}

func TestFileStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultSaveFile, NewFileStore("").Path())
}

func TestFileStoreLogsSaveAndLoad(t *testing.T) {
	logger, console := captureLogger(t)
	path := filepath.Join(t.TempDir(), "save.json")
	fs := NewFileStore(path)
	fs.logger = logger

	g := testGrid(t, 3, 3)
	require.NoError(t, fs.Save(context.Background(), g))
	assert.Contains(t, console.String(), "Мир сохранен в "+path)

	require.NoError(t, fs.Load(context.Background(), testGrid(t, 1, 1)))
	assert.Contains(t, console.String(), "Мир загружен из "+path)
}
