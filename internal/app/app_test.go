package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/minigame"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/tile"
)

func TestMain(m *testing.M) {
	logging.Configure(logging.Options{ConsoleLevel: logging.OFF, FileLevel: logging.OFF})
	os.Exit(m.Run())
}

func headlessConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 40, 24
	cfg.Render.Backend = "headless"
	cfg.Server.Enabled = false
	cfg.Storage.SaveFile = filepath.Join(t.TempDir(), "save.json")
	cfg.Storage.BadgerDir = ""
	return cfg
}

func TestNewBuildsGeneratedWorldWithPlayer(t *testing.T) {
	a, err := New(Options{Config: headlessConfig(t)})
	require.NoError(t, err)
	defer a.Close()

	assert.Positive(t, a.Grid.Count())
	require.NotZero(t, a.Session.Player())
	p, ok := a.Session.Entity(a.Session.Player())
	require.True(t, ok)
	assert.Equal(t, PlayerKind, p.Kind)
	assert.Nil(t, a.Terminal)
	assert.Nil(t, a.API)
}

func TestNewRegistersCustomTiles(t *testing.T) {
	cfg := headlessConfig(t)
	cfg.Tiles = []config.TileConfig{{ID: 40, Name: "glass", Skin: "glass-blue"}}
	a, err := New(Options{Config: cfg})
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.Types.Has(40))
	assert.Equal(t, "glass-blue", string(a.Grid.SkinFor(40)))
}

func TestPersistAndRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	snaps, err := storage.NewInMemoryWorldStorage()
	require.NoError(t, err)
	defer snaps.Close()

	cfg := headlessConfig(t)
	cfg.World.Generate = false

	first, err := New(Options{Config: cfg, Snapshots: snaps})
	require.NoError(t, err)
	require.NoError(t, first.Session.SetTile(5, 5, tile.BlockID))
	_, err = first.Session.CreateEntity(physics.EntitySpec{
		Kind:        "crate",
		Position:    vec.Vec2Float{X: 100, Y: 100},
		HalfExtents: vec.Vec2Float{X: 4, Y: 4},
		Density:     1,
		Skin:        "crate",
	})
	require.NoError(t, err)
	require.NoError(t, first.Session.MoveEntity(first.Session.Player(), vec.Vec2Float{X: 55, Y: 65}))
	require.NoError(t, first.Persist(ctx))
	first.Close()

	_, err = os.Stat(cfg.Storage.SaveFile)
	require.NoError(t, err, "файл сохранения создан")

	second, err := New(Options{Config: cfg, Snapshots: snaps})
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, tile.EmptyID, second.Grid.TypeAt(5, 5))

	require.NoError(t, second.Restore(ctx))
	assert.Equal(t, tile.BlockID, second.Grid.TypeAt(5, 5))

	entities := second.Session.Entities()
	require.Len(t, entities, 2, "игрок и ящик")
	p, _ := second.Session.Entity(second.Session.Player())
	assert.Equal(t, vec.Vec2Float{X: 55, Y: 65}, p.Position)
}

func TestRestoreFallsBackToFile(t *testing.T) {
	ctx := context.Background()
	cfg := headlessConfig(t)
	cfg.World.Generate = false

	first, err := New(Options{Config: cfg})
	require.NoError(t, err)
	require.NoError(t, first.Session.SetTile(3, 3, tile.TopID))
	require.NoError(t, first.Persist(ctx))
	first.Close()

	second, err := New(Options{Config: cfg})
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Restore(ctx))
	assert.Equal(t, tile.TopID, second.Grid.TypeAt(3, 3))
}

func TestRestoreWithoutSavesKeepsWorld(t *testing.T) {
	cfg := headlessConfig(t)
	a, err := New(Options{Config: cfg})
	require.NoError(t, err)
	defer a.Close()

	before := a.Grid.Count()
	require.NoError(t, a.Restore(context.Background()))
	assert.Equal(t, before, a.Grid.Count())
}

func TestMinesweeperMode(t *testing.T) {
	cfg := headlessConfig(t)
	cfg.World.Width, cfg.World.Height = 9, 9
	a, err := New(Options{Config: cfg, Minesweeper: true, Mines: 10})
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Mines)
	assert.Zero(t, a.Session.Player())
	assert.False(t, a.Grid.Wrap())
	assert.Equal(t, 10, a.Mines.Mines())
	assert.Equal(t, minigame.UnopenedID, a.Grid.TypeAt(4, 4))

	m := sessionMines{app: a}
	require.NoError(t, m.ToggleFlag(4, 4))
	assert.Equal(t, minigame.FlaggedID, a.Grid.TypeAt(4, 4))

	assert.NoError(t, a.Persist(context.Background()), "сапер не сохраняется")
	assert.Contains(t, a.StatusLine(), "cursor 0,0")
}

func TestTerminalModeRunsUntilCancel(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(60, 20)

	cfg := headlessConfig(t)
	cfg.Render.Backend = "terminal"
	a, err := New(Options{Config: cfg, Screen: screen})
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Terminal)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run не завершился после отмены")
	}
	screen.Fini()
	assert.Positive(t, a.Terminal.Frames())
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := headlessConfig(t)
	cfg.Camera.Follow = 3
	_, err := New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestMinesweeperPublishesHit(t *testing.T) {
	cfg := headlessConfig(t)
	cfg.World.Width, cfg.World.Height = 6, 6
	a, err := New(Options{Config: cfg, Minesweeper: true, Mines: 5})
	require.NoError(t, err)
	defer a.Close()

	got := make(chan *eventbus.Envelope, 4)
	_, err = a.Events.Subscribe(context.Background(), eventbus.Filter{Sources: []string{minesSource}},
		func(_ context.Context, ev *eventbus.Envelope) { got <- ev })
	require.NoError(t, err)

	var mine vec.Vec2
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			if a.Mines.IsMine(x, y) {
				mine = vec.Vec2{X: x, Y: y}
			}
		}
	}

	m := sessionMines{app: a}
	hit, err := m.Uncover(mine.X, mine.Y)
	require.NoError(t, err)
	require.True(t, hit)

	select {
	case ev := <-got:
		assert.Equal(t, eventbus.MineHit, ev.EventType)
		var p eventbus.MinesPayload
		require.NoError(t, ev.Decode(&p))
		assert.Equal(t, mine.X, p.X)
		assert.Equal(t, mine.Y, p.Y)
	case <-time.After(time.Second):
		t.Fatal("событие mines.hit не получено")
	}
	assert.Contains(t, a.StatusLine(), "БУМ!")
}
