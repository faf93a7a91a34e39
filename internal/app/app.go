// Package app собирает мир, симуляцию, сессию, хранилища и REST API
// из конфигурации и управляет их жизненным циклом.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/tileworld/internal/api"
	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/game"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/minigame"
	"github.com/annel0/tileworld/internal/observability"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/render/terminal"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// PlayerKey ключ позиции игрока в PositionRepo
const PlayerKey = "player"

// PlayerKind вид сущности игрока
const PlayerKind = "player"

// eventBuffer емкость шины событий мира
const eventBuffer = 1024

// Options параметры сборки приложения
type Options struct {
	Config *config.Config
	// Screen экран tcell; nil - headless-режим с render.Recorder
	Screen tcell.Screen
	// Minesweeper заменяет мир полем сапера без игрока
	Minesweeper bool
	// Mines число мин; 0 - каждая восьмая клетка
	Mines int
	// Snapshots внешнее хранилище снимков; приложение его не закрывает
	Snapshots *storage.WorldStorage
	// Registry регистр метрик; nil - новый регистр
	Registry *prometheus.Registry
}

// App собранное приложение
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	Types    *tile.Registry
	Skins    *render.StaticSkins
	Grid     *world.Grid
	Sim      *physics.Simulation
	Session  *game.Session
	Backend  render.Backend
	Terminal *terminal.Backend
	Mines    *minigame.Minesweeper

	Files         *storage.FileStore
	Snapshots     *storage.WorldStorage
	Positions     storage.PositionRepo
	ownsSnapshots bool

	Registry *prometheus.Registry
	API      *api.RestServer

	Events         eventbus.EventBus
	eventsExporter *eventbus.MetricsExporter
}

// New собирает приложение
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logging.GetGameLogger(), Registry: opts.Registry}
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}

	if err := a.buildWorld(opts); err != nil {
		return nil, err
	}
	if err := a.buildEvents(); err != nil {
		return nil, err
	}
	if err := a.buildSession(opts); err != nil {
		a.Events.Close()
		return nil, err
	}
	if err := a.openStorage(opts); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Server.Enabled {
		rs, err := api.NewRestServer(api.Config{
			Port:       fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
			Session:    a.Session,
			Snapshots:  a.Snapshots,
			WorldName:  cfg.World.Name,
			Registerer: a.Registry,
			Gatherer:   a.Registry,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.API = rs
	}
	return a, nil
}

// Config конфигурация приложения
func (a *App) Config() *config.Config {
	return a.cfg
}

// buildWorld регистрирует типы тайлов, создает сетку и заполняет ее
func (a *App) buildWorld(opts Options) error {
	cfg := a.cfg
	types := tile.NewRegistry()
	custom, err := cfg.TileTypes()
	if err != nil {
		return fmt.Errorf("%w: %w", world.ErrConfiguration, err)
	}
	for _, t := range custom {
		if err := types.Register(t); err != nil {
			return fmt.Errorf("%w: тайл %s: %w", world.ErrConfiguration, t.Name, err)
		}
	}
	if opts.Minesweeper {
		if err := minigame.RegisterTiles(types); err != nil {
			return fmt.Errorf("%w: тайлы сапера: %w", world.ErrConfiguration, err)
		}
	}

	skins := render.NewStaticSkins(types)
	skins.SetErrorSkin(render.SkinID(cfg.Render.ErrorSkin))
	for _, tc := range cfg.Tiles {
		if tc.Skin != "" {
			skins.Set(tile.TypeID(tc.ID), render.SkinID(tc.Skin))
		}
	}

	gridCfg := cfg.GridConfig()
	if opts.Minesweeper {
		gridCfg.Wrap = false
	}
	grid, err := world.NewGrid(gridCfg, types, skins)
	if err != nil {
		return err
	}
	a.Types, a.Skins, a.Grid = types, skins, grid

	if opts.Minesweeper {
		mines := opts.Mines
		if mines == 0 {
			mines = grid.Width() * grid.Height() / 8
		}
		ms, err := minigame.NewMinesweeper(grid, mines, rand.New(rand.NewSource(cfg.World.Seed)))
		if err != nil {
			return err
		}
		a.Mines = ms
		a.logger.Info("Сапер: поле %dx%d, %d мин", grid.Width(), grid.Height(), ms.Mines())
		return nil
	}
	if cfg.World.Generate {
		world.NewTerrainGenerator(cfg.World.Seed).Generate(grid)
		a.logger.Info("Мир сгенерирован: seed %d, %d непустых клеток", cfg.World.Seed, grid.Count())
	}
	return nil
}

// buildEvents создает шину событий с логированием и метриками
func (a *App) buildEvents() error {
	bus := eventbus.NewMemoryBus(eventBuffer)
	if _, err := eventbus.StartLoggingListener(context.Background(), bus, logging.GetEventsLogger()); err != nil {
		bus.Close()
		return err
	}
	exporter, err := eventbus.NewMetricsExporter(bus, a.Registry)
	if err != nil {
		bus.Close()
		return fmt.Errorf("регистрация метрик шины: %w", err)
	}
	a.Events, a.eventsExporter = bus, exporter
	return nil
}

// playerSpec игрок появляется у верхней границы в середине мира
func (a *App) playerSpec() *physics.EntitySpec {
	ts := a.Grid.TileSize()
	return &physics.EntitySpec{
		Kind:        PlayerKind,
		Position:    vec.Vec2Float{X: (float64(a.Grid.Width()/2) + 0.5) * ts, Y: float64(a.Grid.Height()-2) * ts},
		HalfExtents: vec.Vec2Float{X: ts * 0.4, Y: ts * 0.8},
		Density:     1,
		Gravity:     true,
		Skin:        "player",
	}
}

func (a *App) buildSession(opts Options) error {
	cfg := a.cfg
	sim, err := physics.NewSimulation(a.Grid, cfg.PhysicsParams())
	if err != nil {
		return err
	}
	metrics, err := observability.NewSimMetrics(a.Registry)
	if err != nil {
		return fmt.Errorf("регистрация метрик симуляции: %w", err)
	}

	ts := cfg.World.TileSize
	viewport := world.ViewportForScreen(cfg.Viewport.Width, cfg.Viewport.Height, ts)
	var backend render.Backend
	if opts.Screen != nil {
		tb := terminal.New(opts.Screen, terminal.Options{TileSize: ts})
		cols, rows := opts.Screen.Size()
		unit := vec.Vec2Float{X: ts / 2, Y: ts}
		viewport = world.ViewportForScreen(int(float64(cols)*unit.X), int(float64(rows)*unit.Y), ts)
		a.Terminal = tb
		backend = tb
	} else {
		backend = render.NewRecorder()
	}

	var player *physics.EntitySpec
	if !opts.Minesweeper {
		player = a.playerSpec()
	}
	session, err := game.NewSession(a.Grid, sim, backend, game.Options{
		Camera:   cfg.InitialCamera(),
		Viewport: viewport,
		Follow:   cfg.Camera.Follow,
		PanStep:  cfg.Camera.PanStep,
		Player:   player,
		Metrics:  metrics,
		Events:   a.Events,
	})
	if err != nil {
		return err
	}
	a.Sim, a.Backend, a.Session = sim, backend, session
	return nil
}

func (a *App) openStorage(opts Options) error {
	cfg := a.cfg
	if cfg.Storage.SaveFile != "" {
		a.Files = storage.NewFileStore(cfg.Storage.SaveFile)
	}

	switch {
	case opts.Snapshots != nil:
		a.Snapshots = opts.Snapshots
	case cfg.Storage.InMemory:
		ws, err := storage.NewInMemoryWorldStorage()
		if err != nil {
			return err
		}
		a.Snapshots, a.ownsSnapshots = ws, true
	case cfg.Storage.BadgerDir != "":
		ws, err := storage.NewWorldStorage(cfg.Storage.BadgerDir)
		if err != nil {
			return err
		}
		a.Snapshots, a.ownsSnapshots = ws, true
	}

	if a.Snapshots != nil {
		a.Positions = a.Snapshots.Positions(cfg.World.Name)
	} else {
		a.Positions = storage.NewMemoryPositionRepo()
	}
	return nil
}

// Restore загружает сохраненный мир, сущности и позицию игрока.
// Отсутствие сохранений не ошибка: остается сгенерированный мир.
func (a *App) Restore(ctx context.Context) error {
	if a.Mines != nil {
		return nil
	}

	loaded := false
	if a.Snapshots != nil {
		err := a.Session.Load(ctx, a.Snapshots.ForWorld(a.cfg.World.Name))
		switch {
		case err == nil:
			loaded = true
		case !errors.Is(err, storage.ErrNoSave):
			a.logger.Warn("Снимок мира %s не загружен: %v", a.cfg.World.Name, err)
		}
	}
	if !loaded && a.Files != nil {
		err := a.Session.Load(ctx, a.Files)
		if err != nil && !errors.Is(err, storage.ErrNoSave) {
			a.logger.Warn("Файл %s не загружен: %v", a.Files.Path(), err)
		}
	}

	if a.Snapshots != nil {
		entities, err := a.Snapshots.LoadEntities(ctx, a.cfg.World.Name)
		if err != nil {
			return err
		}
		for _, snap := range entities {
			if snap.Kind == PlayerKind {
				continue
			}
			if _, err := a.Session.CreateEntity(snap.Spec()); err != nil {
				a.logger.Warn("Сущность %d не восстановлена: %v", snap.ID, err)
			}
		}
	}

	if player := a.Session.Player(); player != 0 {
		pos, found, err := a.Positions.Load(ctx, PlayerKey)
		if err != nil {
			return err
		}
		if found {
			if err := a.Session.MoveEntity(player, pos); err != nil {
				return err
			}
			a.Session.ResetCamera()
		}
	}
	return nil
}

// Persist сохраняет мир, сущности и позицию игрока во все хранилища
func (a *App) Persist(ctx context.Context) error {
	if a.Mines != nil {
		return nil
	}

	var errs []error
	if a.Files != nil {
		errs = append(errs, a.Session.Save(ctx, a.Files))
	}
	if a.Snapshots != nil {
		errs = append(errs, a.Session.Save(ctx, a.Snapshots.ForWorld(a.cfg.World.Name)))
	}

	player := a.Session.Player()
	var others []physics.Snapshot
	for _, snap := range a.Session.Entities() {
		if snap.ID == player {
			errs = append(errs, a.Positions.Save(ctx, PlayerKey, snap.Position))
			continue
		}
		others = append(others, snap)
	}
	if a.Snapshots != nil {
		errs = append(errs, a.Snapshots.SaveEntities(ctx, a.cfg.World.Name, others))
	}
	return errors.Join(errs...)
}

// Close освобождает сессию, шину событий и хранилища
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Close()
	}
	if a.Events != nil {
		a.Events.Close()
	}
	if a.ownsSnapshots && a.Snapshots != nil {
		if err := a.Snapshots.Close(); err != nil {
			a.logger.Error("Ошибка закрытия хранилища: %v", err)
		}
	}
}
