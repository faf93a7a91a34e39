// Package game связывает сетку, физику, преобразование координат и отрисовку
// в одну игровую сессию с единственным писателем.
package game

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/tileworld/internal/drawlist"
	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/observability"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// DefaultFollow доля расстояния до цели, проходимая камерой за кадр
const DefaultFollow = 0.2

// CursorSkin скин курсора
const CursorSkin render.SkinID = "cursor"

// Options параметры сессии
type Options struct {
	Camera world.Camera
	// Viewport размер окна в клетках
	Viewport vec.Vec2
	// Follow коэффициент следования камеры за игроком, 0 отключает
	Follow float64
	// PanStep шаг ручного сдвига камеры в единицах мира
	PanStep float64
	// Player параметры игрока; nil - сессия без игрока
	Player  *physics.EntitySpec
	Metrics *observability.SimMetrics
	// Events шина событий мира; nil - события не публикуются
	Events eventbus.EventBus
	Logger *logging.Logger
}

// Session игровая сессия. Все фазы и внешние изменения выполняются
// под мьютексом сессии.
type Session struct {
	mu sync.Mutex

	grid    *world.Grid
	sim     *physics.Simulation
	tr      *world.Transform
	backend render.Backend
	reducer *drawlist.Reducer

	entityHandles map[uint64]render.Handle
	cursorHandle  render.Handle

	player   uint64
	cursor   vec.Vec2
	selected tile.TypeID

	follow    float64
	following bool
	panStep   float64

	frames    *FrameTimer
	lastDraw  drawlist.FrameStats
	lastTick  physics.TickStats
	metrics   *observability.SimMetrics
	events    eventbus.EventBus
	logger    *logging.Logger
	tracer    trace.Tracer
	startedAt time.Time
}

// NewSession создает сессию поверх готовых сетки и симуляции
func NewSession(grid *world.Grid, sim *physics.Simulation, backend render.Backend, opts Options) (*Session, error) {
	if grid == nil || sim == nil || backend == nil {
		return nil, fmt.Errorf("%w: сессии нужны сетка, симуляция и бэкенд", world.ErrConfiguration)
	}
	if opts.Camera.Scale == 0 {
		opts.Camera.Scale = 1
	}
	if opts.Viewport.X <= 0 || opts.Viewport.Y <= 0 {
		opts.Viewport = vec.Vec2{X: 32, Y: 32}
	}
	if opts.Follow < 0 || opts.Follow > 1 || math.IsNaN(opts.Follow) {
		return nil, fmt.Errorf("%w: follow %v вне [0,1]", world.ErrConfiguration, opts.Follow)
	}
	if opts.PanStep <= 0 {
		opts.PanStep = grid.TileSize()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetGameLogger()
	}

	tr, err := world.ForGrid(grid, opts.Camera, opts.Viewport)
	if err != nil {
		return nil, err
	}

	s := &Session{
		grid:          grid,
		sim:           sim,
		tr:            tr,
		backend:       backend,
		reducer:       drawlist.NewReducer(backend, grid),
		entityHandles: make(map[uint64]render.Handle),
		selected:      tile.BlockID,
		follow:        opts.Follow,
		following:     opts.Follow > 0,
		panStep:       opts.PanStep,
		frames:        NewFrameTimer(DefaultFrameWindow),
		metrics:       opts.Metrics,
		events:        opts.Events,
		logger:        opts.Logger,
		tracer:        observability.Tracer(),
		startedAt:     time.Now(),
	}
	s.cursorHandle = backend.CreateDrawable(render.LayerCursor)
	backend.SetSkin(s.cursorHandle, CursorSkin)
	backend.SetVisible(s.cursorHandle, false)

	if opts.Player != nil {
		id, err := sim.CreateEntity(*opts.Player)
		if err != nil {
			return nil, fmt.Errorf("создание игрока: %w", err)
		}
		s.player = id
		if e, ok := sim.Entity(id); ok {
			tr.CenterOn(e.Position)
		}
	}

	s.logger.Info("Сессия создана: мир %dx%d, окно %dx%d, игрок %d",
		grid.Width(), grid.Height(), opts.Viewport.X, opts.Viewport.Y, s.player)
	return s, nil
}

// Player ID игрока (0 - игрока нет)
func (s *Session) Player() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// Camera текущее состояние камеры
func (s *Session) Camera() world.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Camera()
}

// Cursor клетка под курсором
func (s *Session) Cursor() vec.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Selected тип тайла, который ставит PlaceTile
func (s *Session) Selected() tile.TypeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Do выполняет fn под мьютексом сессии
func (s *Session) Do(fn func(g *world.Grid, sim *physics.Simulation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.grid, s.sim)
}

// Tick выполняет шаг физики
func (s *Session) Tick(ctx context.Context) physics.TickStats {
	_, span := s.tracer.Start(ctx, "session.tick")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	stats := s.sim.Tick()
	s.lastTick = stats

	contacts := make(map[string]int, len(stats.Contacts))
	for face, n := range stats.Contacts {
		contacts[face.String()] = n
	}
	s.metrics.ObserveTick(time.Since(start), stats.Entities, contacts)

	span.SetAttributes(
		attribute.Int("entities", stats.Entities),
		attribute.Int("buckets", stats.Buckets),
		attribute.Int("pairs", stats.Pairs),
	)
	return stats
}

// Draw ведет камеру за игроком, сжимает окно сетки и передает бэкенду
// тайлы, сущности и курсор
func (s *Session) Draw(ctx context.Context) drawlist.FrameStats {
	_, span := s.tracer.Start(ctx, "session.draw")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.followPlayer()
	stats := s.reducer.Draw(s.tr)
	s.drawEntities()
	s.drawCursor()
	s.lastDraw = stats

	s.metrics.ObserveDraw(time.Since(start), stats.Runs, stats.Handles)
	span.SetAttributes(
		attribute.Int("cells", stats.Cells),
		attribute.Int("runs", stats.Runs),
		attribute.Int("handles", stats.Handles),
	)

	if p, ok := s.backend.(render.Presenter); ok {
		p.Present()
	}
	return stats
}

// followPlayer сдвигает камеру на долю follow расстояния до цели
func (s *Session) followPlayer() {
	if !s.following || s.player == 0 {
		return
	}
	e, ok := s.sim.Entity(s.player)
	if !ok {
		return
	}
	cam := s.tr.Camera().Position
	target := e.Position.Sub(s.tr.CenterOffset())
	if s.grid.Wrap() {
		// ближайшая копия цели по X
		w := float64(s.grid.Width()) * s.grid.TileSize()
		dx := math.Mod(target.X-cam.X, w)
		if dx > w/2 {
			dx -= w
		} else if dx < -w/2 {
			dx += w
		}
		target.X = cam.X + dx
	}
	s.tr.SetPosition(cam.Add(target.Sub(cam).Mul(s.follow)))
}

// drawEntities синхронизирует drawable-объекты сущностей с симуляцией
func (s *Session) drawEntities() {
	seen := make(map[uint64]struct{}, s.sim.Len())
	cam := s.tr.Camera()
	rotation := s.tr.DrawableRotation()

	for _, e := range s.sim.Entities() {
		seen[e.ID] = struct{}{}
		h, ok := s.entityHandles[e.ID]
		if !ok {
			h = s.backend.CreateDrawable(render.LayerEntities)
			s.entityHandles[e.ID] = h
		}
		size := e.HalfExtents.Mul(2 / s.grid.TileSize() * cam.Scale)
		s.backend.SetVisible(h, true)
		s.backend.SetPosition(h, s.tr.ScreenOfWorldPoint(e.Position))
		s.backend.SetRotation(h, rotation)
		s.backend.SetSkin(h, e.Skin)
		s.backend.SetScale(h, size)
	}

	for id, h := range s.entityHandles {
		if _, ok := seen[id]; !ok {
			s.backend.DestroyDrawable(h)
			delete(s.entityHandles, id)
		}
	}
}

func (s *Session) drawCursor() {
	ts := s.grid.TileSize()
	center := vec.FromVec2(s.cursor).Add(vec.Vec2Float{X: 0.5, Y: 0.5}).Mul(ts)
	cam := s.tr.Camera()
	s.backend.SetPosition(s.cursorHandle, s.tr.ScreenOfWorldPoint(center))
	s.backend.SetRotation(s.cursorHandle, s.tr.DrawableRotation())
	s.backend.SetScale(s.cursorHandle, vec.Vec2Float{X: cam.Scale, Y: cam.Scale})
	s.backend.SetVisible(s.cursorHandle, s.cursor.InBounds(s.grid.Width(), s.grid.Height()))
}

// Close освобождает все drawable-объекты сессии
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reducer.Release()
	for id, h := range s.entityHandles {
		s.backend.DestroyDrawable(h)
		delete(s.entityHandles, id)
	}
	if s.cursorHandle != render.InvalidHandle {
		s.backend.DestroyDrawable(s.cursorHandle)
		s.cursorHandle = render.InvalidHandle
	}
	s.logger.Info("Сессия закрыта после %s", time.Since(s.startedAt).Round(time.Second))
}
