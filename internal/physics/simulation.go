package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
)

// StatsEvery период (в тиках) отладочной записи статистики хеша
const StatsEvery = 600

// Params параметры шага симуляции
type Params struct {
	// Gravity ускорение вниз за тик (единицы мира)
	Gravity float64
	// Drag доля скорости, теряемая за тик по каждой оси
	Drag vec.Vec2Float
	// ContactDrag дополнительное трение, пока сущность касается поверхности
	ContactDrag vec.Vec2Float
	// MaxSpeed предел скорости по модулю для каждой оси
	MaxSpeed vec.Vec2Float
	// MaxCoordinate предел координат по модулю
	MaxCoordinate float64
}

// DefaultParams параметры по умолчанию: скорость X делится пополам
// каждый тик, гравитация 1, предел скорости (10, 20)
func DefaultParams() Params {
	return Params{
		Gravity:       1,
		Drag:          vec.Vec2Float{X: 0.5, Y: 0},
		ContactDrag:   vec.Vec2Float{X: 0.25, Y: 0},
		MaxSpeed:      vec.Vec2Float{X: 10, Y: 20},
		MaxCoordinate: 1e7,
	}
}

// Validate проверяет параметры
func (p Params) Validate() error {
	if !(p.MaxSpeed.X > 0) || !(p.MaxSpeed.Y > 0) || !p.MaxSpeed.IsFinite() {
		return fmt.Errorf("%w: max speed %v", world.ErrConfiguration, p.MaxSpeed)
	}
	if p.Drag.X < 0 || p.Drag.X > 1 || p.Drag.Y < 0 || p.Drag.Y > 1 {
		return fmt.Errorf("%w: drag %v вне [0,1]", world.ErrConfiguration, p.Drag)
	}
	if p.ContactDrag.X < 0 || p.ContactDrag.X > 1 || p.ContactDrag.Y < 0 || p.ContactDrag.Y > 1 {
		return fmt.Errorf("%w: contact drag %v вне [0,1]", world.ErrConfiguration, p.ContactDrag)
	}
	if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
		return fmt.Errorf("%w: gravity %v", world.ErrConfiguration, p.Gravity)
	}
	if !(p.MaxCoordinate > 0) {
		return fmt.Errorf("%w: max coordinate %v", world.ErrConfiguration, p.MaxCoordinate)
	}
	return nil
}

// TickStats статистика одного тика
type TickStats struct {
	Entities int
	Buckets  int
	// Contacts столкновения с тайлами по сторонам
	Contacts map[Face]int
	// Pairs пары сущностей, получившие импульс
	Pairs int
}

// pairKey неупорядоченная пара сущностей
type pairKey struct {
	a, b uint64
}

func makePair(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Simulation шаговый симулятор сущностей на тайловом поле.
// Рассчитан на одного писателя; синхронизацию обеспечивает владелец.
type Simulation struct {
	field    TileField
	params   Params
	sweeper  sweeper
	hash     *SpatialHash
	entities map[uint64]*Entity
	order    []uint64
	nextID   uint64
	ticks    uint64
	logger   *logging.Logger
}

// NewSimulation создает симулятор
func NewSimulation(field TileField, params Params) (*Simulation, error) {
	if field == nil {
		return nil, fmt.Errorf("%w: не задано тайловое поле", world.ErrConfiguration)
	}
	if !(field.TileSize() > 0) {
		return nil, fmt.Errorf("%w: размер тайла %v", world.ErrConfiguration, field.TileSize())
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Simulation{
		field:    field,
		params:   params,
		sweeper:  newSweeper(field),
		hash:     NewSpatialHash(field.TileSize()),
		entities: make(map[uint64]*Entity),
		nextID:   1,
		logger:   logging.GetPhysicsLogger(),
	}, nil
}

// SetLogger заменяет логгер симуляции
func (s *Simulation) SetLogger(l *logging.Logger) {
	s.logger = l
}

// Params текущие параметры
func (s *Simulation) Params() Params { return s.params }

// Ticks число выполненных тиков
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Hash пространственный хеш последнего тика
func (s *Simulation) Hash() *SpatialHash { return s.hash }

// CreateEntity создает сущность. Полуразмеры должны быть строго положительны.
func (s *Simulation) CreateEntity(spec EntitySpec) (uint64, error) {
	if !(spec.HalfExtents.X > 0) || !(spec.HalfExtents.Y > 0) || !spec.HalfExtents.IsFinite() {
		return 0, fmt.Errorf("%w: полуразмеры %v", ErrInvalidSize, spec.HalfExtents)
	}
	if spec.Density < 0 || math.IsNaN(spec.Density) {
		return 0, fmt.Errorf("%w: плотность %v", ErrInvalidSize, spec.Density)
	}
	if !spec.Position.IsFinite() {
		spec.Position = vec.Zero
	}
	if !spec.Velocity.IsFinite() {
		spec.Velocity = vec.Zero
	}

	id := s.nextID
	s.nextID++

	e := &Entity{
		ID:          id,
		Kind:        spec.Kind,
		Position:    spec.Position,
		Velocity:    spec.Velocity,
		HalfExtents: spec.HalfExtents,
		Density:     spec.Density,
		Gravity:     spec.Gravity,
		Skin:        spec.Skin,
		lastGood:    spec.Position,
	}
	e.refreshBounds()
	s.entities[id] = e
	s.order = append(s.order, id)
	return id, nil
}

// Entity возвращает сущность по ID
func (s *Simulation) Entity(id uint64) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Entities возвращает сущности в порядке создания
func (s *Simulation) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

// Len число сущностей
func (s *Simulation) Len() int { return len(s.entities) }

func (s *Simulation) lookup(id uint64) (*Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: сущность %d", world.ErrInvalidReference, id)
	}
	return e, nil
}

// MoveEntity переносит сущность в точку
func (s *Simulation) MoveEntity(id uint64, pos vec.Vec2Float) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !pos.IsFinite() {
		return nil
	}
	e.Position = pos
	e.lastGood = pos
	e.refreshBounds()
	return nil
}

// NudgeEntity добавляет скорость и сдвигает сущность на единицу
// в направлении толчка
func (s *Simulation) NudgeEntity(id uint64, d vec.Vec2Float) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !d.IsFinite() {
		return nil
	}
	e.Velocity = e.Velocity.Add(d)
	e.Position = e.Position.Add(d.Sign())
	e.refreshBounds()
	return nil
}

// SetGravity включает или выключает гравитацию сущности
func (s *Simulation) SetGravity(id uint64, enabled bool) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.Gravity = enabled
	return nil
}

// DestroyEntity удаляет сущность
func (s *Simulation) DestroyEntity(id uint64) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.entities, id)
	i := sort.Search(len(s.order), func(i int) bool { return s.order[i] >= id })
	if i < len(s.order) && s.order[i] == id {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
	return nil
}

// Tick выполняет один шаг симуляции для всех сущностей
func (s *Simulation) Tick() TickStats {
	stats := TickStats{Entities: len(s.order), Contacts: make(map[Face]int)}

	s.hash.Reset()
	for _, id := range s.order {
		s.hash.Insert(s.entities[id])
	}
	stats.Buckets = s.hash.BucketCount()

	for _, id := range s.order {
		e := s.entities[id]
		s.integrate(e)
		if e.Collided != FaceNone {
			stats.Contacts[e.Collided]++
		}
	}

	stats.Pairs = s.resolvePairs()

	for _, id := range s.order {
		s.finish(s.entities[id])
	}
	s.ticks++
	if s.ticks%StatsEvery == 0 {
		s.logger.Debug("Тик %d: %s, пар %d", s.ticks, s.hash.GetStats(), stats.Pairs)
	}
	return stats
}

// integrate шаги 1-4: ограничения, трение и гравитация, перемещение по осям
func (s *Simulation) integrate(e *Entity) {
	p := s.params

	s.sanitize(e)

	wasInContact := e.Collided != FaceNone
	e.Velocity = e.Velocity.Scale(1-p.Drag.X, 1-p.Drag.Y)
	if wasInContact {
		e.Velocity = e.Velocity.Scale(1-p.ContactDrag.X, 1-p.ContactDrag.Y)
	}
	if e.Gravity {
		e.Velocity.Y -= p.Gravity
	}
	e.Velocity = e.Velocity.Clamp(p.MaxSpeed.Neg(), p.MaxSpeed)

	e.Collided = FaceNone

	vertical := s.sweeper.sweepY(e)
	face := e.Collided
	horizontal := s.sweeper.sweepX(e)
	// вертикальный контакт важнее для логики прыжка
	if vertical && horizontal {
		e.Collided = face
	}
}

// sanitize шаг 1: заменяет неконечные значения и ограничивает диапазон
func (s *Simulation) sanitize(e *Entity) {
	p := s.params
	if math.IsNaN(e.Velocity.X) || math.IsInf(e.Velocity.X, 0) {
		e.Velocity.X = 0
	}
	if math.IsNaN(e.Velocity.Y) || math.IsInf(e.Velocity.Y, 0) {
		e.Velocity.Y = 0
	}
	e.Velocity = e.Velocity.Clamp(p.MaxSpeed.Neg(), p.MaxSpeed)

	if math.IsNaN(e.Position.X) || math.IsInf(e.Position.X, 0) {
		e.Position.X = e.lastGood.X
	}
	if math.IsNaN(e.Position.Y) || math.IsInf(e.Position.Y, 0) {
		e.Position.Y = e.lastGood.Y
	}
	limit := vec.Vec2Float{X: p.MaxCoordinate, Y: p.MaxCoordinate}
	e.Position = e.Position.Clamp(limit.Neg(), limit)
}

// resolvePairs шаг 5: импульсы между пересекающимися сущностями из одной
// корзины. Каждая пара обрабатывается один раз.
func (s *Simulation) resolvePairs() int {
	seen := make(map[pairKey]struct{})
	pairs := 0

	for _, id := range s.order {
		a := s.entities[id]
		if a.Ghost() {
			continue
		}
		for _, b := range s.hash.Query(a) {
			if b.ID == a.ID || b.Ghost() {
				continue
			}
			key := makePair(a.ID, b.ID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			if applyImpulse(a, b) {
				pairs++
			}
		}
	}
	return pairs
}

// applyImpulse расталкивает две сущности по оси наименьшего проникновения.
// Каждая получает импульс величиной в половину глубины проникновения.
func applyImpulse(a, b *Entity) bool {
	pen := Penetration(a.Position, a.HalfExtents, b.Position, b.HalfExtents)
	if pen == vec.Zero {
		return false
	}

	// a всегда с меньшим ID, чтобы совпадающие центры расталкивались детерминированно
	if a.ID > b.ID {
		a, b = b, a
	}

	if pen.X <= pen.Y {
		push := pen.X / 2
		if a.Position.X <= b.Position.X {
			a.Velocity.X -= push
			b.Velocity.X += push
		} else {
			a.Velocity.X += push
			b.Velocity.X -= push
		}
	} else {
		push := pen.Y / 2
		if a.Position.Y <= b.Position.Y {
			a.Velocity.Y -= push
			b.Velocity.Y += push
		} else {
			a.Velocity.Y += push
			b.Velocity.Y -= push
		}
	}
	return true
}

// finish шаг 6: повторное ограничение скорости, тор по X, границы
func (s *Simulation) finish(e *Entity) {
	p := s.params
	e.Velocity = e.Velocity.Clamp(p.MaxSpeed.Neg(), p.MaxSpeed)

	if s.field.Wrap() {
		width := float64(s.field.Width()) * s.field.TileSize()
		e.Position = e.Position.Mod(width, math.Inf(1))
	}
	if e.Position.IsFinite() {
		e.lastGood = e.Position
	}
	e.refreshBounds()
}
