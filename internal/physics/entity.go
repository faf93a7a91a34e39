package physics

import (
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/vec"
)

// Face сторона, которой сущность коснулась тайла в последнем тике
type Face uint8

const (
	FaceNone Face = iota
	FaceLeft
	FaceRight
	FaceUp
	FaceDown
)

func (f Face) String() string {
	switch f {
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	case FaceUp:
		return "up"
	case FaceDown:
		return "down"
	}
	return "none"
}

// Entity физическое тело. Позиция - центр прямоугольника в единицах мира,
// ось Y направлена вверх.
type Entity struct {
	ID          uint64
	Kind        string
	Position    vec.Vec2Float
	Velocity    vec.Vec2Float
	HalfExtents vec.Vec2Float
	Collided    Face
	// Density 0 делает сущность призраком: столкновения с сущностями пропускаются
	Density float64
	Gravity bool
	Skin    render.SkinID

	bounds   AABB
	lastGood vec.Vec2Float
}

// Bounds ограничивающий прямоугольник на конец последнего тика
func (e *Entity) Bounds() AABB {
	return e.bounds
}

// Grounded стоит ли сущность на поверхности
func (e *Entity) Grounded() bool {
	return e.Collided == FaceDown
}

// Ghost не участвует в столкновениях с сущностями
func (e *Entity) Ghost() bool {
	return e.Density == 0
}

func (e *Entity) refreshBounds() {
	e.bounds = BoundsOf(e.Position, e.HalfExtents)
}

// EntitySpec параметры создания сущности
type EntitySpec struct {
	Kind        string
	Position    vec.Vec2Float
	Velocity    vec.Vec2Float
	HalfExtents vec.Vec2Float
	Density     float64
	Gravity     bool
	Skin        render.SkinID
}

// Snapshot копия состояния сущности для внешних потребителей
type Snapshot struct {
	ID          uint64        `json:"id"`
	Kind        string        `json:"kind,omitempty"`
	Position    vec.Vec2Float `json:"position"`
	Velocity    vec.Vec2Float `json:"velocity"`
	HalfExtents vec.Vec2Float `json:"half_extents"`
	Collided    string        `json:"collided"`
	Density     float64       `json:"density"`
	Gravity     bool          `json:"gravity"`
	Skin        string        `json:"skin,omitempty"`
}

// Spec параметры, по которым сущность создается заново.
// Контакт не переносится: он вычисляется первым тиком.
func (s Snapshot) Spec() EntitySpec {
	return EntitySpec{
		Kind:        s.Kind,
		Position:    s.Position,
		Velocity:    s.Velocity,
		HalfExtents: s.HalfExtents,
		Density:     s.Density,
		Gravity:     s.Gravity,
		Skin:        render.SkinID(s.Skin),
	}
}

// Snapshot возвращает копию состояния
func (e *Entity) Snapshot() Snapshot {
	return Snapshot{
		ID:          e.ID,
		Kind:        e.Kind,
		Position:    e.Position,
		Velocity:    e.Velocity,
		HalfExtents: e.HalfExtents,
		Collided:    e.Collided.String(),
		Density:     e.Density,
		Gravity:     e.Gravity,
		Skin:        string(e.Skin),
	}
}
