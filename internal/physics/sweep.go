package physics

import (
	"math"

	"github.com/annel0/tileworld/internal/world/tile"
)

// footprintEpsilon сужает поперечный размер сущности, чтобы касание
// поверхности вдоль оси движения не считалось пересечением
const footprintEpsilon = 1e-6

// TileField тайловое поле, по которому движутся сущности
type TileField interface {
	TileSize() float64
	Width() int
	Wrap() bool
	TypeAt(x, y int) tile.TypeID
	IsSolidAt(id tile.TypeID, fx, fy float64) bool
}

// sweeper выполняет пошаговое перемещение по одной оси с разрешением
// столкновений на уровне подъячеек
type sweeper struct {
	field TileField
	tile  float64
	sub   float64
}

func newSweeper(field TileField) sweeper {
	ts := field.TileSize()
	return sweeper{field: field, tile: ts, sub: ts / tile.MaskResolution}
}

// solidSub проверяет подъячейку с мировыми индексами (col, row)
func (s sweeper) solidSub(col, row int) bool {
	x := (float64(col) + 0.5) * s.sub
	y := (float64(row) + 0.5) * s.sub
	cx := math.Floor(x / s.tile)
	cy := math.Floor(y / s.tile)
	id := s.field.TypeAt(int(cx), int(cy))
	if id == tile.EmptyID {
		return false
	}
	return s.field.IsSolidAt(id, x/s.tile-cx, y/s.tile-cy)
}

// span индексы подъячеек, покрывающих отрезок [lo, hi)
func (s sweeper) span(lo, hi float64) (first, last int) {
	first = int(math.Floor((lo + footprintEpsilon) / s.sub))
	last = int(math.Ceil((hi-footprintEpsilon)/s.sub)) - 1
	return first, last
}

// solidRow есть ли твердая подъячейка в строке row в пределах столбцов
func (s sweeper) solidRow(row, c0, c1 int) bool {
	for c := c0; c <= c1; c++ {
		if s.solidSub(c, row) {
			return true
		}
	}
	return false
}

// solidCol есть ли твердая подъячейка в столбце col в пределах строк
func (s sweeper) solidCol(col, r0, r1 int) bool {
	for r := r0; r <= r1; r++ {
		if s.solidSub(col, r) {
			return true
		}
	}
	return false
}

// sweepY двигает сущность по вертикали на e.Velocity.Y.
// Возвращает true при столкновении.
func (s sweeper) sweepY(e *Entity) bool {
	dist := math.Abs(e.Velocity.Y)
	dir := math.Copysign(1, e.Velocity.Y)
	c0, c1 := s.span(e.Position.X-e.HalfExtents.X, e.Position.X+e.HalfExtents.X)

	for dist > 0 {
		step := math.Min(dist, s.tile)
		if dir < 0 {
			edge := e.Position.Y - e.HalfExtents.Y
			top := int(math.Ceil(edge/s.sub)) - 1
			bottom := int(math.Floor((edge - step) / s.sub))
			for r := top; r >= bottom; r-- {
				if s.solidRow(r, c0, c1) {
					e.Position.Y = float64(r+1)*s.sub + e.HalfExtents.Y
					e.Velocity.Y = 0
					e.Collided = FaceDown
					return true
				}
			}
			e.Position.Y -= step
		} else {
			edge := e.Position.Y + e.HalfExtents.Y
			bottom := int(math.Floor(edge / s.sub))
			top := int(math.Ceil((edge+step)/s.sub)) - 1
			for r := bottom; r <= top; r++ {
				if s.solidRow(r, c0, c1) {
					e.Position.Y = float64(r)*s.sub - e.HalfExtents.Y
					e.Velocity.Y = 0
					e.Collided = FaceUp
					return true
				}
			}
			e.Position.Y += step
		}
		dist -= step
	}
	return false
}

// sweepX двигает сущность по горизонтали на e.Velocity.X.
// Возвращает true при столкновении.
func (s sweeper) sweepX(e *Entity) bool {
	dist := math.Abs(e.Velocity.X)
	dir := math.Copysign(1, e.Velocity.X)
	r0, r1 := s.span(e.Position.Y-e.HalfExtents.Y, e.Position.Y+e.HalfExtents.Y)

	for dist > 0 {
		step := math.Min(dist, s.tile)
		if dir < 0 {
			edge := e.Position.X - e.HalfExtents.X
			right := int(math.Ceil(edge/s.sub)) - 1
			left := int(math.Floor((edge - step) / s.sub))
			for c := right; c >= left; c-- {
				if s.solidCol(c, r0, r1) {
					e.Position.X = float64(c+1)*s.sub + e.HalfExtents.X
					e.Velocity.X = 0
					e.Collided = FaceLeft
					return true
				}
			}
			e.Position.X -= step
		} else {
			edge := e.Position.X + e.HalfExtents.X
			left := int(math.Floor(edge / s.sub))
			right := int(math.Ceil((edge+step)/s.sub)) - 1
			for c := left; c <= right; c++ {
				if s.solidCol(c, r0, r1) {
					e.Position.X = float64(c)*s.sub - e.HalfExtents.X
					e.Velocity.X = 0
					e.Collided = FaceRight
					return true
				}
			}
			e.Position.X += step
		}
		dist -= step
	}
	return false
}
