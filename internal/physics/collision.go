package physics

import (
	"math"

	"github.com/annel0/tileworld/internal/vec"
)

// AABB прямоугольник, выровненный по осям
type AABB struct {
	Min, Max vec.Vec2Float
}

// BoundsOf строит прямоугольник по центру и полуразмерам
func BoundsOf(center, half vec.Vec2Float) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Corners возвращает четыре угла прямоугольника
func (b AABB) Corners() [4]vec.Vec2Float {
	return [4]vec.Vec2Float{
		{X: b.Min.X, Y: b.Min.Y}, // Левый нижний
		{X: b.Max.X, Y: b.Min.Y}, // Правый нижний
		{X: b.Min.X, Y: b.Max.Y}, // Левый верхний
		{X: b.Max.X, Y: b.Max.Y}, // Правый верхний
	}
}

// Center центр прямоугольника
func (b AABB) Center() vec.Vec2Float {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains проверяет, находится ли точка внутри прямоугольника
func (b AABB) Contains(p vec.Vec2Float) bool {
	return p.X >= b.Min.X && p.X < b.Max.X && p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// Overlaps проверяет пересечение двух прямоугольников
func (b AABB) Overlaps(o AABB) bool {
	return b.Max.X > o.Min.X && b.Min.X < o.Max.X &&
		b.Max.Y > o.Min.Y && b.Min.Y < o.Max.Y
}

// Penetration глубина взаимного проникновения по осям (0 без пересечения)
func Penetration(posA, halfA, posB, halfB vec.Vec2Float) vec.Vec2Float {
	dx := halfA.X + halfB.X - math.Abs(posA.X-posB.X)
	dy := halfA.Y + halfB.Y - math.Abs(posA.Y-posB.Y)
	if dx <= 0 || dy <= 0 {
		return vec.Zero
	}
	return vec.Vec2Float{X: dx, Y: dy}
}
