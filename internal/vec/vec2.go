package vec

import "math"

// Vec2 представляет целочисленные координаты клетки сетки
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Wrap сворачивает X по ширине мира (тор по горизонтали), Y не трогает
func (v Vec2) Wrap(width int) Vec2 {
	if width <= 0 {
		return v
	}
	return Vec2{X: PosMod(v.X, width), Y: v.Y}
}

// InBounds проверяет, что координаты лежат в прямоугольнике [0,w)x[0,h)
func (v Vec2) InBounds(w, h int) bool {
	return v.X >= 0 && v.X < w && v.Y >= 0 && v.Y < h
}

// ToIndex возвращает линейный индекс клетки в хранилище по столбцам
func (v Vec2) ToIndex(height int) int {
	return v.X*height + v.Y
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// PosMod возвращает неотрицательный остаток от деления
func PosMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
