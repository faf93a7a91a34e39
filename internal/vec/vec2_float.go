package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой.
// Все операции возвращают новое значение, исходный вектор не меняется.
type Vec2Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero нулевой вектор
var Zero = Vec2Float{}

// ToVec2 преобразует в целочисленные координаты (с округлением вниз)
func (v Vec2Float) ToVec2() Vec2 {
	return Vec2{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Y: float64(v.Y)}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Scale умножает компоненты на разные множители
func (v Vec2Float) Scale(sx, sy float64) Vec2Float {
	return Vec2Float{X: v.X * sx, Y: v.Y * sy}
}

// MulVec покомпонентное умножение
func (v Vec2Float) MulVec(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X * other.X, Y: v.Y * other.Y}
}

// DivVec покомпонентное деление
func (v Vec2Float) DivVec(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X / other.X, Y: v.Y / other.Y}
}

// Neg меняет знак обеих компонент
func (v Vec2Float) Neg() Vec2Float {
	return Vec2Float{X: -v.X, Y: -v.Y}
}

// Rotate поворачивает вектор вокруг начала координат против часовой стрелки
func (v Vec2Float) Rotate(degrees float64) Vec2Float {
	if degrees == 0 {
		return v
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec2Float{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Mod возвращает неотрицательный остаток по каждой оси.
// Ось пропускается, если делитель не конечен или не положителен.
func (v Vec2Float) Mod(mx, my float64) Vec2Float {
	return Vec2Float{X: posModFloat(v.X, mx), Y: posModFloat(v.Y, my)}
}

func posModFloat(a, m float64) float64 {
	if m <= 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return a
	}
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	// -0.0 и погрешность math.Mod на границе
	if r >= m {
		r = 0
	}
	return r
}

// Floor округляет обе компоненты вниз
func (v Vec2Float) Floor() Vec2Float {
	return Vec2Float{X: math.Floor(v.X), Y: math.Floor(v.Y)}
}

// FloorTo округляет вниз до заданного числа знаков после запятой
func (v Vec2Float) FloorTo(place int) Vec2Float {
	p := math.Pow(10, float64(place))
	return Vec2Float{X: math.Floor(v.X*p) / p, Y: math.Floor(v.Y*p) / p}
}

// Clamp ограничивает компоненты диапазоном [lo, hi]
func (v Vec2Float) Clamp(lo, hi Vec2Float) Vec2Float {
	return Vec2Float{
		X: math.Max(lo.X, math.Min(hi.X, v.X)),
		Y: math.Max(lo.Y, math.Min(hi.Y, v.Y)),
	}
}

// Min покомпонентный минимум
func (v Vec2Float) Min(other Vec2Float) Vec2Float {
	return Vec2Float{X: math.Min(v.X, other.X), Y: math.Min(v.Y, other.Y)}
}

// Max покомпонентный максимум
func (v Vec2Float) Max(other Vec2Float) Vec2Float {
	return Vec2Float{X: math.Max(v.X, other.X), Y: math.Max(v.Y, other.Y)}
}

// Abs модуль каждой компоненты
func (v Vec2Float) Abs() Vec2Float {
	return Vec2Float{X: math.Abs(v.X), Y: math.Abs(v.Y)}
}

// Sign знак каждой компоненты (-1, 0, 1)
func (v Vec2Float) Sign() Vec2Float {
	return Vec2Float{X: sign(v.X), Y: sign(v.Y)}
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// IsFinite сообщает, что обе компоненты конечны
func (v Vec2Float) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}
