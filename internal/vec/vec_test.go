package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Wrap(t *testing.T) {
	assert.Equal(t, Vec2{X: 9, Y: 3}, Vec2{X: -1, Y: 3}.Wrap(10), "отрицательный X должен свернуться")
	assert.Equal(t, Vec2{X: 0, Y: -4}, Vec2{X: 20, Y: -4}.Wrap(10), "Y не сворачивается")
	assert.Equal(t, Vec2{X: 25, Y: 0}, Vec2{X: 25, Y: 0}.Wrap(0), "ширина 0 отключает сворачивание")
}

func TestVec2FloatValueSemantics(t *testing.T) {
	a := Vec2Float{X: 1, Y: 2}
	b := a.Add(Vec2Float{X: 3, Y: 4})

	assert.Equal(t, Vec2Float{X: 1, Y: 2}, a, "Add не должен менять исходный вектор")
	assert.Equal(t, Vec2Float{X: 4, Y: 6}, b)
	assert.Equal(t, Vec2Float{X: 2, Y: -6}, a.Scale(2, -3))
	assert.Equal(t, Vec2Float{X: -1, Y: -2}, a.Neg())
}

func TestVec2FloatRotate(t *testing.T) {
	r := Vec2Float{X: 1, Y: 0}.Rotate(90)
	assert.InDelta(t, 0, r.X, 1e-9)
	assert.InDelta(t, 1, r.Y, 1e-9)

	back := Vec2Float{X: 3, Y: -7}.Rotate(33).Rotate(-33)
	assert.InDelta(t, 3, back.X, 1e-9)
	assert.InDelta(t, -7, back.Y, 1e-9)
}

func TestVec2FloatMod(t *testing.T) {
	assert.Equal(t, Vec2Float{X: 15, Y: 5}, Vec2Float{X: -5, Y: 25}.Mod(20, 20))
	assert.Equal(t, Vec2Float{X: -5, Y: 5}, Vec2Float{X: -5, Y: 25}.Mod(math.Inf(1), 20), "бесконечный делитель пропускает ось")
	assert.Equal(t, Vec2Float{X: -5, Y: 25}, Vec2Float{X: -5, Y: 25}.Mod(0, -1))
}

func TestVec2FloatClampAndFinite(t *testing.T) {
	v := Vec2Float{X: 50, Y: -50}.Clamp(Vec2Float{X: -10, Y: -20}, Vec2Float{X: 10, Y: 20})
	assert.Equal(t, Vec2Float{X: 10, Y: -20}, v)

	assert.True(t, v.IsFinite())
	assert.False(t, Vec2Float{X: math.NaN()}.IsFinite())
	assert.False(t, Vec2Float{Y: math.Inf(-1)}.IsFinite())
}

func TestVec2FloatFloor(t *testing.T) {
	assert.Equal(t, Vec2{X: -1, Y: 2}, Vec2Float{X: -0.5, Y: 2.9}.ToVec2())
	assert.Equal(t, Vec2Float{X: 1.23, Y: -1.24}, Vec2Float{X: 1.239, Y: -1.231}.FloorTo(2))
	assert.Equal(t, Vec2Float{X: 1, Y: -1}, Vec2Float{X: 0.1, Y: -3}.Sign())
}
