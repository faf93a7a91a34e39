package world

import (
	"fmt"
	"math"

	"github.com/annel0/tileworld/internal/vec"
)

// MinScale нижняя граница масштаба камеры
const MinScale = 1e-3

// quantizeEpsilon компенсирует погрешность при округлении к клетке
const quantizeEpsilon = 1e-6

// Camera камера: позиция в единицах мира, поворот в градусах, масштаб
type Camera struct {
	Position vec.Vec2Float
	Rotation float64
	Scale    float64
}

// Transform переводит координаты окна (клетки) в экранные и обратно.
// Окно имеет размер viewport клеток, его начало (OriginCell) привязано
// к позиции камеры.
type Transform struct {
	camera   Camera
	viewport vec.Vec2
	tileSize float64
	// worldWidth ширина мира в единицах мира для тора, 0 без тора
	worldWidth float64
}

// ViewportForScreen число клеток окна для экрана w x h единиц:
// floor(max(w,h)/tile) + 3 по обеим осям (запас на поворот и край)
func ViewportForScreen(w, h int, tileSize float64) vec.Vec2 {
	if tileSize <= 0 {
		return vec.Vec2{X: 3, Y: 3}
	}
	n := int(math.Floor(float64(max(w, h))/tileSize)) + 3
	if n < 1 {
		n = 1
	}
	return vec.Vec2{X: n, Y: n}
}

// NewTransform создает преобразование координат. Некорректные масштаб,
// размер тайла и окно отклоняются здесь, а не при каждом кадре.
func NewTransform(camera Camera, viewport vec.Vec2, tileSize float64) (*Transform, error) {
	if !(camera.Scale > 0) || math.IsInf(camera.Scale, 0) {
		return nil, fmt.Errorf("%w: масштаб камеры должен быть > 0, получено %v", ErrConfiguration, camera.Scale)
	}
	if !(tileSize > 0) || math.IsInf(tileSize, 0) {
		return nil, fmt.Errorf("%w: размер тайла должен быть > 0, получено %v", ErrConfiguration, tileSize)
	}
	if viewport.X <= 0 || viewport.Y <= 0 {
		return nil, fmt.Errorf("%w: пустое окно %dx%d", ErrConfiguration, viewport.X, viewport.Y)
	}
	if !camera.Position.IsFinite() {
		camera.Position = vec.Zero
	}
	return &Transform{camera: camera, viewport: viewport, tileSize: tileSize}, nil
}

// ForGrid создает преобразование с параметрами сетки (размер тайла, тор)
func ForGrid(g *Grid, camera Camera, viewport vec.Vec2) (*Transform, error) {
	t, err := NewTransform(camera, viewport, g.TileSize())
	if err != nil {
		return nil, err
	}
	if g.Wrap() {
		t.worldWidth = float64(g.Width()) * g.TileSize()
	}
	return t, nil
}

// Camera текущее состояние камеры
func (t *Transform) Camera() Camera { return t.camera }

// Viewport размер окна в клетках
func (t *Transform) Viewport() vec.Vec2 { return t.viewport }

// TileSize размер тайла
func (t *Transform) TileSize() float64 { return t.tileSize }

// SetViewport меняет размер окна (пустое окно игнорируется)
func (t *Transform) SetViewport(v vec.Vec2) {
	if v.X > 0 && v.Y > 0 {
		t.viewport = v
	}
}

// SetScale меняет масштаб, ограничивая его снизу MinScale
func (t *Transform) SetScale(s float64) {
	if math.IsNaN(s) || s < MinScale {
		s = MinScale
	}
	if math.IsInf(s, 1) {
		return
	}
	t.camera.Scale = s
}

// SetRotation задает поворот камеры в градусах
func (t *Transform) SetRotation(deg float64) {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return
	}
	t.camera.Rotation = math.Mod(deg, 360)
}

// SetPosition перемещает камеру, сворачивая X по ширине мира
func (t *Transform) SetPosition(p vec.Vec2Float) {
	if !p.IsFinite() {
		return
	}
	t.camera.Position = p.Mod(t.worldWidth, math.Inf(1))
}

// MoveBy сдвигает камеру
func (t *Transform) MoveBy(d vec.Vec2Float) {
	t.SetPosition(t.camera.Position.Add(d))
}

// CenterOffset смещение от позиции камеры до мировой точки в центре экрана
// (при масштабе 1)
func (t *Transform) CenterOffset() vec.Vec2Float {
	return vec.Vec2Float{
		X: float64(t.viewport.X)/2 - 1,
		Y: float64(t.viewport.Y)/2 + 1,
	}.Mul(t.tileSize)
}

// CenterOn ставит камеру так, чтобы точка мира оказалась в центре экрана
func (t *Transform) CenterOn(p vec.Vec2Float) {
	t.SetPosition(p.Sub(t.CenterOffset()))
}

// OriginCell клетка мира, соответствующая клетке (0,0) окна
func (t *Transform) OriginCell() vec.Vec2 {
	return t.camera.Position.Mul(1 / t.tileSize).ToVec2()
}

// WorldToScreen переводит координаты окна (в клетках) в экранные единицы
func (t *Transform) WorldToScreen(p vec.Vec2Float) vec.Vec2Float {
	half := vec.FromVec2(t.viewport).Mul(0.5)
	q := p.Mul(t.camera.Scale)                                // 1
	q = q.Sub(half)                                           // 2
	q = q.Add(vec.Vec2Float{X: 1, Y: -1})                     // 3
	q = q.Mul(t.tileSize)                                     // 4
	q = q.Sub(t.camera.Position.Mod(t.tileSize, t.tileSize)) // 5
	q = q.Rotate(t.camera.Rotation)                           // 6
	return q.Scale(-1, 1)                                     // 7
}

// ScreenToWorld обратное преобразование, округляющее к клетке окна
func (t *Transform) ScreenToWorld(x, y float64) vec.Vec2 {
	return t.ScreenToLocal(x, y).Add(vec.Vec2Float{X: quantizeEpsilon, Y: quantizeEpsilon}).ToVec2()
}

// ScreenToLocal обратное преобразование без округления
func (t *Transform) ScreenToLocal(x, y float64) vec.Vec2Float {
	half := vec.FromVec2(t.viewport).Mul(0.5)
	q := vec.Vec2Float{X: x, Y: y}.Scale(-1, 1)
	q = q.Rotate(-t.camera.Rotation)
	q = q.Add(t.camera.Position.Mod(t.tileSize, t.tileSize))
	q = q.Mul(1 / t.tileSize)
	q = q.Sub(vec.Vec2Float{X: 1, Y: -1})
	q = q.Add(half)
	return q.Mul(1 / t.camera.Scale)
}

// ScreenToCell переводит экранную точку в клетку сетки (X свернут при торе)
func (t *Transform) ScreenToCell(x, y float64, gridWidth int) vec.Vec2 {
	c := t.ScreenToWorld(x, y).Add(t.OriginCell())
	if t.worldWidth > 0 {
		c = c.Wrap(gridWidth)
	}
	return c
}

// LocalOf переводит точку мира (единицы мира) в координаты окна (клетки).
// При торе берется ближайшая к центру экрана копия точки.
func (t *Transform) LocalOf(p vec.Vec2Float) vec.Vec2Float {
	if t.worldWidth > 0 {
		center := t.camera.Position.X + t.CenterOffset().X
		dx := math.Mod(p.X-center+t.worldWidth/2, t.worldWidth)
		if dx < 0 {
			dx += t.worldWidth
		}
		p.X = center + dx - t.worldWidth/2
	}
	return p.Mul(1 / t.tileSize).Sub(vec.FromVec2(t.OriginCell()))
}

// ScreenOfWorldPoint экранная позиция точки мира
func (t *Transform) ScreenOfWorldPoint(p vec.Vec2Float) vec.Vec2Float {
	return t.WorldToScreen(t.LocalOf(p))
}

// DrawableRotation поворот, который нужно задать drawable-объектам
func (t *Transform) DrawableRotation() float64 {
	return -t.camera.Rotation
}
