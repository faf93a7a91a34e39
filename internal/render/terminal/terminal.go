// Package terminal отладочный бэкенд отрисовки поверх tcell: растеризует
// drawable-объекты в символы терминала.
package terminal

import (
	"math"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/vec"
)

// Options параметры растеризации
type Options struct {
	// TileSize размер тайла в экранных единицах при масштабе 1
	TileSize float64
	// Unit экранных единиц на один символ терминала по осям.
	// По умолчанию символ занимает половину тайла по X и целый по Y.
	Unit   vec.Vec2Float
	Glyphs Glyphs
	Logger *logging.Logger
}

type drawable struct {
	handle   render.Handle
	layer    render.Layer
	position vec.Vec2Float
	rotation float64
	visible  bool
	skin     render.SkinID
	scale    vec.Vec2Float
	repeat   vec.Vec2
}

// Backend реализует render.Backend и render.Presenter на экране tcell.
// Поворот объектов не растеризуется.
type Backend struct {
	mu        sync.Mutex
	screen    tcell.Screen
	opts      Options
	next      render.Handle
	drawables map[render.Handle]*drawable
	status    string
	frames    uint64
	// missing скины без символа, о которых уже предупредили
	missing map[render.SkinID]struct{}
}

// New создает бэкенд поверх инициализированного экрана
func New(screen tcell.Screen, opts Options) *Backend {
	if opts.TileSize <= 0 {
		opts.TileSize = 1
	}
	if opts.Unit.X <= 0 || opts.Unit.Y <= 0 {
		opts.Unit = vec.Vec2Float{X: opts.TileSize / 2, Y: opts.TileSize}
	}
	if opts.Glyphs == nil {
		opts.Glyphs = DefaultGlyphs()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetRenderLogger()
	}
	return &Backend{
		screen:    screen,
		opts:      opts,
		drawables: make(map[render.Handle]*drawable),
		missing:   make(map[render.SkinID]struct{}),
	}
}

// Screen экран бэкенда
func (b *Backend) Screen() tcell.Screen {
	return b.screen
}

// SetStatus текст строки состояния внизу экрана
func (b *Backend) SetStatus(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = text
}

// Frames число выведенных кадров
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

func (b *Backend) CreateDrawable(layer render.Layer) render.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.drawables[b.next] = &drawable{
		handle:  b.next,
		layer:   layer,
		visible: true,
		scale:   vec.Vec2Float{X: 1, Y: 1},
		repeat:  vec.Vec2{X: 1, Y: 1},
	}
	return b.next
}

func (b *Backend) DestroyDrawable(h render.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.drawables, h)
}

func (b *Backend) with(h render.Handle, fn func(d *drawable)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.drawables[h]; ok {
		fn(d)
	}
}

func (b *Backend) SetPosition(h render.Handle, pos vec.Vec2Float) {
	b.with(h, func(d *drawable) { d.position = pos })
}

func (b *Backend) SetRotation(h render.Handle, degrees float64) {
	b.with(h, func(d *drawable) { d.rotation = degrees })
}

func (b *Backend) SetVisible(h render.Handle, visible bool) {
	b.with(h, func(d *drawable) { d.visible = visible })
}

func (b *Backend) SetSkin(h render.Handle, skin render.SkinID) {
	b.with(h, func(d *drawable) { d.skin = skin })
}

func (b *Backend) SetScale(h render.Handle, scale vec.Vec2Float) {
	b.with(h, func(d *drawable) { d.scale = scale })
}

// SetEffect понимает только эффекты повтора; остальные игнорируются
func (b *Backend) SetEffect(h render.Handle, name string, value float64) {
	b.with(h, func(d *drawable) {
		n := int(value)
		if n < 1 {
			n = 1
		}
		switch name {
		case render.EffectRepeatX:
			d.repeat.X = n
		case render.EffectRepeatY:
			d.repeat.Y = n
		}
	})
}

// Present растеризует видимые объекты по слоям и выводит кадр
func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := make([]*drawable, 0, len(b.drawables))
	for _, d := range b.drawables {
		if d.visible {
			list = append(list, d)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].layer != list[j].layer {
			return list[i].layer < list[j].layer
		}
		return list[i].handle < list[j].handle
	})

	b.screen.Clear()
	cols, rows := b.screen.Size()
	for _, d := range list {
		b.rasterize(d, cols, rows)
	}
	if b.status != "" && rows > 0 {
		b.drawStatus(cols, rows-1)
	}
	b.screen.Show()
	b.frames++
}

// cellRect прямоугольник символов, покрываемый объектом: [x0,x1) x [y0,y1).
// Экранные координаты: начало в центре, X зеркален, Y вверх.
func (b *Backend) cellRect(d *drawable, cols, rows int) (x0, y0, x1, y1 int) {
	cx := float64(cols)/2 - d.position.X/b.opts.Unit.X
	cy := float64(rows)/2 - d.position.Y/b.opts.Unit.Y
	hw := math.Abs(d.scale.X) * float64(d.repeat.X) * b.opts.TileSize / b.opts.Unit.X / 2
	hh := math.Abs(d.scale.Y) * float64(d.repeat.Y) * b.opts.TileSize / b.opts.Unit.Y / 2

	x0 = int(math.Floor(cx - hw + 0.5))
	x1 = int(math.Floor(cx + hw + 0.5))
	y0 = int(math.Floor(cy - hh + 0.5))
	y1 = int(math.Floor(cy + hh + 0.5))
	// объект меньше символа занимает один символ
	if x1 == x0 {
		x1 = x0 + 1
	}
	if y1 == y0 {
		y1 = y0 + 1
	}
	return max(x0, 0), max(y0, 0), min(x1, cols), min(y1, rows)
}

func (b *Backend) rasterize(d *drawable, cols, rows int) {
	if !d.position.IsFinite() {
		return
	}
	gl, found := b.opts.Glyphs.lookup(d.skin)
	if !found {
		if _, seen := b.missing[d.skin]; !seen {
			b.missing[d.skin] = struct{}{}
			b.opts.Logger.Warn("Нет символа для скина %q, рисуется скин ошибки", d.skin)
		}
	}
	x0, y0, x1, y1 := b.cellRect(d, cols, rows)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if gl.Overlay {
				mainc, combc, _, _ := b.screen.GetContent(x, y)
				if mainc == 0 {
					mainc = ' '
				}
				b.screen.SetContent(x, y, mainc, combc, gl.Style)
				continue
			}
			b.screen.SetContent(x, y, gl.Rune, nil, gl.Style)
		}
	}
}

func (b *Backend) drawStatus(cols, row int) {
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range b.status {
		if x >= cols {
			break
		}
		b.screen.SetContent(x, row, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		b.screen.SetContent(x, row, ' ', nil, style)
	}
}

// ScreenPoint экранная точка в центре символа (col, row)
func (b *Backend) ScreenPoint(col, row int) vec.Vec2Float {
	cols, rows := b.screen.Size()
	return vec.Vec2Float{
		X: (float64(cols)/2 - (float64(col) + 0.5)) * b.opts.Unit.X,
		Y: (float64(rows)/2 - (float64(row) + 0.5)) * b.opts.Unit.Y,
	}
}
