package world

import (
	"fmt"
	"maps"
	"math"

	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/tile"
)

// Cell клетка сетки: тип тайла и необязательные параметры эффектов отрисовки
type Cell struct {
	Type    tile.TypeID        `json:"type"`
	Effects map[string]float64 `json:"effects,omitempty"`
}

// clone копирует клетку вместе с картой эффектов
func (c Cell) clone() Cell {
	c.Effects = maps.Clone(c.Effects)
	return c
}

// IsEmpty проверяет, что клетка пустая
func (c Cell) IsEmpty() bool {
	return c.Type == tile.EmptyID
}

// Equal сравнивает тип и эффекты клеток
func (c Cell) Equal(other Cell) bool {
	return c.Type == other.Type && maps.Equal(c.Effects, other.Effects)
}

// GridConfig параметры сетки
type GridConfig struct {
	Width    int
	Height   int
	TileSize float64 // размер тайла в единицах мира
	Wrap     bool    // тор по оси X
}

// Grid тайловая сетка мира. Клетки хранятся по столбцам (x*height + y),
// ось Y направлена вверх.
//
// Сетка рассчитана на одного писателя: синхронизацию обеспечивает владелец
// (игровая сессия).
type Grid struct {
	width    int
	height   int
	tileSize float64
	wrap     bool
	cells    []Cell

	types     *tile.Registry
	skins     render.SkinRegistry
	skinCache map[tile.TypeID]render.SkinID

	// version увеличивается при каждом изменении клеток
	version uint64
}

// NewGrid создает сетку и заполняет границу по правилам смежности
func NewGrid(cfg GridConfig, types *tile.Registry, skins render.SkinRegistry) (*Grid, error) {
	if types == nil {
		return nil, fmt.Errorf("%w: не задан регистр тайлов", ErrConfiguration)
	}
	if !(cfg.TileSize > 0) || math.IsInf(cfg.TileSize, 0) {
		return nil, fmt.Errorf("%w: размер тайла должен быть > 0, получено %v", ErrConfiguration, cfg.TileSize)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: размер сетки %dx%d", ErrConfiguration, cfg.Width, cfg.Height)
	}

	g := &Grid{
		tileSize: cfg.TileSize,
		wrap:     cfg.Wrap,
		types:    types,
		skins:    skins,
	}
	g.Resize(cfg.Width, cfg.Height)
	g.RefreshSkins()
	return g, nil
}

// Width ширина сетки в клетках
func (g *Grid) Width() int { return g.width }

// Height высота сетки в клетках
func (g *Grid) Height() int { return g.height }

// TileSize размер тайла в единицах мира
func (g *Grid) TileSize() float64 { return g.tileSize }

// Wrap включен ли тор по X
func (g *Grid) Wrap() bool { return g.wrap }

// Types регистр типов тайлов
func (g *Grid) Types() *tile.Registry { return g.types }

// Version счетчик изменений сетки
func (g *Grid) Version() uint64 { return g.version }

// Resize пересоздает сетку. Граничные клетки один раз получают тип по
// смежности: углы, края, внутренние клетки пустые.
func (g *Grid) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	g.width, g.height = w, h
	g.cells = make([]Cell, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			g.cells[x*h+y] = Cell{Type: borderType(x, y, w, h)}
		}
	}
	g.version++
}

// borderType классифицирует клетку по положению на границе
func borderType(x, y, w, h int) tile.TypeID {
	left := x == 0
	right := x == w-1
	bottom := y == 0
	top := y == h-1

	switch {
	case top && left:
		return tile.TopLeftID
	case top && right:
		return tile.TopRightID
	case bottom && left:
		return tile.BottomLeftID
	case bottom && right:
		return tile.BottomRightID
	case top:
		return tile.TopID
	case bottom:
		return tile.BottomID
	case left:
		return tile.LeftID
	case right:
		return tile.RightID
	}
	return tile.EmptyID
}

// index возвращает индекс клетки, сворачивая X при включенном торе
func (g *Grid) index(x, y int) (int, bool) {
	if g.wrap {
		x = vec.PosMod(x, g.width)
	}
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, false
	}
	return x*g.height + y, true
}

// Get возвращает копию клетки. Вне сетки возвращается пустая клетка.
func (g *Grid) Get(x, y int) Cell {
	i, ok := g.index(x, y)
	if !ok {
		return Cell{}
	}
	return g.cells[i].clone()
}

// Cell возвращает клетку или ErrOutOfBounds
func (g *Grid) Cell(x, y int) (Cell, error) {
	i, ok := g.index(x, y)
	if !ok {
		return Cell{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return g.cells[i].clone(), nil
}

// TypeAt возвращает тип клетки (EmptyID вне сетки)
func (g *Grid) TypeAt(x, y int) tile.TypeID {
	i, ok := g.index(x, y)
	if !ok {
		return tile.EmptyID
	}
	return g.cells[i].Type
}

// SetType меняет тип клетки. Эффекты клетки сохраняются.
func (g *Grid) SetType(x, y int, id tile.TypeID) error {
	if !g.types.Has(id) {
		return fmt.Errorf("%w: неизвестный тип тайла %d", ErrInvalidReference, id)
	}
	i, ok := g.index(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	g.cells[i].Type = id
	g.version++
	return nil
}

// ClearType делает клетку пустой и сбрасывает ее эффекты
func (g *Grid) ClearType(x, y int) error {
	i, ok := g.index(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	g.cells[i] = Cell{}
	g.version++
	return nil
}

// SetEffect задает параметр эффекта клетки. NaN удаляет параметр.
func (g *Grid) SetEffect(x, y int, name string, value float64) error {
	i, ok := g.index(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	c := &g.cells[i]
	if math.IsNaN(value) {
		delete(c.Effects, name)
		if len(c.Effects) == 0 {
			c.Effects = nil
		}
	} else {
		if c.Effects == nil {
			c.Effects = make(map[string]float64, 1)
		}
		c.Effects[name] = value
	}
	g.version++
	return nil
}

// IsSolidAt проверяет подъячейку тайла type в точке (fx, fy)
func (g *Grid) IsSolidAt(id tile.TypeID, fx, fy float64) bool {
	return g.types.IsSolidAt(id, fx, fy)
}

// SolidAtWorld проверяет твердость точки в единицах мира
func (g *Grid) SolidAtWorld(wx, wy float64) bool {
	cx := math.Floor(wx / g.tileSize)
	cy := math.Floor(wy / g.tileSize)
	id := g.TypeAt(int(cx), int(cy))
	if id == tile.EmptyID {
		return false
	}
	fx := wx/g.tileSize - cx
	fy := wy/g.tileSize - cy
	return g.types.IsSolidAt(id, fx, fy)
}

// RefreshSkins заново сопоставляет скины всем зарегистрированным типам
func (g *Grid) RefreshSkins() {
	g.skinCache = make(map[tile.TypeID]render.SkinID)
	for _, id := range g.types.IDs() {
		g.skinCache[id] = render.ResolveSkin(g.skins, id)
	}
}

// SkinFor возвращает скин типа (скин ошибки для неизвестных типов)
func (g *Grid) SkinFor(id tile.TypeID) render.SkinID {
	if s, ok := g.skinCache[id]; ok {
		return s
	}
	return render.ResolveSkin(g.skins, id)
}

// Count число непустых клеток
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}
