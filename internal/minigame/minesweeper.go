// Package minigame содержит мини-игры, построенные на тайловой сетке.
package minigame

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// Типы тайлов сапера
const (
	UnopenedID  tile.TypeID = 10
	FlaggedID   tile.TypeID = 11
	CountBaseID tile.TypeID = 12 // 12..20: 0..8 мин рядом
	MineID      tile.TypeID = 21
)

// CountID тип тайла открытой клетки с n минами рядом
func CountID(n int) tile.TypeID {
	return CountBaseID + tile.TypeID(n)
}

// Tiles типы тайлов сапера. Все они не твердые.
func Tiles() []tile.Type {
	full := tile.Block(UnopenedID, "").Mask
	types := []tile.Type{
		tile.Custom(UnopenedID, "ms-unopened", full, false),
		tile.Custom(FlaggedID, "ms-flag", full, false),
	}
	for n := 0; n <= 8; n++ {
		types = append(types, tile.Custom(CountID(n), fmt.Sprintf("ms-%d", n), full, false))
	}
	return append(types, tile.Custom(MineID, "ms-mine", full, false))
}

// RegisterTiles добавляет типы сапера в регистр, пропуская уже
// зарегистрированные
func RegisterTiles(types *tile.Registry) error {
	for _, t := range Tiles() {
		if existing, ok := types.Lookup(t.ID); ok {
			if existing.Name != t.Name {
				return fmt.Errorf("%w: id %d занят типом %q", tile.ErrDuplicateID, t.ID, existing.Name)
			}
			continue
		}
		if err := types.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// ErrTooManyMines мин не меньше, чем клеток
var ErrTooManyMines = errors.New("too many mines")

// Minesweeper сапер на всей площади сетки
type Minesweeper struct {
	grid     *world.Grid
	w, h     int
	mines    []bool
	counts   []int
	total    int
	revealed int
	lost     bool
}

// NewMinesweeper расставляет mines мин в случайных различных клетках и
// закрывает всю сетку
func NewMinesweeper(grid *world.Grid, mines int, rng *rand.Rand) (*Minesweeper, error) {
	w, h := grid.Width(), grid.Height()
	if mines < 0 || mines >= w*h {
		return nil, fmt.Errorf("%w: %d мин на %d клеток", ErrTooManyMines, mines, w*h)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	positions := make([]vec.Vec2, 0, mines)
	for _, i := range rng.Perm(w * h)[:mines] {
		positions = append(positions, vec.Vec2{X: i / h, Y: i % h})
	}
	return NewMinesweeperWithMines(grid, positions)
}

// NewMinesweeperWithMines создает игру с заданной расстановкой мин
func NewMinesweeperWithMines(grid *world.Grid, positions []vec.Vec2) (*Minesweeper, error) {
	if err := RegisterTiles(grid.Types()); err != nil {
		return nil, err
	}
	grid.RefreshSkins()

	w, h := grid.Width(), grid.Height()
	m := &Minesweeper{
		grid:   grid,
		w:      w,
		h:      h,
		mines:  make([]bool, w*h),
		counts: make([]int, w*h),
	}
	for _, p := range positions {
		if !p.InBounds(w, h) {
			return nil, fmt.Errorf("%w: мина в (%d,%d)", world.ErrOutOfBounds, p.X, p.Y)
		}
		i := p.ToIndex(h)
		if m.mines[i] {
			continue
		}
		m.mines[i] = true
		m.total++
	}
	if m.total >= w*h {
		return nil, fmt.Errorf("%w: %d мин на %d клеток", ErrTooManyMines, m.total, w*h)
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			p := vec.Vec2{X: x, Y: y}
			n := 0
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					q := p.Add(vec.Vec2{X: dx, Y: dy})
					if q != p && q.InBounds(w, h) && m.mines[q.ToIndex(h)] {
						n++
					}
				}
			}
			m.counts[p.ToIndex(h)] = n
			if err := grid.SetType(x, y, UnopenedID); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Mines число мин
func (m *Minesweeper) Mines() int { return m.total }

// Lost открыта ли мина
func (m *Minesweeper) Lost() bool { return m.lost }

// Revealed число открытых клеток без мин
func (m *Minesweeper) Revealed() int { return m.revealed }

// Won открыты ли все клетки без мин
func (m *Minesweeper) Won() bool {
	return !m.lost && m.revealed == m.w*m.h-m.total
}

// IsMine стоит ли мина в клетке
func (m *Minesweeper) IsMine(x, y int) bool {
	p := vec.Vec2{X: x, Y: y}
	return p.InBounds(m.w, m.h) && m.mines[p.ToIndex(m.h)]
}

// Uncover открывает клетку. Пустая область (0 мин рядом) раскрывается
// заливкой вместе со своей границей. Попадание в мину открывает все мины.
func (m *Minesweeper) Uncover(x, y int) (hitMine bool, err error) {
	start := vec.Vec2{X: x, Y: y}
	if !start.InBounds(m.w, m.h) {
		return false, fmt.Errorf("%w: (%d,%d)", world.ErrOutOfBounds, x, y)
	}
	if m.lost || m.grid.TypeAt(x, y) != UnopenedID {
		return false, nil
	}
	if m.mines[start.ToIndex(m.h)] {
		m.lost = true
		for i, mine := range m.mines {
			if mine {
				if err := m.grid.SetType(i/m.h, i%m.h, MineID); err != nil {
					return true, err
				}
			}
		}
		return true, nil
	}

	var setErr error
	world.FloodFill(m.w, m.h, start, func(p vec.Vec2) bool {
		if setErr != nil || m.grid.TypeAt(p.X, p.Y) != UnopenedID {
			return false
		}
		n := m.counts[p.ToIndex(m.h)]
		if err := m.grid.SetType(p.X, p.Y, CountID(n)); err != nil {
			setErr = err
			return false
		}
		m.revealed++
		return n == 0
	})
	return false, setErr
}

// ToggleFlag ставит или снимает флаг на закрытой клетке
func (m *Minesweeper) ToggleFlag(x, y int) error {
	if !(vec.Vec2{X: x, Y: y}).InBounds(m.w, m.h) {
		return fmt.Errorf("%w: (%d,%d)", world.ErrOutOfBounds, x, y)
	}
	if m.lost {
		return nil
	}
	switch m.grid.TypeAt(x, y) {
	case UnopenedID:
		return m.grid.SetType(x, y, FlaggedID)
	case FlaggedID:
		return m.grid.SetType(x, y, UnopenedID)
	}
	return nil
}
