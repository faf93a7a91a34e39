package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/world/tile"
)

func newTestGrid(t *testing.T, w, h int, wrap bool) *Grid {
	t.Helper()
	types := tile.NewRegistry()
	g, err := NewGrid(GridConfig{Width: w, Height: h, TileSize: 20, Wrap: wrap}, types, render.NewStaticSkins(types))
	require.NoError(t, err, "сетка должна создаваться")
	return g
}

func TestNewGridRejectsBadConfig(t *testing.T) {
	types := tile.NewRegistry()

	tests := []struct {
		name string
		cfg  GridConfig
	}{
		{"нулевой тайл", GridConfig{Width: 4, Height: 4, TileSize: 0}},
		{"отрицательный тайл", GridConfig{Width: 4, Height: 4, TileSize: -3}},
		{"пустая ширина", GridConfig{Width: 0, Height: 4, TileSize: 20}},
		{"пустая высота", GridConfig{Width: 4, Height: 0, TileSize: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.cfg, types, nil)
			assert.True(t, errors.Is(err, ErrConfiguration), "ожидалась ошибка конфигурации, получено %v", err)
		})
	}

	_, err := NewGrid(GridConfig{Width: 4, Height: 4, TileSize: 20}, nil, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestResizeBorderClassification(t *testing.T) {
	g := newTestGrid(t, 5, 4, false)

	assert.Equal(t, tile.BottomLeftID, g.TypeAt(0, 0))
	assert.Equal(t, tile.TopLeftID, g.TypeAt(0, 3))
	assert.Equal(t, tile.BottomRightID, g.TypeAt(4, 0))
	assert.Equal(t, tile.TopRightID, g.TypeAt(4, 3))
	assert.Equal(t, tile.BottomID, g.TypeAt(2, 0))
	assert.Equal(t, tile.TopID, g.TypeAt(2, 3))
	assert.Equal(t, tile.LeftID, g.TypeAt(0, 1))
	assert.Equal(t, tile.RightID, g.TypeAt(4, 2))
	assert.Equal(t, tile.EmptyID, g.TypeAt(2, 2), "внутренние клетки пустые")

	g.Resize(3, 3)
	assert.Equal(t, 3, g.Width())
	assert.Equal(t, tile.EmptyID, g.TypeAt(1, 1))
	assert.Equal(t, tile.EmptyID, g.TypeAt(4, 2), "после уменьшения старые клетки недоступны")
}

func TestGetOutOfBoundsReturnsEmpty(t *testing.T) {
	g := newTestGrid(t, 4, 4, false)

	assert.True(t, g.Get(-1, 0).IsEmpty())
	assert.True(t, g.Get(4, 1).IsEmpty())
	assert.True(t, g.Get(1, -1).IsEmpty())
	assert.True(t, g.Get(1, 100).IsEmpty())
}

func TestCellReportsOutOfBounds(t *testing.T) {
	g := newTestGrid(t, 4, 4, false)
	_, err := g.Cell(4, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	c, err := g.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, tile.BottomLeftID, c.Type)
}

func TestWrapGetIsPeriodic(t *testing.T) {
	g := newTestGrid(t, 7, 5, true)
	require.NoError(t, g.SetType(3, 2, tile.BlockID))
	require.NoError(t, g.SetEffect(5, 1, "tint", 0.5))

	w := g.Width()
	for x := -2 * w; x < 2*w; x++ {
		for y := -1; y <= g.Height(); y++ {
			assert.True(t, g.Get(x, y).Equal(g.Get(x+w, y)), "get(%d,%d) != get(%d,%d)", x, y, x+w, y)
		}
	}
	assert.Equal(t, tile.BlockID, g.TypeAt(3-w, 2))
	assert.True(t, g.Get(3, -1).IsEmpty(), "Y не сворачивается")
}

func TestSetTypeAndClear(t *testing.T) {
	g := newTestGrid(t, 6, 6, false)
	v := g.Version()

	require.NoError(t, g.SetType(2, 3, tile.BlockID))
	assert.Equal(t, tile.BlockID, g.TypeAt(2, 3))
	assert.Greater(t, g.Version(), v, "изменение должно увеличить версию")

	err := g.SetType(2, 3, tile.TypeID(777))
	assert.True(t, errors.Is(err, ErrInvalidReference))
	assert.Equal(t, tile.BlockID, g.TypeAt(2, 3), "неудачный вызов не меняет клетку")

	err = g.SetType(6, 0, tile.BlockID)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	require.NoError(t, g.SetEffect(2, 3, "tint", 0.25))
	require.NoError(t, g.ClearType(2, 3))
	assert.True(t, g.Get(2, 3).IsEmpty())
	assert.Nil(t, g.Get(2, 3).Effects, "очистка сбрасывает эффекты")

	assert.True(t, errors.Is(g.ClearType(-1, 0), ErrOutOfBounds))
}

func TestSetEffectDoesNotAlias(t *testing.T) {
	g := newTestGrid(t, 4, 4, false)
	require.NoError(t, g.SetEffect(1, 1, "tint", 1))

	before := g.Get(1, 1)
	require.NoError(t, g.SetEffect(1, 1, "tint", 2))

	assert.Equal(t, 1.0, before.Effects["tint"], "ранее полученная клетка не должна меняться")
	assert.Equal(t, 2.0, g.Get(1, 1).Effects["tint"])
}

func TestReturnedCellEffectsAreCopies(t *testing.T) {
	g := newTestGrid(t, 4, 4, false)
	require.NoError(t, g.SetEffect(2, 1, "tint", 0.5))
	version := g.Version()

	c := g.Get(2, 1)
	c.Effects["tint"] = 9
	c.Effects["glow"] = 1
	fromCell, err := g.Cell(2, 1)
	require.NoError(t, err)
	delete(fromCell.Effects, "tint")

	got := g.Get(2, 1)
	assert.Equal(t, map[string]float64{"tint": 0.5}, got.Effects)
	assert.Equal(t, version, g.Version())
}

func TestSolidAtWorld(t *testing.T) {
	g := newTestGrid(t, 8, 8, false)
	require.NoError(t, g.SetType(3, 2, tile.BlockID))
	require.NoError(t, g.SetType(4, 4, tile.LeftID))

	assert.True(t, g.SolidAtWorld(65, 45))
	assert.False(t, g.SolidAtWorld(59.9, 45))
	assert.True(t, g.SolidAtWorld(81, 85), "левая половина края")
	assert.False(t, g.SolidAtWorld(95, 85), "правая половина края пустая")
	assert.False(t, g.SolidAtWorld(-500, 85))
}

func TestSkinForFallsBackToErrorSkin(t *testing.T) {
	types := tile.NewRegistry()
	skins := render.NewStaticSkins(types)
	require.NoError(t, types.Register(tile.Block(50, "late")))

	g, err := NewGrid(GridConfig{Width: 2, Height: 2, TileSize: 10}, types, skins)
	require.NoError(t, err)

	assert.Equal(t, render.SkinID("tile-block"), g.SkinFor(tile.BlockID))
	assert.Equal(t, render.DefaultErrorSkin, g.SkinFor(50), "тип без скина рисуется скином ошибки")

	skins.Set(50, "late-skin")
	g.RefreshSkins()
	assert.Equal(t, render.SkinID("late-skin"), g.SkinFor(50))
}
