package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/tileworld/internal/world/tile"
)

func TestTerrainGeneratorDeterministic(t *testing.T) {
	a := newTestGrid(t, 48, 32, true)
	b := newTestGrid(t, 48, 32, true)

	NewTerrainGenerator(7).Generate(a)
	NewTerrainGenerator(7).Generate(b)

	for x := 0; x < a.Width(); x++ {
		for y := 0; y < a.Height(); y++ {
			assert.Equal(t, a.TypeAt(x, y), b.TypeAt(x, y), "один сид должен давать одинаковый мир (%d,%d)", x, y)
		}
	}
}

func TestTerrainGeneratorKeepsBorder(t *testing.T) {
	g := newTestGrid(t, 32, 24, false)
	gen := NewTerrainGenerator(42)
	gen.Generate(g)

	assert.Equal(t, tile.BottomLeftID, g.TypeAt(0, 0))
	assert.Equal(t, tile.TopRightID, g.TypeAt(31, 23))
	assert.Equal(t, tile.BottomID, g.TypeAt(10, 0))

	// под поверхностью почти всё твердое, над ней пусто
	for x := 1; x < g.Width()-1; x++ {
		s := gen.SurfaceHeight(x, 0, g.Height())
		assert.GreaterOrEqual(t, s, 1)
		assert.Less(t, s, g.Height()-1)
		assert.Equal(t, tile.BlockID, g.TypeAt(x, s-1), "клетка под поверхностью (%d,%d)", x, s-1)
		assert.Equal(t, tile.EmptyID, g.TypeAt(x, g.Height()-2))
	}
}
