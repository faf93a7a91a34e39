package world

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/world/tile"
)

func TestSaveLoadPreservesGrid(t *testing.T) {
	g := newTestGrid(t, 6, 5, true)
	require.NoError(t, g.SetType(2, 2, tile.BlockID))
	require.NoError(t, g.SetType(3, 2, tile.TopID))
	require.NoError(t, g.SetEffect(3, 2, "tint", 0.75))

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	other := newTestGrid(t, 2, 2, true)
	require.NoError(t, other.Load(buf.Bytes()))

	assert.Equal(t, g.Width(), other.Width())
	assert.Equal(t, g.Height(), other.Height())
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			assert.True(t, g.Get(x, y).Equal(other.Get(x, y)), "клетка (%d,%d) отличается", x, y)
		}
	}
	assert.Equal(t, 0.75, other.Get(3, 2).Effects["tint"])
}

func TestLoadLegacyFormat(t *testing.T) {
	g := newTestGrid(t, 2, 2, false)

	// формат старых save.json: map[x][y] = [type]
	legacy := `[[[4],[6],[2]],[[1],[0],[7]]]`
	require.NoError(t, g.Load([]byte(legacy)))

	assert.Equal(t, 2, g.Width())
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, tile.BottomLeftID, g.TypeAt(0, 0))
	assert.Equal(t, tile.TopLeftID, g.TypeAt(0, 2))
	assert.Equal(t, tile.BlockID, g.TypeAt(1, 0))
	assert.Equal(t, tile.TopID, g.TypeAt(1, 2))
}

func TestLoadMixedCellForms(t *testing.T) {
	g := newTestGrid(t, 2, 2, false)
	data := `[[{"type":1,"effects":{"repeat_hint":2}},[0]]]`
	require.NoError(t, g.Load([]byte(data)))

	assert.Equal(t, tile.BlockID, g.TypeAt(0, 0))
	assert.Equal(t, 2.0, g.Get(0, 0).Effects["repeat_hint"])
	assert.True(t, g.Get(0, 1).IsEmpty())
}

func TestLoadRejectsMalformedSave(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"не JSON", `this is not a save`},
		{"пустой массив", `[]`},
		{"пустой столбец", `[[]]`},
		{"рваные столбцы", `[[[1],[0]],[[1]]]`},
		{"неизвестный тип", `[[[1],[999]]]`},
		{"дробный тип", `[[[1.5]]]`},
		{"отрицательный тип", `[[{"type":-2}]]`},
		{"объект без типа", `[[{"effects":{"a":1}}]]`},
		{"пустая клетка-массив", `[[[]]]`},
		{"строка вместо клетки", `[["block"]]`},
		{"объект вместо массива", `{"0":[[1]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 3, 3, false)
			require.NoError(t, g.SetType(1, 1, tile.BlockID))
			version := g.Version()

			err := g.Load([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSave), "ожидалась ErrMalformedSave, получено %v", err)

			assert.Equal(t, 3, g.Width(), "сетка не должна меняться при ошибке")
			assert.Equal(t, tile.BlockID, g.TypeAt(1, 1))
			assert.Equal(t, version, g.Version())
		})
	}
}
