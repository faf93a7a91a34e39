package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/world/tile"
)

func TestHandlePoolGrow(t *testing.T) {
	rec := NewRecorder()
	pool := NewHandlePool(rec, LayerTiles)

	created, released := pool.Ensure(10)
	assert.Equal(t, 10, created)
	assert.Equal(t, 0, released)
	assert.Equal(t, 10, pool.Len())

	created, _ = pool.Ensure(25)
	assert.Equal(t, 15, created)
	assert.GreaterOrEqual(t, pool.Len(), 25)
	assert.Equal(t, 25, rec.Live())
}

func TestHandlePoolShrink(t *testing.T) {
	tests := []struct {
		name     string
		held     int
		need     int
		expected int
	}{
		{"небольшой провал не сжимает", 100, 60, 100},
		{"ровно половина не сжимает", 100, 50, 100},
		{"меньше половины сжимает на половину излишка", 100, 40, 70},
		{"нечетный излишек округляется вверх", 100, 9, 54},
		{"ноль объектов", 10, 0, 5},
		{"нечетный пул", 3, 1, 2},
		{"единственный объект", 1, 0, 0},
		{"пять к двум", 5, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			pool := NewHandlePool(rec, LayerTiles)
			pool.Ensure(tt.held)

			pool.Ensure(tt.need)
			assert.Equal(t, tt.expected, pool.Len())
			assert.GreaterOrEqual(t, pool.Len(), tt.need, "пул не должен становиться меньше запроса")
			assert.Equal(t, tt.expected, rec.Live())
		})
	}
}

func TestHandlePoolConverges(t *testing.T) {
	rec := NewRecorder()
	pool := NewHandlePool(rec, LayerTiles)
	pool.Ensure(64)

	for i := 0; i < 20; i++ {
		pool.Ensure(2)
	}
	assert.LessOrEqual(t, pool.Len(), 2*2+1, "при стабильно малой нагрузке пул сходится к 2n+1")
	assert.GreaterOrEqual(t, pool.Len(), 2)

	pool.Release()
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 0, rec.Live())
}

func TestResolveSkinFallsBackToErrorSkin(t *testing.T) {
	skins := NewStaticSkins(tile.NewRegistry())

	assert.Equal(t, SkinID("tile-block"), ResolveSkin(skins, tile.BlockID))
	assert.Equal(t, DefaultErrorSkin, ResolveSkin(skins, tile.TypeID(500)))

	skins.SetErrorSkin("missing")
	assert.Equal(t, SkinID("missing"), ResolveSkin(skins, tile.TypeID(500)))
}

func TestRecorderState(t *testing.T) {
	rec := NewRecorder()
	h := rec.CreateDrawable(LayerEntities)
	require.NotEqual(t, InvalidHandle, h)

	rec.SetSkin(h, "player")
	rec.SetEffect(h, EffectRepeatX, 3)
	rec.SetVisible(h, false)

	d, ok := rec.Get(h)
	require.True(t, ok)
	assert.Equal(t, SkinID("player"), d.Skin)
	assert.Equal(t, 3.0, d.Effects[EffectRepeatX])
	assert.Empty(t, rec.Visible(LayerEntities))

	rec.DestroyDrawable(h)
	_, ok = rec.Get(h)
	assert.False(t, ok)
}
