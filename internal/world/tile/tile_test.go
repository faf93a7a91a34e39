package tile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinGeometry(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name   string
		id     TypeID
		fx, fy float64
		solid  bool
	}{
		{"пустой тайл", EmptyID, 0.5, 0.5, false},
		{"блок в центре", BlockID, 0.5, 0.5, true},
		{"блок у края", BlockID, 0.999, 0.0, true},
		{"левый край слева", LeftID, 0.1, 0.5, true},
		{"левый край справа", LeftID, 0.9, 0.5, false},
		{"правый край справа", RightID, 0.9, 0.1, true},
		{"верхний край сверху", TopID, 0.5, 0.9, true},
		{"верхний край снизу", TopID, 0.5, 0.1, false},
		{"нижний край снизу", BottomID, 0.2, 0.1, true},
		{"угол вверх-влево: верх", TopLeftID, 0.9, 0.9, true},
		{"угол вверх-влево: лево", TopLeftID, 0.1, 0.1, true},
		{"угол вверх-влево: пустая четверть", TopLeftID, 0.9, 0.1, false},
		{"угол вниз-вправо: пустая четверть", BottomRightID, 0.1, 0.9, false},
		{"неизвестный тип", TypeID(999), 0.5, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.solid, r.IsSolidAt(tt.id, tt.fx, tt.fy))
		})
	}
}

func TestSubIndexClamped(t *testing.T) {
	assert.Equal(t, 0, subIndex(-0.3))
	assert.Equal(t, MaskResolution-1, subIndex(1.0), "f = 1 должен попадать в последнюю подъячейку")
	assert.Equal(t, MaskResolution-1, subIndex(7.5))
	assert.Equal(t, 3, subIndex(0.49))
}

func TestParseMask(t *testing.T) {
	rows := []string{
		"########",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"#......#",
	}
	m, err := ParseMask(rows)
	require.NoError(t, err)

	assert.True(t, m.Solid(0.5, 0.99), "верхняя строка маски соответствует верху тайла")
	assert.True(t, m.Solid(0.01, 0.01))
	assert.False(t, m.Solid(0.5, 0.01))
	assert.Equal(t, 10, m.Count())
	assert.Equal(t, rows[0], m.String()[:MaskResolution])

	_, err = ParseMask(rows[:7])
	assert.True(t, errors.Is(err, ErrInvalidMask))

	bad := append([]string{}, rows...)
	bad[3] = "...."
	_, err = ParseMask(bad)
	assert.True(t, errors.Is(err, ErrInvalidMask))

	bad[3] = "...?...."
	_, err = ParseMask(bad)
	assert.True(t, errors.Is(err, ErrInvalidMask))
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Custom(FirstCustomID, "platform", halfMask(Up), true))
	require.NoError(t, err)
	assert.True(t, r.IsSolidAt(FirstCustomID, 0.5, 0.75))

	err = r.Register(Block(FirstCustomID, "dup"))
	assert.True(t, errors.Is(err, ErrDuplicateID))

	err = r.Register(Block(EmptyID, "air"))
	assert.True(t, errors.Is(err, ErrReservedID))

	err = r.Register(Type{ID: 42, Name: "broken", Kind: KindEdge, Dir: UpLeft})
	assert.True(t, errors.Is(err, ErrBadKind))

	decor := Custom(43, "flower", fullMask(), false)
	require.NoError(t, r.Register(decor))
	assert.False(t, r.IsSolidAt(43, 0.5, 0.5), "декоративный тайл не твердый")

	got, ok := r.ByName("platform")
	require.True(t, ok)
	assert.Equal(t, FirstCustomID, got.ID)
	assert.Contains(t, r.IDs(), TypeID(43))
}
