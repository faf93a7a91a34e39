package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/annel0/tileworld/internal/world/tile"
)

// savedCell клетка в сохранении. Принимает две формы:
// объект {"type":1,"effects":{...}} и старый массив [1].
type savedCell Cell

func (c *savedCell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("пустая клетка")
	}
	switch data[0] {
	case '[':
		var legacy []float64
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		if len(legacy) == 0 {
			return fmt.Errorf("клетка без типа")
		}
		id, err := toTypeID(legacy[0])
		if err != nil {
			return err
		}
		*c = savedCell{Type: id}
		return nil
	case '{':
		var obj struct {
			Type    *float64           `json:"type"`
			Effects map[string]float64 `json:"effects"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Type == nil {
			return fmt.Errorf("клетка без поля type")
		}
		id, err := toTypeID(*obj.Type)
		if err != nil {
			return err
		}
		if len(obj.Effects) == 0 {
			obj.Effects = nil
		}
		*c = savedCell{Type: id, Effects: obj.Effects}
		return nil
	}
	return fmt.Errorf("неожиданная клетка %.20q", data)
}

func toTypeID(v float64) (tile.TypeID, error) {
	if v != math.Trunc(v) || v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("недопустимый тип тайла %v", v)
	}
	return tile.TypeID(v), nil
}

// MarshalJSON сохраняет сетку как массив столбцов клеток
func (g *Grid) MarshalJSON() ([]byte, error) {
	cols := make([][]Cell, g.width)
	for x := 0; x < g.width; x++ {
		cols[x] = g.cells[x*g.height : (x+1)*g.height]
	}
	return json.Marshal(cols)
}

// Save записывает сетку в w
func (g *Grid) Save(w io.Writer) error {
	data, err := g.MarshalJSON()
	if err != nil {
		return fmt.Errorf("ошибка сериализации сетки: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Load целиком заменяет сетку содержимым сохранения. При ошибке сетка
// остается прежней.
func (g *Grid) Load(data []byte) error {
	cols, err := g.decode(data)
	if err != nil {
		return err
	}

	w, h := len(cols), len(cols[0])
	cells := make([]Cell, 0, w*h)
	for _, col := range cols {
		for _, c := range col {
			cells = append(cells, Cell(c))
		}
	}

	g.width, g.height = w, h
	g.cells = cells
	g.version++
	return nil
}

// LoadFrom читает сохранение из r
func (g *Grid) LoadFrom(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("ошибка чтения сохранения: %w", err)
	}
	return g.Load(data)
}

// decode разбирает и проверяет сохранение, не трогая сетку
func (g *Grid) decode(data []byte) ([][]savedCell, error) {
	var cols [][]savedCell
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSave, err)
	}
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, fmt.Errorf("%w: пустая сетка", ErrMalformedSave)
	}

	h := len(cols[0])
	for x, col := range cols {
		if len(col) != h {
			return nil, fmt.Errorf("%w: столбец %d имеет высоту %d, ожидалось %d", ErrMalformedSave, x, len(col), h)
		}
		for y, c := range col {
			if !g.types.Has(c.Type) {
				return nil, fmt.Errorf("%w: клетка (%d,%d): неизвестный тип %d", ErrMalformedSave, x, y, c.Type)
			}
			for name, v := range c.Effects {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("%w: клетка (%d,%d): эффект %s = %v", ErrMalformedSave, x, y, name, v)
				}
			}
		}
	}
	return cols, nil
}
