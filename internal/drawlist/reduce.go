// Package drawlist сжимает видимое окно тайловой сетки в минимальный набор
// примитивов отрисовки: сначала по вертикали, затем по горизонтали.
package drawlist

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// DrawRun прямоугольник одинаковых клеток, рисуемый одним drawable-объектом
type DrawRun struct {
	Type tile.TypeID
	// Cell левая нижняя клетка прямоугольника в координатах окна
	Cell vec.Vec2
	// Position экранная позиция центра прямоугольника
	Position vec.Vec2Float
	HRepeat  int
	VRepeat  int
	Effects  map[string]float64
}

// segment вертикальная серия одинаковых клеток в столбце
type segment struct {
	cell   world.Cell
	top    int // верхняя строка окна
	length int
}

func sameColumn(a, b []segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].length != b[i].length || !a[i].cell.Equal(b[i].cell) {
			return false
		}
	}
	return true
}

// group несколько подряд идущих одинаковых столбцов
type group struct {
	col     int
	repeat  int
	columns []segment
}

// Reduce строит список примитивов для окна преобразования tr.
// Пустые клетки участвуют в сравнении столбцов, но не попадают в результат.
func Reduce(g *world.Grid, tr *world.Transform) []DrawRun {
	return reduceInto(nil, g, tr)
}

func reduceInto(dst []DrawRun, g *world.Grid, tr *world.Transform) []DrawRun {
	vp := tr.Viewport()
	origin := tr.OriginCell()

	var groups []group
	var prev []segment

	for i := 0; i < vp.X; i++ {
		col := columnSegments(g, origin.X+i, origin.Y, vp.Y)
		if prev != nil && sameColumn(prev, col) {
			groups[len(groups)-1].repeat++
			continue
		}
		groups = append(groups, group{col: i, repeat: 1, columns: col})
		prev = col
	}

	dst = dst[:0]
	for _, gr := range groups {
		for _, s := range gr.columns {
			if s.cell.IsEmpty() {
				continue
			}
			bottom := s.top - s.length + 1
			center := vec.Vec2Float{
				X: float64(gr.col) + float64(gr.repeat)/2,
				Y: float64(bottom) + float64(s.length)/2,
			}
			dst = append(dst, DrawRun{
				Type:     s.cell.Type,
				Cell:     vec.Vec2{X: gr.col, Y: bottom},
				Position: tr.WorldToScreen(center),
				HRepeat:  gr.repeat,
				VRepeat:  s.length,
				Effects:  s.cell.Effects,
			})
		}
	}
	return dst
}

// columnSegments проходит столбец окна сверху вниз и склеивает одинаковые клетки
func columnSegments(g *world.Grid, x, y0, height int) []segment {
	segs := make([]segment, 0, 4)
	for j := height - 1; j >= 0; j-- {
		c := g.Get(x, y0+j)
		if n := len(segs); n > 0 && segs[n-1].cell.Equal(c) {
			segs[n-1].length++
			continue
		}
		segs = append(segs, segment{cell: c, top: j, length: 1})
	}
	return segs
}
