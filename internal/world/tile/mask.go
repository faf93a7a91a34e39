package tile

import (
	"fmt"
	"math"
	"strings"
)

// MaskResolution число подъячеек по каждой оси тайла
const MaskResolution = 8

// Mask геометрия тайла: Mask[row][col], row 0 соответствует низу тайла
// (ось Y мира направлена вверх).
type Mask [MaskResolution][MaskResolution]bool

// subIndex переводит дробную координату внутри тайла в индекс подъячейки
func subIndex(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	i := int(math.Floor(f * MaskResolution))
	if i < 0 {
		return 0
	}
	if i >= MaskResolution {
		return MaskResolution - 1
	}
	return i
}

// Solid проверяет подъячейку, содержащую точку (fx, fy) в долях тайла
func (m Mask) Solid(fx, fy float64) bool {
	return m[subIndex(fy)][subIndex(fx)]
}

// Count число твердых подъячеек
func (m Mask) Count() int {
	n := 0
	for r := range m {
		for c := range m[r] {
			if m[r][c] {
				n++
			}
		}
	}
	return n
}

// Union объединение двух масок
func (m Mask) Union(other Mask) Mask {
	for r := range m {
		for c := range m[r] {
			m[r][c] = m[r][c] || other[r][c]
		}
	}
	return m
}

func fullMask() Mask {
	var m Mask
	for r := range m {
		for c := range m[r] {
			m[r][c] = true
		}
	}
	return m
}

// halfMask твердая половина тайла со стороны dir
func halfMask(dir Direction) Mask {
	var m Mask
	half := MaskResolution / 2
	for r := 0; r < MaskResolution; r++ {
		for c := 0; c < MaskResolution; c++ {
			switch dir {
			case Left:
				m[r][c] = c < half
			case Right:
				m[r][c] = c >= half
			case Down:
				m[r][c] = r < half
			case Up:
				m[r][c] = r >= half
			}
		}
	}
	return m
}

// ParseMask разбирает маску из строк вида "##..####", первая строка верхняя.
// '#' или 'X' твердая подъячейка, '.' или ' ' пустая.
func ParseMask(rows []string) (Mask, error) {
	var m Mask
	if len(rows) != MaskResolution {
		return m, fmt.Errorf("%w: ожидалось %d строк, получено %d", ErrInvalidMask, MaskResolution, len(rows))
	}
	for i, row := range rows {
		if len(row) != MaskResolution {
			return m, fmt.Errorf("%w: строка %d имеет длину %d", ErrInvalidMask, i, len(row))
		}
		r := MaskResolution - 1 - i
		for c, ch := range row {
			switch ch {
			case '#', 'X':
				m[r][c] = true
			case '.', ' ':
			default:
				return m, fmt.Errorf("%w: недопустимый символ %q в строке %d", ErrInvalidMask, ch, i)
			}
		}
	}
	return m, nil
}

// String рисует маску в том же формате, что принимает ParseMask
func (m Mask) String() string {
	var sb strings.Builder
	for r := MaskResolution - 1; r >= 0; r-- {
		for c := 0; c < MaskResolution; c++ {
			if m[r][c] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		if r > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
