package world

import "github.com/annel0/tileworld/internal/vec"

// neighbors8 смещения к восьми соседям
var neighbors8 = [...]vec.Vec2{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// FloodFill обход в ширину от start по прямоугольнику width x height.
// visit вызывается для каждой посещенной клетки ровно один раз и решает,
// распространяется ли заливка дальше через эту клетку. Очередь ограничена
// числом клеток. Возвращает число посещенных клеток.
func FloodFill(width, height int, start vec.Vec2, visit func(p vec.Vec2) (expand bool)) int {
	if width <= 0 || height <= 0 || !start.InBounds(width, height) {
		return 0
	}

	total := width * height
	visited := make([]bool, total)
	queue := make([]vec.Vec2, 0, min(total, 64))
	queue = append(queue, start)
	visited[start.ToIndex(height)] = true

	count := 0
	for head := 0; head < len(queue); head++ {
		p := queue[head]
		count++
		if !visit(p) {
			continue
		}
		for _, d := range neighbors8 {
			n := p.Add(d)
			if !n.InBounds(width, height) {
				continue
			}
			i := n.ToIndex(height)
			if visited[i] {
				continue
			}
			visited[i] = true
			queue = append(queue, n)
		}
	}
	return count
}
