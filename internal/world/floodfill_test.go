package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/tileworld/internal/vec"
)

func TestFloodFillVisitsEachCellOnce(t *testing.T) {
	seen := make(map[vec.Vec2]int)
	n := FloodFill(30, 20, vec.Vec2{X: 4, Y: 7}, func(p vec.Vec2) bool {
		seen[p]++
		return true
	})

	assert.Equal(t, 600, n)
	assert.Len(t, seen, 600)
	for p, c := range seen {
		assert.Equal(t, 1, c, "клетка %v посещена %d раз", p, c)
	}
}

func TestFloodFillStopsAtWalls(t *testing.T) {
	// вертикальная стена в столбце 3 делит поле 7x5
	wall := func(p vec.Vec2) bool { return p.X == 3 }

	var reached []vec.Vec2
	FloodFill(7, 5, vec.Vec2{X: 0, Y: 0}, func(p vec.Vec2) bool {
		reached = append(reached, p)
		return !wall(p)
	})

	for _, p := range reached {
		assert.LessOrEqual(t, p.X, 3, "заливка не должна проходить через стену: %v", p)
	}
	// 3 столбца по 5 клеток плюс сама стена
	assert.Len(t, reached, 20)
}

func TestFloodFillOutsideStart(t *testing.T) {
	called := false
	n := FloodFill(5, 5, vec.Vec2{X: 5, Y: 0}, func(vec.Vec2) bool {
		called = true
		return true
	})
	assert.Zero(t, n)
	assert.False(t, called)

	assert.Zero(t, FloodFill(0, 5, vec.Vec2{}, func(vec.Vec2) bool { return true }))
}

func TestFloodFillLargeGridDoesNotRecurse(t *testing.T) {
	n := FloodFill(1000, 1000, vec.Vec2{X: 500, Y: 500}, func(vec.Vec2) bool { return true })
	assert.Equal(t, 1000*1000, n)
}
