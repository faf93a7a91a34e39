package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameTimerAverages(t *testing.T) {
	ft := NewFrameTimer(2)
	t0 := time.Unix(0, 0)

	ft.Mark(t0)
	assert.Zero(t, ft.Stats().Average, "первый кадр не дает интервала")

	ft.Mark(t0.Add(10 * time.Millisecond))
	ft.Mark(t0.Add(30 * time.Millisecond))
	st := ft.Stats()
	assert.Equal(t, 20*time.Millisecond, st.DT)
	assert.Equal(t, 15*time.Millisecond, st.Average)
	assert.InDelta(t, 66.67, st.FPS, 0.01)
	assert.Equal(t, uint64(3), st.Frames)

	// окно из двух кадров вытесняет старый интервал
	ft.Mark(t0.Add(60 * time.Millisecond))
	assert.Equal(t, 25*time.Millisecond, ft.Stats().Average)
}
