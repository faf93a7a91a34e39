package game

import (
	"sync"
	"time"
)

// DefaultFrameWindow число кадров для скользящего среднего
const DefaultFrameWindow = 100

// FrameStats тайминг кадров
type FrameStats struct {
	DT      time.Duration `json:"dt"`
	Average time.Duration `json:"average"`
	FPS     float64       `json:"fps"`
	Frames  uint64        `json:"frames"`
}

// FrameTimer скользящее среднее длительности кадра
type FrameTimer struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
	sum     time.Duration
	last    time.Time
	frames  uint64
	dt      time.Duration
}

// NewFrameTimer создает таймер с окном из window кадров
func NewFrameTimer(window int) *FrameTimer {
	if window <= 0 {
		window = DefaultFrameWindow
	}
	return &FrameTimer{samples: make([]time.Duration, window)}
}

// Mark отмечает начало кадра в момент now
func (ft *FrameTimer) Mark(now time.Time) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	ft.frames++
	if ft.last.IsZero() {
		ft.last = now
		return
	}
	dt := now.Sub(ft.last)
	ft.last = now
	if dt < 0 {
		dt = 0
	}
	ft.dt = dt
	ft.sum += dt - ft.samples[ft.next]
	ft.samples[ft.next] = dt
	ft.next++
	if ft.next == len(ft.samples) {
		ft.next = 0
		ft.full = true
	}
}

// Stats текущая статистика
func (ft *FrameTimer) Stats() FrameStats {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	n := ft.next
	if ft.full {
		n = len(ft.samples)
	}
	st := FrameStats{DT: ft.dt, Frames: ft.frames}
	if n == 0 {
		return st
	}
	st.Average = ft.sum / time.Duration(n)
	if st.Average > 0 {
		st.FPS = float64(time.Second) / float64(st.Average)
	}
	return st
}
