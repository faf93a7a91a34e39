package game

import (
	"time"

	"github.com/annel0/tileworld/internal/world"
)

// WorldInfo краткое описание мира
type WorldInfo struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	TileSize float64      `json:"tile_size"`
	Wrap     bool         `json:"wrap"`
	Filled   int          `json:"filled"`
	Version  uint64       `json:"version"`
	Camera   world.Camera `json:"camera"`
	Player   uint64       `json:"player"`
}

// Stats сводная статистика сессии
type Stats struct {
	Frame    FrameStats     `json:"frame"`
	Runs     int            `json:"runs"`
	Handles  int            `json:"handles"`
	Cells    int            `json:"cells"`
	Entities int            `json:"entities"`
	Ticks    uint64         `json:"ticks"`
	Contacts map[string]int `json:"contacts"`
	Uptime   time.Duration  `json:"uptime"`
}

// Info описание мира
func (s *Session) Info() WorldInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return WorldInfo{
		Width:    s.grid.Width(),
		Height:   s.grid.Height(),
		TileSize: s.grid.TileSize(),
		Wrap:     s.grid.Wrap(),
		Filled:   s.grid.Count(),
		Version:  s.grid.Version(),
		Camera:   s.tr.Camera(),
		Player:   s.player,
	}
}

// Stats статистика последних кадра и тика
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := make(map[string]int, len(s.lastTick.Contacts))
	for face, n := range s.lastTick.Contacts {
		contacts[face.String()] = n
	}
	return Stats{
		Frame:    s.frames.Stats(),
		Runs:     s.lastDraw.Runs,
		Handles:  s.lastDraw.Handles,
		Cells:    s.lastDraw.Cells,
		Entities: s.sim.Len(),
		Ticks:    s.sim.Ticks(),
		Contacts: contacts,
		Uptime:   time.Since(s.startedAt),
	}
}
