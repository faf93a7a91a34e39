package game

import (
	"context"
	"time"
)

// Run крутит физику с частотой tickHz и кадры с частотой fps, пока ctx
// не отменен
func (s *Session) Run(ctx context.Context, tickHz, fps int) error {
	if tickHz <= 0 {
		tickHz = 60
	}
	if fps <= 0 {
		fps = 30
	}
	tick := time.NewTicker(time.Second / time.Duration(tickHz))
	defer tick.Stop()
	frame := time.NewTicker(time.Second / time.Duration(fps))
	defer frame.Stop()

	s.logger.Info("Цикл сессии запущен: %d тиков/с, %d кадров/с", tickHz, fps)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Цикл сессии остановлен")
			return nil
		case <-tick.C:
			s.Tick(ctx)
		case now := <-frame.C:
			s.frames.Mark(now)
			s.Draw(ctx)
		}
	}
}
