package game

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/codes"

	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/world"
)

// GridStore хранилище состояния сетки
type GridStore interface {
	Save(ctx context.Context, g *world.Grid) error
	Load(ctx context.Context, g *world.Grid) error
}

// Save сохраняет сетку в store
func (s *Session) Save(ctx context.Context, store GridStore) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.Save(ctx, s.grid); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("Ошибка сохранения мира: %v", err)
		return err
	}
	s.logger.Info("Мир сохранен (%d непустых клеток)", s.grid.Count())
	s.emitWorld(eventbus.WorldSaved)
	return nil
}

// Load загружает сетку из store. При ошибке сетка не меняется.
func (s *Session) Load(ctx context.Context, store GridStore) error {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.Load(ctx, s.grid); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("Мир не загружен: %v", err)
		return err
	}
	s.logger.Info("Мир загружен: %dx%d", s.grid.Width(), s.grid.Height())
	s.emitWorld(eventbus.WorldLoaded)
	return nil
}

// WriteJSON пишет текстовое сохранение сетки в w
func (s *Session) WriteJSON(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Save(w)
}

// ReadJSON заменяет сетку текстовым сохранением
func (s *Session) ReadJSON(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.grid.Load(data); err != nil {
		return err
	}
	s.emitWorld(eventbus.WorldLoaded)
	return nil
}
