package game

import (
	"context"

	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/physics"
)

// EventSource источник событий сессии
const EventSource = "session"

// emit публикует событие без ожидания: при заполненной шине оно отбрасывается.
// Вызывается под мьютексом сессии.
func (s *Session) emit(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(EventSource, eventType, eventbus.PriorityLow, payload)
	if err != nil {
		s.logger.Warn("Событие %s не создано: %v", eventType, err)
		return
	}
	if err := s.events.Publish(context.Background(), ev); err != nil {
		s.logger.Debug("Событие %s не опубликовано: %v", eventType, err)
	}
}

func (s *Session) emitTile(x, y int) {
	if s.events == nil {
		return
	}
	s.emit(eventbus.TileChanged, eventbus.TilePayload{X: x, Y: y, Type: uint16(s.grid.TypeAt(x, y))})
}

func (s *Session) emitEntity(eventType string, e physics.Snapshot) {
	s.emit(eventType, eventbus.EntityPayload{ID: e.ID, Kind: e.Kind, X: e.Position.X, Y: e.Position.Y})
}

func (s *Session) emitWorld(eventType string) {
	s.emit(eventType, eventbus.WorldPayload{Width: s.grid.Width(), Height: s.grid.Height(), Cells: s.grid.Count()})
}
