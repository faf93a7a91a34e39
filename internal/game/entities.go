package game

import (
	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
)

// CreateEntity создает сущность в симуляции
func (s *Session) CreateEntity(spec physics.EntitySpec) (physics.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.sim.CreateEntity(spec)
	if err != nil {
		return physics.Snapshot{}, err
	}
	e, _ := s.sim.Entity(id)
	snap := e.Snapshot()
	s.logger.Debug("Создана сущность %d (%s) в (%.1f,%.1f)", id, spec.Kind, spec.Position.X, spec.Position.Y)
	s.emitEntity(eventbus.EntityCreated, snap)
	return snap, nil
}

// Entity копия состояния сущности
func (s *Session) Entity(id uint64) (physics.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sim.Entity(id)
	if !ok {
		return physics.Snapshot{}, false
	}
	return e.Snapshot(), true
}

// Entities копии состояния всех сущностей в порядке ID
func (s *Session) Entities() []physics.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.sim.Entities()
	out := make([]physics.Snapshot, 0, len(list))
	for _, e := range list {
		out = append(out, e.Snapshot())
	}
	return out
}

// MoveEntity переносит сущность
func (s *Session) MoveEntity(id uint64, pos vec.Vec2Float) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.MoveEntity(id, pos)
}

// NudgeEntity толкает сущность
func (s *Session) NudgeEntity(id uint64, d vec.Vec2Float) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.NudgeEntity(id, d)
}

// DestroyEntity удаляет сущность; ее drawable уничтожается при следующем кадре
func (s *Session) DestroyEntity(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sim.Entity(id)
	if !ok {
		return s.sim.DestroyEntity(id)
	}
	snap := e.Snapshot()
	if err := s.sim.DestroyEntity(id); err != nil {
		return err
	}
	s.emitEntity(eventbus.EntityDestroyed, snap)
	if id == s.player {
		s.player = 0
	}
	return nil
}
