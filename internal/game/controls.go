package game

import (
	"fmt"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// Толчки игрока
var (
	jumpFree      = vec.Vec2Float{X: 0, Y: 20}
	jumpOffLeft   = vec.Vec2Float{X: 10, Y: 7.5}
	jumpOffRight  = vec.Vec2Float{X: -10, Y: 7.5}
	jumpOffGround = vec.Vec2Float{X: 0, Y: 15}
	crouchNudge   = vec.Vec2Float{X: 0, Y: -1}
)

const (
	walkStep   = 5.0
	groundStep = 15.0
)

func (s *Session) playerEntity() (*physics.Entity, error) {
	if s.player == 0 {
		return nil, fmt.Errorf("%w: в сессии нет игрока", world.ErrInvalidReference)
	}
	e, ok := s.sim.Entity(s.player)
	if !ok {
		return nil, fmt.Errorf("%w: игрок %d", world.ErrInvalidReference, s.player)
	}
	return e, nil
}

// Jump прыжок: без гравитации всегда вверх, иначе только от поверхности,
// которой игрок касается
func (s *Session) Jump() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.playerEntity()
	if err != nil {
		return err
	}
	var d vec.Vec2Float
	switch {
	case !e.Gravity:
		d = jumpFree
	case e.Collided == physics.FaceLeft:
		d = jumpOffLeft
	case e.Collided == physics.FaceRight:
		d = jumpOffRight
	case e.Collided == physics.FaceDown:
		d = jumpOffGround
	default:
		return nil
	}
	return s.sim.NudgeEntity(e.ID, d)
}

// Crouch слабый толчок вниз
func (s *Session) Crouch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.playerEntity()
	if err != nil {
		return err
	}
	return s.sim.NudgeEntity(e.ID, crouchNudge)
}

// MoveLeft толчок влево, сильнее на земле
func (s *Session) MoveLeft() error {
	return s.walk(-1)
}

// MoveRight толчок вправо, сильнее на земле
func (s *Session) MoveRight() error {
	return s.walk(1)
}

func (s *Session) walk(dir float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.playerEntity()
	if err != nil {
		return err
	}
	step := walkStep
	if e.Grounded() {
		step += groundStep
	}
	return s.sim.NudgeEntity(e.ID, vec.Vec2Float{X: dir * step})
}

// SetCursor ставит курсор в клетку под экранной точкой
func (s *Session) SetCursor(screenX, screenY float64) vec.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor = s.tr.ScreenToCell(screenX, screenY, s.grid.Width())
	return s.cursor
}

// SetCursorCell ставит курсор в клетку сетки
func (s *Session) SetCursorCell(c vec.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grid.Wrap() {
		c = c.Wrap(s.grid.Width())
	}
	s.cursor = c
}

// MoveCursor сдвигает курсор на d клеток
func (s *Session) MoveCursor(d vec.Vec2) vec.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cursor.Add(d)
	if s.grid.Wrap() {
		c = c.Wrap(s.grid.Width())
	}
	s.cursor = c
	return c
}

// SelectTile выбирает тип для PlaceTile
func (s *Session) SelectTile(id tile.TypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == tile.EmptyID || !s.grid.Types().Has(id) {
		return fmt.Errorf("%w: тип тайла %d", world.ErrInvalidReference, id)
	}
	s.selected = id
	return nil
}

// PlaceTile ставит выбранный тайл под курсором
func (s *Session) PlaceTile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.grid.SetType(s.cursor.X, s.cursor.Y, s.selected); err != nil {
		return err
	}
	s.emitTile(s.cursor.X, s.cursor.Y)
	return nil
}

// ClearTile очищает клетку под курсором
func (s *Session) ClearTile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.grid.ClearType(s.cursor.X, s.cursor.Y); err != nil {
		return err
	}
	s.emitTile(s.cursor.X, s.cursor.Y)
	return nil
}

// Tile клетка (x, y)
func (s *Session) Tile(x, y int) (world.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Cell(x, y)
}

// SetTile задает тип клетки (x, y)
func (s *Session) SetTile(x, y int, id tile.TypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if id == tile.EmptyID {
		err = s.grid.ClearType(x, y)
	} else {
		err = s.grid.SetType(x, y, id)
	}
	if err != nil {
		return err
	}
	s.emitTile(x, y)
	return nil
}

// MovePlayerTo переносит игрока в центр клетки под курсором
func (s *Session) MovePlayerTo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.playerEntity()
	if err != nil {
		return err
	}
	from := e.Position
	to := vec.FromVec2(s.cursor).Add(vec.Vec2Float{X: 0.5, Y: 0.5}).Mul(s.grid.TileSize())
	if err := s.sim.MoveEntity(e.ID, to); err != nil {
		return err
	}
	logging.LogEntityMovement(e.ID, from.X, from.Y, to.X, to.Y)
	return nil
}

// PanCamera сдвигает камеру на (dx, dy) шагов и отключает следование
func (s *Session) PanCamera(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.following = false
	s.tr.MoveBy(vec.Vec2Float{X: float64(dx), Y: float64(dy)}.Mul(s.panStep))
}

// ResetCamera центрирует камеру на игроке и включает следование
func (s *Session) ResetCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.following = s.follow > 0
	if e, err := s.playerEntity(); err == nil {
		s.tr.CenterOn(e.Position)
	}
}

// Zoom умножает масштаб камеры на factor
func (s *Session) Zoom(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if factor > 0 {
		s.tr.SetScale(s.tr.Camera().Scale * factor)
	}
}

// Rotate поворачивает камеру на deg градусов
func (s *Session) Rotate(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tr.SetRotation(s.tr.Camera().Rotation + deg)
}

// ToggleGravity переключает гравитацию игрока
func (s *Session) ToggleGravity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.playerEntity()
	if err != nil {
		return err
	}
	return s.sim.SetGravity(e.ID, !e.Gravity)
}
