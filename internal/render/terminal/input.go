package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/tile"
)

// Action действие игрока, полученное из события терминала
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionJump
	ActionCrouch
	ActionLeft
	ActionRight
	ActionCursorUp
	ActionCursorDown
	ActionCursorLeft
	ActionCursorRight
	ActionPlace
	ActionClear
	ActionTeleport
	ActionPanUp
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionResetCamera
	ActionZoomIn
	ActionZoomOut
	ActionRotateLeft
	ActionRotateRight
	ActionToggleGravity
	ActionSave
	ActionUncover
	ActionFlag
	ActionSelectTile
)

// Controls операции сессии, доступные с клавиатуры и мыши
type Controls interface {
	Jump() error
	Crouch() error
	MoveLeft() error
	MoveRight() error
	Cursor() vec.Vec2
	MoveCursor(d vec.Vec2) vec.Vec2
	SetCursor(screenX, screenY float64) vec.Vec2
	PlaceTile() error
	ClearTile() error
	MovePlayerTo() error
	PanCamera(dx, dy int)
	ResetCamera()
	Zoom(factor float64)
	Rotate(deg float64)
	ToggleGravity() error
	SelectTile(id tile.TypeID) error
}

// Mines действия сапера над клеткой
type Mines interface {
	Uncover(x, y int) (bool, error)
	ToggleFlag(x, y int) error
}

var keyActions = map[tcell.Key]Action{
	tcell.KeyEscape: ActionQuit,
	tcell.KeyCtrlC:  ActionQuit,
	tcell.KeyUp:     ActionCursorUp,
	tcell.KeyDown:   ActionCursorDown,
	tcell.KeyLeft:   ActionCursorLeft,
	tcell.KeyRight:  ActionCursorRight,
	tcell.KeyEnter:  ActionPlace,
	tcell.KeyDelete: ActionClear,
	tcell.KeyCtrlS:  ActionSave,
	tcell.KeyHome:   ActionResetCamera,
}

var runeActions = map[rune]Action{
	'q': ActionQuit,
	' ': ActionJump,
	'w': ActionJump,
	's': ActionCrouch,
	'a': ActionLeft,
	'd': ActionRight,
	'x': ActionClear,
	't': ActionTeleport,
	'i': ActionPanUp,
	'k': ActionPanDown,
	'j': ActionPanLeft,
	'l': ActionPanRight,
	'c': ActionResetCamera,
	'+': ActionZoomIn,
	'-': ActionZoomOut,
	'[': ActionRotateLeft,
	']': ActionRotateRight,
	'g': ActionToggleGravity,
	'u': ActionUncover,
	'f': ActionFlag,
}

// Decode переводит событие клавиатуры в действие. Для ActionSelectTile
// второе значение - номер тайла 1..9.
func Decode(ev *tcell.EventKey) (Action, int) {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r >= '1' && r <= '9' {
			return ActionSelectTile, int(r - '0')
		}
		return runeActions[r], 0
	}
	return keyActions[ev.Key()], 0
}

// Input применяет события терминала к сессии
type Input struct {
	backend  *Backend
	controls Controls
	mines    Mines
	onSave   func() error
}

// NewInput создает обработчик ввода. mines и onSave необязательны.
func NewInput(backend *Backend, controls Controls, mines Mines, onSave func() error) *Input {
	return &Input{backend: backend, controls: controls, mines: mines, onSave: onSave}
}

// Handle обрабатывает событие; quit сообщает о запросе выхода
func (in *Input) Handle(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		action, n := Decode(ev)
		return action == ActionQuit, in.apply(action, n)
	case *tcell.EventMouse:
		return false, in.mouse(ev)
	case *tcell.EventResize:
		in.backend.Screen().Sync()
	}
	return false, nil
}

func (in *Input) apply(action Action, n int) error {
	c := in.controls
	switch action {
	case ActionJump:
		return c.Jump()
	case ActionCrouch:
		return c.Crouch()
	case ActionLeft:
		return c.MoveLeft()
	case ActionRight:
		return c.MoveRight()
	case ActionCursorUp:
		c.MoveCursor(vec.Vec2{Y: 1})
	case ActionCursorDown:
		c.MoveCursor(vec.Vec2{Y: -1})
	case ActionCursorLeft:
		c.MoveCursor(vec.Vec2{X: -1})
	case ActionCursorRight:
		c.MoveCursor(vec.Vec2{X: 1})
	case ActionPlace:
		return c.PlaceTile()
	case ActionClear:
		return c.ClearTile()
	case ActionTeleport:
		return c.MovePlayerTo()
	case ActionPanUp:
		c.PanCamera(0, 1)
	case ActionPanDown:
		c.PanCamera(0, -1)
	case ActionPanLeft:
		c.PanCamera(-1, 0)
	case ActionPanRight:
		c.PanCamera(1, 0)
	case ActionResetCamera:
		c.ResetCamera()
	case ActionZoomIn:
		c.Zoom(1.25)
	case ActionZoomOut:
		c.Zoom(0.8)
	case ActionRotateLeft:
		c.Rotate(-15)
	case ActionRotateRight:
		c.Rotate(15)
	case ActionToggleGravity:
		return c.ToggleGravity()
	case ActionSelectTile:
		return c.SelectTile(tile.TypeID(n))
	case ActionSave:
		if in.onSave != nil {
			return in.onSave()
		}
	case ActionUncover:
		if in.mines != nil {
			cur := c.Cursor()
			_, err := in.mines.Uncover(cur.X, cur.Y)
			return err
		}
	case ActionFlag:
		if in.mines != nil {
			cur := c.Cursor()
			return in.mines.ToggleFlag(cur.X, cur.Y)
		}
	}
	return nil
}

// mouse: левая кнопка ставит тайл (или открывает клетку сапера),
// правая очищает (или ставит флаг)
func (in *Input) mouse(ev *tcell.EventMouse) error {
	buttons := ev.Buttons()
	if buttons&(tcell.Button1|tcell.Button2) == 0 {
		return nil
	}
	col, row := ev.Position()
	p := in.backend.ScreenPoint(col, row)
	in.controls.SetCursor(p.X, p.Y)

	if buttons&tcell.Button1 != 0 {
		if in.mines != nil {
			return in.apply(ActionUncover, 0)
		}
		return in.apply(ActionPlace, 0)
	}
	if in.mines != nil {
		return in.apply(ActionFlag, 0)
	}
	return in.apply(ActionClear, 0)
}
