package tile

import "errors"

// TypeID идентификатор типа тайла
type TypeID uint16

// Идентификаторы встроенных тайлов (совпадают с форматом сохранений)
const (
	EmptyID       TypeID = iota // 0
	BlockID                     // 1
	TopLeftID                   // 2
	TopRightID                  // 3
	BottomLeftID                // 4
	BottomRightID               // 5
	LeftID                      // 6
	TopID                       // 7
	RightID                     // 8
	BottomID                    // 9

	// Пользовательские типы (мини-игры, конфиг) начинаются отсюда
	FirstCustomID TypeID = 10
)

// Kind вид геометрии тайла
type Kind uint8

const (
	KindEmpty Kind = iota
	KindBlock
	KindEdge
	KindCorner
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBlock:
		return "block"
	case KindEdge:
		return "edge"
	case KindCorner:
		return "corner"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// Direction сторона тайла (для краев и углов)
type Direction uint8

const (
	None Direction = iota
	Left
	Right
	Up
	Down
	UpLeft
	UpRight
	DownLeft
	DownRight
)

func (d Direction) String() string {
	return [...]string{"none", "left", "right", "up", "down", "up-left", "up-right", "down-left", "down-right"}[d]
}

// Ошибки регистра тайлов
var (
	ErrInvalidMask = errors.New("invalid tile mask")
	ErrDuplicateID = errors.New("duplicate tile type id")
	ErrReservedID  = errors.New("reserved tile type id")
	ErrBadKind     = errors.New("invalid tile kind")
)

// Type описание типа тайла. Геометрия хранится маской подъячеек,
// вид (Kind) и направление сохраняются для отрисовки и сериализации.
type Type struct {
	ID   TypeID
	Name string
	Kind Kind
	Dir  Direction
	Mask Mask
	// Solid false делает тайл чисто декоративным, маска игнорируется физикой
	Solid bool
}

// Empty пустой тайл
func Empty() Type {
	return Type{ID: EmptyID, Name: "none", Kind: KindEmpty}
}

// Block полностью твердый тайл
func Block(id TypeID, name string) Type {
	return Type{ID: id, Name: name, Kind: KindBlock, Mask: fullMask(), Solid: true}
}

// Edge тайл, у которого твердая половина со стороны dir
func Edge(id TypeID, name string, dir Direction) Type {
	return Type{ID: id, Name: name, Kind: KindEdge, Dir: dir, Mask: halfMask(dir), Solid: true}
}

// Corner L-образный тайл: объединение двух половин угла dir
func Corner(id TypeID, name string, dir Direction) Type {
	var a, b Direction
	switch dir {
	case UpLeft:
		a, b = Up, Left
	case UpRight:
		a, b = Up, Right
	case DownLeft:
		a, b = Down, Left
	case DownRight:
		a, b = Down, Right
	}
	return Type{ID: id, Name: name, Kind: KindCorner, Dir: dir, Mask: halfMask(a).Union(halfMask(b)), Solid: true}
}

// Custom тайл с произвольной маской
func Custom(id TypeID, name string, mask Mask, solid bool) Type {
	return Type{ID: id, Name: name, Kind: KindCustom, Mask: mask, Solid: solid}
}

// SolidAt проверяет подъячейку, содержащую точку (fx, fy)
func (t *Type) SolidAt(fx, fy float64) bool {
	if !t.Solid {
		return false
	}
	return t.Mask.Solid(fx, fy)
}

// validate проверяет согласованность вида и направления
func (t *Type) validate() error {
	switch t.Kind {
	case KindEmpty:
		if t.ID != EmptyID {
			return ErrBadKind
		}
	case KindEdge:
		if t.Dir < Left || t.Dir > Down {
			return ErrBadKind
		}
	case KindCorner:
		if t.Dir < UpLeft {
			return ErrBadKind
		}
	case KindBlock, KindCustom:
	default:
		return ErrBadKind
	}
	return nil
}
