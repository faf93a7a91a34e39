package render

import (
	"fmt"

	"github.com/annel0/tileworld/internal/world/tile"
)

// DefaultErrorSkin скин, которым рисуются тайлы без назначенного скина
const DefaultErrorSkin SkinID = "error"

// StaticSkins простой регистр скинов на основе карты
type StaticSkins struct {
	skins     map[tile.TypeID]SkinID
	errorSkin SkinID
}

// NewStaticSkins создает регистр со встроенными скинами ("tile-<name>")
func NewStaticSkins(types *tile.Registry) *StaticSkins {
	s := &StaticSkins{
		skins:     make(map[tile.TypeID]SkinID),
		errorSkin: DefaultErrorSkin,
	}
	if types != nil {
		for _, id := range types.IDs() {
			if id == tile.EmptyID {
				continue
			}
			t, _ := types.Lookup(id)
			s.skins[id] = SkinID(fmt.Sprintf("tile-%s", t.Name))
		}
	}
	return s
}

// Set назначает скин типу тайла
func (s *StaticSkins) Set(id tile.TypeID, skin SkinID) {
	s.skins[id] = skin
}

// SetErrorSkin меняет скин ошибки
func (s *StaticSkins) SetErrorSkin(skin SkinID) {
	s.errorSkin = skin
}

// SkinForType реализует SkinRegistry
func (s *StaticSkins) SkinForType(id tile.TypeID) (SkinID, bool) {
	skin, ok := s.skins[id]
	return skin, ok
}

// ErrorSkin реализует SkinRegistry
func (s *StaticSkins) ErrorSkin() SkinID {
	return s.errorSkin
}
