// Package render описывает возможности графического бэкенда, которыми
// пользуется ядро симуляции. Ядро никогда не работает с пикселями напрямую:
// оно создает drawable-объекты и меняет их свойства через Backend.
package render

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/tile"
)

// Handle непрозрачный идентификатор drawable-объекта бэкенда
type Handle uint64

// InvalidHandle нулевой handle, бэкенды его не выдают
const InvalidHandle Handle = 0

// Layer слой отрисовки, слои рисуются по возрастанию
type Layer int

const (
	LayerTiles Layer = iota
	LayerCursor
	LayerEntities
	LayerDebug
)

func (l Layer) String() string {
	switch l {
	case LayerTiles:
		return "tiles"
	case LayerCursor:
		return "cursor"
	case LayerEntities:
		return "entities"
	case LayerDebug:
		return "debug"
	}
	return "unknown"
}

// SkinID ссылка на ресурс внешнего вида
type SkinID string

// Имена эффектов, которые ядро передает в SetEffect
const (
	EffectRepeatX = "repeat_x"
	EffectRepeatY = "repeat_y"
)

// Backend набор операций, которые ядро вызывает у графической подсистемы
type Backend interface {
	CreateDrawable(layer Layer) Handle
	DestroyDrawable(h Handle)
	SetPosition(h Handle, pos vec.Vec2Float)
	SetRotation(h Handle, degrees float64)
	SetVisible(h Handle, visible bool)
	SetSkin(h Handle, skin SkinID)
	SetScale(h Handle, scale vec.Vec2Float)
	SetEffect(h Handle, name string, value float64)
}

// Presenter бэкенд, выводящий накопленный кадр одним вызовом
type Presenter interface {
	Present()
}

// SkinRegistry сопоставляет типам тайлов скины
type SkinRegistry interface {
	SkinForType(id tile.TypeID) (SkinID, bool)
	ErrorSkin() SkinID
}

// ResolveSkin возвращает скин для типа или скин ошибки
func ResolveSkin(r SkinRegistry, id tile.TypeID) SkinID {
	if r == nil {
		return ""
	}
	if s, ok := r.SkinForType(id); ok {
		return s
	}
	return r.ErrorSkin()
}
