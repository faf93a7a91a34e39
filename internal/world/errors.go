package world

import "errors"

// Ошибки мира. Проверяются через errors.Is.
var (
	// ErrOutOfBounds координаты вне сетки (для мутаторов; чтение возвращает пустую клетку)
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	// ErrInvalidReference неизвестный тип тайла или сущность
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConfiguration недопустимые параметры при создании (масштаб, размер тайла, маски)
	ErrConfiguration = errors.New("configuration error")
	// ErrMalformedSave поврежденное или несовместимое сохранение
	ErrMalformedSave = errors.New("malformed save")
)
