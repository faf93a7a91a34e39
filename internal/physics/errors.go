package physics

import "errors"

// ErrInvalidSize недопустимые размеры или плотность сущности
var ErrInvalidSize = errors.New("invalid entity size")
