package storage

import (
	"context"

	"github.com/annel0/tileworld/internal/vec"
)

// PositionRepo определяет интерфейс для сохранения и загрузки позиций сущностей
// между запусками. Ключ - постоянное имя сущности ("player"), а не ее ID в
// симуляции: ID выдаются заново при каждом запуске.
type PositionRepo interface {
	// Save сохраняет позицию в единицах мира
	Save(ctx context.Context, key string, pos vec.Vec2Float) error

	// Load загружает позицию. bool false, если позиция не сохранялась.
	Load(ctx context.Context, key string) (vec.Vec2Float, bool, error)

	// Delete удаляет сохраненную позицию
	Delete(ctx context.Context, key string) error
}
