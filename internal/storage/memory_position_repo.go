package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/tileworld/internal/vec"
)

// MemoryPositionRepo реализует PositionRepo в памяти.
// Используется в тестах и в режиме без диска.
type MemoryPositionRepo struct {
	mu   sync.RWMutex
	data map[string]vec.Vec2Float
}

// NewMemoryPositionRepo создает новый репозиторий позиций в памяти.
func NewMemoryPositionRepo() *MemoryPositionRepo {
	return &MemoryPositionRepo{
		data: make(map[string]vec.Vec2Float),
	}
}

func validatePosition(key string, pos vec.Vec2Float) error {
	if key == "" {
		return fmt.Errorf("пустой ключ позиции")
	}
	if !pos.IsFinite() {
		return fmt.Errorf("недействительная позиция %v для %q", pos, key)
	}
	return nil
}

// Save сохраняет позицию в памяти.
func (r *MemoryPositionRepo) Save(ctx context.Context, key string, pos vec.Vec2Float) error {
	if err := validatePosition(key, pos); err != nil {
		return err
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = pos
	return nil
}

// Load загружает позицию из памяти.
func (r *MemoryPositionRepo) Load(ctx context.Context, key string) (vec.Vec2Float, bool, error) {
	select {
	case <-ctx.Done():
		return vec.Vec2Float{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, exists := r.data[key]
	return pos, exists, nil
}

// Delete удаляет сохраненную позицию из памяти.
func (r *MemoryPositionRepo) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[key]; !exists {
		return fmt.Errorf("позиция %q не найдена", key)
	}

	delete(r.data, key)
	return nil
}

// Count возвращает количество сохраненных позиций (для отладки).
func (r *MemoryPositionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
