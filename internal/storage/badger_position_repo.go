package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/tileworld/internal/vec"
)

// BadgerPositionRepo реализует PositionRepo поверх WorldStorage.
// Ключи: position:<world>:<key>.
type BadgerPositionRepo struct {
	storage *WorldStorage
	world   string
}

// Positions репозиторий позиций мира worldName
func (ws *WorldStorage) Positions(worldName string) *BadgerPositionRepo {
	return &BadgerPositionRepo{storage: ws, world: worldName}
}

func (r *BadgerPositionRepo) key(key string) []byte {
	return []byte("position:" + r.world + ":" + key)
}

// Save сохраняет позицию
func (r *BadgerPositionRepo) Save(ctx context.Context, key string, pos vec.Vec2Float) error {
	if err := validatePosition(key, pos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("ошибка сериализации позиции: %w", err)
	}

	ws := r.storage
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(key), data)
	})
}

// Load загружает позицию
func (r *BadgerPositionRepo) Load(ctx context.Context, key string) (vec.Vec2Float, bool, error) {
	if err := ctx.Err(); err != nil {
		return vec.Vec2Float{}, false, err
	}

	ws := r.storage
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if !ws.isReady {
		return vec.Vec2Float{}, false, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return vec.Vec2Float{}, false, nil
	}
	if err != nil {
		return vec.Vec2Float{}, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	var pos vec.Vec2Float
	if err := json.Unmarshal(data, &pos); err != nil {
		return vec.Vec2Float{}, false, fmt.Errorf("ошибка десериализации позиции: %w", err)
	}
	return pos, true, nil
}

// Delete удаляет позицию
func (r *BadgerPositionRepo) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ws := r.storage
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return ws.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(r.key(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("позиция %q не найдена", key)
			}
			return err
		}
		return txn.Delete(r.key(key))
	})
}
