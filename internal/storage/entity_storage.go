package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/world"
)

// WorldEntities содержит сохраненные сущности мира
type WorldEntities struct {
	World    string             `json:"world"`
	Entities []physics.Snapshot `json:"entities"`
}

func entitiesKey(worldName string) []byte {
	return []byte("entities:" + worldName)
}

// SaveEntities заменяет сохраненный набор сущностей мира
func (ws *WorldStorage) SaveEntities(ctx context.Context, worldName string, entities []physics.Snapshot) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Если нет сущностей для сохранения, удаляем старую запись
	if len(entities) == 0 {
		return ws.db.Update(func(txn *badger.Txn) error {
			err := txn.Delete(entitiesKey(worldName))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		})
	}

	data, err := json.Marshal(WorldEntities{World: worldName, Entities: entities})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сущностей: %w", err)
	}

	err = ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entitiesKey(worldName), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения сущностей в BadgerDB: %w", err)
	}
	return nil
}

// LoadEntities загружает сущности мира; если их нет, возвращает пустой список
func (ws *WorldStorage) LoadEntities(ctx context.Context, worldName string) ([]physics.Snapshot, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entitiesKey(worldName))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сущностей из BadgerDB: %w", err)
	}

	var saved WorldEntities
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("%w: сущности %s: %v", world.ErrMalformedSave, worldName, err)
	}
	return saved.Entities, nil
}
