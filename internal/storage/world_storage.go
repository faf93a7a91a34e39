package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/world"
)

// SnapshotInfo описание снимка мира
type SnapshotInfo struct {
	ID        string    `json:"id"`
	World     string    `json:"world"`
	CreatedAt time.Time `json:"created_at"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int       `json:"size"` // байт после сжатия
}

// snapshotRecord запись снимка в BadgerDB
type snapshotRecord struct {
	Info SnapshotInfo `json:"info"`
	Grid []byte       `json:"grid"` // сетка в JSON, сжатая zstd
}

// WorldStorage хранилище снимков сетки в BadgerDB.
// Ключи: grid:<world> - последний снимок, snapshot:<world>:<uuid> - история.
// Значения сжаты zstd.
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *logging.Logger
}

// NewWorldStorage открывает хранилище в dataPath/world
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	return openWorldStorage(badger.DefaultOptions(dbPath), dbPath)
}

// NewInMemoryWorldStorage хранилище без диска
func NewInMemoryWorldStorage() (*WorldStorage, error) {
	return openWorldStorage(badger.DefaultOptions("").WithInMemory(true), "")
}

func openWorldStorage(opts badger.Options, dbPath string) (*WorldStorage, error) {
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	logger := logging.GetStorageLogger()
	if dbPath == "" {
		logger.Info("BadgerDB открыта в памяти")
	} else {
		logger.Info("BadgerDB открыта: %s", dbPath)
	}
	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
		logger:  logger,
	}, nil
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.encoder.Close()
	ws.decoder.Close()
	if err := ws.db.Close(); err != nil {
		ws.logger.Error("Ошибка закрытия BadgerDB: %v", err)
		return err
	}
	ws.logger.Info("BadgerDB закрыта")
	return nil
}

func latestKey(worldName string) []byte {
	return []byte("grid:" + worldName)
}

func snapshotKey(worldName, id string) []byte {
	return []byte("snapshot:" + worldName + ":" + id)
}

// SaveGrid сохраняет снимок сетки как последний и добавляет его в историю
func (ws *WorldStorage) SaveGrid(ctx context.Context, worldName string, g *world.Grid) (SnapshotInfo, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return SnapshotInfo{}, fmt.Errorf("хранилище не готово")
	}
	if err := ctx.Err(); err != nil {
		return SnapshotInfo{}, err
	}

	var buf bytes.Buffer
	if err := g.Save(&buf); err != nil {
		return SnapshotInfo{}, fmt.Errorf("ошибка сериализации сетки: %w", err)
	}

	info := SnapshotInfo{
		ID:        uuid.NewString(),
		World:     worldName,
		CreatedAt: time.Now().UTC(),
		Width:     g.Width(),
		Height:    g.Height(),
	}
	compressed := ws.encoder.EncodeAll(buf.Bytes(), nil)
	info.Size = len(compressed)

	record, err := json.Marshal(snapshotRecord{Info: info, Grid: compressed})
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("ошибка сериализации снимка: %w", err)
	}

	err = ws.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(snapshotKey(worldName, info.ID), record); err != nil {
			return err
		}
		return txn.Set(latestKey(worldName), record)
	})
	if err != nil {
		ws.logger.Error("Снимок мира %s не сохранен: %v", worldName, err)
		return SnapshotInfo{}, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	ws.logger.Debug("Снимок %s мира %s: %dx%d, %d байт", info.ID, worldName, info.Width, info.Height, info.Size)
	return info, nil
}

// LoadGrid загружает последний снимок мира в g
func (ws *WorldStorage) LoadGrid(ctx context.Context, worldName string, g *world.Grid) (SnapshotInfo, error) {
	return ws.load(ctx, latestKey(worldName), worldName, g)
}

// LoadSnapshot загружает снимок из истории
func (ws *WorldStorage) LoadSnapshot(ctx context.Context, worldName, id string, g *world.Grid) (SnapshotInfo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SnapshotInfo{}, fmt.Errorf("%w: id снимка %q", world.ErrInvalidReference, id)
	}
	return ws.load(ctx, snapshotKey(worldName, id), worldName, g)
}

func (ws *WorldStorage) load(ctx context.Context, key []byte, worldName string, g *world.Grid) (SnapshotInfo, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return SnapshotInfo{}, fmt.Errorf("хранилище не готово")
	}
	if err := ctx.Err(); err != nil {
		return SnapshotInfo{}, err
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return SnapshotInfo{}, fmt.Errorf("%w: %s", ErrNoSave, key)
	}
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return SnapshotInfo{}, fmt.Errorf("%w: снимок %s: %v", world.ErrMalformedSave, key, err)
	}
	raw, err := ws.decoder.DecodeAll(rec.Grid, nil)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("%w: распаковка %s: %v", world.ErrMalformedSave, key, err)
	}
	if err := g.Load(raw); err != nil {
		return SnapshotInfo{}, err
	}
	return rec.Info, nil
}

// ListSnapshots история снимков мира, от новых к старым
func (ws *WorldStorage) ListSnapshots(ctx context.Context, worldName string) ([]SnapshotInfo, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte("snapshot:" + worldName + ":")
	var list []SnapshotInfo
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec snapshotRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("%w: %s: %v", world.ErrMalformedSave, it.Item().Key(), err)
				}
				list = append(list, rec.Info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return strings.Compare(list[i].ID, list[j].ID) > 0
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// DeleteSnapshot удаляет снимок из истории
func (ws *WorldStorage) DeleteSnapshot(ctx context.Context, worldName, id string) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ws.db.Update(func(txn *badger.Txn) error {
		key := snapshotKey(worldName, id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: снимок %s", world.ErrInvalidReference, id)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ForWorld хранилище одного мира с интерфейсом Save/Load
func (ws *WorldStorage) ForWorld(worldName string) *WorldStore {
	return &WorldStore{storage: ws, world: worldName}
}

// WorldStore привязка WorldStorage к имени мира
type WorldStore struct {
	storage *WorldStorage
	world   string
}

// Save сохраняет снимок мира
func (s *WorldStore) Save(ctx context.Context, g *world.Grid) error {
	_, err := s.storage.SaveGrid(ctx, s.world, g)
	return err
}

// Load загружает последний снимок мира
func (s *WorldStore) Load(ctx context.Context, g *world.Grid) error {
	_, err := s.storage.LoadGrid(ctx, s.world, g)
	return err
}
