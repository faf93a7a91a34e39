package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/world"
)

// DefaultSaveFile имя текстового сохранения по умолчанию
const DefaultSaveFile = "save.json"

// ErrNoSave сохранение отсутствует
var ErrNoSave = errors.New("no save found")

// FileStore текстовое сохранение сетки в одном файле
type FileStore struct {
	path   string
	logger *logging.Logger
}

// NewFileStore создает хранилище в файле path (DefaultSaveFile, если пусто)
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultSaveFile
	}
	return &FileStore{path: path, logger: logging.GetStorageLogger()}
}

// Path путь к файлу сохранения
func (fs *FileStore) Path() string { return fs.path }

// Save записывает сетку. Файл заменяется атомарно через временный файл.
func (fs *FileStore) Save(_ context.Context, g *world.Grid) error {
	var buf bytes.Buffer
	if err := g.Save(&buf); err != nil {
		return fmt.Errorf("сериализация сетки: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
		}
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("замена %s: %w", fs.path, err)
	}
	fs.logger.Info("Мир сохранен в %s (%d байт)", fs.path, buf.Len())
	return nil
}

// Load читает сетку. Без файла возвращает ErrNoSave, сетка не меняется.
func (fs *FileStore) Load(_ context.Context, g *world.Grid) error {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoSave, fs.path)
	}
	if err != nil {
		return fmt.Errorf("чтение %s: %w", fs.path, err)
	}
	if err := g.Load(data); err != nil {
		return err
	}
	fs.logger.Info("Мир загружен из %s", fs.path)
	return nil
}
