package logging

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Компоненты с собственным файлом лога
const (
	ComponentGame    = "game"
	ComponentPhysics = "physics"
	ComponentRender  = "render"
	ComponentStorage = "storage"
	ComponentAPI     = "api"
	ComponentEvents  = "events"
)

// LoggerManager хранит по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}
	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger как GetLogger, но при ошибке файла пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}
	opts := currentOptions()
	return &Logger{
		consoleLogger:   log.New(opts.Console, "", log.LstdFlags),
		minConsoleLevel: opts.ConsoleLevel,
		minFileLevel:    OFF,
		component:       component,
	}
}

// CloseAll закрывает все логгеры и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents компоненты с открытыми логгерами, по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel меняет уровни открытого логгера компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	logger, ok := lm.loggers[component]
	lm.mu.Unlock()

	if !ok {
		return fmt.Errorf("логгер %s не открыт", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// GetComponentLogger логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetGameLogger() *Logger    { return GetComponentLogger(ComponentGame) }
func GetPhysicsLogger() *Logger { return GetComponentLogger(ComponentPhysics) }
func GetRenderLogger() *Logger  { return GetComponentLogger(ComponentRender) }
func GetStorageLogger() *Logger { return GetComponentLogger(ComponentStorage) }
func GetAPILogger() *Logger     { return GetComponentLogger(ComponentAPI) }
func GetEventsLogger() *Logger  { return GetComponentLogger(ComponentEvents) }
