package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// EnvConfigPath переменная окружения с путем к файлу конфигурации
const EnvConfigPath = "TILEWORLD_CONFIG"

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Viewport  ViewportConfig  `yaml:"viewport"`
	Camera    CameraConfig    `yaml:"camera"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Render    RenderConfig    `yaml:"render"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tiles     []TileConfig    `yaml:"tiles"`
}

type WorldConfig struct {
	Name     string  `yaml:"name"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	TileSize float64 `yaml:"tile_size"`
	Wrap     bool    `yaml:"wrap"`
	Seed     int64   `yaml:"seed"`
	Generate bool    `yaml:"generate"`
}

// ViewportConfig размер экрана в единицах мира; окно в клетках
// вычисляется из него
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CameraConfig struct {
	Scale    float64 `yaml:"scale"`
	Rotation float64 `yaml:"rotation"`
	Follow   float64 `yaml:"follow"`
	PanStep  float64 `yaml:"pan_step"`
}

type PhysicsConfig struct {
	TickHz        int     `yaml:"tick_hz"`
	Gravity       float64 `yaml:"gravity"`
	DragX         float64 `yaml:"drag_x"`
	DragY         float64 `yaml:"drag_y"`
	ContactDragX  float64 `yaml:"contact_drag_x"`
	MaxSpeedX     float64 `yaml:"max_speed_x"`
	MaxSpeedY     float64 `yaml:"max_speed_y"`
	MaxCoordinate float64 `yaml:"max_coordinate"`
}

type RenderConfig struct {
	Backend   string `yaml:"backend"` // "terminal" или "headless"
	FPS       int    `yaml:"fps"`
	ErrorSkin string `yaml:"error_skin"`
}

type ServerConfig struct {
	Enabled     bool `yaml:"enabled"`
	RESTPort    int  `yaml:"rest_port"`
	MetricsPort int  `yaml:"metrics_port"`
}

type StorageConfig struct {
	SaveFile  string `yaml:"save_file"`
	BadgerDir string `yaml:"badger_dir"`
	InMemory  bool   `yaml:"in_memory"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// TileConfig пользовательский тип тайла. Mask - строки сверху вниз,
// '#' твердая подъячейка, '.' пустая.
type TileConfig struct {
	ID    uint16   `yaml:"id"`
	Name  string   `yaml:"name"`
	Solid *bool    `yaml:"solid"`
	Mask  []string `yaml:"mask"`
	Skin  string   `yaml:"skin"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		World:    WorldConfig{Name: "default", Width: 128, Height: 64, TileSize: 10, Wrap: true, Seed: 1, Generate: true},
		Viewport: ViewportConfig{Width: 320, Height: 240},
		Camera:   CameraConfig{Scale: 1, Follow: 0.2, PanStep: 10},
		Physics: PhysicsConfig{
			TickHz:        60,
			Gravity:       1,
			DragX:         0.5,
			ContactDragX:  0.25,
			MaxSpeedX:     10,
			MaxSpeedY:     20,
			MaxCoordinate: 1e7,
		},
		Render:    RenderConfig{Backend: "terminal", FPS: 30, ErrorSkin: "error"},
		Server:    ServerConfig{Enabled: true},
		Storage:   StorageConfig{SaveFile: "save.json", BadgerDir: "data/badger"},
		Telemetry: TelemetryConfig{Endpoint: "localhost:4318", ServiceName: "tileworld"},
		Logging:   LoggingConfig{Dir: "logs", ConsoleLevel: "INFO", FileLevel: "TRACE"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "TILEWORLD_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "TILEWORLD_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV TILEWORLD_CONFIG; без него
// возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: разбор %s: %v", world.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые ядро не может исправить само
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world: размер %dx%d", c.World.Width, c.World.Height))
	}
	if !(c.World.TileSize > 0) {
		errs = append(errs, fmt.Errorf("world: tile_size %v", c.World.TileSize))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport: %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if !(c.Camera.Scale > 0) {
		errs = append(errs, fmt.Errorf("camera: scale %v", c.Camera.Scale))
	}
	if c.Camera.Follow < 0 || c.Camera.Follow > 1 {
		errs = append(errs, fmt.Errorf("camera: follow %v вне [0,1]", c.Camera.Follow))
	}
	if c.Physics.TickHz <= 0 {
		errs = append(errs, fmt.Errorf("physics: tick_hz %d", c.Physics.TickHz))
	}
	if err := c.PhysicsParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Render.FPS <= 0 {
		errs = append(errs, fmt.Errorf("render: fps %d", c.Render.FPS))
	}
	switch c.Render.Backend {
	case "terminal", "headless":
	default:
		errs = append(errs, fmt.Errorf("render: неизвестный backend %q", c.Render.Backend))
	}
	if _, err := c.TileTypes(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", world.ErrConfiguration, errors.Join(errs...))
}

// PhysicsParams параметры симуляции из конфигурации
func (c *Config) PhysicsParams() physics.Params {
	return physics.Params{
		Gravity:       c.Physics.Gravity,
		Drag:          vec.Vec2Float{X: c.Physics.DragX, Y: c.Physics.DragY},
		ContactDrag:   vec.Vec2Float{X: c.Physics.ContactDragX},
		MaxSpeed:      vec.Vec2Float{X: c.Physics.MaxSpeedX, Y: c.Physics.MaxSpeedY},
		MaxCoordinate: c.Physics.MaxCoordinate,
	}
}

// GridConfig параметры сетки
func (c *Config) GridConfig() world.GridConfig {
	return world.GridConfig{
		Width:    c.World.Width,
		Height:   c.World.Height,
		TileSize: c.World.TileSize,
		Wrap:     c.World.Wrap,
	}
}

// InitialCamera начальное состояние камеры
func (c *Config) InitialCamera() world.Camera {
	return world.Camera{Scale: c.Camera.Scale, Rotation: c.Camera.Rotation}
}

// TileTypes разбирает пользовательские типы тайлов
func (c *Config) TileTypes() ([]tile.Type, error) {
	types := make([]tile.Type, 0, len(c.Tiles))
	for _, tc := range c.Tiles {
		if tile.TypeID(tc.ID) < tile.FirstCustomID {
			return nil, fmt.Errorf("tiles: id %d зарезервирован", tc.ID)
		}
		solid := true
		if tc.Solid != nil {
			solid = *tc.Solid
		}
		// без маски тайл занимает клетку целиком
		mask := tile.Block(tile.TypeID(tc.ID), tc.Name).Mask
		if len(tc.Mask) > 0 {
			m, err := tile.ParseMask(tc.Mask)
			if err != nil {
				return nil, fmt.Errorf("tiles: %s: %w", tc.Name, err)
			}
			mask = m
		}
		types = append(types, tile.Custom(tile.TypeID(tc.ID), tc.Name, mask, solid))
	}
	return types, nil
}
