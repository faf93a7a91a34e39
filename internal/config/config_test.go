package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  name: caves
  width: 40
  height: 20
camera:
  follow: 0.5
render:
  backend: headless
tiles:
  - id: 30
    name: slab
    mask: ["........", "........", "........", "........", "########", "########", "########", "########"]
  - id: 31
    name: fog
    solid: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "caves", cfg.World.Name)
	assert.Equal(t, 40, cfg.World.Width)
	assert.Equal(t, 10.0, cfg.World.TileSize, "неуказанные поля берутся по умолчанию")
	assert.Equal(t, 0.5, cfg.Camera.Follow)
	assert.Equal(t, "headless", cfg.Render.Backend)

	types, err := cfg.TileTypes()
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.True(t, types[0].SolidAt(0.5, 0.25))
	assert.False(t, types[0].SolidAt(0.5, 0.75))
	assert.False(t, types[1].SolidAt(0.5, 0.5))
	assert.Equal(t, tile.KindCustom, types[1].Kind)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "world:\n  seed: 42\n")
	t.Setenv(EnvConfigPath, path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.World.Seed)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"нулевой тайл", func(c *Config) { c.World.TileSize = 0 }},
		{"пустой мир", func(c *Config) { c.World.Width = 0 }},
		{"масштаб", func(c *Config) { c.Camera.Scale = -1 }},
		{"следование", func(c *Config) { c.Camera.Follow = 2 }},
		{"частота тиков", func(c *Config) { c.Physics.TickHz = 0 }},
		{"скорость", func(c *Config) { c.Physics.MaxSpeedX = 0 }},
		{"бэкенд", func(c *Config) { c.Render.Backend = "opengl" }},
		{"зарезервированный id", func(c *Config) { c.Tiles = []TileConfig{{ID: 3, Name: "x"}} }},
		{"маска", func(c *Config) { c.Tiles = []TileConfig{{ID: 12, Name: "x", Mask: []string{"#"}}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, world.ErrConfiguration))
		})
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := writeConfig(t, "world: [")
	_, err := Load(path)
	assert.ErrorIs(t, err, world.ErrConfiguration)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestPortFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("TILEWORLD_REST_PORT", "")
	assert.Equal(t, 8088, s.GetRESTPort())

	t.Setenv("TILEWORLD_REST_PORT", "9000")
	assert.Equal(t, 9000, s.GetRESTPort())

	s.RESTPort = 7000
	assert.Equal(t, 7000, s.GetRESTPort(), "значение из файла важнее окружения")

	t.Setenv("TILEWORLD_METRICS_PORT", "bad")
	assert.Equal(t, 2112, s.GetMetricsPort())
}
