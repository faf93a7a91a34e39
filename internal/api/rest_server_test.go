package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/game"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

func TestMain(m *testing.M) {
	logging.Configure(logging.Options{ConsoleLevel: logging.OFF, FileLevel: logging.OFF})
	os.Exit(m.Run())
}

type testEnv struct {
	server  *RestServer
	session *game.Session
	grid    *world.Grid
}

func newTestEnv(t *testing.T, withSnapshots bool) *testEnv {
	t.Helper()
	types := tile.NewRegistry()
	g, err := world.NewGrid(world.GridConfig{Width: 16, Height: 12, TileSize: 10}, types, render.NewStaticSkins(types))
	require.NoError(t, err)
	sim, err := physics.NewSimulation(g, physics.DefaultParams())
	require.NoError(t, err)
	s, err := game.NewSession(g, sim, render.NewRecorder(), game.Options{Viewport: vec.Vec2{X: 8, Y: 6}})
	require.NoError(t, err)

	var snaps *storage.WorldStorage
	if withSnapshots {
		snaps, err = storage.NewInMemoryWorldStorage()
		require.NoError(t, err)
		t.Cleanup(func() { _ = snaps.Close() })
	}

	reg := prometheus.NewRegistry()
	rs, err := NewRestServer(Config{Session: s, Snapshots: snaps, WorldName: "test", Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	return &testEnv{server: rs, session: s, grid: g}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)

	var resp GenericResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func TestNewRestServerNeedsSession(t *testing.T) {
	_, err := NewRestServer(Config{Registerer: prometheus.NewRegistry()})
	assert.ErrorIs(t, err, world.ErrConfiguration)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, false)
	w, _ := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tileworld_api_http_request_duration_seconds")
}

func TestWorldInfo(t *testing.T) {
	env := newTestEnv(t, false)
	w, resp := env.do(t, http.MethodGet, "/api/world", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	info := resp.Data.(map[string]interface{})
	assert.Equal(t, 16.0, info["width"])
	assert.Equal(t, 12.0, info["height"])
}

func TestTileEndpoints(t *testing.T) {
	env := newTestEnv(t, false)

	w, _ := env.do(t, http.MethodPut, "/api/tiles/3/4", SetTileRequest{Type: tile.BlockID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tile.BlockID, env.grid.TypeAt(3, 4))

	w, resp := env.do(t, http.MethodGet, "/api/tiles/3/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cell := resp.Data.(map[string]interface{})["cell"].(map[string]interface{})
	assert.Equal(t, float64(tile.BlockID), cell["type"])

	w, _ = env.do(t, http.MethodDelete, "/api/tiles/3/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tile.EmptyID, env.grid.TypeAt(3, 4))

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"вне сетки", http.MethodGet, "/api/tiles/40/4", nil, http.StatusNotFound},
		{"вне сетки при записи", http.MethodPut, "/api/tiles/3/40", SetTileRequest{Type: tile.BlockID}, http.StatusNotFound},
		{"неизвестный тип", http.MethodPut, "/api/tiles/3/4", SetTileRequest{Type: 99}, http.StatusBadRequest},
		{"не число", http.MethodGet, "/api/tiles/a/4", nil, http.StatusBadRequest},
		{"битое тело", http.MethodPut, "/api/tiles/3/4", []byte("{"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestEntityLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	w, resp := env.do(t, http.MethodPost, "/api/entities", CreateEntityRequest{
		Kind:        "crate",
		Position:    vec.Vec2Float{X: 50, Y: 50},
		HalfExtents: vec.Vec2Float{X: 4, Y: 4},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint64(resp.Data.(map[string]interface{})["id"].(float64))
	require.NotZero(t, id)

	w, _ = env.do(t, http.MethodPost, "/api/entities/"+itoa(id)+"/move", VectorRequest{X: 70, Y: 60})
	require.Equal(t, http.StatusOK, w.Code)
	snap, found := env.session.Entity(id)
	require.True(t, found)
	assert.Equal(t, vec.Vec2Float{X: 70, Y: 60}, snap.Position)

	w, _ = env.do(t, http.MethodPost, "/api/entities/"+itoa(id)+"/nudge", VectorRequest{X: 2})
	require.Equal(t, http.StatusOK, w.Code)
	snap, _ = env.session.Entity(id)
	assert.Equal(t, 2.0, snap.Velocity.X)

	w, resp = env.do(t, http.MethodGet, "/api/entities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, resp.Data.(map[string]interface{})["total"])

	w, _ = env.do(t, http.MethodDelete, "/api/entities/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/entities/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = env.do(t, http.MethodDelete, "/api/entities/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEntityRejectsBadSize(t *testing.T) {
	env := newTestEnv(t, false)
	w, resp := env.do(t, http.MethodPost, "/api/entities", CreateEntityRequest{Position: vec.Vec2Float{X: 5, Y: 5}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestWorldSaveAndLoad(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.session.SetTile(5, 5, tile.BlockID))

	w, _ := env.do(t, http.MethodGet, "/api/world/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	saved := w.Body.Bytes()

	require.NoError(t, env.session.SetTile(5, 5, tile.EmptyID))
	w, _ = env.do(t, http.MethodPut, "/api/world", saved)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tile.BlockID, env.grid.TypeAt(5, 5))

	w, _ = env.do(t, http.MethodPut, "/api/world", []byte(`{"grid": 5}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, tile.BlockID, env.grid.TypeAt(5, 5), "при ошибке сетка не меняется")
}

func TestSnapshots(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.SetTile(2, 2, tile.BlockID))

	w, resp := env.do(t, http.MethodPost, "/api/world/snapshots", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := resp.Data.(map[string]interface{})["id"].(string)

	require.NoError(t, env.session.SetTile(2, 2, tile.EmptyID))

	w, resp = env.do(t, http.MethodGet, "/api/world/snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, resp.Data.(map[string]interface{})["total"])

	w, _ = env.do(t, http.MethodPut, "/api/world/snapshots/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tile.BlockID, env.grid.TypeAt(2, 2))

	w, _ = env.do(t, http.MethodPut, "/api/world/snapshots/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodDelete, "/api/world/snapshots/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodDelete, "/api/world/snapshots/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotsWithoutStorage(t *testing.T) {
	env := newTestEnv(t, false)
	w, _ := env.do(t, http.MethodPost, "/api/world/snapshots", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, false)
	w, resp := env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Contains(t, data, "session")
	server := data["server"].(map[string]interface{})
	assert.Contains(t, server, "uptime")
	assert.NotContains(t, server, "system_cpu")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1ч 0м 0с", formatUptime(time.Hour))
	assert.Equal(t, "1д 1ч 0м 0с", formatUptime(25*time.Hour))
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
