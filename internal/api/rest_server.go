package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/tileworld/internal/game"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/middleware"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/world"
)

// DefaultWorldName имя мира в хранилище снимков по умолчанию
const DefaultWorldName = "default"

// RestServer представляет REST API сервер
type RestServer struct {
	router    *gin.Engine
	server    *http.Server
	session   *game.Session
	snapshots *storage.WorldStorage
	worldName string
	port      string
	metrics   *ServerMetrics
	logger    *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port      string                // адрес для запуска сервера
	Session   *game.Session         // игровая сессия
	Snapshots *storage.WorldStorage // хранилище снимков, может быть nil
	WorldName string                // имя мира в хранилище снимков

	// Registerer и Gatherer для HTTP-метрик и /metrics; nil - дефолтный регистр
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Session == nil {
		return nil, fmt.Errorf("%w: REST серверу нужна сессия", world.ErrConfiguration)
	}
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.WorldName == "" {
		config.WorldName = DefaultWorldName
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("tileworld_api"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw, err := middleware.NewPrometheusMiddleware("tileworld_api", config.Registerer)
	if err != nil {
		return nil, fmt.Errorf("регистрация HTTP-метрик: %w", err)
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:    router,
		session:   config.Session,
		snapshots: config.Snapshots,
		worldName: config.WorldName,
		port:      config.Port,
		metrics:   NewServerMetrics(),
		logger:    config.Logger,
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")

	worldGroup := api.Group("/world")
	{
		worldGroup.GET("", rs.handleWorldInfo)
		worldGroup.GET("/save", rs.handleWorldSave)
		worldGroup.PUT("", rs.handleWorldLoad)
		worldGroup.GET("/snapshots", rs.handleListSnapshots)
		worldGroup.POST("/snapshots", rs.handleCreateSnapshot)
		worldGroup.PUT("/snapshots/:id", rs.handleRestoreSnapshot)
		worldGroup.DELETE("/snapshots/:id", rs.handleDeleteSnapshot)
	}

	tiles := api.Group("/tiles")
	{
		tiles.GET("/:x/:y", rs.handleGetTile)
		tiles.PUT("/:x/:y", rs.handleSetTile)
		tiles.DELETE("/:x/:y", rs.handleClearTile)
	}

	entities := api.Group("/entities")
	{
		entities.GET("", rs.handleListEntities)
		entities.POST("", rs.handleCreateEntity)
		entities.GET("/:id", rs.handleGetEntity)
		entities.DELETE("/:id", rs.handleDeleteEntity)
		entities.POST("/:id/move", rs.handleMoveEntity)
		entities.POST("/:id/nudge", rs.handleNudgeEntity)
	}

	api.GET("/stats", rs.handleStats)

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// statusFor сопоставляет ошибку домена HTTP-статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, world.ErrOutOfBounds),
		errors.Is(err, world.ErrInvalidReference),
		errors.Is(err, storage.ErrNoSave):
		return http.StatusNotFound
	case errors.Is(err, world.ErrMalformedSave),
		errors.Is(err, world.ErrConfiguration),
		errors.Is(err, physics.ErrInvalidSize):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail отвечает ошибкой и пишет ее в лог
func (rs *RestServer) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		rs.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		rs.logger.Debug("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
}

func (rs *RestServer) failErr(c *gin.Context, err error) {
	rs.fail(c, statusFor(err), err)
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, GenericResponse{Success: true, Message: message, Data: data})
}

// handleStats возвращает статистику сессии и процесса
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := make(map[string]interface{})
	stats["session"] = rs.session.Stats()

	// Метрики сервера
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	server := map[string]interface{}{
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"memory":      rs.metrics.GetDetailedMemoryStats(),
	}
	// системная загрузка меряется секунду, только по запросу
	if c.Query("system") == "true" {
		systemCPU, _ := rs.metrics.GetSystemCPUUsage()
		server["system_cpu"] = fmt.Sprintf("%.2f", systemCPU)
	}
	stats["server"] = server

	ok(c, http.StatusOK, "Статистика получена", stats)
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.server = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.logger.Info("REST API слушает %s", rs.port)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает REST сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.server == nil {
		return nil
	}
	return rs.server.Shutdown(ctx)
}
