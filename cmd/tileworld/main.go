package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/annel0/tileworld/internal/app"
	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $"+config.EnvConfigPath+")")
	headless := flag.Bool("headless", false, "запуск без терминала")
	minesweeper := flag.Bool("minesweeper", false, "поле сапера вместо мира")
	mines := flag.Int("mines", 0, "число мин (0 - каждая восьмая клетка)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *headless {
		cfg.Render.Backend = "headless"
	}
	terminalMode := cfg.Render.Backend == "terminal"

	// В терминальном режиме консоль занята картинкой, логи пишутся только в файлы
	consoleLevel, err := logging.ParseLevel(cfg.Logging.ConsoleLevel)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fileLevel, err := logging.ParseLevel(cfg.Logging.FileLevel)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if terminalMode {
		consoleLevel = logging.OFF
	}
	logging.Configure(logging.Options{Dir: cfg.Logging.Dir, ConsoleLevel: consoleLevel, FileLevel: fileLevel})

	if err := logging.InitDefaultLogger("tileworld"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🎮 Запуск tileworld: мир %q %dx%d, backend %s", cfg.World.Name, cfg.World.Width, cfg.World.Height, cfg.Render.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	var screen tcell.Screen
	if terminalMode {
		screen, err = tcell.NewScreen()
		if err != nil {
			log.Fatalf("❌ Ошибка создания экрана: %v", err)
		}
		if err := screen.Init(); err != nil {
			log.Fatalf("❌ Ошибка инициализации экрана: %v", err)
		}
		screen.EnableMouse()
		screen.HideCursor()
		defer screen.Fini()
	}

	a, err := app.New(app.Options{
		Config:      cfg,
		Screen:      screen,
		Minesweeper: *minesweeper,
		Mines:       *mines,
	})
	if err != nil {
		if screen != nil {
			screen.Fini()
		}
		log.Fatalf("❌ Ошибка сборки приложения: %v", err)
	}
	defer a.Close()

	if err := a.Restore(ctx); err != nil {
		logging.Error("❌ Ошибка восстановления мира: %v", err)
	}

	if cfg.Server.Enabled {
		logging.Info("   🌐 REST API: http://localhost:%d", cfg.Server.GetRESTPort())
		logging.Info("   📈 Метрики: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())
	}

	if err := a.Run(ctx); err != nil {
		logging.Error("❌ Игровой цикл завершился с ошибкой: %v", err)
	}

	// === GRACEFUL SHUTDOWN ===
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Persist(saveCtx); err != nil {
		logging.Error("❌ Ошибка сохранения мира: %v", err)
	}
	logging.Info("👋 tileworld остановлен")
}
