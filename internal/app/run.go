package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/tileworld/internal/eventbus"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/render/terminal"
	"github.com/annel0/tileworld/internal/world"
)

// statusInterval период обновления строки состояния терминала
const statusInterval = 250 * time.Millisecond

// minesSource источник событий сапера
const minesSource = "mines"

// sessionMines выполняет ходы сапера под мьютексом сессии
type sessionMines struct {
	app *App
}

func (m sessionMines) Uncover(x, y int) (hit bool, err error) {
	var won, wasWon bool
	var opened int
	err = m.app.Session.Do(func(*world.Grid, *physics.Simulation) error {
		wasWon = m.app.Mines.Won()
		var uerr error
		hit, uerr = m.app.Mines.Uncover(x, y)
		won, opened = m.app.Mines.Won(), m.app.Mines.Revealed()
		return uerr
	})
	if err != nil {
		return hit, err
	}
	payload := eventbus.MinesPayload{X: x, Y: y, Opened: opened}
	switch {
	case hit:
		m.app.publish(eventbus.MineHit, payload)
	case won && !wasWon:
		m.app.publish(eventbus.MinesCleared, payload)
	}
	return hit, nil
}

func (m sessionMines) ToggleFlag(x, y int) error {
	return m.app.Session.Do(func(*world.Grid, *physics.Simulation) error {
		return m.app.Mines.ToggleFlag(x, y)
	})
}

// publish отправляет событие сапера, не дожидаясь свободного места в шине
func (a *App) publish(eventType string, payload interface{}) {
	ev, err := eventbus.NewEnvelope(minesSource, eventType, eventbus.PriorityLow, payload)
	if err != nil {
		a.logger.Warn("Событие %s не создано: %v", eventType, err)
		return
	}
	if err := a.Events.Publish(context.Background(), ev); err != nil {
		a.logger.Debug("Событие %s не опубликовано: %v", eventType, err)
	}
}

// Run запускает REST API, сервер метрик, ввод терминала и игровой цикл.
// Возвращается после отмены ctx или запроса выхода из терминала.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	if a.API != nil {
		go func() {
			if err := a.API.Start(); err != nil {
				errCh <- fmt.Errorf("REST API: %w", err)
			}
		}()
	}

	var metricsServer *http.Server
	if a.cfg.Server.Enabled && a.cfg.Server.GetMetricsPort() != a.cfg.Server.GetRESTPort() {
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Server.GetMetricsPort()),
			Handler:           promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("сервер метрик: %w", err)
			}
		}()
	}

	go func() {
		if err := a.eventsExporter.Run(ctx); err != nil {
			a.logger.Warn("Экспорт метрик шины остановлен: %v", err)
		}
	}()

	if a.Terminal != nil {
		go a.pollInput(ctx, cancel)
		go a.updateStatus(ctx)
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Session.Run(ctx, a.cfg.Physics.TickHz, a.cfg.Render.FPS)
	}()

	var err error
	select {
	case err = <-runErr:
	case err = <-errCh:
		cancel()
		<-runErr
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if a.API != nil {
		if serr := a.API.Stop(shutdownCtx); serr != nil {
			a.logger.Error("Ошибка остановки REST API: %v", serr)
		}
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return err
}

// pollInput читает события терминала до выхода
func (a *App) pollInput(ctx context.Context, quit context.CancelFunc) {
	var mines terminal.Mines
	if a.Mines != nil {
		mines = sessionMines{app: a}
	}
	input := terminal.NewInput(a.Terminal, a.Session, mines, func() error {
		return a.Persist(ctx)
	})

	screen := a.Terminal.Screen()
	for ctx.Err() == nil {
		ev := screen.PollEvent()
		if ev == nil {
			// экран закрыт
			quit()
			return
		}
		done, err := input.Handle(ev)
		if err != nil {
			a.Terminal.SetStatus("ошибка: " + err.Error())
			a.logger.Debug("Ввод: %v", err)
		}
		if done {
			quit()
			return
		}
	}
}

func (a *App) updateStatus(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Terminal.SetStatus(a.StatusLine())
		}
	}
}

// StatusLine краткая сводка для строки состояния
func (a *App) StatusLine() string {
	st := a.Session.Stats()
	cur := a.Session.Cursor()
	line := fmt.Sprintf("fps %.0f  runs %d  entities %d  cursor %d,%d  tile %d",
		st.Frame.FPS, st.Runs, st.Entities, cur.X, cur.Y, a.Session.Selected())
	if a.Mines != nil {
		var lost, won bool
		_ = a.Session.Do(func(*world.Grid, *physics.Simulation) error {
			lost, won = a.Mines.Lost(), a.Mines.Won()
			return nil
		})
		switch {
		case lost:
			line += "  БУМ!"
		case won:
			line += "  победа"
		}
	}
	return line
}
