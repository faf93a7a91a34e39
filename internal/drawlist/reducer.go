package drawlist

import (
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
)

// FrameStats итог одного кадра
type FrameStats struct {
	Cells    int // клеток в окне
	Runs     int // примитивов после сжатия
	Handles  int // объектов в пуле после кадра
	Created  int
	Released int
}

// Reducer каждый кадр сжимает окно сетки и передает результат бэкенду
// через пул переиспользуемых объектов.
type Reducer struct {
	backend render.Backend
	grid    *world.Grid
	pool    *render.HandlePool
	runs    []DrawRun
	// effects имена эффектов клеток, заданные объекту в прошлом кадре
	effects map[render.Handle][]string
}

// NewReducer создает редьюсер для слоя тайлов
func NewReducer(backend render.Backend, grid *world.Grid) *Reducer {
	return &Reducer{
		backend: backend,
		grid:    grid,
		pool:    render.NewHandlePool(backend, render.LayerTiles),
		effects: make(map[render.Handle][]string),
	}
}

// Runs примитивы последнего кадра
func (r *Reducer) Runs() []DrawRun {
	return r.runs
}

// PoolSize число объектов в пуле
func (r *Reducer) PoolSize() int {
	return r.pool.Len()
}

// Draw сжимает окно и обновляет объекты бэкенда
func (r *Reducer) Draw(tr *world.Transform) FrameStats {
	r.runs = reduceInto(r.runs, r.grid, tr)

	vp := tr.Viewport()
	stats := FrameStats{Cells: vp.X * vp.Y, Runs: len(r.runs)}
	stats.Created, stats.Released = r.pool.Ensure(len(r.runs))

	cam := tr.Camera()
	rotation := tr.DrawableRotation()
	scale := vec.Vec2Float{X: cam.Scale, Y: cam.Scale}

	handles := r.pool.Handles()
	for i, run := range r.runs {
		h := handles[i]
		r.backend.SetVisible(h, true)
		r.backend.SetPosition(h, run.Position)
		r.backend.SetRotation(h, rotation)
		r.backend.SetSkin(h, r.grid.SkinFor(run.Type))
		r.backend.SetScale(h, scale)
		r.backend.SetEffect(h, render.EffectRepeatX, float64(run.HRepeat))
		r.backend.SetEffect(h, render.EffectRepeatY, float64(run.VRepeat))
		r.applyCellEffects(h, run.Effects)
	}
	for _, h := range handles[len(r.runs):] {
		r.backend.SetVisible(h, false)
	}

	// объекты, освобожденные пулом, больше не отслеживаются
	if stats.Released > 0 {
		live := make(map[render.Handle]struct{}, len(handles))
		for _, h := range handles {
			live[h] = struct{}{}
		}
		for h := range r.effects {
			if _, ok := live[h]; !ok {
				delete(r.effects, h)
			}
		}
	}

	stats.Handles = r.pool.Len()
	return stats
}

// applyCellEffects задает эффекты клетки и сбрасывает в 0 эффекты,
// оставшиеся от прошлого использования объекта
func (r *Reducer) applyCellEffects(h render.Handle, effects map[string]float64) {
	for _, name := range r.effects[h] {
		if _, ok := effects[name]; !ok {
			r.backend.SetEffect(h, name, 0)
		}
	}
	names := r.effects[h][:0]
	for name, v := range effects {
		r.backend.SetEffect(h, name, v)
		names = append(names, name)
	}
	if len(names) == 0 {
		delete(r.effects, h)
		return
	}
	r.effects[h] = names
}

// Release уничтожает все объекты редьюсера
func (r *Reducer) Release() {
	r.pool.Release()
	r.effects = make(map[render.Handle][]string)
	r.runs = nil
}
