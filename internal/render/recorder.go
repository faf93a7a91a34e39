package render

import (
	"sort"
	"sync"

	"github.com/annel0/tileworld/internal/vec"
)

// Drawable состояние drawable-объекта, записанное Recorder
type Drawable struct {
	Handle   Handle
	Layer    Layer
	Position vec.Vec2Float
	Rotation float64
	Visible  bool
	Skin     SkinID
	Scale    vec.Vec2Float
	Effects  map[string]float64
}

// Recorder бэкенд без вывода: хранит состояние объектов в памяти.
// Используется в headless-режиме и тестах.
type Recorder struct {
	mu        sync.Mutex
	next      Handle
	drawables map[Handle]*Drawable

	Created   int
	Destroyed int
}

// NewRecorder создает пустой Recorder
func NewRecorder() *Recorder {
	return &Recorder{drawables: make(map[Handle]*Drawable)}
}

func (r *Recorder) CreateDrawable(layer Layer) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.drawables[r.next] = &Drawable{
		Handle:  r.next,
		Layer:   layer,
		Visible: true,
		Scale:   vec.Vec2Float{X: 1, Y: 1},
		Effects: make(map[string]float64),
	}
	r.Created++
	return r.next
}

func (r *Recorder) DestroyDrawable(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drawables[h]; ok {
		delete(r.drawables, h)
		r.Destroyed++
	}
}

func (r *Recorder) with(h Handle, fn func(d *Drawable)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drawables[h]; ok {
		fn(d)
	}
}

func (r *Recorder) SetPosition(h Handle, pos vec.Vec2Float) {
	r.with(h, func(d *Drawable) { d.Position = pos })
}

func (r *Recorder) SetRotation(h Handle, degrees float64) {
	r.with(h, func(d *Drawable) { d.Rotation = degrees })
}

func (r *Recorder) SetVisible(h Handle, visible bool) {
	r.with(h, func(d *Drawable) { d.Visible = visible })
}

func (r *Recorder) SetSkin(h Handle, skin SkinID) {
	r.with(h, func(d *Drawable) { d.Skin = skin })
}

func (r *Recorder) SetScale(h Handle, scale vec.Vec2Float) {
	r.with(h, func(d *Drawable) { d.Scale = scale })
}

func (r *Recorder) SetEffect(h Handle, name string, value float64) {
	r.with(h, func(d *Drawable) { d.Effects[name] = value })
}

// Get возвращает копию состояния объекта
func (r *Recorder) Get(h Handle) (Drawable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drawables[h]
	if !ok {
		return Drawable{}, false
	}
	cp := *d
	cp.Effects = make(map[string]float64, len(d.Effects))
	for k, v := range d.Effects {
		cp.Effects[k] = v
	}
	return cp, true
}

// Live число существующих объектов
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drawables)
}

// Visible возвращает видимые объекты слоя, отсортированные по handle
func (r *Recorder) Visible(layer Layer) []Drawable {
	r.mu.Lock()
	out := make([]Drawable, 0)
	for _, d := range r.drawables {
		if d.Layer == layer && d.Visible {
			out = append(out, *d)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
