package render

// HandlePool пул переиспользуемых drawable-объектов одного слоя.
// Растет сразу до требуемого размера; сжимается на половину излишка,
// только когда кадру нужно меньше половины удерживаемых объектов.
type HandlePool struct {
	backend Backend
	layer   Layer
	handles []Handle
}

// NewHandlePool создает пустой пул
func NewHandlePool(backend Backend, layer Layer) *HandlePool {
	return &HandlePool{backend: backend, layer: layer}
}

// Ensure подгоняет пул под кадр, которому нужно n объектов.
// Возвращает число созданных и освобожденных объектов.
func (p *HandlePool) Ensure(n int) (created, released int) {
	if n < 0 {
		n = 0
	}
	held := len(p.handles)

	switch {
	case n > held:
		for i := held; i < n; i++ {
			p.handles = append(p.handles, p.backend.CreateDrawable(p.layer))
			created++
		}
	case 2*n < held:
		excess := held - n
		released = (excess + 1) / 2
		keep := held - released
		for _, h := range p.handles[keep:] {
			p.backend.DestroyDrawable(h)
		}
		clear(p.handles[keep:])
		p.handles = p.handles[:keep]
	}
	return created, released
}

// Handles текущие объекты пула. Срез действителен до следующего Ensure.
func (p *HandlePool) Handles() []Handle {
	return p.handles
}

// Len число удерживаемых объектов
func (p *HandlePool) Len() int {
	return len(p.handles)
}

// Release уничтожает все объекты пула
func (p *HandlePool) Release() {
	for _, h := range p.handles {
		p.backend.DestroyDrawable(h)
	}
	p.handles = nil
}
