package tile

import (
	"fmt"
	"sort"
	"sync"
)

// Registry регистр типов тайлов. Безопасен для конкурентного чтения.
type Registry struct {
	mu    sync.RWMutex
	types map[TypeID]Type
}

// NewRegistry создает регистр со встроенным набором тайлов
func NewRegistry() *Registry {
	r := &Registry{types: make(map[TypeID]Type)}
	for _, t := range Builtin() {
		r.types[t.ID] = t
	}
	return r
}

// Builtin возвращает встроенный набор: пустой, блок, 4 угла и 4 края
func Builtin() []Type {
	return []Type{
		Empty(),
		Block(BlockID, "block"),
		Corner(TopLeftID, "top-left", UpLeft),
		Corner(TopRightID, "top-right", UpRight),
		Corner(BottomLeftID, "bottom-left", DownLeft),
		Corner(BottomRightID, "bottom-right", DownRight),
		Edge(LeftID, "left", Left),
		Edge(TopID, "top", Up),
		Edge(RightID, "right", Right),
		Edge(BottomID, "bottom", Down),
	}
}

// Register добавляет тип тайла в регистр
func (r *Registry) Register(t Type) error {
	if t.ID == EmptyID {
		return fmt.Errorf("%w: %d", ErrReservedID, t.ID)
	}
	if err := t.validate(); err != nil {
		return fmt.Errorf("тайл %q: %w", t.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.ID]; exists {
		return fmt.Errorf("%w: %d (%s)", ErrDuplicateID, t.ID, t.Name)
	}
	r.types[t.ID] = t
	return nil
}

// Lookup возвращает тип по ID
func (r *Registry) Lookup(id TypeID) (Type, bool) {
	r.mu.RLock()
	t, ok := r.types[id]
	r.mu.RUnlock()
	return t, ok
}

// Has проверяет, что ID зарегистрирован
func (r *Registry) Has(id TypeID) bool {
	_, ok := r.Lookup(id)
	return ok
}

// IsSolidAt проверяет твердость подъячейки тайла id в точке (fx, fy).
// Неизвестные типы считаются пустыми.
func (r *Registry) IsSolidAt(id TypeID, fx, fy float64) bool {
	if id == EmptyID {
		return false
	}
	r.mu.RLock()
	t, ok := r.types[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return t.SolidAt(fx, fy)
}

// ByName ищет тип по имени
func (r *Registry) ByName(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.types {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// IDs возвращает отсортированный список зарегистрированных ID
func (r *Registry) IDs() []TypeID {
	r.mu.RLock()
	ids := make([]TypeID, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
