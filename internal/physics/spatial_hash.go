package physics

import (
	"fmt"
	"math"

	"github.com/annel0/tileworld/internal/vec"
)

// BucketTiles размер корзины хеша в тайлах
const BucketTiles = 3

// bucketKey ключ корзины пространственного хеша
type bucketKey struct {
	x, y int
}

// SpatialHash пространственный хеш сущностей. Строится заново каждый тик
// и живет только в его пределах.
//
// Сущность попадает в корзину своего центра и в корзину каждого угла
// своего прямоугольника. Query возвращает только корзину центра, соседние
// корзины не просматриваются: две пересекающиеся сущности из разных
// корзин в этом тике не столкнутся. Корзина центра запоминается при
// вставке и не меняется, если сущность сдвинулась в течение тика.
type SpatialHash struct {
	bucketSize float64
	buckets    map[bucketKey][]*Entity
	home       map[uint64]bucketKey
	inserted   int
}

// NewSpatialHash создает хеш с корзинами tileSize*BucketTiles
func NewSpatialHash(tileSize float64) *SpatialHash {
	if tileSize <= 0 {
		tileSize = 1
	}
	return &SpatialHash{
		bucketSize: tileSize * BucketTiles,
		buckets:    make(map[bucketKey][]*Entity),
		home:       make(map[uint64]bucketKey),
	}
}

// BucketSize размер корзины в единицах мира
func (h *SpatialHash) BucketSize() float64 {
	return h.bucketSize
}

// Reset очищает хеш, сохраняя выделенную память корзин
func (h *SpatialHash) Reset() {
	for k, list := range h.buckets {
		clear(list)
		h.buckets[k] = list[:0]
	}
	clear(h.home)
	h.inserted = 0
}

// keyOf ключ корзины, содержащей точку
func (h *SpatialHash) keyOf(p vec.Vec2Float) bucketKey {
	return bucketKey{
		x: int(math.Floor(p.X / h.bucketSize)),
		y: int(math.Floor(p.Y / h.bucketSize)),
	}
}

// Insert добавляет сущность в корзины центра и углов (без повторов)
func (h *SpatialHash) Insert(e *Entity) {
	var keys [5]bucketKey
	n := 0
	add := func(k bucketKey) {
		for i := 0; i < n; i++ {
			if keys[i] == k {
				return
			}
		}
		keys[n] = k
		n++
	}

	center := h.keyOf(e.Position)
	h.home[e.ID] = center
	add(center)
	for _, c := range BoundsOf(e.Position, e.HalfExtents).Corners() {
		add(h.keyOf(c))
	}

	for i := 0; i < n; i++ {
		h.buckets[keys[i]] = append(h.buckets[keys[i]], e)
	}
	h.inserted++
}

// Query возвращает сущности из корзины, в которую попал центр e при
// вставке (включая саму e). Для невставленной сущности берется текущий центр.
func (h *SpatialHash) Query(e *Entity) []*Entity {
	key, ok := h.home[e.ID]
	if !ok {
		key = h.keyOf(e.Position)
	}
	return h.buckets[key]
}

// BucketsOf ключи корзин, в которые попала бы сущность
func (h *SpatialHash) BucketsOf(e *Entity) []vec.Vec2 {
	seen := make(map[bucketKey]struct{}, 5)
	out := make([]vec.Vec2, 0, 5)
	corners := BoundsOf(e.Position, e.HalfExtents).Corners()
	points := append([]vec.Vec2Float{e.Position}, corners[:]...)
	for _, p := range points {
		k := h.keyOf(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, vec.Vec2{X: k.x, Y: k.y})
	}
	return out
}

// BucketCount число непустых корзин
func (h *SpatialHash) BucketCount() int {
	n := 0
	for _, list := range h.buckets {
		if len(list) > 0 {
			n++
		}
	}
	return n
}

// GetStats сводка по хешу последнего тика
func (h *SpatialHash) GetStats() string {
	buckets, refs, largest := 0, 0, 0
	for _, list := range h.buckets {
		if n := len(list); n > 0 {
			buckets++
			refs += n
			largest = max(largest, n)
		}
	}
	avg := 0.0
	if buckets > 0 {
		avg = float64(refs) / float64(buckets)
	}
	return fmt.Sprintf("хеш: %d сущностей, %d корзин, в среднем %.2f, максимум %d",
		h.inserted, buckets, avg, largest)
}
