package world

import (
	"math"
	"math/rand"

	"github.com/annel0/tileworld/internal/util"
	"github.com/annel0/tileworld/internal/world/tile"
)

// Параметры генерации рельефа по умолчанию
const (
	DefaultSurfaceMin = 0.25 // Нижняя граница поверхности (доля высоты)
	DefaultSurfaceMax = 0.55 // Верхняя граница поверхности
	DefaultCaveLevel  = 0.72 // Порог шума, выше которого под землей пещера
)

// TerrainGenerator генерирует боковой рельеф: сплошная земля под линией
// поверхности, пещеры по двумерному шуму и края на уступах.
type TerrainGenerator struct {
	Seed       int64
	NoiseScale float64 // Масштаб шума поверхности
	CaveScale  float64 // Масштаб шума пещер
	SurfaceMin float64
	SurfaceMax float64
	CaveLevel  float64

	noise *util.Noise
}

// NewTerrainGenerator создает генератор с параметрами по умолчанию
func NewTerrainGenerator(seed int64) *TerrainGenerator {
	return &TerrainGenerator{
		Seed:       seed,
		NoiseScale: 0.08,
		CaveScale:  0.15,
		SurfaceMin: DefaultSurfaceMin,
		SurfaceMax: DefaultSurfaceMax,
		CaveLevel:  DefaultCaveLevel,
		noise:      util.NewNoise(seed),
	}
}

// SurfaceHeight высота поверхности в столбце x (в клетках)
func (tg *TerrainGenerator) SurfaceHeight(x, width, height int) int {
	nx := float64(x) * tg.NoiseScale
	v := tg.noise.Noise2D(nx, 0.5)
	if width > 0 {
		// шов тора: смешиваем с шумом, сдвинутым на ширину мира
		t := float64(x) / float64(width)
		wrapped := tg.noise.Noise2D(float64(x-width)*tg.NoiseScale, 0.5)
		v = v*(1-t) + wrapped*t
	}
	h := tg.SurfaceMin + v*(tg.SurfaceMax-tg.SurfaceMin)
	return int(math.Round(h * float64(height)))
}

// Generate заполняет внутреннюю часть сетки. Граничные клетки не меняются.
func (tg *TerrainGenerator) Generate(g *Grid) {
	rng := rand.New(rand.NewSource(tg.Seed))
	w, h := g.Width(), g.Height()

	wrapWidth := 0
	if g.Wrap() {
		wrapWidth = w
	}

	surface := make([]int, w)
	for x := 0; x < w; x++ {
		surface[x] = tg.SurfaceHeight(x, wrapWidth, h)
	}

	for x := 1; x < w-1; x++ {
		for y := 1; y < h-1; y++ {
			id := tile.EmptyID
			if y < surface[x] {
				id = tile.BlockID
				// пещеры не выходят на поверхность
				if y < surface[x]-2 && tg.noise.Noise2D(float64(x)*tg.CaveScale, float64(y)*tg.CaveScale) > tg.CaveLevel {
					id = tile.EmptyID
				}
			} else if y == surface[x] {
				id = tg.surfaceTile(surface, x)
			}
			g.cells[x*h+y] = Cell{Type: id}
		}
	}

	// редкие висячие платформы
	for x := 2; x < w-2; x++ {
		if rng.Float64() < 0.04 {
			y := surface[x] + 3 + rng.Intn(3)
			if y < h-1 {
				g.cells[x*h+y] = Cell{Type: tile.BottomID}
			}
		}
	}
	g.version++
}

// surfaceTile выбирает тайл на линии поверхности по соседним столбцам
func (tg *TerrainGenerator) surfaceTile(surface []int, x int) tile.TypeID {
	s := surface[x]
	leftLower := x > 0 && surface[x-1] < s
	rightLower := x < len(surface)-1 && surface[x+1] < s
	switch {
	case leftLower && rightLower:
		return tile.BottomID
	case leftLower:
		return tile.BottomRightID
	case rightLower:
		return tile.BottomLeftID
	}
	return tile.EmptyID
}
