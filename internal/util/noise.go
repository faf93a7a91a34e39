package util

import (
	"github.com/aquilax/go-perlin"
)

// Noise генератор шума Перлина с фиксированным сидом
type Noise struct {
	seed int64
	p    *perlin.Perlin
}

// NewNoise создает генератор шума Перлина с указанным сидом
func NewNoise(seed int64) *Noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Noise{seed: seed, p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// Seed сид генератора
func (n *Noise) Seed() int64 {
	return n.seed
}

// Noise1D возвращает значение шума в диапазоне [0,1]
func (n *Noise) Noise1D(x float64) float64 {
	return normalize(n.p.Noise1D(x))
}

// Noise2D возвращает значение шума в диапазоне [0,1]
func (n *Noise) Noise2D(x, y float64) float64 {
	return normalize(n.p.Noise2D(x, y))
}

// normalize переводит шум из [-1,1] в [0,1]
func normalize(v float64) float64 {
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
