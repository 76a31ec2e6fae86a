// Package rng provides the seeded random source shared by every stochastic
// subsystem of an episode.
package rng

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// RNG is a deterministic pseudo-random source. The same seed and the same
// call sequence always reproduce the same draws. It is not safe for
// concurrent use.
type RNG struct {
	seed int64
	src  *rand.PCG
	r    *rand.Rand
}

// New returns a generator seeded with seed.
func New(seed int64) *RNG {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &RNG{
		seed: seed,
		src:  src,
		r:    rand.New(src),
	}
}

// Seed returns the seed the generator was created with.
func (g *RNG) Seed() int64 {
	return g.seed
}

// Float64 returns a draw in [0, 1).
func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

// Uniform returns a draw in [lo, hi).
func (g *RNG) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.r.Float64()
}

// IntRange returns an integer in [lo, hi], both ends inclusive.
func (g *RNG) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.r.IntN(hi-lo+1)
}

// IntN returns an integer in [0, n).
func (g *RNG) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	return g.r.IntN(n)
}

// Int63 returns a non-negative 63-bit integer, used to derive child seeds.
func (g *RNG) Int63() int64 {
	return g.r.Int64()
}

// Bernoulli reports whether a trial with success probability p succeeded.
func (g *RNG) Bernoulli(p float64) bool {
	return g.r.Float64() < p
}

// LogNormal draws exp(N(mu, sigma)). A non-positive sigma returns exp(mu).
func (g *RNG) LogNormal(mu, sigma float64) float64 {
	if sigma <= 0 {
		return math.Exp(mu)
	}
	d := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: g.src}
	return d.Rand()
}

// Triangular draws from a triangular distribution on [lo, hi] with the given mode.
func (g *RNG) Triangular(lo, hi, mode float64) float64 {
	if hi <= lo {
		return lo
	}
	d := distuv.NewTriangle(lo, hi, mode, g.src)
	return d.Rand()
}

// WeightedIndex picks an index with probability proportional to weights.
// It returns -1 when no weight is positive.
func (g *RNG) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	clean := make([]float64, len(weights))
	for i, w := range weights {
		if w > 0 {
			clean[i] = w
		}
	}
	c := distuv.NewCategorical(clean, g.src)
	return int(c.Rand())
}

// Choice returns a uniformly chosen element of xs. xs must not be empty.
func Choice[T any](g *RNG, xs []T) T {
	return xs[g.IntN(len(xs))]
}

// Shuffle permutes xs in place.
func Shuffle[T any](g *RNG, xs []T) {
	g.r.Shuffle(len(xs), func(i, j int) {
		xs[i], xs[j] = xs[j], xs[i]
	})
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
