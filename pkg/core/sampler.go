package core

import "math/rand/v2"

// Sampler provides uniform random numbers in [0, 1) for rendering algorithms.
// Can be swapped out for deterministic testing.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a PCG generator. It is not safe for concurrent use;
// each worker owns its own.
type RandomSampler struct {
	source *rand.PCG
	random *rand.Rand
}

// NewRandomSampler creates a sampler seeded with the given pair
func NewRandomSampler(seed1, seed2 uint64) *RandomSampler {
	source := rand.NewPCG(seed1, seed2)
	return &RandomSampler{source: source, random: rand.New(source)}
}

// NewPixelSampler creates a sampler whose stream depends only on the base
// seed, the progressive iteration and the pixel index
func NewPixelSampler(baseSeed uint64, iteration, pixel int) *RandomSampler {
	s := NewRandomSampler(0, 0)
	s.SeedPixel(baseSeed, iteration, pixel)
	return s
}

// SeedPixel restarts the stream for another (seed, iteration, pixel) triple
// without allocating
func (r *RandomSampler) SeedPixel(baseSeed uint64, iteration, pixel int) {
	seed1 := splitMix64(baseSeed ^ splitMix64(uint64(iteration)))
	seed2 := splitMix64(seed1 ^ uint64(pixel))
	r.source.Seed(seed1, seed2)
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return Vec2{r.random.Float64(), r.random.Float64()}
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return Vec3{r.random.Float64(), r.random.Float64(), r.random.Float64()}
}

// splitMix64 scrambles x so that neighbouring seeds produce unrelated streams
func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
