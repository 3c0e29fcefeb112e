package testutil

import (
	"math/rand"
	"sync"
)

// RNG is a seeded, goroutine-safe source of test data.
type RNG struct {
	mu   sync.Mutex
	src  *rand.Rand
	seed int64
}

// NewRNG returns an RNG that replays the same stream for the same seed.
func NewRNG(seed int64) *RNG {
	return &RNG{src: rand.New(rand.NewSource(seed)), seed: seed}
}

// with runs fn under the lock so bulk generators pay for it once.
func (r *RNG) with(fn func(src *rand.Rand)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.src)
}

// Reset rewinds the stream to its seed.
func (r *RNG) Reset() {
	r.with(func(src *rand.Rand) { src.Seed(r.seed) })
}

func (r *RNG) Seed() int64 { return r.seed }

// Intn returns a value in [0, n).
func (r *RNG) Intn(n int) (v int) {
	r.with(func(src *rand.Rand) { v = src.Intn(n) })
	return v
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() (v float64) {
	r.with(func(src *rand.Rand) { v = src.Float64() })
	return v
}

// FillUniform fills dst with values in [0, 1).
func (r *RNG) FillUniform(dst []float64) {
	r.with(func(src *rand.Rand) {
		for i := range dst {
			dst[i] = src.Float64()
		}
	})
}

// FillInts fills dst with values in [lo, hi).
func (r *RNG) FillInts(dst []int64, lo, hi int64) {
	r.with(func(src *rand.Rand) {
		for i := range dst {
			dst[i] = lo + src.Int63n(hi-lo)
		}
	})
}

// UniformRows returns n rows of width d in [0, 1) sharing one backing array.
func (r *RNG) UniformRows(n, d int) [][]float64 {
	flat := make([]float64, n*d)
	r.FillUniform(flat)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = flat[i*d : (i+1)*d : (i+1)*d]
	}
	return rows
}

// Lengths returns count element lengths in [0, maxLen].
func (r *RNG) Lengths(count, maxLen int) []int {
	out := make([]int, count)
	r.with(func(src *rand.Rand) {
		for i := range out {
			out[i] = src.Intn(maxLen + 1)
		}
	})
	return out
}

// Elements returns count elements of at most maxLen rows of width d.
// data[i] holds lengths[i]*d row-major values in [0, 1).
func (r *RNG) Elements(count, maxLen, d int) (data [][]float64, lengths []int) {
	lengths = r.Lengths(count, maxLen)
	data = make([][]float64, count)
	for i, n := range lengths {
		data[i] = make([]float64, n*d)
		r.FillUniform(data[i])
	}
	return data, lengths
}

// Perm returns a permutation of [0, n), the shape of an index selector.
func (r *RNG) Perm(n int) (p []int) {
	r.with(func(src *rand.Rand) { p = src.Perm(n) })
	return p
}

// Mask returns n booleans, each true with probability p.
func (r *RNG) Mask(n int, p float64) []bool {
	out := make([]bool, n)
	r.with(func(src *rand.Rand) {
		for i := range out {
			out[i] = src.Float64() < p
		}
	})
	return out
}
