package util

import (
	"math/rand"
	"time"
)

// New returns a generator for seed; seed 0 means time seeded and therefore not reproducible.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// Uniform draws from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Jitter draws from [-amp, amp).
func Jitter(rng *rand.Rand, amp float64) float64 {
	return Uniform(rng, -amp, amp)
}
