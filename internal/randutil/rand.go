// Package randutil centralizes deterministic RNG construction so every
// caller that needs a *rand.Rand (ECFR workers, tests, anything off the
// TCFR hot path) derives it from a single seed the same way.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed, splitting it
// into the two 64-bit state words rand/v2's PCG source needs.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// mix is SplitMix64, used to decorrelate the two PCG state words derived
// from one seed.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
