package calculation

import (
	"math/rand"
	"time"
)

// seedFunc returns a pseudo-random seed for runs without a fixed seed
// (override for deterministic tests).
var seedFunc = func() int64 { return time.Now().UnixNano() }

// SetSeedFunc overrides the seed provider (use only in tests).
func SetSeedFunc(f func() int64) { seedFunc = f }

// resolveSeed returns the fixed seed if one is given, otherwise a fresh one.
func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return seedFunc()
}

// newRand returns an independent generator so concurrent runs never share state.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
