package search

import (
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Random is the source of tie-breaking noise. Implementations must be deterministic
// for a given seed so generated suites are reproducible.
type Random interface {
	Float64() float64
}

// NewRandom returns a PCG generator seeded by the FNV-1a hash of seed.
func NewRandom(seed string) Random {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	s := h.Sum64()
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// DefaultSeed is the date of now, so runs on the same day share a suite.
func DefaultSeed(now time.Time) string {
	return now.Format("Mon Jan 02 2006")
}
