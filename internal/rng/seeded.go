package rng

import "math/rand"

// Seeded is a deterministic generator for replays, simulations, and tests.
// Two Seeded values built from the same seed produce the same sequence.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a generator seeded from the provided value
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))} // nolint:gosec
}

// Intn returns a random number in [0, n)
func (s *Seeded) Intn(n int) int {
	return s.rng.Intn(n)
}
