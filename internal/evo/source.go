package evo

import "math/rand"

// Source supplies the randomness a Breeder consumes. Implementations are not
// safe for concurrent use; a Source belongs to exactly one Breeder.
type Source interface {
	// Unit returns a uniform sample in (0, 1].
	Unit() float64
	// Pick returns one element of a non-empty slice, uniformly.
	Pick(symbols []string) string
}

// RandSource is a Source backed by math/rand.
type RandSource struct {
	rng *rand.Rand
}

func NewRandSource(seed int64) *RandSource {
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandSource) Unit() float64 {
	return 1 - s.rng.Float64()
}

func (s *RandSource) Pick(symbols []string) string {
	return symbols[s.rng.Intn(len(symbols))]
}
