// Package random provides the seeded random source used for item placement.
//
// A [Source] is a strictly sequential PCG generator: two sources created with
// the same seed produce the same sequence of [Source.Pick] and
// [Source.Shuffle] results, so a seed fully reproduces a placement. Sources
// are not safe for concurrent use; give each placement attempt its own,
// seeded with [Derive].
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source is a deterministic random source.
type Source struct {
	seed uint64
	rng  *rand.Rand
}

// New returns a source seeded with seed.
func New(seed uint64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 { return s.seed }

// Pick returns a uniform index in [0, n). It panics if n <= 0.
func (s *Source) Pick(n int) int {
	return s.rng.IntN(n)
}

// Shuffle permutes n elements with a Fisher-Yates shuffle driven by Pick.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, s.Pick(i+1))
	}
}

// Shuffler is anything that can shuffle n elements through swap.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// ShuffleSlice shuffles v in place using r.
func ShuffleSlice[T any](r Shuffler, v []T) {
	r.Shuffle(len(v), func(i, j int) { v[i], v[j] = v[j], v[i] })
}

// Derive returns the seed for attempt n of a run started from seed. The
// mapping is a fixed splitmix64 step, so attempt seeds are reproducible and
// independent of how attempts are scheduled.
func Derive(seed uint64, attempt int) uint64 {
	z := seed + uint64(attempt+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
