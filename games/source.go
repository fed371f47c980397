// Package games holds the pure outcome generators for the reel, die and grid mini-games.
// Generators never touch balances; the ledger applies their results.
package games

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness a generator draws from.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// lockedSource makes a *rand.Rand safe to share between request goroutines
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed
func NewSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSource returns a goroutine-safe Source seeded from the wall clock
func NewTimeSource() Source {
	return NewSource(time.Now().UnixNano())
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
