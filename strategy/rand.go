package strategy

import (
	"math/rand/v2"
	"sync"
)

// Rand is the randomness source used for shuffling.
//
// *rand.Rand from math/rand/v2 satisfies it, so tests can inject a seeded
// generator such as rand.New(rand.NewPCG(1, 2)).
type Rand interface {
	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

// globalRand draws from the math/rand/v2 top-level source, which is safe for
// concurrent use and randomly seeded.
type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// lockedRand serializes access to a caller-supplied source. Seeded generators
// are not safe for concurrent use, while strategies are shared across requests.
type lockedRand struct {
	mu  sync.Mutex
	src Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.src.IntN(n)
}
