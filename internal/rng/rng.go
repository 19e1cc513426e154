// internal/rng/rng.go
//
// Random sources injected into the games.
// Responsibilities:
//   - Source: uniform index draw and permutation, the only randomness the games need.
//   - Seeded: deterministic PCG stream for tests and reproducible runs (RNG_SEED).
//   - Crypto: crypto/rand backed source, the default for the server.
//
// Symbol draws and pool picks are both Intn over the alphabet/pool size.

package rng

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source is a uniform random source.
type Source interface {
	// Intn returns a uniform int in [0, n). n must be > 0.
	Intn(n int) int
	// Perm returns a uniform permutation of [0, n).
	Perm(n int) []int
}

// Seeded is a deterministic Source. Safe for concurrent use.
type Seeded struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeeded returns a Source whose stream is fully determined by seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *Seeded) Perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Perm(n)
}

// Crypto draws from crypto/rand. The zero value is ready to use.
type Crypto struct{}

// Intn returns a cryptographically random int in [0, n).
// Falls back to 0 if the system source fails, like words.RandomAnswer's fallback.
func (Crypto) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Perm is a Fisher-Yates shuffle over Intn.
func (c Crypto) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := c.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Pick returns a uniformly chosen element of items. items must be non-empty.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}
