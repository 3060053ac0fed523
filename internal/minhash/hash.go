package minhash

import (
	"math/rand"
	"sync"
	"time"
)

// Prime is the Mersenne prime 2^31-1 used as the modulus of every hash function.
const Prime int64 = 2_147_483_647

// HashFunc is a universal hash x -> (x*Scalar + Constant) mod Prime used as a
// surrogate permutation over token indices.
type HashFunc struct {
	Scalar   int32
	Constant int32
}

// Apply returns the permuted rank of x. The result is always in [0, Prime)
// whatever the signs of x, Scalar and Constant.
func (h HashFunc) Apply(x int64) uint32 {
	// Reducing x first keeps the product inside int64 for every input.
	v := ((x%Prime)*int64(h.Scalar) + int64(h.Constant)) % Prime
	if v < 0 {
		v += Prime
	}
	return uint32(v)
}

// HashFamily generates hash functions from an injected random source.
// A family hands out the same function for the same position on every call.
type HashFamily struct {
	mu    sync.Mutex
	rng   *rand.Rand
	funcs []HashFunc
}

// NewHashFamily creates a family drawing from rng. A nil rng is replaced by a
// clock-seeded source, which is what production runs use.
func NewHashFamily(rng *rand.Rand) *HashFamily {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &HashFamily{rng: rng}
}

// NewSeededHashFamily creates a reproducible family.
func NewSeededHashFamily(seed int64) *HashFamily {
	return NewHashFamily(rand.New(rand.NewSource(seed)))
}

// Generate returns the first count functions of the family, drawing new ones
// from the random source only for positions not generated before.
func (f *HashFamily) Generate(count int) []HashFunc {
	if count <= 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.funcs) < count {
		f.funcs = append(f.funcs, HashFunc{
			Scalar:   int32(f.rng.Uint32()),
			Constant: int32(f.rng.Uint32()),
		})
	}

	out := make([]HashFunc, count)
	copy(out, f.funcs[:count])
	return out
}

// Size returns how many functions have been generated so far.
func (f *HashFamily) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.funcs)
}
