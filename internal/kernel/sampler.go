package kernel

import (
	"math/rand/v2"
	"sync"

	kerrors "github.com/paveg/colkern/internal/errors"
	"github.com/paveg/colkern/internal/validation"
)

// Sampler is a seedable random source for Sample. It is safe for concurrent
// use; draws from one Sampler are serialized.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler whose draws are fully determined by seed
func NewSampler(seed uint64) *Sampler {
	return &Sampler{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SampleIndices draws k distinct indices from [0, n) uniformly at random.
// When k >= n it returns every index in ascending order.
func (s *Sampler) SampleIndices(n, k int) ([]int, error) {
	if err := validation.ValidateSampleSize(k, OpSample); err != nil {
		return nil, err
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if k >= n {
		return perm, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Only the first k positions of the shuffle are needed.
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k:k], nil
}

// Sample returns k values of col drawn without replacement. When k >= len(col)
// the whole column is copied in its original order.
func (e *Engine) Sample(col []float64, k int, s *Sampler) ([]float64, error) {
	if err := validation.ValidateSampleSize(k, OpSample); err != nil {
		return nil, err
	}
	if k >= len(col) {
		out := make([]float64, len(col))
		copy(out, col)
		return out, nil
	}
	if s == nil {
		return nil, kerrors.NewInvalidInputError(OpSample, "sampler is required")
	}

	idx, err := s.SampleIndices(len(col), k)
	if err != nil {
		return nil, err
	}
	return e.Take(col, idx)
}
