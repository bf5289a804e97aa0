package quantum

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws measurement shots from a basis-state distribution. Counts
// returns one entry per basis state, summing to shots. Implementations must
// not mutate probs.
type Sampler interface {
	Counts(probs []float64, shots int) ([]int, error)
}

// CategoricalSampler samples shots from a categorical distribution over the
// basis states. The source is seedable so test runs are reproducible;
// production callers pass seed 0 to seed from the clock.
type CategoricalSampler struct {
	src rand.Source
}

// NewCategoricalSampler creates a sampler. seed 0 selects a time-based seed.
func NewCategoricalSampler(seed uint64) *CategoricalSampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &CategoricalSampler{src: rand.NewSource(seed)}
}

// Counts draws shots independent categorical samples and tallies them.
func (s *CategoricalSampler) Counts(probs []float64, shots int) ([]int, error) {
	if len(probs) == 0 {
		return nil, fmt.Errorf("empty probability vector")
	}
	total := 0.0
	for _, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("negative probability %v", p)
		}
		total += p
	}
	if total <= 0 {
		return nil, fmt.Errorf("probability mass is zero")
	}

	dist := distuv.NewCategorical(probs, s.src)
	counts := make([]int, len(probs))
	for i := 0; i < shots; i++ {
		counts[int(dist.Rand())]++
	}
	return counts, nil
}
