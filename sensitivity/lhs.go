// Package sensitivity implements Latin Hypercube sampling of parameter
// space, batch evaluation of scalar objectives, and PRCC (partial rank
// correlation coefficient) computation over the paired input/output tables.
package sensitivity

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bounds describes the sampled box, one [lower, upper] interval per
// dimension. A zero-width interval (lower == upper) is valid and produces a
// constant column.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// Dims returns the number of sampled dimensions.
func (b Bounds) Dims() int { return len(b.Lower) }

// Validate checks the bound box shape and ordering.
func (b Bounds) Validate() error {
	if len(b.Lower) == 0 {
		return fmt.Errorf("bounds are empty")
	}
	if len(b.Lower) != len(b.Upper) {
		return fmt.Errorf("bounds have %d lower and %d upper entries", len(b.Lower), len(b.Upper))
	}
	for i := range b.Lower {
		if b.Lower[i] > b.Upper[i] {
			return fmt.Errorf("dimension %d has lower bound %v above upper bound %v", i, b.Lower[i], b.Upper[i])
		}
	}
	return nil
}

// LatinHypercube draws n sample rows covering the bound box with a
// space-filling design: each dimension is split into n equal strata, every
// stratum is hit exactly once, and strata are paired across dimensions by
// independent permutations. Sampling is deterministic under a fixed source.
func LatinHypercube(b Bounds, n int, src rand.Source) ([][]float64, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}

	rng := rand.New(src)
	jitter := distuv.Uniform{Min: 0, Max: 1, Src: src}

	dims := b.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, dims)
	}

	for d := 0; d < dims; d++ {
		width := b.Upper[d] - b.Lower[d]
		perm := rng.Perm(n)
		for i := 0; i < n; i++ {
			u := (float64(perm[i]) + jitter.Rand()) / float64(n)
			rows[i][d] = b.Lower[d] + width*u
		}
	}
	return rows, nil
}
