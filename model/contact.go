package model

import (
	"fmt"
	"math"
)

// ContactMatrix holds per-capita contact rates between age groups.
// Entry [a][b] is the contact rate of age group a with age group b.
type ContactMatrix [][]float64

// Validate checks that the matrix is square, matches the age-group count and
// contains only finite non-negative entries.
func (cm ContactMatrix) Validate(nAge int) error {
	if len(cm) != nAge {
		return fmt.Errorf("contact matrix has %d rows, want %d age groups", len(cm), nAge)
	}
	for i, row := range cm {
		if len(row) != nAge {
			return fmt.Errorf("contact matrix row %d has %d columns, want %d", i, len(row), nAge)
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("contact matrix entry [%d][%d] invalid: %v", i, j, v)
			}
		}
	}
	return nil
}

// Add returns the entrywise sum of two contact matrices of identical shape.
func (cm ContactMatrix) Add(other ContactMatrix) (ContactMatrix, error) {
	if len(cm) != len(other) {
		return nil, fmt.Errorf("contact matrix shapes differ: %d vs %d rows", len(cm), len(other))
	}
	out := make(ContactMatrix, len(cm))
	for i := range cm {
		if len(cm[i]) != len(other[i]) {
			return nil, fmt.Errorf("contact matrix row %d shapes differ: %d vs %d", i, len(cm[i]), len(other[i]))
		}
		out[i] = make([]float64, len(cm[i]))
		for j := range cm[i] {
			out[i][j] = cm[i][j] + other[i][j]
		}
	}
	return out, nil
}

// Uniform returns an n-by-n contact matrix with every entry equal to v.
func Uniform(n int, v float64) ContactMatrix {
	cm := make(ContactMatrix, n)
	for i := range cm {
		cm[i] = make([]float64, n)
		for j := range cm[i] {
			cm[i][j] = v
		}
	}
	return cm
}
