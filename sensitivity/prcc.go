package sensitivity

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PRCC computes one partial rank correlation coefficient per input column,
// describing the monotonic association of that input with the output after
// controlling for all other inputs.
//
// Every column is rank-transformed independently (ties broken by average
// rank). For each target input, both the target ranks and the output ranks
// are residualized by ordinary least squares against the ranks of every
// other input; the PRCC is the Pearson correlation of the two residual
// series. With a single input there is nothing to control for and the
// result reduces to the Spearman rank correlation.
func PRCC(inputs [][]float64, output []float64) ([]float64, error) {
	n := len(inputs)
	if n == 0 {
		return nil, fmt.Errorf("input table is empty")
	}
	if len(output) != n {
		return nil, fmt.Errorf("input table has %d rows but output vector has %d entries", n, len(output))
	}
	k := len(inputs[0])
	if k == 0 {
		return nil, fmt.Errorf("input table has no columns")
	}
	for i, row := range inputs {
		if len(row) != k {
			return nil, fmt.Errorf("input row %d has %d columns, want %d", i, len(row), k)
		}
	}
	if n < k+2 {
		return nil, fmt.Errorf("need at least %d sample rows for %d input columns, got %d", k+2, k, n)
	}

	// Rank-transform every column, output included.
	ranked := make([][]float64, k)
	for j := 0; j < k; j++ {
		col := make([]float64, n)
		for i := range inputs {
			col[i] = inputs[i][j]
		}
		ranked[j] = rankTransform(col)
	}
	outRanks := rankTransform(output)

	coeffs := make([]float64, k)
	if k == 1 {
		coeffs[0] = stat.Correlation(ranked[0], outRanks, nil)
		return coeffs, nil
	}

	for j := 0; j < k; j++ {
		others := make([][]float64, 0, k-1)
		for o := 0; o < k; o++ {
			if o != j {
				others = append(others, ranked[o])
			}
		}
		resTarget, err := residualize(ranked[j], others)
		if err != nil {
			return nil, fmt.Errorf("residualizing input column %d: %w", j, err)
		}
		resOutput, err := residualize(outRanks, others)
		if err != nil {
			return nil, fmt.Errorf("residualizing output against inputs other than %d: %w", j, err)
		}
		coeffs[j] = stat.Correlation(resTarget, resOutput, nil)
	}
	return coeffs, nil
}

// rankTransform replaces values by their 1-based ranks, assigning tied
// values the average of the ranks they span.
func rankTransform(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// ranks i+1..j+1 averaged over the tie run
		avg := float64(i+j)/2 + 1
		for t := i; t <= j; t++ {
			ranks[order[t]] = avg
		}
		i = j + 1
	}
	return ranks
}

// residualize fits y against the regressor columns (with intercept) by
// least squares and returns y minus the fitted values.
func residualize(y []float64, regressors [][]float64) ([]float64, error) {
	n := len(y)
	p := len(regressors) + 1
	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j, col := range regressors {
			x.Set(i, j+1, col[i])
		}
	}
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	var coef mat.VecDense
	if err := coef.SolveVec(x, yv); err != nil {
		return nil, fmt.Errorf("rank-regression solve failed: %w", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &coef)

	res := make([]float64, n)
	for i := 0; i < n; i++ {
		res[i] = y[i] - fitted.AtVec(i)
	}
	return res, nil
}
