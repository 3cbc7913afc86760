package sensitivity

import (
	"fmt"
	"sort"
	"sync"
)

// Objective maps one sample row to a scalar output. Implementations must be
// pure functions of the row plus fixed external state, so evaluation order
// cannot affect results.
type Objective func(row []float64) (float64, error)

// Evaluate runs the objective over every sample row using the given number
// of workers. Rows are independent, so they are dispatched in parallel; the
// returned outputs are positionally aligned with the input rows. The batch
// is fail-fast: if any row fails, the whole evaluation returns the error of
// the lowest-indexed failing row and no outputs.
func Evaluate(rows [][]float64, obj Objective, workers int) ([]float64, error) {
	if obj == nil {
		return nil, fmt.Errorf("no objective given")
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]float64, len(rows))
	errs := make([]error, len(rows))

	var wg sync.WaitGroup
	idx := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i], errs[i] = obj(rows[i])
			}
		}()
	}
	for i := range rows {
		idx <- i
	}
	close(idx)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sample row %d: %w", i, err)
		}
	}
	return out, nil
}

// SortJoint sorts the sample rows and their paired outputs jointly by
// ascending output value. The permutation is stable and applied to both
// tables at once, so row i of the sorted inputs always corresponds to
// output i.
func SortJoint(rows [][]float64, outputs []float64) error {
	if len(rows) != len(outputs) {
		return fmt.Errorf("input table has %d rows but output vector has %d entries", len(rows), len(outputs))
	}
	perm := make([]int, len(outputs))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return outputs[perm[i]] < outputs[perm[j]]
	})

	sortedRows := make([][]float64, len(rows))
	sortedOut := make([]float64, len(outputs))
	for i, p := range perm {
		sortedRows[i] = rows[p]
		sortedOut[i] = outputs[p]
	}
	copy(rows, sortedRows)
	copy(outputs, sortedOut)
	return nil
}
