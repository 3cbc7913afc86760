package sensitivity

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestPRCCSingleInputIsSpearman(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 100
	inputs := make([][]float64, n)
	output := make([]float64, n)
	for i := range inputs {
		x := rng.Float64() * 10
		inputs[i] = []float64{x}
		output[i] = math.Exp(0.3*x) + rng.NormFloat64()
	}

	coeffs, err := PRCC(inputs, output)
	if err != nil {
		t.Fatalf("PRCC failed: %v", err)
	}

	xs := make([]float64, n)
	for i := range inputs {
		xs[i] = inputs[i][0]
	}
	spearman := stat.Correlation(rankTransform(xs), rankTransform(output), nil)
	if math.Abs(coeffs[0]-spearman) > 1e-12 {
		t.Errorf("Single-input PRCC = %v, Spearman = %v", coeffs[0], spearman)
	}
}

// A strictly monotone dependence must give a coefficient near +1 or -1, and
// an independent noise column a coefficient near 0.
func TestPRCCMonotoneAndIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	n := 500
	inputs := make([][]float64, n)
	output := make([]float64, n)
	for i := range inputs {
		up := rng.Float64()
		down := rng.Float64()
		noise := rng.Float64()
		inputs[i] = []float64{up, down, noise}
		output[i] = math.Exp(2*up) - 5*down
	}

	coeffs, err := PRCC(inputs, output)
	if err != nil {
		t.Fatalf("PRCC failed: %v", err)
	}
	if coeffs[0] < 0.95 {
		t.Errorf("Increasing input: PRCC %v, want near 1", coeffs[0])
	}
	if coeffs[1] > -0.9 {
		t.Errorf("Decreasing input: PRCC %v, want strongly negative", coeffs[1])
	}
	if math.Abs(coeffs[2]) > 0.15 {
		t.Errorf("Independent input: PRCC %v, want near 0", coeffs[2])
	}
}

// PRCC controls for confounders: an input that only tracks the output
// through a correlated partner scores near zero once the partner is
// controlled for.
func TestPRCCControlsConfounder(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	n := 800
	inputs := make([][]float64, n)
	output := make([]float64, n)
	for i := range inputs {
		driver := rng.Float64()
		shadow := driver + 0.1*rng.Float64() // correlated with driver, no direct effect
		inputs[i] = []float64{driver, shadow}
		output[i] = 3*driver + 0.05*rng.NormFloat64()
	}

	coeffs, err := PRCC(inputs, output)
	if err != nil {
		t.Fatalf("PRCC failed: %v", err)
	}
	if coeffs[0] < 0.7 {
		t.Errorf("Driver PRCC %v, want strongly positive", coeffs[0])
	}
	if math.Abs(coeffs[1]) > 0.3 {
		t.Errorf("Shadow PRCC %v, want near 0", coeffs[1])
	}
}

func TestPRCCValidation(t *testing.T) {
	if _, err := PRCC(nil, nil); err == nil {
		t.Error("Expected error for empty table")
	}
	if _, err := PRCC([][]float64{{1}, {2}}, []float64{1}); err == nil {
		t.Error("Expected error for length mismatch")
	}
	if _, err := PRCC([][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{1, 2, 3}); err == nil {
		t.Error("Expected error for too few rows")
	}
	ragged := [][]float64{{1, 2}, {3}, {4, 5}, {6, 7}}
	if _, err := PRCC(ragged, []float64{1, 2, 3, 4}); err == nil {
		t.Error("Expected error for ragged rows")
	}
}

func TestRankTransform(t *testing.T) {
	ranks := rankTransform([]float64{30, 10, 20})
	want := []float64{3, 1, 2}
	for i := range want {
		if ranks[i] != want[i] {
			t.Errorf("rank[%d]=%v, want %v", i, ranks[i], want[i])
		}
	}

	// Ties take the average of the ranks they span.
	tied := rankTransform([]float64{5, 1, 5, 2})
	wantTied := []float64{3.5, 1, 3.5, 2}
	for i := range wantTied {
		if tied[i] != wantTied[i] {
			t.Errorf("tied rank[%d]=%v, want %v", i, tied[i], wantTied[i])
		}
	}
}
