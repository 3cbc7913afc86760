package r0

import (
	"errors"
	"math"
	"testing"

	"github.com/episens-xyz/go-episens/model"
)

func baseParams(nAge int) model.Params {
	susc := make([]float64, nAge)
	for i := range susc {
		susc[i] = 1
	}
	return model.Params{
		Alpha: 0.2, Gamma: 0.2, GammaH: 0.1, GammaC: 0.08, GammaCr: 0.1,
		Beta: 1, Susc: susc, H: 0.1, Xi: 0.2, Mu: 0.3, Rho: 0.5,
	}
}

// For a fully susceptible population with uniform contacts c and one stage
// per compartment, the NGM reduces to (beta/gamma)*c*ones, whose spectral
// radius is beta*c*nAge/gamma.
func TestSpectralRadiusAnalytic(t *testing.T) {
	p := baseParams(2)
	stages := model.StageCounts{E: 1, I: 1, H: 1, IC: 1, ICR: 1, V: 1}
	gen, err := New(p, stages, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pop := []float64{1000, 1000}
	cm := model.Uniform(2, 1)
	rho, err := gen.SpectralRadius(0.2, cm, pop, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	// 0.2 * 1 * 2 / 0.2 = 2
	if math.Abs(rho-2) > 1e-9 {
		t.Errorf("Spectral radius = %v, want 2", rho)
	}
}

func TestCalibrateBetaRoundTrip(t *testing.T) {
	p := baseParams(3)
	p.Susc = []float64{0.5, 1, 1}
	stages := model.StageCounts{E: 2, I: 3, H: 1, IC: 1, ICR: 1, V: 1}
	gen, err := New(p, stages, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pop := []float64{15000, 40000, 25000}
	cm := model.ContactMatrix{
		{8, 3, 1},
		{3, 6, 2},
		{1, 2, 4},
	}

	for _, target := range []float64{1.1, 1.8, 2.4, 3.0} {
		beta, err := gen.CalibrateBeta(target, cm, pop, pop)
		if err != nil {
			t.Fatalf("CalibrateBeta(%v) failed: %v", target, err)
		}
		if beta <= 0 {
			t.Fatalf("CalibrateBeta(%v) = %v, want positive", target, beta)
		}
		rho, err := gen.SpectralRadius(beta, cm, pop, pop)
		if err != nil {
			t.Fatalf("SpectralRadius failed: %v", err)
		}
		if math.Abs(rho-target) > 1e-6 {
			t.Errorf("Round trip for target %v: got spectral radius %v", target, rho)
		}
	}
}

// The spectral radius must be linear in beta: F scales with beta while V is
// unaffected.
func TestSpectralRadiusLinearInBeta(t *testing.T) {
	p := baseParams(2)
	stages := model.StageCounts{E: 1, I: 2, H: 1, IC: 1, ICR: 1, V: 1}
	gen, err := New(p, stages, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	pop := []float64{5000, 8000}
	cm := model.ContactMatrix{{5, 2}, {2, 3}}

	r1, err := gen.SpectralRadius(0.01, cm, pop, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	r3, err := gen.SpectralRadius(0.03, cm, pop, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	if math.Abs(r3-3*r1) > 1e-9*math.Max(1, r3) {
		t.Errorf("Expected linear scaling: rho(0.03)=%v, 3*rho(0.01)=%v", r3, 3*r1)
	}
}

// Partial immunity shrinks the susceptible pool and with it the
// reproduction number.
func TestSpectralRadiusSusceptibleDepletion(t *testing.T) {
	p := baseParams(1)
	stages := model.StageCounts{E: 1, I: 1, H: 1, IC: 1, ICR: 1, V: 1}
	gen, err := New(p, stages, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	pop := []float64{10000}
	cm := model.Uniform(1, 4)

	full, err := gen.SpectralRadius(0.1, cm, pop, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	half, err := gen.SpectralRadius(0.1, cm, []float64{5000}, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	if math.Abs(half-full/2) > 1e-9*full {
		t.Errorf("Half-susceptible radius %v, want %v", half, full/2)
	}
}

func TestTransitionSingular(t *testing.T) {
	g := &Generator{nAge: 1, nE: 1, nI: 1, alpha: 0, gamma: 0.2, susc: []float64{1}}
	if _, err := g.transition(); !errors.Is(err, ErrSingularTransition) {
		t.Errorf("Expected ErrSingularTransition, got %v", err)
	}
}

func TestNewRejectsInvalidInputs(t *testing.T) {
	p := baseParams(2)
	badStages := model.StageCounts{E: 0, I: 1, H: 1, IC: 1, ICR: 1, V: 1}
	if _, err := New(p, badStages, 2); err == nil {
		t.Error("Expected error for invalid stage counts")
	}
	p.Alpha = 0
	goodStages := model.StageCounts{E: 1, I: 1, H: 1, IC: 1, ICR: 1, V: 1}
	if _, err := New(p, goodStages, 2); err == nil {
		t.Error("Expected error for non-positive alpha")
	}
}

func TestCalibrateBetaRejectsBadTarget(t *testing.T) {
	p := baseParams(1)
	stages := model.StageCounts{E: 1, I: 1, H: 1, IC: 1, ICR: 1, V: 1}
	gen, err := New(p, stages, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	pop := []float64{1000}
	if _, err := gen.CalibrateBeta(0, model.Uniform(1, 1), pop, pop); err == nil {
		t.Error("Expected error for zero target")
	}
	if _, err := gen.CalibrateBeta(-1, model.Uniform(1, 1), pop, pop); err == nil {
		t.Error("Expected error for negative target")
	}
}

// More sub-stages sharpen the sojourn distribution but keep its mean, so
// the reproduction number is unchanged.
func TestSpectralRadiusErlangInvariance(t *testing.T) {
	p := baseParams(2)
	pop := []float64{9000, 11000}
	cm := model.ContactMatrix{{6, 2}, {2, 4}}

	single, err := New(p, model.StageCounts{E: 1, I: 1, H: 1, IC: 1, ICR: 1, V: 1}, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	multi, err := New(p, model.StageCounts{E: 3, I: 4, H: 1, IC: 1, ICR: 1, V: 1}, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r1, err := single.SpectralRadius(0.05, cm, pop, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	r2, err := multi.SpectralRadius(0.05, cm, pop, pop)
	if err != nil {
		t.Fatalf("SpectralRadius failed: %v", err)
	}
	if math.Abs(r1-r2) > 1e-9*math.Max(1, r1) {
		t.Errorf("Erlang stage count changed R0: %v vs %v", r1, r2)
	}
}
