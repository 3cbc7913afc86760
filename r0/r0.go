// Package r0 computes reproduction numbers via next-generation-matrix
// spectral analysis and calibrates the transmission-rate scalar against a
// target R0.
package r0

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/episens-xyz/go-episens/model"
)

// ErrSingularTransition reports a transition matrix V that cannot be
// inverted, which happens when a progression rate is non-positive.
var ErrSingularTransition = errors.New("singular transition matrix")

// ErrComplexEigenvalue reports a dominant eigenvalue with a non-negligible
// imaginary part. A valid NGM is non-negative, so Perron-Frobenius
// guarantees a real dominant eigenvalue; anything else is a validation
// failure, not a number to return.
var ErrComplexEigenvalue = errors.New("dominant NGM eigenvalue is complex")

// imagTolerance bounds the acceptable imaginary part of the dominant
// eigenvalue, relative to its modulus.
const imagTolerance = 1e-9

// Generator builds next-generation matrices for the disease-progression
// subsystem (exposed and infectious stages only) of a model. A Generator is
// bound to one parameter snapshot; build a fresh one whenever parameters or
// contact structure change. Nothing is cached across snapshots.
type Generator struct {
	nAge, nE, nI int
	alpha, gamma float64
	susc         []float64
}

// New constructs a generator from a parameter snapshot.
func New(p model.Params, stages model.StageCounts, nAge int) (*Generator, error) {
	if err := stages.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(nAge); err != nil {
		return nil, err
	}
	return &Generator{
		nAge:  nAge,
		nE:    stages.E,
		nI:    stages.I,
		alpha: p.Alpha,
		gamma: p.Gamma,
		susc:  append([]float64(nil), p.Susc...),
	}, nil
}

// dim returns the size of the disease subsystem: all exposed and infectious
// sub-stages for every age group. States are age-major: the block of age a
// holds e_0..e_{nE-1}, i_0..i_{nI-1}.
func (g *Generator) dim() int { return g.nAge * (g.nE + g.nI) }

func (g *Generator) idxE(age, stage int) int { return age*(g.nE+g.nI) + stage }
func (g *Generator) idxI(age, stage int) int { return age*(g.nE+g.nI) + g.nE + stage }

// transition builds V, the linear outflow structure of the disease states:
// diagonal entries hold total outflow rates, off-diagonal entries the
// negated inflows from upstream stages. V^-1 then gives the expected time
// spent in each state before removal.
func (g *Generator) transition() (*mat.Dense, error) {
	rateE := float64(g.nE) * g.alpha
	rateI := float64(g.nI) * g.gamma
	if rateE <= 0 || rateI <= 0 {
		return nil, fmt.Errorf("%w: non-positive progression rates alpha=%v gamma=%v",
			ErrSingularTransition, g.alpha, g.gamma)
	}

	n := g.dim()
	v := mat.NewDense(n, n, nil)
	for a := 0; a < g.nAge; a++ {
		for s := 0; s < g.nE; s++ {
			v.Set(g.idxE(a, s), g.idxE(a, s), rateE)
			if s > 0 {
				v.Set(g.idxE(a, s), g.idxE(a, s-1), -rateE)
			}
		}
		v.Set(g.idxI(a, 0), g.idxE(a, g.nE-1), -rateE)
		for s := 0; s < g.nI; s++ {
			v.Set(g.idxI(a, s), g.idxI(a, s), rateI)
			if s > 0 {
				v.Set(g.idxI(a, s), g.idxI(a, s-1), -rateI)
			}
		}
	}
	return v, nil
}

// infection builds F, the rate of new infections produced into the first
// exposed stage of age a by an individual in any infectious sub-stage of
// age b, weighted by the contact matrix, per-age susceptibility and the
// susceptible fraction of each age group.
func (g *Generator) infection(beta float64, cm model.ContactMatrix, susceptibles, population []float64) (*mat.Dense, error) {
	if err := cm.Validate(g.nAge); err != nil {
		return nil, err
	}
	if len(susceptibles) != g.nAge || len(population) != g.nAge {
		return nil, fmt.Errorf("susceptibles/population vectors must have %d entries, got %d/%d",
			g.nAge, len(susceptibles), len(population))
	}

	n := g.dim()
	f := mat.NewDense(n, n, nil)
	for a := 0; a < g.nAge; a++ {
		if population[a] <= 0 {
			return nil, fmt.Errorf("population of age group %d must be positive, got %v", a, population[a])
		}
		w := beta * g.susc[a] * susceptibles[a] / population[a]
		for b := 0; b < g.nAge; b++ {
			for s := 0; s < g.nI; s++ {
				f.Set(g.idxE(a, 0), g.idxI(b, s), w*cm[a][b])
			}
		}
	}
	return f, nil
}

// SpectralRadius computes the dominant eigenvalue of the next-generation
// matrix F·V⁻¹ for the given transmission rate and contact structure.
func (g *Generator) SpectralRadius(beta float64, cm model.ContactMatrix, susceptibles, population []float64) (float64, error) {
	v, err := g.transition()
	if err != nil {
		return 0, err
	}
	var vInv mat.Dense
	if err := vInv.Inverse(v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSingularTransition, err)
	}

	f, err := g.infection(beta, cm, susceptibles, population)
	if err != nil {
		return 0, err
	}

	var ngm mat.Dense
	ngm.Mul(f, &vInv)

	var eig mat.Eigen
	if ok := eig.Factorize(&ngm, mat.EigenNone); !ok {
		return 0, fmt.Errorf("eigendecomposition of NGM failed")
	}
	values := eig.Values(nil)

	dominant := complex(0, 0)
	for _, ev := range values {
		if cmplx.Abs(ev) > cmplx.Abs(dominant) {
			dominant = ev
		}
	}
	if mod := cmplx.Abs(dominant); mod > 0 && math.Abs(imag(dominant)) > imagTolerance*math.Max(1, mod) {
		return 0, fmt.Errorf("%w: %v", ErrComplexEigenvalue, dominant)
	}
	return real(dominant), nil
}

// CalibrateBeta solves for the transmission-rate scalar that produces the
// target reproduction number. F is linear in beta, so the solution is exact:
// beta = targetR0 / rho(NGM at beta=1).
func (g *Generator) CalibrateBeta(targetR0 float64, cm model.ContactMatrix, susceptibles, population []float64) (float64, error) {
	if targetR0 <= 0 {
		return 0, fmt.Errorf("target R0 must be positive, got %v", targetR0)
	}
	rho, err := g.SpectralRadius(1, cm, susceptibles, population)
	if err != nil {
		return 0, err
	}
	if rho <= 0 {
		return 0, fmt.Errorf("NGM spectral radius at beta=1 is non-positive (%v); cannot calibrate", rho)
	}
	return targetR0 / rho, nil
}
