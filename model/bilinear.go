package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Bilinear is the precomputed matrix form of the model equations,
//
//	y' = (A y) ∘ (T y) + B y
//
// where A carries the transmission-rate coefficients, T the contact-weighted
// aggregation of infectious sub-stages, and B every first-order flow. A, T
// and B depend only on the parameter snapshot and contact matrix and are
// built once per snapshot, not per integration step. The only post-build
// mutation is the vaccination-window block of B, toggled between two fixed
// value sets when simulation time crosses the window boundaries.
type Bilinear struct {
	model *Model
	p     Params

	a *mat.Dense
	t *mat.Dense
	b *mat.Dense

	vaccRate   []float64 // per-age per-susceptible vaccination rate
	vaccActive bool

	// scratch vectors reused across evaluations
	au, tu, bu *mat.VecDense
}

// NewBilinear precomputes the A, T and B matrices for one parameter snapshot.
func NewBilinear(m *Model, p Params, cm ContactMatrix) (*Bilinear, error) {
	l := m.layout
	if err := p.Validate(l.nAge); err != nil {
		return nil, err
	}
	if err := cm.Validate(l.nAge); err != nil {
		return nil, err
	}

	n := l.Total()
	bl := &Bilinear{
		model:    m,
		p:        p,
		a:        mat.NewDense(n, n, nil),
		t:        mat.NewDense(n, n, nil),
		b:        mat.NewDense(n, n, nil),
		vaccRate: make([]float64, l.nAge),
		au:       mat.NewVecDense(n, nil),
		tu:       mat.NewVecDense(n, nil),
		bu:       mat.NewVecDense(n, nil),
	}
	for a := 0; a < l.nAge; a++ {
		if len(p.DailyVaccines) == l.nAge {
			bl.vaccRate[a] = p.Rho * p.DailyVaccines[a] / m.pop[a]
		}
	}
	bl.fillTransmission(cm)
	bl.fillLinear()
	return bl, nil
}

// fillTransmission builds A and T. (A y) is non-zero only at the s and e_0
// rows, holding ±beta*susc/N * s; (T y) holds the contact-weighted sum of
// all infectious sub-stages at the same rows, so the Hadamard product
// reproduces the force-of-infection terms of the direct form.
func (bl *Bilinear) fillTransmission(cm ContactMatrix) {
	l := bl.model.layout
	for a := 0; a < l.nAge; a++ {
		sIdx := l.mustOffset(Susceptible, 0, a)
		eIdx := l.mustOffset(Exposed, 0, a)
		rate := bl.p.Beta * bl.p.Susc[a] / bl.model.pop[a]
		bl.a.Set(sIdx, sIdx, -rate)
		bl.a.Set(eIdx, sIdx, rate)

		for b := 0; b < l.nAge; b++ {
			for s := 0; s < l.stages.I; s++ {
				iIdx := l.mustOffset(Infectious, s, b)
				bl.t.Set(sIdx, iIdx, cm[a][b])
				bl.t.Set(eIdx, iIdx, cm[a][b])
			}
		}
	}
}

// fillLinear builds B: Erlang-chain relaxation blocks plus the terminal
// branch flows. Vaccination-window entries stay zero until the window opens.
func (bl *Bilinear) fillLinear() {
	l := bl.model.layout
	sc := l.stages
	p := bl.p
	r := bl.model.rates(p)

	chains := []struct {
		kind Kind
		n    int
		rate float64
	}{
		{Exposed, sc.E, r.e},
		{Infectious, sc.I, r.i},
		{Hospitalized, sc.H, r.h},
		{Critical, sc.IC, r.ic},
		{CriticalRecovery, sc.ICR, r.icr},
		{Vaccinated, sc.V, r.v},
	}

	for a := 0; a < l.nAge; a++ {
		for _, c := range chains {
			for s := 0; s < c.n; s++ {
				idx := l.mustOffset(c.kind, s, a)
				bl.b.Set(idx, idx, -c.rate)
				if s > 0 {
					bl.b.Set(idx, l.mustOffset(c.kind, s-1, a), c.rate)
				}
			}
		}

		sIdx := l.mustOffset(Susceptible, 0, a)
		rIdx := l.mustOffset(Recovered, 0, a)
		dIdx := l.mustOffset(Dead, 0, a)
		eLast := l.mustOffset(Exposed, sc.E-1, a)
		iLast := l.mustOffset(Infectious, sc.I-1, a)
		hLast := l.mustOffset(Hospitalized, sc.H-1, a)
		icLast := l.mustOffset(Critical, sc.IC-1, a)
		icrLast := l.mustOffset(CriticalRecovery, sc.ICR-1, a)
		vLast := l.mustOffset(Vaccinated, sc.V-1, a)

		// E -> I
		bl.b.Set(l.mustOffset(Infectious, 0, a), eLast, r.e)
		// I -> H / IC / R
		bl.b.Set(l.mustOffset(Hospitalized, 0, a), iLast, (1-p.Xi)*p.H*r.i)
		bl.b.Set(l.mustOffset(Critical, 0, a), iLast, p.Xi*p.H*r.i)
		bl.b.Set(rIdx, iLast, (1-p.H)*r.i)
		// H -> R
		bl.b.Set(rIdx, hLast, r.h)
		// IC -> ICR / D
		bl.b.Set(l.mustOffset(CriticalRecovery, 0, a), icLast, (1-p.Mu)*r.ic)
		bl.b.Set(dIdx, icLast, p.Mu*r.ic)
		// ICR -> R
		bl.b.Set(rIdx, icrLast, r.icr)
		// V waning back to S
		bl.b.Set(sIdx, vLast, r.v)
	}
}

// setVaccWindow writes the vaccination block of B with fixed values for the
// requested window state. The assignment is idempotent: applying the same
// state twice leaves B unchanged, so crossing detection order is irrelevant.
func (bl *Bilinear) setVaccWindow(active bool) {
	if bl.vaccActive == active {
		return
	}
	l := bl.model.layout
	for a := 0; a < l.nAge; a++ {
		sIdx := l.mustOffset(Susceptible, 0, a)
		v0Idx := l.mustOffset(Vaccinated, 0, a)
		rate := 0.0
		if active {
			rate = bl.vaccRate[a]
		}
		bl.b.Set(v0Idx, sIdx, rate)
		bl.b.Set(sIdx, sIdx, -rate)
	}
	bl.vaccActive = active
}

// Eval computes the derivative at (t, y). It mirrors the direct RHS exactly;
// both backends must agree within floating-point tolerance.
func (bl *Bilinear) Eval(t float64, y []float64) []float64 {
	bl.setVaccWindow(bl.p.VaccinationActive(t))

	n := len(y)
	yv := mat.NewVecDense(n, y)
	bl.au.MulVec(bl.a, yv)
	bl.tu.MulVec(bl.t, yv)
	bl.bu.MulVec(bl.b, yv)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = bl.au.AtVec(i)*bl.tu.AtVec(i) + bl.bu.AtVec(i)
	}
	return out
}

// Matrices exposes copies of A, T and B for inspection in tests.
func (bl *Bilinear) Matrices() (a, t, b *mat.Dense) {
	return mat.DenseCopyOf(bl.a), mat.DenseCopyOf(bl.t), mat.DenseCopyOf(bl.b)
}

// String identifies the backend in diagnostics.
func (bl *Bilinear) String() string {
	return fmt.Sprintf("bilinear(%d states)", bl.model.layout.Total())
}
