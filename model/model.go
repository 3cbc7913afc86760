package model

import "fmt"

// Model binds a compartment layout to an age-structured population and
// produces derivative functions for numerical integration.
type Model struct {
	layout  *Layout
	pop     []float64
	total   float64
	seedAge int
}

// New constructs a model for the given stage configuration and per-age
// population. seedAge selects the age group receiving the index case in
// InitialValues.
func New(stages StageCounts, population []float64, seedAge int) (*Model, error) {
	layout, err := NewLayout(stages, len(population))
	if err != nil {
		return nil, err
	}
	total := 0.0
	for a, n := range population {
		if n <= 0 {
			return nil, fmt.Errorf("population of age group %d must be positive, got %v", a, n)
		}
		total += n
	}
	if seedAge < 0 || seedAge >= len(population) {
		return nil, fmt.Errorf("seed age group %d out of range [0,%d)", seedAge, len(population))
	}
	return &Model{
		layout:  layout,
		pop:     append([]float64(nil), population...),
		total:   total,
		seedAge: seedAge,
	}, nil
}

// Layout returns the model's compartment layout.
func (m *Model) Layout() *Layout { return m.layout }

// Population returns the per-age population vector.
func (m *Model) Population() []float64 { return append([]float64(nil), m.pop...) }

// TotalPopulation returns the summed population over all age groups.
func (m *Model) TotalPopulation() float64 { return m.total }

// InitialValues returns the disease-free state perturbed by a single exposed
// individual in the configured seed age group.
func (m *Model) InitialValues() []float64 {
	y := make([]float64, m.layout.Total())
	for a := 0; a < m.layout.nAge; a++ {
		y[m.layout.mustOffset(Susceptible, 0, a)] = m.pop[a]
	}
	seed := m.layout.mustOffset(Exposed, 0, m.seedAge)
	y[seed] = 1
	y[m.layout.mustOffset(Susceptible, 0, m.seedAge)] -= 1
	return y
}

// stageRates returns the per-stage Erlang chain rates for every multi-stage
// compartment: a chain of k sub-stages with rate parameter r relaxes at
// per-stage rate k*r.
type stageRates struct {
	e, i, h, ic, icr, v float64
}

func (m *Model) rates(p Params) stageRates {
	sc := m.layout.stages
	return stageRates{
		e:   float64(sc.E) * p.Alpha,
		i:   float64(sc.I) * p.Gamma,
		h:   float64(sc.H) * p.GammaH,
		ic:  float64(sc.IC) * p.GammaC,
		icr: float64(sc.ICR) * p.GammaCr,
		v:   float64(sc.V) * p.Psi,
	}
}

// RHS builds the direct nonlinear derivative function for the given
// parameter snapshot and contact matrix. The returned closure is pure:
// concurrent calls on distinct state vectors are safe.
func (m *Model) RHS(p Params, cm ContactMatrix) (func(t float64, y []float64) []float64, error) {
	l := m.layout
	if err := p.Validate(l.nAge); err != nil {
		return nil, err
	}
	if err := cm.Validate(l.nAge); err != nil {
		return nil, err
	}
	nAge := l.nAge
	sc := l.stages
	r := m.rates(p)

	// Per-age vaccination rate: the daily allocation expressed as a
	// per-susceptible rate, so the flow stays linear in the state and the
	// bilinear backend can represent it exactly.
	vaccRate := make([]float64, nAge)
	for a := range vaccRate {
		if len(p.DailyVaccines) == nAge {
			vaccRate[a] = p.Rho * p.DailyVaccines[a] / m.pop[a]
		}
	}

	sOff := l.KindOffsets(Susceptible)
	rOff := l.KindOffsets(Recovered)
	dOff := l.KindOffsets(Dead)

	return func(t float64, y []float64) []float64 {
		dy := make([]float64, len(y))

		// Force of infection per age group.
		foi := make([]float64, nAge)
		for a := 0; a < nAge; a++ {
			contacts := 0.0
			for b := 0; b < nAge; b++ {
				inf := 0.0
				for s := 0; s < sc.I; s++ {
					inf += y[l.mustOffset(Infectious, s, b)]
				}
				contacts += cm[a][b] * inf
			}
			foi[a] = p.Beta * p.Susc[a] * y[sOff[a]] / m.pop[a] * contacts
		}

		vacc := 0.0
		if p.VaccinationActive(t) {
			vacc = 1.0
		}

		for a := 0; a < nAge; a++ {
			sIdx := sOff[a]
			vaccFlow := vacc * vaccRate[a] * y[sIdx]
			vLast := y[l.mustOffset(Vaccinated, sc.V-1, a)]

			dy[sIdx] = -foi[a] - vaccFlow + r.v*vLast

			chain(dy, y, l, Exposed, sc.E, a, r.e, foi[a])
			eLastOut := r.e * y[l.mustOffset(Exposed, sc.E-1, a)]

			chain(dy, y, l, Infectious, sc.I, a, r.i, eLastOut)
			iLastOut := r.i * y[l.mustOffset(Infectious, sc.I-1, a)]

			chain(dy, y, l, Hospitalized, sc.H, a, r.h, (1-p.Xi)*p.H*iLastOut)
			hLastOut := r.h * y[l.mustOffset(Hospitalized, sc.H-1, a)]

			chain(dy, y, l, Critical, sc.IC, a, r.ic, p.Xi*p.H*iLastOut)
			icLastOut := r.ic * y[l.mustOffset(Critical, sc.IC-1, a)]

			chain(dy, y, l, CriticalRecovery, sc.ICR, a, r.icr, (1-p.Mu)*icLastOut)
			icrLastOut := r.icr * y[l.mustOffset(CriticalRecovery, sc.ICR-1, a)]

			chain(dy, y, l, Vaccinated, sc.V, a, r.v, vaccFlow)

			dy[rOff[a]] = (1-p.H)*iLastOut + hLastOut + icrLastOut
			dy[dOff[a]] = p.Mu * icLastOut
		}
		return dy
	}, nil
}

// chain accumulates the standard Erlang-chain relaxation for one (kind, age)
// block: stage 0 is fed by inflow, every stage drains at rate into the next.
// The outflow of the final stage is routed by the caller.
func chain(dy, y []float64, l *Layout, k Kind, n int, age int, rate, inflow float64) {
	prev := inflow
	for s := 0; s < n; s++ {
		idx := l.mustOffset(k, s, age)
		out := rate * y[idx]
		dy[idx] += prev - out
		prev = out
	}
}
