package model

import (
	"strings"
	"testing"
)

func validParams(nAge int) Params {
	susc := make([]float64, nAge)
	for i := range susc {
		susc[i] = 1
	}
	return Params{
		Alpha:   0.2,
		Gamma:   0.2,
		GammaH:  0.1,
		GammaC:  0.08,
		GammaCr: 0.1,
		Psi:     0.01,
		Beta:    0.05,
		Susc:    susc,
		H:       0.1,
		Xi:      0.2,
		Mu:      0.3,
		Rho:     0.8,
		TStart:  10,
		TWindow: 30,
	}
}

func TestParamsValidate(t *testing.T) {
	if err := validParams(3).Validate(3); err != nil {
		t.Fatalf("Expected valid params, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Params)
		want   string
	}{
		{"zero alpha", func(p *Params) { p.Alpha = 0 }, "alpha"},
		{"negative gamma", func(p *Params) { p.Gamma = -0.1 }, "gamma"},
		{"negative psi", func(p *Params) { p.Psi = -1 }, "psi"},
		{"negative beta", func(p *Params) { p.Beta = -1 }, "beta"},
		{"fraction above one", func(p *Params) { p.H = 1.5 }, "h"},
		{"negative mu", func(p *Params) { p.Mu = -0.2 }, "mu"},
		{"rho above one", func(p *Params) { p.Rho = 2 }, "rho"},
		{"negative window", func(p *Params) { p.TWindow = -5 }, "T"},
		{"missing susc", func(p *Params) { p.Susc = nil }, "susc"},
		{"short susc", func(p *Params) { p.Susc = []float64{1} }, "susc"},
		{"negative susc entry", func(p *Params) { p.Susc[1] = -1 }, "susc"},
		{"short daily vaccines", func(p *Params) { p.DailyVaccines = []float64{1} }, "daily_vaccines"},
	}
	for _, c := range cases {
		p := validParams(3)
		c.mutate(&p)
		err := p.Validate(3)
		if err == nil {
			t.Errorf("%s: expected validation error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: error %q does not name %q", c.name, err, c.want)
		}
	}
}

func TestVaccinationActive(t *testing.T) {
	p := validParams(1)
	p.TStart, p.TWindow = 10, 30

	cases := []struct {
		t    float64
		want bool
	}{
		{0, false},
		{9.99, false},
		{10, true}, // inclusive start
		{25, true},
		{39.99, true},
		{40, false}, // exclusive end
		{100, false},
	}
	for _, c := range cases {
		if got := p.VaccinationActive(c.t); got != c.want {
			t.Errorf("VaccinationActive(%v)=%v, want %v", c.t, got, c.want)
		}
	}
}

func TestParamsClone(t *testing.T) {
	p := validParams(2)
	p.DailyVaccines = []float64{100, 200}
	q := p.Clone()
	q.Susc[0] = 0.5
	q.DailyVaccines[1] = 0

	if p.Susc[0] != 1 {
		t.Error("Clone shares the susceptibility vector")
	}
	if p.DailyVaccines[1] != 200 {
		t.Error("Clone shares the vaccine allocation vector")
	}
}

func TestContactMatrixValidate(t *testing.T) {
	if err := Uniform(3, 1.5).Validate(3); err != nil {
		t.Errorf("Expected valid uniform matrix, got %v", err)
	}
	if err := Uniform(3, 1).Validate(2); err == nil {
		t.Error("Expected error for wrong dimension")
	}
	ragged := ContactMatrix{{1, 2}, {1}}
	if err := ragged.Validate(2); err == nil {
		t.Error("Expected error for ragged matrix")
	}
	negative := Uniform(2, 1)
	negative[0][1] = -3
	if err := negative.Validate(2); err == nil {
		t.Error("Expected error for negative entry")
	}
}

func TestContactMatrixAdd(t *testing.T) {
	a := Uniform(2, 1)
	b := Uniform(2, 2.5)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	for i := range sum {
		for j := range sum[i] {
			if sum[i][j] != 3.5 {
				t.Errorf("Entry [%d][%d]=%v, want 3.5", i, j, sum[i][j])
			}
		}
	}
	if _, err := a.Add(Uniform(3, 1)); err == nil {
		t.Error("Expected error for shape mismatch")
	}
}
