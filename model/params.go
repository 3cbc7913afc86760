package model

import (
	"fmt"
	"math"
)

// Params is a fully materialized parameter snapshot for one evaluation.
// Snapshots are passed by value; sampling code builds a fresh copy per
// sample row instead of mutating a shared set.
type Params struct {
	// Rate parameters, each the reciprocal of a mean sojourn time. A
	// compartment with k sub-stages relaxes at per-stage rate k times the
	// parameter, giving an Erlang(k) sojourn with the configured mean.
	Alpha   float64 // latent progression (E)
	Gamma   float64 // infectious recovery/removal (I)
	GammaH  float64 // hospital discharge (H)
	GammaC  float64 // intensive care exit (IC)
	GammaCr float64 // post-ICU recovery (ICR)
	Psi     float64 // vaccine waning (V); zero disables waning

	// Transmission.
	Beta float64   // calibrated transmission-rate scalar
	Susc []float64 // per-age relative susceptibility

	// Branch fractions, each in [0,1].
	H  float64 // fraction of infectious needing hospital care
	Xi float64 // fraction of hospitalized needing intensive care
	Mu float64 // fraction of intensive-care patients who die

	// Vaccination window.
	Rho           float64   // effectiveness/compliance factor
	TStart        float64   // window start time
	TWindow       float64   // window length
	DailyVaccines []float64 // per-age daily vaccine allocation
}

// VaccinationActive reports whether the vaccination window is open at time t.
func (p Params) VaccinationActive(t float64) bool {
	return t >= p.TStart && t < p.TStart+p.TWindow
}

// Validate fails fast on the first missing or invalid field, naming it.
func (p Params) Validate(nAge int) error {
	rates := []struct {
		name string
		v    float64
	}{
		{"alpha", p.Alpha},
		{"gamma", p.Gamma},
		{"gamma_h", p.GammaH},
		{"gamma_c", p.GammaC},
		{"gamma_cr", p.GammaCr},
	}
	for _, r := range rates {
		if r.v <= 0 || math.IsNaN(r.v) || math.IsInf(r.v, 0) {
			return fmt.Errorf("parameter %q missing or non-positive: %v", r.name, r.v)
		}
	}
	if p.Psi < 0 || math.IsNaN(p.Psi) {
		return fmt.Errorf("parameter %q must be non-negative: %v", "psi", p.Psi)
	}
	if p.Beta < 0 || math.IsNaN(p.Beta) {
		return fmt.Errorf("parameter %q must be non-negative: %v", "beta", p.Beta)
	}
	fractions := []struct {
		name string
		v    float64
	}{
		{"h", p.H},
		{"xi", p.Xi},
		{"mu", p.Mu},
		{"rho", p.Rho},
	}
	for _, f := range fractions {
		if f.v < 0 || f.v > 1 || math.IsNaN(f.v) {
			return fmt.Errorf("parameter %q must lie in [0,1]: %v", f.name, f.v)
		}
	}
	if p.TWindow < 0 {
		return fmt.Errorf("parameter %q must be non-negative: %v", "T", p.TWindow)
	}
	if len(p.Susc) == 0 {
		return fmt.Errorf("parameter %q missing", "susc")
	}
	if len(p.Susc) != nAge {
		return fmt.Errorf("parameter %q has %d entries, want %d age groups", "susc", len(p.Susc), nAge)
	}
	for a, s := range p.Susc {
		if s < 0 || math.IsNaN(s) {
			return fmt.Errorf("parameter %q entry %d must be non-negative: %v", "susc", a, s)
		}
	}
	if len(p.DailyVaccines) != 0 && len(p.DailyVaccines) != nAge {
		return fmt.Errorf("parameter %q has %d entries, want %d age groups", "daily_vaccines", len(p.DailyVaccines), nAge)
	}
	for a, v := range p.DailyVaccines {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("parameter %q entry %d must be non-negative: %v", "daily_vaccines", a, v)
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot; sampling code mutates the copy.
func (p Params) Clone() Params {
	out := p
	out.Susc = append([]float64(nil), p.Susc...)
	out.DailyVaccines = append([]float64(nil), p.DailyVaccines...)
	return out
}
