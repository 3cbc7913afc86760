package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/episens-xyz/go-episens/model"
	"github.com/episens-xyz/go-episens/r0"
	"github.com/episens-xyz/go-episens/scenario"
	"github.com/episens-xyz/go-episens/sensitivity"
)

// tuple is one point of the scenario grid the pipeline iterates over.
type tuple struct {
	susc      float64
	targetR0  float64
	targetVar string
}

// tuples expands the Cartesian product of the three scenario axes.
func tuples(suscs, targetR0s []float64, targetVars []string) []tuple {
	out := make([]tuple, 0, len(suscs)*len(targetR0s)*len(targetVars))
	for _, s := range suscs {
		for _, r := range targetR0s {
			for _, v := range targetVars {
				out = append(out, tuple{susc: s, targetR0: r, targetVar: v})
			}
		}
	}
	return out
}

// parseFloats parses a comma-separated list of numbers.
func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", p)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

// parseInts parses a comma-separated list of age-group indices.
func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("not an index: %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseStrings parses a comma-separated list of names.
func parseStrings(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applySusc sets the susceptibility multiplier on the reduced-susceptibility
// age groups of a parameter snapshot.
func applySusc(p *model.Params, susc float64, ages []int) error {
	for _, a := range ages {
		if a < 0 || a >= len(p.Susc) {
			return fmt.Errorf("susceptibility age group %d out of range [0,%d)", a, len(p.Susc))
		}
		p.Susc[a] = susc
	}
	return nil
}

// calibratedInterval computes the bound interval of a calibrated
// transmission-rate column: the non-calibrated columns are pinned to their
// lower corner and then their upper corner, beta is calibrated against the
// target reproduction number at each corner, and the two solutions span the
// interval.
func calibratedInterval(sc *scenario.Scenario, base model.Params, cm model.ContactMatrix,
	population []float64, targetR0 float64) (float64, float64, error) {

	corner := func(upper bool) (float64, error) {
		names := make([]string, 0, len(sc.Columns))
		row := make([]float64, 0, len(sc.Columns))
		for _, c := range sc.Columns {
			if c.Calibrated {
				continue
			}
			names = append(names, c.Name)
			if upper {
				row = append(row, *c.Upper)
			} else {
				row = append(row, *c.Lower)
			}
		}
		p := base
		if len(names) > 0 {
			var err error
			p, err = sensitivity.RowParams(base, names, row)
			if err != nil {
				return 0, err
			}
		}
		gen, err := r0.New(p, sc.Stages, sc.NAge())
		if err != nil {
			return 0, err
		}
		return gen.CalibrateBeta(targetR0, cm, population, population)
	}

	lo, err := corner(false)
	if err != nil {
		return 0, 0, fmt.Errorf("calibrate lower corner: %w", err)
	}
	hi, err := corner(true)
	if err != nil {
		return 0, 0, fmt.Errorf("calibrate upper corner: %w", err)
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}
