package sensitivity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/episens-xyz/go-episens/model"
	"github.com/episens-xyz/go-episens/r0"
	"github.com/episens-xyz/go-episens/solver"
)

// applyColumn writes one sampled value into a parameter snapshot. The
// supported column names fix the sampler's layout explicitly: a name that
// does not resolve is a configuration error at construction time, never a
// silent positional guess.
func applyColumn(p *model.Params, name string, v float64) error {
	switch name {
	case "alpha":
		p.Alpha = v
	case "gamma":
		p.Gamma = v
	case "gamma_h":
		p.GammaH = v
	case "gamma_c":
		p.GammaC = v
	case "gamma_cr":
		p.GammaCr = v
	case "beta", "beta_0":
		p.Beta = v
	case "psi":
		p.Psi = v
	case "rho":
		p.Rho = v
	case "h":
		p.H = v
	case "xi":
		p.Xi = v
	case "mu":
		p.Mu = v
	case "t_start":
		p.TStart = v
	case "T":
		p.TWindow = v
	default:
		if idx, ok := strings.CutPrefix(name, "vacc_"); ok {
			age, err := strconv.Atoi(idx)
			if err != nil || age < 0 || age >= len(p.DailyVaccines) {
				return fmt.Errorf("vaccination column %q does not name an age group in [0,%d)", name, len(p.DailyVaccines))
			}
			p.DailyVaccines[age] = v
			return nil
		}
		return fmt.Errorf("unknown sampled parameter column %q", name)
	}
	return nil
}

// RowParams materializes a fresh parameter snapshot from a sample row.
func RowParams(base model.Params, columns []string, row []float64) (model.Params, error) {
	if len(row) != len(columns) {
		return model.Params{}, fmt.Errorf("sample row has %d values for %d columns", len(row), len(columns))
	}
	p := base.Clone()
	for i, name := range columns {
		if err := applyColumn(&p, name, row[i]); err != nil {
			return model.Params{}, err
		}
	}
	return p, nil
}

// validateColumns rejects unknown column names up front, before any
// sampling work happens.
func validateColumns(base model.Params, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no sampled parameter columns given")
	}
	scratch := base.Clone()
	for _, name := range columns {
		if err := applyColumn(&scratch, name, scratch.Beta); err != nil {
			return err
		}
	}
	return nil
}

// NewR0Objective returns the fast linear-algebra objective: each sample row
// is mapped onto a parameter snapshot and scored by the spectral radius of
// the resulting next-generation matrix. No ODE integration is involved.
func NewR0Objective(base model.Params, stages model.StageCounts, cm model.ContactMatrix,
	susceptibles, population []float64, columns []string) (Objective, error) {

	if err := validateColumns(base, columns); err != nil {
		return nil, err
	}
	if err := cm.Validate(len(population)); err != nil {
		return nil, err
	}
	nAge := len(population)

	return func(row []float64) (float64, error) {
		p, err := RowParams(base, columns, row)
		if err != nil {
			return 0, err
		}
		gen, err := r0.New(p, stages, nAge)
		if err != nil {
			return 0, err
		}
		return gen.SpectralRadius(p.Beta, cm, susceptibles, population)
	}, nil
}

// NewPeakObjective returns the slow simulation objective: each sample row is
// mapped onto a parameter snapshot, the model is integrated over the grid
// via the precomputed bilinear backend, and the score is the trajectory
// maximum of the target compartment summed over ages and sub-stages (i_max,
// ic_max, d_max, ...). Each invocation builds its own backend instance, so
// rows evaluate safely in parallel.
func NewPeakObjective(m *model.Model, base model.Params, cm model.ContactMatrix,
	grid []float64, target model.Kind, method *solver.Method, opts *solver.Options,
	columns []string) (Objective, error) {

	if err := validateColumns(base, columns); err != nil {
		return nil, err
	}
	layout := m.Layout()
	if err := cm.Validate(layout.NAge()); err != nil {
		return nil, err
	}
	offsets := layout.KindOffsets(target)

	return func(row []float64) (float64, error) {
		p, err := RowParams(base, columns, row)
		if err != nil {
			return 0, err
		}
		bl, err := model.NewBilinear(m, p, cm)
		if err != nil {
			return 0, err
		}
		prob := &solver.Problem{F: bl.Eval, U0: m.InitialValues(), Grid: grid}
		tr, err := solver.SolveGrid(prob, method, opts)
		if err != nil {
			return 0, err
		}
		return tr.Max(offsets), nil
	}, nil
}

// TargetKind parses a target-variable name of the form "<tag>_max" (i_max,
// ic_max, d_max) into the compartment kind whose peak is scored. The name
// "r0" selects the fast path and is handled by the caller.
func TargetKind(targetVar string) (model.Kind, error) {
	tag, ok := strings.CutSuffix(targetVar, "_max")
	if !ok {
		return 0, fmt.Errorf("target variable %q is not of the form <compartment>_max", targetVar)
	}
	return model.KindFromTag(tag)
}
