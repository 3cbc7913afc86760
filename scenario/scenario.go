// Package scenario loads and validates simulation scenarios: age-structured
// contact matrices by setting, base model parameters, stage counts, and the
// sampled-parameter bound specification.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/episens-xyz/go-episens/model"
	"github.com/episens-xyz/go-episens/sensitivity"
)

// Column is one sampled dimension: its parameter name and bound interval.
// A calibrated column has no literal bounds; both are filled from the
// transmission-rate calibration before sampling.
type Column struct {
	Name       string   `yaml:"name"`
	Lower      *float64 `yaml:"lower"`
	Upper      *float64 `yaml:"upper"`
	Calibrated bool     `yaml:"calibrated"`
}

// paramsYAML mirrors the parameter block of a scenario file.
type paramsYAML struct {
	Alpha         float64   `yaml:"alpha"`
	Gamma         float64   `yaml:"gamma"`
	GammaH        float64   `yaml:"gamma_h"`
	GammaC        float64   `yaml:"gamma_c"`
	GammaCr       float64   `yaml:"gamma_cr"`
	Psi           float64   `yaml:"psi"`
	Beta          float64   `yaml:"beta"`
	H             float64   `yaml:"h"`
	Xi            float64   `yaml:"xi"`
	Mu            float64   `yaml:"mu"`
	Rho           float64   `yaml:"rho"`
	TStart        float64   `yaml:"t_start"`
	TWindow       float64   `yaml:"T"`
	Susc          []float64 `yaml:"susc"`
	DailyVaccines []float64 `yaml:"daily_vaccines"`
}

// Scenario is a fully validated scenario.
type Scenario struct {
	Name       string                         `yaml:"name"`
	Population []float64                      `yaml:"population"`
	SeedAge    int                            `yaml:"seed_age"`
	Contacts   map[string]model.ContactMatrix `yaml:"contacts"`
	Stages     model.StageCounts              `yaml:"stages"`
	Params     paramsYAML                     `yaml:"params"`
	Columns    []Column                       `yaml:"columns"`
}

// contactSettings are the four required contact-matrix settings.
var contactSettings = []string{"home", "work", "school", "other"}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return &sc, nil
}

// Validate checks every shape and required key, failing on the first
// problem with its name.
func (sc *Scenario) Validate() error {
	nAge := len(sc.Population)
	if nAge == 0 {
		return fmt.Errorf("missing key %q", "population")
	}
	for a, p := range sc.Population {
		if p <= 0 {
			return fmt.Errorf("population entry %d must be positive, got %v", a, p)
		}
	}
	if sc.SeedAge < 0 || sc.SeedAge >= nAge {
		return fmt.Errorf("seed_age %d out of range [0,%d)", sc.SeedAge, nAge)
	}
	for _, setting := range contactSettings {
		cm, ok := sc.Contacts[setting]
		if !ok {
			return fmt.Errorf("missing contact matrix %q", setting)
		}
		if err := cm.Validate(nAge); err != nil {
			return fmt.Errorf("contact matrix %q: %w", setting, err)
		}
	}
	if err := sc.Stages.Validate(); err != nil {
		return err
	}
	if err := sc.ModelParams().Validate(nAge); err != nil {
		return err
	}
	if len(sc.Columns) == 0 {
		return fmt.Errorf("missing key %q", "columns")
	}
	for i, c := range sc.Columns {
		if c.Name == "" {
			return fmt.Errorf("column %d has no name", i)
		}
		if c.Calibrated {
			continue
		}
		if c.Lower == nil || c.Upper == nil {
			return fmt.Errorf("column %q needs lower and upper bounds (or calibrated: true)", c.Name)
		}
		if *c.Lower > *c.Upper {
			return fmt.Errorf("column %q has lower bound %v above upper bound %v", c.Name, *c.Lower, *c.Upper)
		}
	}
	return nil
}

// NAge returns the number of age groups.
func (sc *Scenario) NAge() int { return len(sc.Population) }

// ModelParams materializes the base parameter snapshot. Susceptibility
// defaults to 1 for every age group when the file omits it; the daily
// vaccine allocation defaults to zero.
func (sc *Scenario) ModelParams() model.Params {
	p := model.Params{
		Alpha:         sc.Params.Alpha,
		Gamma:         sc.Params.Gamma,
		GammaH:        sc.Params.GammaH,
		GammaC:        sc.Params.GammaC,
		GammaCr:       sc.Params.GammaCr,
		Psi:           sc.Params.Psi,
		Beta:          sc.Params.Beta,
		H:             sc.Params.H,
		Xi:            sc.Params.Xi,
		Mu:            sc.Params.Mu,
		Rho:           sc.Params.Rho,
		TStart:        sc.Params.TStart,
		TWindow:       sc.Params.TWindow,
		Susc:          append([]float64(nil), sc.Params.Susc...),
		DailyVaccines: append([]float64(nil), sc.Params.DailyVaccines...),
	}
	if len(p.Susc) == 0 {
		p.Susc = make([]float64, sc.NAge())
		for i := range p.Susc {
			p.Susc[i] = 1
		}
	}
	if len(p.DailyVaccines) == 0 {
		p.DailyVaccines = make([]float64, sc.NAge())
	}
	return p
}

// TotalContacts sums the four contact settings into the aggregate matrix
// used by both the model and the NGM.
func (sc *Scenario) TotalContacts() (model.ContactMatrix, error) {
	total := model.Uniform(sc.NAge(), 0)
	for _, setting := range contactSettings {
		sum, err := total.Add(sc.Contacts[setting])
		if err != nil {
			return nil, fmt.Errorf("contact matrix %q: %w", setting, err)
		}
		total = sum
	}
	return total, nil
}

// ColumnNames returns the sampled parameter names in column order.
func (sc *Scenario) ColumnNames() []string {
	names := make([]string, len(sc.Columns))
	for i, c := range sc.Columns {
		names[i] = c.Name
	}
	return names
}

// Bounds materializes the sampler bound box. Calibrated columns receive the
// supplied interval (computed by transmission-rate calibration at the bound
// corners); the column ordering is exactly the file order, validated here so
// sampler and evaluator can never disagree on layout.
func (sc *Scenario) Bounds(calibratedLower, calibratedUpper float64) (sensitivity.Bounds, error) {
	b := sensitivity.Bounds{
		Lower: make([]float64, len(sc.Columns)),
		Upper: make([]float64, len(sc.Columns)),
	}
	for i, c := range sc.Columns {
		if c.Calibrated {
			if calibratedLower <= 0 || calibratedUpper < calibratedLower {
				return sensitivity.Bounds{}, fmt.Errorf("column %q is calibrated but the supplied interval [%v,%v] is invalid",
					c.Name, calibratedLower, calibratedUpper)
			}
			b.Lower[i] = calibratedLower
			b.Upper[i] = calibratedUpper
			continue
		}
		b.Lower[i] = *c.Lower
		b.Upper[i] = *c.Upper
	}
	if err := b.Validate(); err != nil {
		return sensitivity.Bounds{}, err
	}
	return b, nil
}

// HasCalibratedColumn reports whether any sampled column takes its bounds
// from transmission-rate calibration.
func (sc *Scenario) HasCalibratedColumn() bool {
	for _, c := range sc.Columns {
		if c.Calibrated {
			return true
		}
	}
	return false
}
