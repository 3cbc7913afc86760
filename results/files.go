package results

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths maps a (susceptibility, target-R0, target-variable, stage-count)
// scenario tuple to the files of each pipeline phase under a base
// directory. Filenames encode the tuple so every phase can resume
// independently from the files of the previous one. Stages is the
// stage-count tag of the scenario (model.StageCounts.Tag); when empty it is
// left out of the filenames.
type Paths struct {
	Base   string
	Stages string
}

// tupleTag formats the scenario tuple shared by every phase's filename.
func (p Paths) tupleTag(susc, targetR0 float64, targetVar string) string {
	tag := fmt.Sprintf("%g-%g-%s", susc, targetR0, targetVar)
	if p.Stages != "" {
		tag += "-" + p.Stages
	}
	return tag
}

// EnsureDirs creates the per-phase subdirectories.
func (p Paths) EnsureDirs() error {
	for _, sub := range []string{"lhs", "simulations", "prcc", "plots"} {
		if err := os.MkdirAll(filepath.Join(p.Base, sub), 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", sub, err)
		}
	}
	return nil
}

// LHS returns the sampled-input table path for a scenario tuple.
func (p Paths) LHS(susc, targetR0 float64, targetVar string) string {
	return filepath.Join(p.Base, "lhs", "lhs_"+p.tupleTag(susc, targetR0, targetVar)+".csv")
}

// Simulations returns the evaluated-output vector path for a scenario tuple.
func (p Paths) Simulations(susc, targetR0 float64, targetVar string) string {
	return filepath.Join(p.Base, "simulations", "simulations_"+p.tupleTag(susc, targetR0, targetVar)+".csv")
}

// PRCC returns the PRCC vector path for a scenario tuple.
func (p Paths) PRCC(susc, targetR0 float64, targetVar string) string {
	return filepath.Join(p.Base, "prcc", "prcc_"+p.tupleTag(susc, targetR0, targetVar)+".csv")
}

// Plot returns the tornado-plot SVG path for a scenario tuple.
func (p Paths) Plot(susc, targetR0 float64, targetVar string) string {
	return filepath.Join(p.Base, "plots", "prcc_"+p.tupleTag(susc, targetR0, targetVar)+".svg")
}

// Catalog returns the SQLite run-catalog path.
func (p Paths) Catalog() string {
	return filepath.Join(p.Base, "runs.db")
}
