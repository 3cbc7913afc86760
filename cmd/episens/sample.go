package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"

	"github.com/episens-xyz/go-episens/model"
	"github.com/episens-xyz/go-episens/r0"
	"github.com/episens-xyz/go-episens/results"
	"github.com/episens-xyz/go-episens/scenario"
	"github.com/episens-xyz/go-episens/sensitivity"
	"github.com/episens-xyz/go-episens/solver"
)

func sample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	scenarioFile := fs.String("scenario", "", "Scenario YAML file (required)")
	outDir := fs.String("out", "output", "Output directory")
	n := fs.Int("n", 10000, "Number of Latin Hypercube samples")
	workers := fs.Int("workers", runtime.NumCPU(), "Parallel evaluation workers")
	seed := fs.Int64("seed", 42, "Random seed for the sampler")
	suscList := fs.String("susc", "1.0", "Susceptibility multipliers (comma-separated)")
	suscAges := fs.String("susc-ages", "0", "Age groups the multiplier applies to (comma-separated indices)")
	r0List := fs.String("r0", "1.8", "Target reproduction numbers (comma-separated)")
	targetList := fs.String("targets", "r0", "Target variables: r0, i_max, ic_max, d_max (comma-separated)")
	duration := fs.Float64("duration", 300, "Simulation horizon in days for peak targets")
	gridPoints := fs.Int("grid-points", 301, "Output grid points over the horizon")
	accuracy := fs.String("accuracy", "fast", "Integration accuracy: fast, default or accurate")
	force := fs.Bool("force", false, "Re-run tuples whose output files already exist")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: episens sample [options]

Draw Latin Hypercube samples for every (susceptibility, target-R0, target)
tuple, evaluate the model over them, and persist the jointly sorted
input/output tables. Tuples with existing output files are skipped unless
--force is given.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scenarioFile == "" {
		fs.Usage()
		return fmt.Errorf("--scenario required")
	}

	sc, err := scenario.Load(*scenarioFile)
	if err != nil {
		return err
	}
	suscs, err := parseFloats(*suscList)
	if err != nil {
		return fmt.Errorf("--susc: %w", err)
	}
	ages, err := parseInts(*suscAges)
	if err != nil {
		return fmt.Errorf("--susc-ages: %w", err)
	}
	targetR0s, err := parseFloats(*r0List)
	if err != nil {
		return fmt.Errorf("--r0: %w", err)
	}
	targets := parseStrings(*targetList)
	if len(targets) == 0 {
		return fmt.Errorf("--targets: empty list")
	}

	var opts *solver.Options
	switch *accuracy {
	case "fast":
		opts = solver.FastOptions()
	case "default":
		opts = solver.DefaultOptions()
	case "accurate":
		opts = solver.AccurateOptions()
	default:
		return fmt.Errorf("unknown accuracy %q", *accuracy)
	}

	paths := results.Paths{Base: *outDir, Stages: sc.Stages.Tag()}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	catalog, err := results.OpenCatalog(paths.Catalog())
	if err != nil {
		return err
	}
	defer catalog.Close()

	cm, err := sc.TotalContacts()
	if err != nil {
		return err
	}
	m, err := model.New(sc.Stages, sc.Population, sc.SeedAge)
	if err != nil {
		return err
	}
	grid := solver.LinspaceGrid(0, *duration, *gridPoints)
	columns := sc.ColumnNames()

	for _, tp := range tuples(suscs, targetR0s, targets) {
		lhsPath := paths.LHS(tp.susc, tp.targetR0, tp.targetVar)
		simPath := paths.Simulations(tp.susc, tp.targetR0, tp.targetVar)
		if !*force && exists(lhsPath) && exists(simPath) {
			fmt.Fprintf(os.Stderr, "skip %g-%g-%s: output exists\n", tp.susc, tp.targetR0, tp.targetVar)
			continue
		}

		start := time.Now()
		count, err := sampleTuple(sc, m, cm, grid, columns, ages, tp, *n, *workers, *seed, opts, paths)
		status, errMsg := "ok", ""
		if err != nil {
			status, errMsg = "failed", err.Error()
			fmt.Fprintf(os.Stderr, "tuple %g-%g-%s failed: %v\n", tp.susc, tp.targetR0, tp.targetVar, err)
		} else {
			fmt.Fprintf(os.Stderr, "sampled %g-%g-%s: %d rows in %v\n",
				tp.susc, tp.targetR0, tp.targetVar, count, time.Since(start).Round(time.Millisecond))
		}
		if _, rerr := catalog.Record(results.Run{
			Phase: "sample", Susc: tp.susc, TargetR0: tp.targetR0, TargetVar: tp.targetVar,
			Samples: count, Status: status, Error: errMsg, OutputFile: simPath,
		}); rerr != nil {
			return rerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sampleTuple runs the sampling phase for one scenario tuple and returns the
// number of persisted rows.
func sampleTuple(sc *scenario.Scenario, m *model.Model, cm model.ContactMatrix,
	grid []float64, columns []string, suscAges []int, tp tuple,
	n, workers int, seed int64, opts *solver.Options, paths results.Paths) (int, error) {

	base := sc.ModelParams()
	if err := applySusc(&base, tp.susc, suscAges); err != nil {
		return 0, err
	}
	population := m.Population()

	// Pin the baseline transmission rate to the tuple's target R0 so a
	// non-sampled beta still matches the scenario.
	gen, err := r0.New(base, sc.Stages, sc.NAge())
	if err != nil {
		return 0, err
	}
	beta, err := gen.CalibrateBeta(tp.targetR0, cm, population, population)
	if err != nil {
		return 0, err
	}
	base.Beta = beta

	var betaLo, betaHi float64
	if sc.HasCalibratedColumn() {
		betaLo, betaHi, err = calibratedInterval(sc, base, cm, population, tp.targetR0)
		if err != nil {
			return 0, err
		}
	}
	bounds, err := sc.Bounds(betaLo, betaHi)
	if err != nil {
		return 0, err
	}

	var obj sensitivity.Objective
	var steps int64
	if tp.targetVar == "r0" {
		obj, err = sensitivity.NewR0Objective(base, sc.Stages, cm, population, population, columns)
	} else {
		var kind model.Kind
		kind, err = sensitivity.TargetKind(tp.targetVar)
		if err != nil {
			return 0, err
		}
		counted := *opts
		counted.StepHook = func(float64) { atomic.AddInt64(&steps, 1) }
		obj, err = sensitivity.NewPeakObjective(m, base, cm, grid, kind, solver.RK4(), &counted, columns)
	}
	if err != nil {
		return 0, err
	}

	rows, err := sensitivity.LatinHypercube(bounds, n, rand.NewSource(uint64(seed)))
	if err != nil {
		return 0, err
	}
	outputs, err := sensitivity.Evaluate(rows, obj, workers)
	if err != nil {
		return 0, err
	}
	// Workers have joined, so the counter is settled.
	if steps > 0 {
		fmt.Fprintf(os.Stderr, "integrated %d steps over %d rows\n", steps, len(rows))
	}
	if err := sensitivity.SortJoint(rows, outputs); err != nil {
		return 0, err
	}

	if err := results.WriteTable(paths.LHS(tp.susc, tp.targetR0, tp.targetVar), rows); err != nil {
		return 0, err
	}
	if err := results.WriteVector(paths.Simulations(tp.susc, tp.targetR0, tp.targetVar), outputs); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
