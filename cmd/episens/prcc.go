package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/episens-xyz/go-episens/results"
	"github.com/episens-xyz/go-episens/scenario"
	"github.com/episens-xyz/go-episens/sensitivity"
)

func prcc(args []string) error {
	fs := flag.NewFlagSet("prcc", flag.ExitOnError)
	scenarioFile := fs.String("scenario", "", "Scenario YAML file (required, fixes the stage-count tag)")
	outDir := fs.String("out", "output", "Output directory holding the sampled tables")
	suscList := fs.String("susc", "1.0", "Susceptibility multipliers (comma-separated)")
	r0List := fs.String("r0", "1.8", "Target reproduction numbers (comma-separated)")
	targetList := fs.String("targets", "r0", "Target variables (comma-separated)")
	force := fs.Bool("force", false, "Recompute tuples whose PRCC files already exist")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: episens prcc [options]

Compute the PRCC vector of every sampled tuple from the persisted
input/output tables written by the sample phase.

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
	targetR0s, err := parseFloats(*r0List)
	if err != nil {
		return fmt.Errorf("--r0: %w", err)
	}
	targets := parseStrings(*targetList)
	if len(targets) == 0 {
		return fmt.Errorf("--targets: empty list")
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

	for _, tp := range tuples(suscs, targetR0s, targets) {
		prccPath := paths.PRCC(tp.susc, tp.targetR0, tp.targetVar)
		if !*force && exists(prccPath) {
			fmt.Fprintf(os.Stderr, "skip %g-%g-%s: PRCC exists\n", tp.susc, tp.targetR0, tp.targetVar)
			continue
		}

		vec, n, err := prccTuple(paths, tp)
		status, errMsg := "ok", ""
		if err != nil {
			status, errMsg = "failed", err.Error()
			fmt.Fprintf(os.Stderr, "tuple %g-%g-%s failed: %v\n", tp.susc, tp.targetR0, tp.targetVar, err)
		} else {
			fmt.Fprintf(os.Stderr, "prcc %g-%g-%s: %d inputs over %d samples\n",
				tp.susc, tp.targetR0, tp.targetVar, len(vec), n)
		}
		if _, rerr := catalog.Record(results.Run{
			Phase: "prcc", Susc: tp.susc, TargetR0: tp.targetR0, TargetVar: tp.targetVar,
			Samples: n, Status: status, Error: errMsg, OutputFile: prccPath,
		}); rerr != nil {
			return rerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// prccTuple computes and persists the PRCC vector of one tuple, returning
// the vector and the number of samples it was computed over.
func prccTuple(paths results.Paths, tp tuple) ([]float64, int, error) {
	rows, err := results.ReadTable(paths.LHS(tp.susc, tp.targetR0, tp.targetVar))
	if err != nil {
		return nil, 0, err
	}
	outputs, err := results.ReadVector(paths.Simulations(tp.susc, tp.targetR0, tp.targetVar))
	if err != nil {
		return nil, 0, err
	}
	vec, err := sensitivity.PRCC(rows, outputs)
	if err != nil {
		return nil, 0, err
	}
	if err := results.WriteVector(paths.PRCC(tp.susc, tp.targetR0, tp.targetVar), vec); err != nil {
		return nil, 0, err
	}
	return vec, len(rows), nil
}
