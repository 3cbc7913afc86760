package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/episens-xyz/go-episens/plotter"
	"github.com/episens-xyz/go-episens/results"
	"github.com/episens-xyz/go-episens/scenario"
)

func plot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	scenarioFile := fs.String("scenario", "", "Scenario YAML file (required, for column names)")
	outDir := fs.String("out", "output", "Output directory holding the PRCC vectors")
	suscList := fs.String("susc", "1.0", "Susceptibility multipliers (comma-separated)")
	r0List := fs.String("r0", "1.8", "Target reproduction numbers (comma-separated)")
	targetList := fs.String("targets", "r0", "Target variables (comma-separated)")
	force := fs.Bool("force", false, "Re-render tuples whose SVG files already exist")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: episens plot [options]

Render a tornado chart for every tuple's persisted PRCC vector.

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

	names := sc.ColumnNames()
	for _, tp := range tuples(suscs, targetR0s, targets) {
		svgPath := paths.Plot(tp.susc, tp.targetR0, tp.targetVar)
		if !*force && exists(svgPath) {
			fmt.Fprintf(os.Stderr, "skip %g-%g-%s: plot exists\n", tp.susc, tp.targetR0, tp.targetVar)
			continue
		}

		err := plotTuple(paths, names, tp)
		status, errMsg := "ok", ""
		if err != nil {
			status, errMsg = "failed", err.Error()
			fmt.Fprintf(os.Stderr, "tuple %g-%g-%s failed: %v\n", tp.susc, tp.targetR0, tp.targetVar, err)
		} else {
			fmt.Fprintf(os.Stderr, "plotted %g-%g-%s -> %s\n", tp.susc, tp.targetR0, tp.targetVar, svgPath)
		}
		if _, rerr := catalog.Record(results.Run{
			Phase: "plot", Susc: tp.susc, TargetR0: tp.targetR0, TargetVar: tp.targetVar,
			Status: status, Error: errMsg, OutputFile: svgPath,
		}); rerr != nil {
			return rerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func plotTuple(paths results.Paths, names []string, tp tuple) error {
	vec, err := results.ReadVector(paths.PRCC(tp.susc, tp.targetR0, tp.targetVar))
	if err != nil {
		return err
	}
	if len(vec) != len(names) {
		return fmt.Errorf("PRCC vector has %d entries for %d sampled columns", len(vec), len(names))
	}
	title := fmt.Sprintf("PRCC, %s, R0=%g, susc=%g", tp.targetVar, tp.targetR0, tp.susc)
	svg := plotter.Tornado(names, vec, title)
	if err := os.WriteFile(paths.Plot(tp.susc, tp.targetR0, tp.targetVar), []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
