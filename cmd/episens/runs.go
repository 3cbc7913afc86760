package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/episens-xyz/go-episens/results"
)

func runs(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	outDir := fs.String("out", "output", "Output directory holding the run catalog")
	limit := fs.Int("limit", 20, "Maximum number of runs to show")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: episens runs [options]

List the most recent pipeline runs recorded in the catalog.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := results.Paths{Base: *outDir}
	catalog, err := results.OpenCatalog(paths.Catalog())
	if err != nil {
		return err
	}
	defer catalog.Close()

	recent, err := catalog.Recent(*limit)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-20s %-8s %-22s %-8s %-7s %s\n", "TIME", "PHASE", "TUPLE", "SAMPLES", "STATUS", "OUTPUT")
	for _, r := range recent {
		tag := fmt.Sprintf("%g-%g-%s", r.Susc, r.TargetR0, r.TargetVar)
		fmt.Printf("%-20s %-8s %-22s %-8d %-7s %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Phase, tag, r.Samples, r.Status, r.OutputFile)
		if r.Error != "" {
			fmt.Printf("    error: %s\n", r.Error)
		}
	}
	return nil
}
