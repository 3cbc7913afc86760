package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "sample":
		if err := sample(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "prcc":
		if err := prcc(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "plot":
		if err := plot(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "runs":
		if err := runs(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("episens version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`episens - global sensitivity analysis of an age-structured epidemic model

Usage:
  episens <command> [options]

Commands:
  sample     Draw Latin Hypercube samples and evaluate the model over them
  prcc       Compute PRCC vectors from persisted sample/output tables
  plot       Render tornado charts from persisted PRCC vectors
  runs       List recorded pipeline runs from the catalog
  help       Show this help message
  version    Show version information

The pipeline runs over the Cartesian product of susceptibility multipliers,
target reproduction numbers and target output variables. Each phase reads
the files the previous phase wrote, so phases can be re-run independently.

Examples:
  # Sample 10000 parameter sets for two targets
  episens sample --scenario scenario.yaml --out output --n 10000 \
      --r0 1.8,2.4 --targets r0,ic_max

  # Compute PRCC over everything sampled so far
  episens prcc --scenario scenario.yaml --out output --r0 1.8,2.4 --targets r0,ic_max

  # Render the tornado charts
  episens plot --scenario scenario.yaml --out output --r0 1.8,2.4 --targets r0,ic_max

For command-specific help, run:
  episens <command> --help`)
}
