package plotter

import (
	"github.com/episens-xyz/go-episens/solver"
)

// Curve selects a named, aggregated group of flat-state offsets to plot.
type Curve struct {
	Label   string
	Offsets []int
}

// Trajectory plots aggregated compartment totals from a solved trajectory,
// one line per curve.
func Trajectory(tr *solver.Trajectory, curves []Curve, title string) string {
	p := NewLinePlot(720, 440)
	p.Title = title
	for _, c := range curves {
		p.AddSeries(tr.T, tr.Aggregate(c.Offsets), c.Label, "")
	}
	return p.Render()
}
