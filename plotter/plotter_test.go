package plotter

import (
	"strings"
	"testing"

	"github.com/episens-xyz/go-episens/solver"
)

func TestLinePlotRender(t *testing.T) {
	p := NewLinePlot(600, 400)
	p.Title = "Infectious over time"
	p.AddSeries([]float64{0, 1, 2}, []float64{0, 50, 20}, "i", "")
	p.AddSeries([]float64{0, 1, 2}, []float64{100, 50, 80}, "s", "#000000")

	svg := p.Render()
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("Expected a complete SVG document")
	}
	if !strings.Contains(svg, "Infectious over time") {
		t.Error("Expected the title in the output")
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("Expected 2 series paths, got %d", got)
	}
	if !strings.Contains(svg, "#000000") {
		t.Error("Expected the explicit series color")
	}
}

func TestLinePlotEmptySeries(t *testing.T) {
	svg := NewLinePlot(300, 200).Render()
	if !strings.HasPrefix(svg, "<svg") {
		t.Error("Expected valid SVG even without series")
	}
}

func TestEscape(t *testing.T) {
	got := escape(`a<b & "c"`)
	if strings.ContainsAny(got, `<"`) || strings.Contains(got, " & ") {
		t.Errorf("Escape left unsafe characters: %q", got)
	}
	if got != "a&lt;b &amp; &quot;c&quot;" {
		t.Errorf("Escape = %q", got)
	}
}

func TestTornado(t *testing.T) {
	names := []string{"alpha", "gamma", "beta_0"}
	prcc := []float64{-0.3, 0.05, 0.92}
	svg := Tornado(names, prcc, "PRCC, r0")

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("Expected a complete SVG document")
	}
	for _, name := range names {
		if !strings.Contains(svg, name) {
			t.Errorf("Missing bar label %q", name)
		}
	}
	if got := strings.Count(svg, "<rect"); got != 4 { // background + 3 bars
		t.Errorf("Expected 4 rects, got %d", got)
	}
	// Bars sorted by absolute value: beta_0 first.
	if strings.Index(svg, "beta_0") > strings.Index(svg, "alpha") {
		t.Error("Expected beta_0 bar before alpha")
	}
	if !strings.Contains(svg, "0.920") {
		t.Error("Expected the value annotation")
	}
}

func TestTrajectoryPlot(t *testing.T) {
	tr := &solver.Trajectory{
		T: []float64{0, 1, 2, 3},
		States: [][]float64{
			{10, 0},
			{8, 2},
			{5, 5},
			{2, 8},
		},
	}
	svg := Trajectory(tr, []Curve{
		{Label: "s", Offsets: []int{0}},
		{Label: "r", Offsets: []int{1}},
	}, "toy run")

	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("Expected 2 curves, got %d", got)
	}
	if !strings.Contains(svg, "toy run") {
		t.Error("Expected the title")
	}
}
