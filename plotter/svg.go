// Package plotter renders sensitivity results as self-contained SVG files:
// tornado charts for PRCC vectors and line charts for epidemic trajectories.
package plotter

import (
	"fmt"
	"math"
	"strings"
)

// Series is one line of an epidemic-curve plot.
type Series struct {
	X     []float64
	Y     []float64
	Label string
	Color string
}

// palette is the default series color cycle.
var palette = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#a65628", "#f781bf"}

// LinePlot is a minimal SVG line chart for compartment trajectories.
type LinePlot struct {
	Width  float64
	Height float64
	Title  string
	XLabel string
	YLabel string
	Series []Series

	margin struct{ top, right, bottom, left float64 }
}

// NewLinePlot creates a line chart of the given pixel dimensions.
func NewLinePlot(width, height float64) *LinePlot {
	p := &LinePlot{Width: width, Height: height, XLabel: "Time (days)", YLabel: "Individuals"}
	p.margin.top, p.margin.right, p.margin.bottom, p.margin.left = 40, 30, 50, 60
	return p
}

// AddSeries appends a data series; an empty color picks from the palette.
func (p *LinePlot) AddSeries(x, y []float64, label, color string) *LinePlot {
	if color == "" {
		color = palette[len(p.Series)%len(palette)]
	}
	p.Series = append(p.Series, Series{X: x, Y: y, Label: label, Color: color})
	return p
}

// Render produces the SVG document.
func (p *LinePlot) Render() string {
	pw := p.Width - p.margin.left - p.margin.right
	ph := p.Height - p.margin.top - p.margin.bottom

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, s := range p.Series {
		for i := range s.X {
			xmin = math.Min(xmin, s.X[i])
			xmax = math.Max(xmax, s.X[i])
			ymin = math.Min(ymin, s.Y[i])
			ymax = math.Max(ymax, s.Y[i])
		}
	}
	if math.IsInf(xmin, 1) {
		xmin, xmax = 0, 1
	}
	if math.IsInf(ymin, 1) {
		ymin, ymax = 0, 1
	}
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	ymin -= (ymax - ymin) * 0.05
	ymax += (ymax - ymin) * 0.05

	sx := func(x float64) float64 { return p.margin.left + (x-xmin)/(xmax-xmin)*pw }
	sy := func(y float64) float64 { return p.margin.top + ph - (y-ymin)/(ymax-ymin)*ph }

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(p.Width), int(p.Height)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#ffffff"/>`, int(p.Width), int(p.Height)))

	if p.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="25" text-anchor="middle" font-family="Arial, sans-serif" font-size="15" font-weight="bold">%s</text>`,
			p.Width/2, escape(p.Title)))
	}

	// Axes
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="1.5"/>`,
		p.margin.left, p.margin.top, p.margin.left, p.margin.top+ph))
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="1.5"/>`,
		p.margin.left, p.margin.top+ph, p.margin.left+pw, p.margin.top+ph))
	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12">%s</text>`,
		p.margin.left+pw/2, p.Height-10, escape(p.XLabel)))
	sb.WriteString(fmt.Sprintf(`<text x="15" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" transform="rotate(-90, 15, %f)">%s</text>`,
		p.margin.top+ph/2, p.margin.top+ph/2, escape(p.YLabel)))

	// Ticks
	for i := 0; i <= 5; i++ {
		x := xmin + (xmax-xmin)*float64(i)/5
		px := sx(x)
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10">%.0f</text>`,
			px, p.margin.top+ph+18, x))
		y := ymin + (ymax-ymin)*float64(i)/5
		py := sy(y)
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="end" font-family="Arial, sans-serif" font-size="10">%.0f</text>`,
			p.margin.left-8, py+4, y))
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			p.margin.left, py, p.margin.left+pw, py))
	}

	for _, s := range p.Series {
		if len(s.X) == 0 {
			continue
		}
		path := strings.Builder{}
		for i := range s.X {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			path.WriteString(fmt.Sprintf("%s%f,%f", cmd, sx(s.X[i]), sy(s.Y[i])))
		}
		sb.WriteString(fmt.Sprintf(`<path d="%s" stroke="%s" stroke-width="2" fill="none"/>`,
			path.String(), s.Color))
	}

	// Legend
	legendY := p.margin.top + 10
	for _, s := range p.Series {
		if s.Label == "" {
			continue
		}
		x1 := p.Width - p.margin.right - 70
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="2"/>`,
			x1, legendY, x1+20, legendY, s.Color))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="Arial, sans-serif" font-size="10">%s</text>`,
			x1+25, legendY+4, escape(s.Label)))
		legendY += 16
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// escape makes a string safe for embedding in SVG text nodes.
func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
