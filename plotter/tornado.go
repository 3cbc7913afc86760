package plotter

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Tornado renders a horizontal-bar PRCC chart. Bars are sorted by
// absolute value, descending, and span the fixed interval [-1, 1].
func Tornado(names []string, prcc []float64, title string) string {
	type bar struct {
		name  string
		value float64
	}
	bars := make([]bar, len(names))
	for i := range names {
		bars[i] = bar{names[i], prcc[i]}
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return math.Abs(bars[i].value) > math.Abs(bars[j].value)
	})

	const (
		width      = 640.0
		barHeight  = 22.0
		barGap     = 8.0
		marginTop  = 50.0
		marginSide = 130.0
	)
	height := marginTop + float64(len(bars))*(barHeight+barGap) + 40
	plotW := width - 2*marginSide
	zeroX := marginSide + plotW/2

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(width), int(height)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#ffffff"/>`, int(width), int(height)))
	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="28" text-anchor="middle" font-family="Arial, sans-serif" font-size="15" font-weight="bold">%s</text>`,
			width/2, escape(title)))
	}

	// Zero axis and extremes
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="1"/>`,
		zeroX, marginTop-10, zeroX, height-30))
	for _, tick := range []float64{-1, -0.5, 0, 0.5, 1} {
		tx := zeroX + tick*plotW/2
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10">%g</text>`,
			tx, height-15, tick))
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			tx, marginTop-10, tx, height-30))
	}

	y := marginTop
	for _, b := range bars {
		v := math.Max(-1, math.Min(1, b.value))
		w := math.Abs(v) * plotW / 2
		x := zeroX
		color := "#377eb8"
		if v < 0 {
			x = zeroX - w
			color = "#e41a1c"
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%f" y="%f" width="%f" height="%f" fill="%s" opacity="0.85"/>`,
			x, y, w, barHeight, color))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="end" font-family="Arial, sans-serif" font-size="11">%s</text>`,
			marginSide-8, y+barHeight-6, escape(b.name)))
		vx := zeroX + v*plotW/2 + 6
		anchor := "start"
		if v < 0 {
			vx = zeroX + v*plotW/2 - 6
			anchor = "end"
		}
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="%s" font-family="Arial, sans-serif" font-size="10">%.3f</text>`,
			vx, y+barHeight-6, anchor, b.value))
		y += barHeight + barGap
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
