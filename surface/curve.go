package surface

import (
	"fmt"
	"math"
	"strings"

	"github.com/flanksource/hypecycle/geometry"
)

// Phases of the hype cycle, left to right, with the horizontal position of
// each label as a fraction of the chart width.
var Phases = []struct {
	Name string
	At   float64
}{
	{"Innovation Trigger", 0.08},
	{"Peak of Inflated Expectations", 0.24},
	{"Trough of Disillusionment", 0.46},
	{"Slope of Enlightenment", 0.68},
	{"Plateau of Productivity", 0.9},
}

// Expectation is the normalized hype-cycle curve: a sharp peak followed by a
// trough and a slow climb to the plateau. x and the result are in [0, 1].
func Expectation(x float64) float64 {
	peak := 0.85 * math.Exp(-math.Pow((x-0.22)/0.075, 2))
	plateau := 0.55 / (1 + math.Exp(-(x-0.62)/0.07))
	return 0.05 + peak + plateau*0.85
}

// curvePlot is the drawing area of the curve inside the chart box, leaving
// room for the phase labels underneath.
func curvePlot(box geometry.Rect) geometry.Rect {
	mx, top, bottom := box.Width()*0.05, box.Height()*0.05, box.Height()*0.12
	return geometry.Rect{Left: box.Left + mx, Top: box.Top + top, Right: box.Right - mx, Bottom: box.Bottom - bottom}
}

// CurvePoints samples the curve into box coordinates.
func CurvePoints(box geometry.Rect, samples int) []geometry.Point {
	plot := curvePlot(box)
	pts := make([]geometry.Point, 0, samples+1)
	for i := 0; i <= samples; i++ {
		x := float64(i) / float64(samples)
		pts = append(pts, geometry.Point{
			X: plot.Left + x*plot.Width(),
			Y: plot.Bottom - Expectation(x)*plot.Height(),
		})
	}
	return pts
}

// CurvePath is CurvePoints as an SVG path.
func CurvePath(box geometry.Rect, samples int) string {
	var sb strings.Builder
	for i, p := range CurvePoints(box, samples) {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%.2f %.2f ", cmd, p.X, p.Y)
	}
	return strings.TrimSpace(sb.String())
}

// AxesPath draws the expectations and time axes of the plot.
func AxesPath(box geometry.Rect) string {
	plot := curvePlot(box)
	return fmt.Sprintf("M%.2f %.2f L%.2f %.2f L%.2f %.2f", plot.Left, plot.Top, plot.Left, plot.Bottom, plot.Right, plot.Bottom)
}
