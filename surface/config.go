// Package surface models the rendered widget: the container, the staging
// tray, the chart and the tokens laid out on top of them. It answers live
// bounding-box queries and renders the composition as SVG.
package surface

import (
	"fmt"
	"math"
)

// Tailwind classes of the widget elements.
const (
	ContainerClass    = "relative w-[1000px] bg-gray-100 p-4 mx-auto"
	HeadingClass      = "text-2xl font-bold mb-4"
	ButtonClass       = "absolute top-4 right-4 bg-blue-500 hover:bg-blue-700 text-white font-bold py-2 px-4 rounded"
	TrayClass         = "relative w-full h-[200px] mb-4 border border-dashed border-gray-300 bg-gray-50"
	HintClass         = "text-sm text-gray-500 p-2"
	TokenClass        = "absolute cursor-move p-2 rounded shadow text-sm"
	TokenTrayClass    = "bg-white"
	TokenOnChartClass = "bg-white bg-opacity-75"
	ChartClass        = "w-full h-[550px] bg-cover bg-center"
)

// Config is the static geometry of the widget at the widest tier, in CSS px.
// Narrower tiers scale it down.
type Config struct {
	ContainerWidth float64 `json:"container_width" yaml:"container_width"`
	Padding        float64 `json:"padding" yaml:"padding"`
	TrayHeight     float64 `json:"tray_height" yaml:"tray_height"`
	ChartHeight    float64 `json:"chart_height" yaml:"chart_height"`
	Heading        string  `json:"heading" yaml:"heading"`
	TrayHint       string  `json:"tray_hint" yaml:"tray_hint"`
	ButtonLabel    string  `json:"button_label" yaml:"button_label"`
}

// DefaultConfig returns the geometry of the stock widget.
func DefaultConfig() Config {
	return Config{
		ContainerWidth: 1000,
		Padding:        16,
		TrayHeight:     200,
		ChartHeight:    550,
		Heading:        "Interactive Gartner Hype Cycle",
		TrayHint:       "Drag technologies onto the graph below",
		ButtonLabel:    "Take Screenshot",
	}
}

// Validate checks that every dimension is positive and finite.
func (c Config) Validate() error {
	for _, d := range []struct {
		name  string
		value float64
		zero  bool
	}{
		{"container_width", c.ContainerWidth, false},
		{"padding", c.Padding, true},
		{"tray_height", c.TrayHeight, false},
		{"chart_height", c.ChartHeight, false},
	} {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) || d.value < 0 || (!d.zero && d.value == 0) {
			return fmt.Errorf("invalid %s: %v", d.name, d.value)
		}
	}
	if 2*c.Padding >= c.ContainerWidth {
		return fmt.Errorf("padding %v leaves no room in a %vpx container", c.Padding, c.ContainerWidth)
	}
	return nil
}
