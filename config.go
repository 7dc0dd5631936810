// Package hypecycle mounts the hype-cycle widget: a tray of technology
// tokens dragged onto a chart, sized by the viewport and exportable as an
// image.
package hypecycle

import (
	"fmt"
	"math"
	"os"

	"github.com/flanksource/hypecycle/api/tailwind"
	"github.com/flanksource/hypecycle/capture"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
	"github.com/flanksource/hypecycle/surface"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the default configuration file name.
const ConfigFile = "hypecycle.yaml"

// CaptureConfig controls image export.
type CaptureConfig struct {
	PixelScale float64 `json:"pixel_scale" yaml:"pixel_scale"`
	Rasterizer string  `json:"rasterizer,omitempty" yaml:"rasterizer,omitempty"`
	OutputDir  string  `json:"output_dir" yaml:"output_dir"`
}

// Config is the static configuration of a widget.
type Config struct {
	Tokens         []string      `json:"tokens" yaml:"tokens"`
	TrayHeight     float64       `json:"tray_height" yaml:"tray_height"`
	ContainerWidth float64       `json:"container_width" yaml:"container_width"`
	ChartHeight    float64       `json:"chart_height" yaml:"chart_height"`
	Padding        string        `json:"padding" yaml:"padding"`
	Heading        string        `json:"heading,omitempty" yaml:"heading,omitempty"`
	TrayHint       string        `json:"tray_hint,omitempty" yaml:"tray_hint,omitempty"`
	ButtonLabel    string        `json:"button_label,omitempty" yaml:"button_label,omitempty"`
	Background     string        `json:"background,omitempty" yaml:"background,omitempty"`
	ViewportWidth  float64       `json:"viewport_width" yaml:"viewport_width"`
	FrameBatching  bool          `json:"frame_batching,omitempty" yaml:"frame_batching,omitempty"`
	Tiers          []layout.Tier `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	Capture        CaptureConfig `json:"capture" yaml:"capture"`
}

// DefaultConfig returns the stock widget: the default technologies, a
// 200px tray and a 1000px container in a wide viewport.
func DefaultConfig() Config {
	s := surface.DefaultConfig()
	return Config{
		Tokens:         append([]string(nil), placement.DefaultTechnologies...),
		TrayHeight:     s.TrayHeight,
		ContainerWidth: s.ContainerWidth,
		ChartHeight:    s.ChartHeight,
		Padding:        "p-4",
		Heading:        s.Heading,
		TrayHint:       s.TrayHint,
		ButtonLabel:    s.ButtonLabel,
		ViewportWidth:  layout.WideWidth,
		Capture: CaptureConfig{
			PixelScale: 1,
			OutputDir:  ".",
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration without touching the filesystem. Any
// viewport width is accepted; unusable widths resolve to the widest tier.
func (c Config) Validate() error {
	if len(c.Tokens) == 0 {
		return fmt.Errorf("no tokens configured")
	}
	if _, err := c.Surface(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("invalid tiers: %w", err)
	}
	if !(c.Capture.PixelScale > 0) || math.IsInf(c.Capture.PixelScale, 0) {
		return fmt.Errorf("invalid capture.pixel_scale: %v", c.Capture.PixelScale)
	}
	if c.Capture.Rasterizer != "" {
		if err := capture.DefaultChain().SetPreferred(c.Capture.Rasterizer); err != nil {
			return fmt.Errorf("invalid capture.rasterizer: %w", err)
		}
	}
	return nil
}

// Surface converts the geometry settings into a surface configuration.
func (c Config) Surface() (surface.Config, error) {
	padding, err := parsePadding(c.Padding)
	if err != nil {
		return surface.Config{}, err
	}
	s := surface.Config{
		ContainerWidth: c.ContainerWidth,
		Padding:        padding,
		TrayHeight:     c.TrayHeight,
		ChartHeight:    c.ChartHeight,
		Heading:        c.Heading,
		TrayHint:       c.TrayHint,
		ButtonLabel:    c.ButtonLabel,
	}
	return s, s.Validate()
}

// Policy returns the configured tier table, or the default one.
func (c Config) Policy() (*layout.Policy, error) {
	if len(c.Tiers) == 0 {
		return layout.DefaultPolicy(), nil
	}
	return layout.NewPolicy(c.Tiers...)
}

func parsePadding(class string) (float64, error) {
	if class == "" {
		return 0, nil
	}
	sides := tailwind.ParseSides(class)
	if sides.Top == nil || sides.Right == nil || sides.Bottom == nil || sides.Left == nil {
		return 0, fmt.Errorf("invalid padding %q: expected a uniform p-* class", class)
	}
	return *sides.Left, nil
}
