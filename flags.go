package hypecycle

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Flags are the command line settings shared by every command. Flags set
// on the command line override the configuration file.
type Flags struct {
	logger.Flags  `yaml:",inline"`
	ConfigFile    string  `yaml:"config,omitempty"`
	ViewportWidth float64 `yaml:"viewport_width,omitempty"`
	TrayHeight    float64 `yaml:"tray_height,omitempty"`
	Background    string  `yaml:"background,omitempty"`
	Rasterizer    string  `yaml:"rasterizer,omitempty"`
	PixelScale    float64 `yaml:"pixel_scale,omitempty"`
	OutputDir     string  `yaml:"output_dir,omitempty"`
	FrameBatching bool    `yaml:"frame_batching,omitempty"`

	set *pflag.FlagSet
}

// DefaultFlags returns the flag defaults.
func DefaultFlags() Flags {
	return Flags{
		Flags: logger.Flags{
			Level:        "info",
			LevelCount:   0,
			JsonLogs:     false,
			ReportCaller: false,
			LogToStderr:  true,
		},
	}
}

// BindFlags adds the logging and widget flags to a pflag set (for Cobra)
func BindFlags(flags *pflag.FlagSet, f *Flags) {
	f.set = flags
	flags.CountVarP(&f.Flags.LevelCount, "loglevel", "v", "Increase logging level")
	flags.StringVar(&f.Flags.Level, "log-level", f.Flags.Level, "Set the default log level")
	flags.BoolVar(&f.Flags.JsonLogs, "json-logs", f.Flags.JsonLogs, "Print logs in json format to stderr")
	flags.BoolVar(&f.Flags.ReportCaller, "report-caller", f.Flags.ReportCaller, "Report log caller info")
	flags.BoolVar(&f.Flags.LogToStderr, "log-to-stderr", f.Flags.LogToStderr, "Log to stderr instead of stdout")

	flags.StringVarP(&f.ConfigFile, "config", "c", f.ConfigFile,
		fmt.Sprintf("Configuration file (default ./%s when present)", ConfigFile))
	flags.Float64Var(&f.ViewportWidth, "viewport-width", f.ViewportWidth, "Viewport width in px used to pick the layout tier")
	flags.Float64Var(&f.TrayHeight, "tray-height", f.TrayHeight, "Height of the staging tray in px")
	flags.StringVar(&f.Background, "background", f.Background, "Chart background image (png, jpeg or svg)")
	flags.StringVar(&f.Rasterizer, "rasterizer", f.Rasterizer, "Preferred rasterizer: native, rsvg-convert, playwright")
	flags.Float64Var(&f.PixelScale, "pixel-scale", f.PixelScale, "Device pixel ratio of exported images")
	flags.StringVarP(&f.OutputDir, "output-dir", "o", f.OutputDir, "Directory exports are saved to")
	flags.BoolVar(&f.FrameBatching, "frame-batching", f.FrameBatching, "Coalesce pointer moves to one update per frame")
}

func (f Flags) String() string {
	data, _ := yaml.Marshal(f)
	return string(data)
}

// UseFlags configures logging.
func (f Flags) UseFlags() {
	logger.Configure(f.Flags)
	logger.Debugf("Using flags:\n%s", f)
}

// Config loads the configuration file, if any, and applies the flag
// overrides.
func (f Flags) Config() (Config, error) {
	cfg := DefaultConfig()
	path := f.ConfigFile
	if path == "" {
		if _, err := os.Stat(ConfigFile); err == nil {
			path = ConfigFile
		}
	}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		logger.Debugf("Loaded configuration from %s", path)
		cfg = loaded
	}

	if f.changed("viewport-width", f.ViewportWidth != 0) {
		cfg.ViewportWidth = f.ViewportWidth
	}
	if f.changed("tray-height", f.TrayHeight != 0) {
		cfg.TrayHeight = f.TrayHeight
	}
	if f.changed("background", f.Background != "") {
		cfg.Background = f.Background
	}
	if f.changed("rasterizer", f.Rasterizer != "") {
		cfg.Capture.Rasterizer = f.Rasterizer
	}
	if f.changed("pixel-scale", f.PixelScale != 0) {
		cfg.Capture.PixelScale = f.PixelScale
	}
	if f.changed("output-dir", f.OutputDir != "") {
		cfg.Capture.OutputDir = f.OutputDir
	}
	if f.changed("frame-batching", f.FrameBatching) {
		cfg.FrameBatching = f.FrameBatching
	}
	return cfg, cfg.Validate()
}

// changed reports whether a flag was given on the command line. Without a
// bound flag set, nonZero decides.
func (f Flags) changed(name string, nonZero bool) bool {
	if f.set == nil {
		return nonZero
	}
	return f.set.Changed(name)
}
