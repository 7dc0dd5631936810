package surface

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/srwiley/oksvg"
)

// Background formats
const (
	FormatBuiltin = "builtin"
	FormatPNG     = "png"
	FormatJPEG    = "jpeg"
	FormatSVG     = "svg"
)

// Background is the chart image. It is drawn with CSS background-size
// contain semantics: scaled to fit the chart box, centered, never repeated.
type Background struct {
	Path   string
	Format string
	Data   []byte
	Size   geometry.Size
}

// BuiltinBackground is the vector hype-cycle curve drawn when no asset is
// configured.
func BuiltinBackground() *Background {
	return &Background{Format: FormatBuiltin, Size: geometry.Size{Width: 1000, Height: 550}}
}

// LoadBackground reads a PNG, JPEG or SVG asset and records its intrinsic
// size. An empty path returns the built-in curve.
func LoadBackground(path string) (*Background, error) {
	if path == "" {
		return BuiltinBackground(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read background %s: %w", path, err)
	}
	bg, err := DecodeBackground(data)
	if err != nil {
		return nil, fmt.Errorf("background %s: %w", path, err)
	}
	bg.Path = path
	return bg, nil
}

// DecodeBackground sniffs data as SVG or a raster image.
func DecodeBackground(data []byte) (*Background, error) {
	if isSVG(data) {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse svg: %w", err)
		}
		if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
			return nil, fmt.Errorf("svg has no usable viewBox")
		}
		return &Background{Format: FormatSVG, Data: data, Size: geometry.Size{Width: icon.ViewBox.W, Height: icon.ViewBox.H}}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image has zero size")
	}
	return &Background{Format: format, Data: data, Size: geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}}, nil
}

func isSVG(data []byte) bool {
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	return strings.Contains(head, "<svg")
}

// Fit returns the rectangle the background occupies inside box.
func (b *Background) Fit(box geometry.Rect) geometry.Rect {
	if b == nil || b.Size.Width <= 0 || b.Size.Height <= 0 || box.Empty() {
		return box
	}
	scale := min(box.Width()/b.Size.Width, box.Height()/b.Size.Height)
	w, h := b.Size.Width*scale, b.Size.Height*scale
	return geometry.FromXYWH(box.Left+(box.Width()-w)/2, box.Top+(box.Height()-h)/2, w, h)
}

// DataURI encodes a raster asset for embedding in SVG.
func (b *Background) DataURI() string {
	mime := "image/" + b.Format
	if b.Format == FormatSVG {
		mime = "image/svg+xml"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(b.Data))
}

func (b *Background) String() string {
	if b.Path != "" {
		return fmt.Sprintf("%s (%s %.0fx%.0f)", filepath.Base(b.Path), b.Format, b.Size.Width, b.Size.Height)
	}
	return fmt.Sprintf("%s %.0fx%.0f", b.Format, b.Size.Width, b.Size.Height)
}
