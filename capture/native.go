package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/flanksource/hypecycle/api/tailwind"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/surface"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// NativeRasterizer paints the scene in process: vector shapes through
// oksvg/rasterx, text with the Go fonts, and raster backgrounds scaled with
// x/image/draw.
type NativeRasterizer struct{}

// NewNativeRasterizer creates a new native rasterizer
func NewNativeRasterizer() *NativeRasterizer {
	return &NativeRasterizer{}
}

// Name returns the name of this rasterizer
func (n *NativeRasterizer) Name() string {
	return NameNative
}

// IsAvailable always returns true; it needs no external tools.
func (n *NativeRasterizer) IsAvailable() bool {
	return true
}

// canvas maps client coordinates onto the output image.
type canvas struct {
	img    *image.RGBA
	origin geometry.Point
	scale  float64
}

func (c *canvas) x(v float64) float64 { return (v - c.origin.X) * c.scale }
func (c *canvas) y(v float64) float64 { return (v - c.origin.Y) * c.scale }

func (c *canvas) rect(r geometry.Rect) geometry.Rect {
	return geometry.Rect{Left: c.x(r.Left), Top: c.y(r.Top), Right: c.x(r.Right), Bottom: c.y(r.Bottom)}
}

// Rasterize renders the request region as PNG
func (n *NativeRasterizer) Rasterize(ctx context.Context, req Request) ([]byte, error) {
	w, h := req.PixelSize()
	if w <= 0 || h <= 0 {
		return nil, NewCaptureError(n.Name(), "allocate", ErrZeroRegion)
	}
	if err := req.checkSize(); err != nil {
		return nil, NewCaptureError(n.Name(), "allocate", err)
	}
	c := &canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		origin: req.Region.Origin(),
		scale:  req.PixelScale,
	}
	draw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, draw.Src)

	steps := []struct {
		name string
		fn   func(surface.Scene) error
	}{
		{"draw shapes", func(s surface.Scene) error { return c.shapes(s, req) }},
		{"draw background", c.background},
		{"draw text", c.texts},
		{"draw tokens", c.tokens},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, NewCaptureError(n.Name(), step.name, err)
		}
		if err := step.fn(req.Scene); err != nil {
			return nil, NewCaptureError(n.Name(), step.name, err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, NewCaptureError(n.Name(), "encode PNG", err)
	}
	return buf.Bytes(), nil
}

func (c *canvas) drawIcon(data []byte, target geometry.Rect) error {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(target.Left, target.Top, target.Width(), target.Height())

	b := c.img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), c.img, b)
	raster := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	icon.Draw(raster, 1.0)
	return nil
}

func (c *canvas) shapes(scene surface.Scene, req Request) error {
	var buf bytes.Buffer
	if err := surface.RenderSVG(&buf, scene, surface.WithRegion(req.Region), surface.ShapesOnly()); err != nil {
		return err
	}
	return c.drawIcon(buf.Bytes(), geometry.FromXYWH(0, 0, req.Region.Width()*c.scale, req.Region.Height()*c.scale))
}

func (c *canvas) background(scene surface.Scene) error {
	bg := scene.Background
	target := c.rect(scene.BackgroundRect)
	switch bg.Format {
	case surface.FormatBuiltin:
		return nil
	case surface.FormatSVG:
		return c.drawIcon(bg.Data, target)
	}

	src, _, err := image.Decode(bytes.NewReader(bg.Data))
	if err != nil {
		return fmt.Errorf("failed to decode %s background: %w", bg.Format, err)
	}
	dst := image.Rect(
		int(math.Round(target.Left)), int(math.Round(target.Top)),
		int(math.Round(target.Right)), int(math.Round(target.Bottom)),
	)
	draw.CatmullRom.Scale(c.img, dst, src, src.Bounds(), draw.Over, nil)
	return nil
}

func (c *canvas) texts(scene surface.Scene) error {
	for _, t := range scene.Texts {
		if err := c.text(t); err != nil {
			return err
		}
	}
	return nil
}

func (c *canvas) text(t surface.Text) error {
	if t.Content == "" {
		return nil
	}
	face, err := surface.NewFace(t.Weight, t.Size*c.scale)
	if err != nil {
		return err
	}
	defer face.Close()

	col, err := parseColor(t.Color, 1)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(c.x(t.X) * 64), Y: fixed.Int26_6(c.y(t.Baseline) * 64)},
	}
	d.DrawString(t.Content)
	return nil
}

func (c *canvas) tokens(scene surface.Scene) error {
	b := c.img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), c.img, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	radius := 4 * c.scale

	fill := func(r geometry.Rect, col color.Color) {
		filler.Clear()
		rasterx.AddRoundRect(r.Left, r.Top, r.Right, r.Bottom, radius, radius, 0, rasterx.RoundGap, filler)
		filler.SetColor(col)
		filler.Draw()
	}

	for _, t := range scene.Tokens {
		r := c.rect(t.Rect)
		if !r.Intersects(geometry.FromXYWH(0, 0, float64(b.Dx()), float64(b.Dy()))) {
			continue
		}
		if t.Style.Shadow {
			fill(r.Translate(geometry.Point{Y: c.scale}), color.NRGBA{A: 26})
		}
		col, err := parseColor(t.Style.Background, t.Style.BackgroundOpacity)
		if err != nil {
			return err
		}
		fill(r, col)
		if err := c.text(t.Label); err != nil {
			return err
		}
	}
	return nil
}

func parseColor(hex string, opacity float64) (color.Color, error) {
	if hex == "" {
		hex = tailwind.SpecialColors["black"]
	}
	rgba, err := tailwind.HexToRGBA(hex)
	if err != nil {
		return nil, err
	}
	if hex != "transparent" {
		rgba.A = uint8(math.Round(255 * math.Max(0, math.Min(1, opacity))))
	}
	return color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: rgba.A}, nil
}
