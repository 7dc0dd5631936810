package surface

import (
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/flanksource/hypecycle/api/tailwind"
	"github.com/flanksource/hypecycle/geometry"
)

const (
	fontFamily   = "Go,Helvetica,Arial,sans-serif"
	cornerRadius = 4
	curveSamples = 120
)

type renderOptions struct {
	region     *geometry.Rect
	pixelScale float64
	text       bool
	tokens     bool
	asset      bool
}

// RenderOption customises RenderSVG.
type RenderOption func(*renderOptions)

// WithRegion limits the output to region (client coordinates) through the
// SVG viewBox.
func WithRegion(region geometry.Rect) RenderOption {
	return func(o *renderOptions) { o.region = &region }
}

// WithPixelScale multiplies the output width and height.
func WithPixelScale(scale float64) RenderOption {
	return func(o *renderOptions) { o.pixelScale = scale }
}

// ShapesOnly omits text, tokens and embedded raster assets, leaving only the
// vector shapes of the page.
func ShapesOnly() RenderOption {
	return func(o *renderOptions) {
		o.text, o.tokens, o.asset = false, false, false
	}
}

// errWriter keeps the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// RenderSVG writes scene as SVG. Coordinates are rounded to whole CSS px.
func RenderSVG(w io.Writer, scene Scene, opts ...RenderOption) error {
	o := renderOptions{pixelScale: 1, text: true, tokens: true, asset: true}
	for _, opt := range opts {
		opt(&o)
	}
	region := scene.Bounds()
	if o.region != nil {
		region = *o.region
	}
	if region.Empty() {
		return fmt.Errorf("cannot render empty region %s", region)
	}
	if o.pixelScale <= 0 || math.IsNaN(o.pixelScale) || math.IsInf(o.pixelScale, 0) {
		return fmt.Errorf("invalid pixel scale %v", o.pixelScale)
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startraw(
		fmt.Sprintf(`width="%g"`, region.Width()*o.pixelScale),
		fmt.Sprintf(`height="%g"`, region.Height()*o.pixelScale),
		fmt.Sprintf(`viewBox="%g %g %g %g"`, region.Left, region.Top, region.Width(), region.Height()),
	)

	drawBox(canvas, "container", scene.Container, 0)
	drawBox(canvas, "tray", scene.Tray, 0)
	drawBox(canvas, "chart", scene.Chart, 0)
	drawBackground(canvas, scene, o.asset)
	drawBox(canvas, "button", scene.Button, cornerRadius*scene.Tier.Scale)

	if o.text {
		for _, t := range scene.Texts {
			drawText(canvas, t)
		}
	}
	if o.tokens {
		for _, t := range scene.Tokens {
			canvas.Gid(string(TokenHandle(t.ID)))
			drawToken(canvas, t)
			if o.text {
				drawText(canvas, t.Label)
			}
			canvas.Gend()
		}
	}
	canvas.End()
	return ew.err
}

func px(v float64) int {
	return int(math.Round(v))
}

func boxStyle(style tailwind.Style) string {
	parts := []string{"fill:none"}
	if style.Background != "" {
		parts = []string{"fill:" + style.Background}
		if style.BackgroundOpacity < 1 {
			parts = append(parts, fmt.Sprintf("fill-opacity:%g", style.BackgroundOpacity))
		}
	}
	if style.Border {
		stroke := style.BorderColor
		if stroke == "" {
			stroke = tailwind.Colors["gray"]["200"]
		}
		parts = append(parts, "stroke:"+stroke, "stroke-width:1")
		if style.BorderDashed {
			parts = append(parts, "stroke-dasharray:4,2")
		}
	}
	return strings.Join(parts, ";")
}

func drawBox(canvas *svg.SVG, id string, box Box, radius float64) {
	r := box.Rect
	attrs := []string{fmt.Sprintf(`id="%s"`, id), boxStyle(box.Style)}
	if box.Style.Rounded && radius > 0 {
		canvas.Roundrect(px(r.Left), px(r.Top), px(r.Width()), px(r.Height()), px(radius), px(radius), attrs...)
		return
	}
	canvas.Rect(px(r.Left), px(r.Top), px(r.Width()), px(r.Height()), attrs...)
}

func drawToken(canvas *svg.SVG, t TokenBox) {
	r := t.Rect
	radius := px(cornerRadius)
	if t.Style.Shadow {
		canvas.Roundrect(px(r.Left), px(r.Top+1), px(r.Width()), px(r.Height()), radius, radius, "fill:#000000;fill-opacity:0.1")
	}
	canvas.Roundrect(px(r.Left), px(r.Top), px(r.Width()), px(r.Height()), radius, radius, boxStyle(t.Style))
}

func drawBackground(canvas *svg.SVG, scene Scene, asset bool) {
	bg := scene.Background
	r := scene.BackgroundRect
	switch bg.Format {
	case FormatBuiltin:
		canvas.Path(AxesPath(r), `id="axes"`, "fill:none;stroke:"+tailwind.Colors["gray"]["400"]+";stroke-width:1.5")
		canvas.Path(CurvePath(r, curveSamples), `id="curve"`, "fill:none;stroke:"+tailwind.Colors["blue"]["600"]+";stroke-width:3")
	default:
		if asset {
			canvas.Image(px(r.Left), px(r.Top), px(r.Width()), px(r.Height()), bg.DataURI(), `id="background"`, `preserveAspectRatio="none"`)
		}
	}
}

func drawText(canvas *svg.SVG, t Text) {
	if t.Content == "" {
		return
	}
	style := fmt.Sprintf("font-family:%s;font-size:%gpx;fill:%s", fontFamily, t.Size, textColor(t.Color))
	if t.Weight == Bold {
		style += ";font-weight:bold"
	}
	canvas.Text(px(t.X), px(t.Baseline), t.Content, style)
}

func textColor(c string) string {
	if c == "" {
		return tailwind.SpecialColors["black"]
	}
	return c
}
