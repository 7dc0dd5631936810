package surface

import (
	"math"

	"github.com/flanksource/hypecycle/api/tailwind"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
)

// Box is a styled rectangle.
type Box struct {
	Rect  geometry.Rect
	Style tailwind.Style
}

// Text is a single line of text positioned by its left edge and baseline.
type Text struct {
	Content  string
	X        float64
	Baseline float64
	Size     float64
	Weight   Weight
	Color    string
}

// TokenBox is a token as laid out on screen.
type TokenBox struct {
	placement.Token
	Box
	Label Text
}

// Scene is a frame of the widget in client coordinates.
type Scene struct {
	Tier       layout.Tier
	Container  Box
	Heading    Text
	Button     Box
	Tray       Box
	Chart      Box
	Background *Background
	// BackgroundRect is where the background is drawn inside the chart.
	BackgroundRect geometry.Rect
	Texts          []Text
	Tokens         []TokenBox
}

// Bounds is the area a capture of the whole widget covers.
func (s Scene) Bounds() geometry.Rect {
	return s.Container.Rect
}

// Token returns the laid out token id.
func (s Scene) Token(id int) (TokenBox, bool) {
	for _, t := range s.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return TokenBox{}, false
}

func scaleSides(sides tailwind.Sides, scale float64) (top, right, bottom, left float64) {
	top, right, bottom, left = sides.Resolve()
	return top * scale, right * scale, bottom * scale, left * scale
}

// centered returns the baseline that vertically centers a line of size px
// text in a box of the given top and height.
func centered(top, height, size float64) float64 {
	return top + height/2 + size*0.35
}

// Build lays the widget out for tier. The container is centered in a
// viewport of viewportWidth (mx-auto) and starts at the top of the page.
func Build(cfg Config, tier layout.Tier, viewportWidth float64, tokens []placement.Token, bg *Background) Scene {
	s := tier.Scale
	if bg == nil {
		bg = BuiltinBackground()
	}
	scene := Scene{Tier: tier, Background: bg}

	width := cfg.ContainerWidth * s
	left := 0.0
	if viewportWidth > width && !math.IsInf(viewportWidth, 1) {
		left = (viewportWidth - width) / 2
	}
	pad := cfg.Padding * s

	// heading
	headingStyle := tailwind.ParseStyle(HeadingClass)
	headingSize := headingStyle.FontSize * s
	headingLine := LineHeight(headingStyle.FontSize) * s
	_, _, headingMargin, _ := scaleSides(headingStyle.Margin, s)
	scene.Heading = Text{
		Content:  cfg.Heading,
		X:        left + pad,
		Baseline: centered(pad, headingLine, headingSize),
		Size:     headingSize,
		Weight:   Bold,
		Color:    tailwind.SpecialColors["black"],
	}

	// tray
	trayStyle := tailwind.ParseStyle(TrayClass)
	trayTop := pad + headingLine + headingMargin
	scene.Tray = Box{
		Rect:  geometry.FromXYWH(left+pad, trayTop, width-2*pad, cfg.TrayHeight*s),
		Style: trayStyle,
	}
	_, _, trayMargin, _ := scaleSides(trayStyle.Margin, s)

	hintStyle := tailwind.ParseStyle(HintClass)
	hintTop, _, _, hintLeft := scaleSides(hintStyle.Padding, s)
	hintSize := hintStyle.FontSize * s
	hint := Text{
		Content:  cfg.TrayHint,
		X:        scene.Tray.Rect.Left + 1 + hintLeft,
		Baseline: centered(scene.Tray.Rect.Top+1+hintTop, LineHeight(hintStyle.FontSize)*s, hintSize),
		Size:     hintSize,
		Color:    hintStyle.Foreground,
	}

	// chart
	chartStyle := tailwind.ParseStyle(ChartClass)
	scene.Chart = Box{
		Rect:  geometry.FromXYWH(left+pad, scene.Tray.Rect.Bottom+trayMargin, width-2*pad, cfg.ChartHeight*s),
		Style: chartStyle,
	}
	scene.BackgroundRect = bg.Fit(scene.Chart.Rect)

	containerStyle := tailwind.ParseStyle(ContainerClass)
	scene.Container = Box{
		Rect:  geometry.Rect{Left: left, Top: 0, Right: left + width, Bottom: scene.Chart.Rect.Bottom + pad},
		Style: containerStyle,
	}

	// screenshot button, absolute top-4 right-4
	buttonStyle := tailwind.ParseStyle(ButtonClass)
	py, px, _, _ := scaleSides(buttonStyle.Padding, s)
	buttonSize := 16 * s
	buttonLine := LineHeight(16) * s
	buttonWidth := MeasureText(cfg.ButtonLabel, Bold, buttonSize) + 2*px
	inset := 16 * s
	scene.Button = Box{
		Rect:  geometry.FromXYWH(scene.Container.Rect.Right-inset-buttonWidth, inset, buttonWidth, buttonLine+2*py),
		Style: buttonStyle,
	}

	scene.Texts = append(scene.Texts, scene.Heading, hint, Text{
		Content:  cfg.ButtonLabel,
		X:        scene.Button.Rect.Left + px,
		Baseline: centered(scene.Button.Rect.Top, scene.Button.Rect.Height(), buttonSize),
		Size:     buttonSize,
		Weight:   Bold,
		Color:    buttonStyle.Foreground,
	})
	if bg.Format == FormatBuiltin {
		scene.Texts = append(scene.Texts, phaseLabels(scene.BackgroundRect, s)...)
	}

	scene.Tokens = layoutTokens(scene.Tray.Rect, tier, tokens)
	return scene
}

func phaseLabels(box geometry.Rect, scale float64) []Text {
	size := 12 * scale
	labels := make([]Text, 0, len(Phases))
	for _, phase := range Phases {
		w := MeasureText(phase.Name, Regular, size)
		labels = append(labels, Text{
			Content:  phase.Name,
			X:        box.Left + phase.At*box.Width() - w/2,
			Baseline: box.Bottom - box.Height()*0.05,
			Size:     size,
			Color:    tailwind.Colors["gray"]["600"],
		})
	}
	return labels
}

// layoutTokens positions every token at its tray slot plus its drag offset.
// Tokens are absolutely positioned inside the tray's padding box.
func layoutTokens(tray geometry.Rect, tier layout.Tier, tokens []placement.Token) []TokenBox {
	s := tier.Scale
	base := tailwind.ParseStyle(TokenClass)
	_, padX, _, _ := scaleSides(base.Padding, s)
	origin := geometry.Point{X: tray.Left + 1, Y: tray.Top + 1}

	boxes := make([]TokenBox, 0, len(tokens))
	for _, t := range tokens {
		classes := TokenClass + " " + TokenTrayClass
		if t.OnSurface {
			classes = TokenClass + " " + TokenOnChartClass
		}
		style := tailwind.ParseStyle(classes)
		style.FontSize = tier.FontSize

		slot := t.Slot()
		at := origin.Add(geometry.Point{X: slot.X * s, Y: slot.Y * s}).Add(t.Position)
		width := MeasureText(t.Text, Regular, tier.FontSize) + 2*padX
		rect := geometry.FromXYWH(at.X, at.Y, width, tier.BoxHeight)

		boxes = append(boxes, TokenBox{
			Token: t,
			Box:   Box{Rect: rect, Style: style},
			Label: Text{
				Content:  t.Text,
				X:        rect.Left + padX,
				Baseline: centered(rect.Top, rect.Height(), tier.FontSize),
				Size:     tier.FontSize,
				Color:    tailwind.SpecialColors["black"],
			},
		})
	}
	return boxes
}
