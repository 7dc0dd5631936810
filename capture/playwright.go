package capture

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/flanksource/hypecycle/surface"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightRasterizer screenshots the SVG in headless chromium with the
// device scale factor set to the pixel scale.
type PlaywrightRasterizer struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywrightRasterizer creates a new Playwright rasterizer
func NewPlaywrightRasterizer() *PlaywrightRasterizer {
	return &PlaywrightRasterizer{}
}

// Name returns the name of this rasterizer
func (p *PlaywrightRasterizer) Name() string {
	return NamePlaywright
}

// IsAvailable checks if Playwright is available (lazy initialization)
func (p *PlaywrightRasterizer) IsAvailable() bool {
	return true
}

func (p *PlaywrightRasterizer) launch() (playwright.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser != nil {
		return p.browser, nil
	}

	if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	}); err != nil {
		return nil, NewCaptureError(p.Name(), "install browsers", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, NewCaptureError(p.Name(), "start playwright", err)
	}
	browser, err := pw.Chromium.Launch()
	if err != nil {
		_ = pw.Stop()
		return nil, NewCaptureError(p.Name(), "launch browser", err)
	}
	p.pw, p.browser = pw, browser
	return browser, nil
}

// Rasterize renders the request region as PNG
func (p *PlaywrightRasterizer) Rasterize(ctx context.Context, req Request) ([]byte, error) {
	browser, err := p.launch()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewCaptureError(p.Name(), "screenshot", err)
	}

	var svg bytes.Buffer
	if err := surface.RenderSVG(&svg, req.Scene); err != nil {
		return nil, NewCaptureError(p.Name(), "render SVG", err)
	}

	bounds := req.Scene.Bounds()
	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		DeviceScaleFactor: playwright.Float(req.PixelScale),
		Viewport: &playwright.Size{
			Width:  int(math.Ceil(bounds.Width())),
			Height: int(math.Ceil(bounds.Height())),
		},
	})
	if err != nil {
		return nil, NewCaptureError(p.Name(), "create page", err)
	}
	defer page.Close()

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body { margin: 0; padding: 0; background: white; }
        svg { display: block; }
    </style>
</head>
<body>
    %s
</body>
</html>`, svg.String())

	if err := page.SetContent(htmlContent); err != nil {
		return nil, NewCaptureError(p.Name(), "set content", err)
	}

	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
		Clip: &playwright.Rect{
			X:      req.Region.Left - bounds.Left,
			Y:      req.Region.Top - bounds.Top,
			Width:  req.Region.Width(),
			Height: req.Region.Height(),
		},
	})
	if err != nil {
		return nil, NewCaptureError(p.Name(), "screenshot PNG", err)
	}
	return data, nil
}

// Close closes the browser and Playwright instance
func (p *PlaywrightRasterizer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			return err
		}
		p.browser = nil
	}

	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			return err
		}
		p.pw = nil
	}

	return nil
}
