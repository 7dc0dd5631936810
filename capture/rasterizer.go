// Package capture rasterizes a region of the rendered surface to PNG and
// hands the image to a downloader.
package capture

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/surface"
	"github.com/samber/lo"
)

// Request is one region of one sampled frame.
type Request struct {
	Scene      surface.Scene
	Region     geometry.Rect
	PixelScale float64
}

// MaxPixelDimension bounds each side of an output image.
const MaxPixelDimension = 16384

// PixelSize is the output image size.
func (r Request) PixelSize() (width, height int) {
	return int(math.Ceil(r.Region.Width() * r.PixelScale)), int(math.Ceil(r.Region.Height() * r.PixelScale))
}

func (r Request) checkSize() error {
	w, h := r.PixelSize()
	if w > MaxPixelDimension || h > MaxPixelDimension || w < 0 || h < 0 {
		return fmt.Errorf("%w: %dx%d px exceeds %d px", ErrRegionTooLarge, w, h, MaxPixelDimension)
	}
	return nil
}

// Rasterizer turns a Request into PNG bytes.
type Rasterizer interface {
	// Name returns the name of the rasterizer
	Name() string

	// IsAvailable checks if the rasterizer can run on this system
	IsAvailable() bool

	// Rasterize renders the request region as PNG
	Rasterize(ctx context.Context, req Request) ([]byte, error)
}

// Rasterizer names
const (
	NameNative     = "native"
	NameRSVG       = "rsvg-convert"
	NamePlaywright = "playwright"
)

// Chain tries rasterizers in order, starting with the preferred one, and
// falls back when one fails.
type Chain struct {
	rasterizers []Rasterizer
	preferred   string
	mu          sync.RWMutex
}

// NewChain creates a chain over rasterizers in priority order.
func NewChain(rasterizers ...Rasterizer) *Chain {
	return &Chain{rasterizers: rasterizers}
}

// DefaultChain is native, then rsvg-convert, then playwright.
func DefaultChain() *Chain {
	return NewChain(NewNativeRasterizer(), NewRSVGRasterizer(), NewPlaywrightRasterizer())
}

// Name returns the name of this rasterizer
func (c *Chain) Name() string {
	return "chain"
}

// IsAvailable reports whether any rasterizer in the chain is available.
func (c *Chain) IsAvailable() bool {
	return len(c.Available()) > 0
}

// SetPreferred sets the preferred rasterizer by name
func (c *Chain) SetPreferred(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		c.preferred = ""
		return nil
	}
	for _, r := range c.rasterizers {
		if r.Name() == name {
			c.preferred = name
			return nil
		}
	}
	return fmt.Errorf("rasterizer '%s' not registered", name)
}

// Preferred returns the preferred rasterizer name
func (c *Chain) Preferred() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preferred
}

// Names returns every registered rasterizer name.
func (c *Chain) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.rasterizers, func(r Rasterizer, _ int) string { return r.Name() })
}

// Available returns the names of rasterizers that can run.
func (c *Chain) Available() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.FilterMap(c.rasterizers, func(r Rasterizer, _ int) (string, bool) {
		return r.Name(), r.IsAvailable()
	})
}

// ordered returns the preferred rasterizer first, then the rest in order.
func (c *Chain) ordered() []Rasterizer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Rasterizer, 0, len(c.rasterizers))
	for _, r := range c.rasterizers {
		if r.Name() == c.preferred {
			out = append(out, r)
		}
	}
	for _, r := range c.rasterizers {
		if r.Name() != c.preferred {
			out = append(out, r)
		}
	}
	return out
}

// Rasterize attempts each available rasterizer until one succeeds.
func (c *Chain) Rasterize(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error
	for _, r := range c.ordered() {
		if !r.IsAvailable() {
			continue
		}
		data, err := r.Rasterize(ctx, req)
		if err == nil {
			logger.Debugf("rasterized %s with %s", req.Region, r.Name())
			return data, nil
		}
		logger.Warnf("%s rasterizer failed, trying next: %v", r.Name(), err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		return nil, NewCaptureError("", "rasterize", ErrNoRasterizer)
	}
	return nil, asCaptureError("", "rasterize", fmt.Errorf("all rasterizers failed, last error: %w", lastErr))
}

// Close closes any rasterizers that hold resources (like Playwright)
func (c *Chain) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for _, r := range c.rasterizers {
		if closer, ok := r.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
