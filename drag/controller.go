// Package drag turns pointer press/move/release sequences into placement
// updates.
package drag

import (
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/placement"
	"github.com/flanksource/hypecycle/surface"
)

// DefaultTrayHeight is the band at the top of the container that never
// counts as the chart.
const DefaultTrayHeight = 200

// Bounds answers live bounding-box queries; surface.Surface implements it.
type Bounds interface {
	Rect(h surface.Handle) (geometry.Rect, error)
}

// Placements is the part of placement.Store a controller needs.
type Placements interface {
	Len() int
	Get(id int) (placement.Token, error)
	ApplyDrag(id int, newOffset geometry.Point, containerRect, tokenRect geometry.Rect, trayHeight float64) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithFrameBatching coalesces moves until Flush, one per animation frame.
// Release always flushes the last move.
func WithFrameBatching() Option {
	return func(c *Controller) { c.batch = true }
}

// WithTrayHeight sets the vertical offset excluded from the container top
// when classifying.
func WithTrayHeight(h float64) Option {
	return func(c *Controller) { c.trayHeight = h }
}

// Controller drives a single token.
type Controller struct {
	id         int
	store      Placements
	bounds     Bounds
	trayHeight float64
	batch      bool

	mu          sync.Mutex
	active      bool
	pressPoint  geometry.Point
	pressOffset geometry.Point
	pending     *geometry.Point
}

// NewController returns the controller of token id.
func NewController(id int, store Placements, bounds Bounds, opts ...Option) *Controller {
	c := &Controller{id: id, store: store, bounds: bounds, trayHeight: DefaultTrayHeight}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the token id.
func (c *Controller) ID() int {
	return c.id
}

// Active reports whether a drag is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Press starts a drag at p.
func (c *Controller) Press(p geometry.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.store.Get(c.id)
	if err != nil {
		logger.Warnf("drag press ignored: %v", err)
		return
	}
	c.active = true
	c.pressPoint = p
	c.pressOffset = token.Position
	c.pending = nil
}

// Move drags the token so it follows the pointer from the press point.
func (c *Controller) Move(p geometry.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	offset := c.pressOffset.Add(p.Sub(c.pressPoint))
	if c.batch {
		c.pending = &offset
		return
	}
	c.apply(offset)
}

// Flush applies the last batched move, if any.
func (c *Controller) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flush()
}

// Release ends the drag. A release without a preceding move leaves the
// token untouched.
func (c *Controller) Release(p geometry.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.flush()
	c.active = false
}

func (c *Controller) flush() {
	if c.pending == nil {
		return
	}
	offset := *c.pending
	c.pending = nil
	c.apply(offset)
}

// apply measures the current frame and records offset. The measured token
// rect reflects the offset currently held by the store, so it is shifted by
// the difference to classify the box where it will be drawn.
func (c *Controller) apply(offset geometry.Point) {
	container, err := c.bounds.Rect(surface.ContainerHandle)
	if err != nil {
		logger.Warnf("drag of token %d: cannot measure container: %v", c.id, err)
		return
	}
	rect, err := c.bounds.Rect(surface.TokenHandle(c.id))
	if err != nil {
		logger.Warnf("drag of token %d: cannot measure token: %v", c.id, err)
		return
	}
	current, err := c.store.Get(c.id)
	if err != nil {
		logger.Warnf("drag of token %d: %v", c.id, err)
		return
	}
	rect = rect.Translate(offset.Sub(current.Position))

	if err := c.store.ApplyDrag(c.id, offset, container, rect, c.trayHeight); err != nil {
		logger.Warnf("drag of token %d: %v", c.id, err)
	}
}
