package surface

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
)

// ErrDetached is returned by queries against a surface that is no longer
// mounted.
var ErrDetached = errors.New("surface is detached")

// Handle names a rendered element.
type Handle string

const (
	ContainerHandle Handle = "container"
	TrayHandle      Handle = "tray"
	ChartHandle     Handle = "chart"
)

const tokenHandlePrefix = "token-"

// TokenHandle is the handle of token id.
func TokenHandle(id int) Handle {
	return Handle(tokenHandlePrefix + strconv.Itoa(id))
}

// TokenID parses a handle made by TokenHandle.
func (h Handle) TokenID() (int, bool) {
	s, ok := strings.CutPrefix(string(h), tokenHandlePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(s)
	return id, err == nil
}

// Measurer reports the current on-screen rectangle of an element.
type Measurer interface {
	Rect(h Handle) (geometry.Rect, error)
}

// Surface is the live widget. Every query lays out a fresh frame from the
// current placement state and viewport tier.
type Surface struct {
	cfg        Config
	store      *placement.Store
	viewport   *layout.Viewport
	background *Background

	mu       sync.RWMutex
	detached bool
}

// New mounts a surface over store, sized by viewport.
func New(cfg Config, store *placement.Store, viewport *layout.Viewport, bg *Background) *Surface {
	if bg == nil {
		bg = BuiltinBackground()
	}
	return &Surface{cfg: cfg, store: store, viewport: viewport, background: bg}
}

// Config returns the static geometry.
func (s *Surface) Config() Config {
	return s.cfg
}

// Scene lays out the current frame.
func (s *Surface) Scene() (Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detached {
		return Scene{}, ErrDetached
	}
	return Build(s.cfg, s.viewport.Tier(), s.viewport.Width(), s.store.Snapshot(), s.background), nil
}

// Rect implements Measurer.
func (s *Surface) Rect(h Handle) (geometry.Rect, error) {
	scene, err := s.Scene()
	if err != nil {
		return geometry.Rect{}, err
	}
	return scene.Rect(h)
}

// Detach unmounts the surface. Later queries fail with ErrDetached.
func (s *Surface) Detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}

// Detached reports whether Detach was called.
func (s *Surface) Detached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detached
}

// Rect returns the rectangle of h in this frame.
func (s Scene) Rect(h Handle) (geometry.Rect, error) {
	switch h {
	case ContainerHandle:
		return s.Container.Rect, nil
	case TrayHandle:
		return s.Tray.Rect, nil
	case ChartHandle:
		return s.Chart.Rect, nil
	}
	if id, ok := h.TokenID(); ok {
		if t, ok := s.Token(id); ok {
			return t.Rect, nil
		}
	}
	return geometry.Rect{}, fmt.Errorf("unknown element %q", h)
}

// FakeMeasurer is an in-memory Measurer for tests and headless hosts.
type FakeMeasurer struct {
	mu    sync.Mutex
	rects map[Handle]geometry.Rect
	// Calls counts Rect queries per handle.
	Calls map[Handle]int
}

// NewFakeMeasurer returns a measurer with no elements.
func NewFakeMeasurer() *FakeMeasurer {
	return &FakeMeasurer{rects: map[Handle]geometry.Rect{}, Calls: map[Handle]int{}}
}

// Set records the rectangle of h.
func (f *FakeMeasurer) Set(h Handle, r geometry.Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rects[h] = r
}

// Rect implements Measurer.
func (f *FakeMeasurer) Rect(h Handle) (geometry.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[h]++
	r, ok := f.rects[h]
	if !ok {
		return geometry.Rect{}, fmt.Errorf("unknown element %q", h)
	}
	return r, nil
}

// CallCount returns how often h was measured.
func (f *FakeMeasurer) CallCount(h Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[h]
}
