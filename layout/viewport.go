package layout

import (
	"sync"

	"github.com/flanksource/commons/logger"
)

// Listener receives the new tier after the viewport crosses a breakpoint.
type Listener func(Tier)

// Viewport tracks the current viewport width and notifies listeners only when
// a width change moves it into a different tier.
type Viewport struct {
	mu        sync.Mutex
	policy    *Policy
	width     float64
	tier      Tier
	nextID    int
	listeners map[int]Listener
}

// NewViewport creates a viewport at width. A nil policy uses DefaultPolicy.
func NewViewport(policy *Policy, width float64) *Viewport {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Viewport{
		policy:    policy,
		width:     width,
		tier:      policy.Resolve(width),
		listeners: map[int]Listener{},
	}
}

// Width returns the last width reported to SetWidth.
func (v *Viewport) Width() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// Tier returns the current tier.
func (v *Viewport) Tier() Tier {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tier
}

// Policy returns the tier policy in use.
func (v *Viewport) Policy() *Policy {
	return v.policy
}

// SetWidth records a new viewport width. Listeners are invoked synchronously,
// outside the lock, only if the resolved tier changed. It reports whether the
// tier changed.
func (v *Viewport) SetWidth(width float64) bool {
	v.mu.Lock()
	v.width = width
	next := v.policy.Resolve(width)
	if next.Name == v.tier.Name {
		v.mu.Unlock()
		return false
	}
	prev := v.tier
	v.tier = next
	listeners := make([]Listener, 0, len(v.listeners))
	for id := 0; id < v.nextID; id++ {
		if l, ok := v.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	v.mu.Unlock()

	logger.Debugf("viewport width %.0f: tier %s -> %s", width, prev.Name, next.Name)
	for _, l := range listeners {
		l(next)
	}
	return true
}

// Subscribe registers fn for tier changes. The returned function removes the
// subscription and is safe to call more than once.
func (v *Viewport) Subscribe(fn Listener) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.listeners, id)
			v.mu.Unlock()
		})
	}
}
