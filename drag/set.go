package drag

import (
	"errors"
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/placement"
)

// EventType is a pointer event kind.
type EventType string

const (
	PressEvent   EventType = "press"
	MoveEvent    EventType = "move"
	ReleaseEvent EventType = "release"
)

// ErrUnknownEvent is returned for an event type other than press, move
// or release.
var ErrUnknownEvent = errors.New("unknown pointer event type")

// Event is a pointer event in client coordinates.
type Event struct {
	Type EventType `json:"type" yaml:"type"`
	X    float64   `json:"x" yaml:"x"`
	Y    float64   `json:"y" yaml:"y"`
}

// Point returns the event position.
func (e Event) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// Set holds one controller per token and routes events by token id.
type Set struct {
	controllers []*Controller
}

// NewSet builds a controller for every token in store.
func NewSet(store Placements, bounds Bounds, opts ...Option) *Set {
	s := &Set{controllers: make([]*Controller, store.Len())}
	for id := range s.controllers {
		s.controllers[id] = NewController(id, store, bounds, opts...)
	}
	return s
}

// Controller returns the controller of token id.
func (s *Set) Controller(id int) (*Controller, error) {
	if id < 0 || id >= len(s.controllers) {
		return nil, &placement.UnknownTokenError{ID: id}
	}
	return s.controllers[id], nil
}

// Dispatch delivers ev to the controller of token id.
func (s *Set) Dispatch(id int, ev Event) error {
	c, err := s.Controller(id)
	if err != nil {
		logger.Warnf("dropping %s event: %v", ev.Type, err)
		return err
	}
	switch ev.Type {
	case PressEvent:
		c.Press(ev.Point())
	case MoveEvent:
		c.Move(ev.Point())
	case ReleaseEvent:
		c.Release(ev.Point())
	default:
		return fmt.Errorf("%w %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// Drag performs a full press, move and release from one point to another.
func (s *Set) Drag(id int, from, to geometry.Point) error {
	for _, ev := range []Event{
		{Type: PressEvent, X: from.X, Y: from.Y},
		{Type: MoveEvent, X: to.X, Y: to.Y},
		{Type: ReleaseEvent, X: to.X, Y: to.Y},
	} {
		if err := s.Dispatch(id, ev); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every controller; call it once per frame when batching.
func (s *Set) Flush() {
	for _, c := range s.controllers {
		c.Flush()
	}
}
