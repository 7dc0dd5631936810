package shutdown

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestScopeRunsHooksInPriorityOrder(t *testing.T) {
	s := NewScope("widget")
	var order []string
	s.AddWithPriority("subscriptions", PrioritySubscriptions, func() { order = append(order, "subscriptions") })
	s.AddWithPriority("server", PriorityIngress, func() { order = append(order, "server") })
	s.Add("first default", func() { order = append(order, "first default") })
	s.Add("second default", func() { order = append(order, "second default") })
	s.AddWithPriority("rasterizers", PriorityRasterizers, func() { order = append(order, "rasterizers") })

	s.Close()
	assert.Equal(t, []string{"server", "second default", "first default", "rasterizers", "subscriptions"}, order)
}

func TestScopeCloseIsIdempotent(t *testing.T) {
	s := NewScope("widget")
	calls := 0
	s.Add("count", func() { calls++ })

	s.Close()
	s.Close()
	assert.Equal(t, 1, calls)
	assert.True(t, s.Closed())
}

func TestScopeHookAfterCloseRunsImmediately(t *testing.T) {
	s := NewScope("widget")
	s.Close()

	ran := false
	s.Add("late", func() { ran = true })
	assert.True(t, ran)
}

func TestScopeRecoversPanics(t *testing.T) {
	s := NewScope("widget")
	ran := false
	s.AddWithPriority("boom", PriorityIngress, func() { panic("boom") })
	s.Add("after", func() { ran = true })

	assert.NotPanics(t, s.Close)
	assert.True(t, ran)
}

func TestScopeAddCloser(t *testing.T) {
	s := NewScope("widget")
	closed := 0
	s.AddCloser("ok", PriorityDefault, closerFunc(func() error { closed++; return nil }))
	s.AddCloser("failing", PriorityDefault, closerFunc(func() error { closed++; return errors.New("stuck") }))

	s.Close()
	assert.Equal(t, 2, closed)
}
