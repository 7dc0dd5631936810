package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportNotifiesOnTierChangeOnly(t *testing.T) {
	v := NewViewport(nil, 1200)
	var seen []string
	unsubscribe := v.Subscribe(func(t Tier) { seen = append(seen, t.Name) })
	defer unsubscribe()

	assert.False(t, v.SetWidth(1100))
	assert.True(t, v.SetWidth(350))
	assert.False(t, v.SetWidth(400))
	assert.True(t, v.SetWidth(1200))

	assert.Equal(t, []string{TierNarrow, TierWide}, seen)
	assert.Equal(t, 1200.0, v.Width())
	assert.Equal(t, TierWide, v.Tier().Name)
}

func TestViewportResizeRoundTrip(t *testing.T) {
	v := NewViewport(nil, 1200)
	before := v.Tier()

	v.SetWidth(350)
	narrow := v.Tier()
	assert.Equal(t, 0.5, narrow.Scale)
	assert.Equal(t, 12.0, narrow.FontSize)
	assert.Equal(t, 24.0, narrow.BoxHeight)

	v.SetWidth(1200)
	assert.Equal(t, before, v.Tier())
}

func TestViewportUnsubscribe(t *testing.T) {
	v := NewViewport(nil, 1200)
	calls := 0
	unsubscribe := v.Subscribe(func(Tier) { calls++ })

	v.SetWidth(500)
	unsubscribe()
	unsubscribe()
	v.SetWidth(100)

	assert.Equal(t, 1, calls)
}

func TestViewportListenerOrder(t *testing.T) {
	v := NewViewport(nil, 1200)
	var order []int
	v.Subscribe(func(Tier) { order = append(order, 1) })
	v.Subscribe(func(Tier) { order = append(order, 2) })
	v.SetWidth(800)
	assert.Equal(t, []int{1, 2}, order)
}
