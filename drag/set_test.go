package drag

import (
	"errors"
	"testing"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRoutesById(t *testing.T) {
	store := placement.NewStore(placement.DefaultTechnologies)
	set := NewSet(store, newLiveBounds(store))
	before := store.Snapshot()

	require.NoError(t, set.Drag(3, geometry.Point{X: 700, Y: 100}, geometry.Point{X: 500, Y: 500}))

	after := store.Snapshot()
	for i := range after {
		if i == 3 {
			assert.True(t, after[i].Placed)
			assert.True(t, after[i].OnSurface)
			continue
		}
		assert.Equal(t, before[i], after[i], "token %d changed", i)
	}
}

func TestSetUnknownToken(t *testing.T) {
	store := placement.NewStore(placement.DefaultTechnologies[:3])
	set := NewSet(store, newLiveBounds(store))
	before := store.Snapshot()

	err := set.Dispatch(7, Event{Type: MoveEvent, X: 1, Y: 1})
	var unknown *placement.UnknownTokenError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, 7, unknown.ID)
	assert.Equal(t, before, store.Snapshot())

	_, err = set.Controller(-1)
	assert.Error(t, err)
}

func TestSetUnknownEventType(t *testing.T) {
	store := placement.NewStore(placement.DefaultTechnologies[:3])
	set := NewSet(store, newLiveBounds(store))
	assert.ErrorIs(t, set.Dispatch(0, Event{Type: "hover"}), ErrUnknownEvent)
}

func TestSetFlush(t *testing.T) {
	store := placement.NewStore(placement.DefaultTechnologies[:4])
	set := NewSet(store, newLiveBounds(store), WithFrameBatching())

	require.NoError(t, set.Dispatch(1, Event{Type: PressEvent, X: 300, Y: 100}))
	require.NoError(t, set.Dispatch(1, Event{Type: MoveEvent, X: 300, Y: 500}))
	tok, _ := store.Get(1)
	assert.False(t, tok.Placed)

	set.Flush()
	tok, _ = store.Get(1)
	assert.True(t, tok.Placed)
	assert.Equal(t, geometry.Point{X: 0, Y: 400}, tok.Position)
}
