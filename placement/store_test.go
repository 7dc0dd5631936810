package placement

import (
	"errors"
	"sync"
	"testing"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// container with a 200px tray at the top and the chart below it
	container  = geometry.Rect{Left: 0, Top: 0, Right: 1000, Bottom: 800}
	trayHeight = 200.0
)

func TestNewStore(t *testing.T) {
	s := NewStore(DefaultTechnologies[:10])
	require.Equal(t, 10, s.Len())

	for i, tok := range s.Snapshot() {
		assert.Equal(t, i, tok.ID)
		assert.Equal(t, DefaultTechnologies[i], tok.Text)
		assert.False(t, tok.Placed)
		assert.False(t, tok.OnSurface)
		assert.Equal(t, geometry.Point{}, tok.Position)
	}
}

func TestStoreUntouchedWithoutDrag(t *testing.T) {
	s := NewStore(DefaultTechnologies[:10])
	initial := s.Snapshot()
	assert.Equal(t, initial, s.Snapshot())
}

func TestApplyDragClassification(t *testing.T) {
	tests := []struct {
		name      string
		token     geometry.Rect
		onSurface bool
	}{
		{"inside the chart", geometry.FromXYWH(300, 400, 150, 36), true},
		{"still in the tray", geometry.FromXYWH(300, 50, 150, 36), false},
		{"flush with tray edge", geometry.FromXYWH(300, 200, 150, 36), false},
		{"crosses the right edge", geometry.FromXYWH(900, 400, 150, 36), false},
		{"right edge flush", geometry.FromXYWH(850, 400, 150, 36), false},
		{"below the chart", geometry.FromXYWH(300, 790, 150, 36), false},
		{"outside the container", geometry.FromXYWH(-500, -500, 150, 36), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(DefaultTechnologies[:10])
			offset := geometry.Point{X: 12, Y: 340}
			require.NoError(t, s.ApplyDrag(3, offset, container, tt.token, trayHeight))

			tok, err := s.Get(3)
			require.NoError(t, err)
			assert.True(t, tok.Placed)
			assert.Equal(t, offset, tok.Position)
			assert.Equal(t, tt.onSurface, tok.OnSurface)
		})
	}
}

func TestApplyDragIdempotent(t *testing.T) {
	s := NewStore(DefaultTechnologies)
	offset := geometry.Point{X: 100, Y: 300}
	rect := geometry.FromXYWH(120, 320, 150, 36)

	require.NoError(t, s.ApplyDrag(5, offset, container, rect, trayHeight))
	first := s.Snapshot()
	require.NoError(t, s.ApplyDrag(5, offset, container, rect, trayHeight))
	assert.Equal(t, first, s.Snapshot())
}

func TestApplyDragLastWriteWins(t *testing.T) {
	s := NewStore(DefaultTechnologies)
	require.NoError(t, s.ApplyDrag(1, geometry.Point{X: 10, Y: 400}, container, geometry.FromXYWH(30, 420, 100, 30), trayHeight))
	require.NoError(t, s.ApplyDrag(1, geometry.Point{X: 5, Y: 5}, container, geometry.FromXYWH(25, 25, 100, 30), trayHeight))

	tok, _ := s.Get(1)
	assert.Equal(t, geometry.Point{X: 5, Y: 5}, tok.Position)
	assert.False(t, tok.OnSurface)
	assert.True(t, tok.Placed)
}

func TestApplyDragIsolation(t *testing.T) {
	s := NewStore(DefaultTechnologies)
	before := s.Snapshot()

	require.NoError(t, s.ApplyDrag(3, geometry.Point{X: 1, Y: 2}, container, geometry.FromXYWH(300, 400, 150, 36), trayHeight))

	after := s.Snapshot()
	for i := range after {
		if i == 3 {
			continue
		}
		assert.Equal(t, before[i], after[i], "token %d changed", i)
	}
}

func TestApplyDragUnknownToken(t *testing.T) {
	s := NewStore(DefaultTechnologies[:3])
	before := s.Snapshot()

	for _, id := range []int{-1, 3, 99} {
		err := s.ApplyDrag(id, geometry.Point{X: 1, Y: 1}, container, geometry.FromXYWH(300, 400, 10, 10), trayHeight)
		var unknown *UnknownTokenError
		require.True(t, errors.As(err, &unknown), "id %d", id)
		assert.Equal(t, id, unknown.ID)
	}
	assert.Equal(t, before, s.Snapshot())

	_, err := s.Get(7)
	assert.Error(t, err)
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewStore(DefaultTechnologies[:2])
	snap := s.Snapshot()
	snap[0].Placed = true
	snap[0].Position = geometry.Point{X: 99}

	tok, _ := s.Get(0)
	assert.False(t, tok.Placed)
	assert.Equal(t, geometry.Point{}, tok.Position)
}

func TestApplyDragConcurrentTokens(t *testing.T) {
	s := NewStore(DefaultTechnologies)
	var wg sync.WaitGroup
	for id := 0; id < s.Len(); id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				off := geometry.Point{X: float64(i), Y: float64(id)}
				inside := i%2 == 0
				rect := geometry.FromXYWH(300, 50, 100, 30)
				if inside {
					rect = geometry.FromXYWH(300, 400, 100, 30)
				}
				_ = s.ApplyDrag(id, off, container, rect, trayHeight)
			}
		}(id)
	}
	wg.Wait()

	for _, tok := range s.Snapshot() {
		// the last write for every token used i=199, an odd step in the tray
		assert.Equal(t, geometry.Point{X: 199, Y: float64(tok.ID)}, tok.Position)
		assert.False(t, tok.OnSurface)
		assert.True(t, tok.Placed)
	}
}

func TestTraySlot(t *testing.T) {
	assert.Equal(t, geometry.Point{X: 20, Y: 20}, TraySlot(0))
	assert.Equal(t, geometry.Point{X: 680, Y: 20}, TraySlot(3))
	assert.Equal(t, geometry.Point{X: 20, Y: 60}, TraySlot(4))
	assert.Equal(t, geometry.Point{X: 460, Y: 100}, TraySlot(10))

	tok := Token{ID: 5, Position: geometry.Point{X: 10, Y: -5}}
	assert.Equal(t, geometry.Point{X: 250, Y: 55}, tok.Origin())
}
