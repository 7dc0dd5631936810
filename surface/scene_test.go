package surface

import (
	"math"
	"testing"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSurface(t *testing.T, width float64) (*Surface, *placement.Store, *layout.Viewport) {
	t.Helper()
	store := placement.NewStore(placement.DefaultTechnologies)
	viewport := layout.NewViewport(nil, width)
	return New(DefaultConfig(), store, viewport, nil), store, viewport
}

func TestBuildWideLayout(t *testing.T) {
	tokens := placement.NewStore(placement.DefaultTechnologies).Snapshot()
	scene := Build(DefaultConfig(), layout.ResolveTier(1000), 1000, tokens, nil)

	assert.Equal(t, geometry.Rect{Left: 0, Top: 0, Right: 1000, Bottom: 846}, scene.Container.Rect)
	assert.Equal(t, geometry.Rect{Left: 16, Top: 64, Right: 984, Bottom: 264}, scene.Tray.Rect)
	assert.Equal(t, geometry.Rect{Left: 16, Top: 280, Right: 984, Bottom: 830}, scene.Chart.Rect)
	assert.Equal(t, "Interactive Gartner Hype Cycle", scene.Heading.Content)
	assert.Equal(t, 24.0, scene.Heading.Size)
	assert.True(t, scene.Tray.Style.BorderDashed)

	require.Len(t, scene.Tokens, 12)
	first := scene.Tokens[0]
	assert.Equal(t, 37.0, first.Rect.Left)
	assert.Equal(t, 85.0, first.Rect.Top)
	assert.Equal(t, 36.0, first.Rect.Height())
	assert.Greater(t, first.Rect.Width(), 16.0)
	assert.Equal(t, 14.0, first.Label.Size)

	fifth := scene.Tokens[4]
	assert.Equal(t, 37.0, fifth.Rect.Left)
	assert.Equal(t, 125.0, fifth.Rect.Top)

	assert.True(t, scene.Button.Rect.Right < scene.Container.Rect.Right)
	assert.Equal(t, 16.0, scene.Button.Rect.Top)
}

func TestBuildCentersContainer(t *testing.T) {
	scene := Build(DefaultConfig(), layout.ResolveTier(1200), 1200, nil, nil)
	assert.Equal(t, 100.0, scene.Container.Rect.Left)
	assert.Equal(t, 1100.0, scene.Container.Rect.Right)
	assert.Empty(t, scene.Tokens)
}

func TestBuildUnboundedViewportKeepsContainerAtOrigin(t *testing.T) {
	for _, width := range []float64{math.Inf(1), math.NaN(), -5} {
		scene := Build(DefaultConfig(), layout.ResolveTier(width), width, nil, nil)
		assert.Equal(t, geometry.FromXYWH(0, 0, 1000, 846), scene.Container.Rect, "width %v", width)
	}
}

func TestBuildNarrowTierScales(t *testing.T) {
	tokens := placement.NewStore(placement.DefaultTechnologies[:1]).Snapshot()
	scene := Build(DefaultConfig(), layout.ResolveTier(350), 350, tokens, nil)

	assert.Equal(t, 500.0, scene.Container.Rect.Width())
	assert.Equal(t, 100.0, scene.Tray.Rect.Height())
	assert.Equal(t, 275.0, scene.Chart.Rect.Height())
	require.Len(t, scene.Tokens, 1)
	assert.Equal(t, 24.0, scene.Tokens[0].Rect.Height())
	assert.Equal(t, 12.0, scene.Tokens[0].Label.Size)
}

func TestBuildTokenStyleFollowsClassification(t *testing.T) {
	tokens := []placement.Token{
		{ID: 0, Text: "tray"},
		{ID: 1, Text: "chart", Placed: true, OnSurface: true, Position: geometry.Point{X: 100, Y: 300}},
	}
	scene := Build(DefaultConfig(), layout.ResolveTier(1024), 1024, tokens, nil)

	assert.Equal(t, 1.0, scene.Tokens[0].Style.BackgroundOpacity)
	assert.Equal(t, 0.75, scene.Tokens[1].Style.BackgroundOpacity)
	assert.Equal(t, "#ffffff", scene.Tokens[1].Style.Background)

	// slot (240, 20) + tray padding box origin + offset
	assert.Equal(t, geometry.Point{X: 12 + 17 + 240 + 100, Y: 65 + 20 + 300}, scene.Tokens[1].Rect.Origin())
}

func TestSurfaceRectIsLive(t *testing.T) {
	s, store, _ := newSurface(t, 1000)

	before, err := s.Rect(TokenHandle(3))
	require.NoError(t, err)

	require.NoError(t, store.ApplyDrag(3, geometry.Point{X: 50, Y: 400}, geometry.Rect{}, geometry.Rect{}, 200))
	after, err := s.Rect(TokenHandle(3))
	require.NoError(t, err)

	want := before.Translate(geometry.Point{X: 50, Y: 400})
	assert.InDelta(t, want.Left, after.Left, 1e-9)
	assert.InDelta(t, want.Top, after.Top, 1e-9)
	assert.InDelta(t, want.Right, after.Right, 1e-9)
	assert.InDelta(t, want.Bottom, after.Bottom, 1e-9)
}

func TestSurfaceFollowsViewport(t *testing.T) {
	s, _, viewport := newSurface(t, 1200)
	wide, err := s.Rect(ContainerHandle)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, wide.Width())

	viewport.SetWidth(350)
	narrow, err := s.Rect(ContainerHandle)
	require.NoError(t, err)
	assert.Equal(t, 500.0, narrow.Width())

	viewport.SetWidth(1200)
	restored, err := s.Rect(ContainerHandle)
	require.NoError(t, err)
	assert.Equal(t, wide, restored)
}

func TestSurfaceDetach(t *testing.T) {
	s, _, _ := newSurface(t, 1000)
	s.Detach()
	assert.True(t, s.Detached())

	_, err := s.Scene()
	assert.ErrorIs(t, err, ErrDetached)
	_, err = s.Rect(ChartHandle)
	assert.ErrorIs(t, err, ErrDetached)
}

func TestSceneRectUnknownHandle(t *testing.T) {
	s, _, _ := newSurface(t, 1000)
	for _, h := range []Handle{"nope", TokenHandle(99), "token-x"} {
		_, err := s.Rect(h)
		assert.Error(t, err, string(h))
	}
}

func TestTokenHandle(t *testing.T) {
	id, ok := TokenHandle(11).TokenID()
	assert.True(t, ok)
	assert.Equal(t, 11, id)

	_, ok = ChartHandle.TokenID()
	assert.False(t, ok)
}

func TestFakeMeasurer(t *testing.T) {
	m := NewFakeMeasurer()
	m.Set(ChartHandle, geometry.FromXYWH(0, 0, 10, 10))

	r, err := m.Rect(ChartHandle)
	require.NoError(t, err)
	assert.Equal(t, 10.0, r.Width())
	_, err = m.Rect(TrayHandle)
	assert.Error(t, err)
	assert.Equal(t, 1, m.CallCount(ChartHandle))
}

func TestMeasureText(t *testing.T) {
	short := MeasureText("AI", Regular, 14)
	long := MeasureText("Artificial Intelligence (AI)", Regular, 14)
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
	assert.InDelta(t, 2*long, MeasureText("Artificial Intelligence (AI)", Regular, 28), 2)
	assert.Equal(t, 0.0, MeasureText("", Regular, 14))
}

func TestLineHeight(t *testing.T) {
	assert.Equal(t, 16.0, LineHeight(12))
	assert.Equal(t, 20.0, LineHeight(14))
	assert.Equal(t, 32.0, LineHeight(24))
	assert.Equal(t, 15.0, LineHeight(10))
}
