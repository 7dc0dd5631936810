package surface

import (
	"bytes"
	"errors"
	"testing"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
	"github.com/srwiley/oksvg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultScene() Scene {
	tokens := placement.NewStore(placement.DefaultTechnologies).Snapshot()
	return Build(DefaultConfig(), layout.ResolveTier(1000), 1000, tokens, nil)
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, defaultScene()))
	out := buf.String()

	assert.Contains(t, out, `viewBox="0 0 1000 846"`)
	assert.Contains(t, out, `id="token-0"`)
	assert.Contains(t, out, `id="token-11"`)
	assert.Contains(t, out, `id="curve"`)
	assert.Contains(t, out, "Interactive Gartner Hype Cycle")
	assert.Contains(t, out, "Advanced analytics and big data")
	assert.Contains(t, out, "stroke-dasharray:4,2")

	_, err := oksvg.ReadIconStream(bytes.NewReader(buf.Bytes()), oksvg.IgnoreErrorMode)
	assert.NoError(t, err)
}

func TestRenderSVGRegion(t *testing.T) {
	var buf bytes.Buffer
	region := geometry.FromXYWH(16, 280, 968, 550)
	require.NoError(t, RenderSVG(&buf, defaultScene(), WithRegion(region), WithPixelScale(2)))

	out := buf.String()
	assert.Contains(t, out, `viewBox="16 280 968 550"`)
	assert.Contains(t, out, `width="1936"`)
	assert.Contains(t, out, `height="1100"`)
}

func TestRenderSVGShapesOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, defaultScene(), ShapesOnly()))
	out := buf.String()

	assert.NotContains(t, out, "<text")
	assert.NotContains(t, out, `id="token-0"`)
	assert.Contains(t, out, `id="tray"`)
}

func TestRenderSVGErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderSVG(&buf, defaultScene(), WithRegion(geometry.Rect{})))
	assert.Error(t, RenderSVG(&buf, defaultScene(), WithPixelScale(0)))

	boom := errors.New("boom")
	assert.ErrorIs(t, RenderSVG(failingWriter{boom}, defaultScene()), boom)
}

func TestRenderSVGEmbedsAsset(t *testing.T) {
	scene := defaultScene()
	bg, err := DecodeBackground(pngBytes(t, 100, 55))
	require.NoError(t, err)
	scene.Background = bg
	scene.BackgroundRect = bg.Fit(scene.Chart.Rect)

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, scene))
	assert.Contains(t, buf.String(), "data:image/png;base64,")
	assert.NotContains(t, buf.String(), `id="curve"`)
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }
