package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
	"github.com/flanksource/hypecycle/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSurface(t *testing.T) (*surface.Surface, *placement.Store) {
	t.Helper()
	store := placement.NewStore(placement.DefaultTechnologies)
	return surface.New(surface.DefaultConfig(), store, layout.NewViewport(nil, 1000), nil), store
}

// fakeRasterizer returns a tiny PNG of the requested pixel size.
type fakeRasterizer struct {
	name      string
	available bool
	err       error

	mu       sync.Mutex
	requests []Request
}

func (f *fakeRasterizer) Name() string      { return f.name }
func (f *fakeRasterizer) IsAvailable() bool { return f.available }

func (f *fakeRasterizer) Rasterize(_ context.Context, req Request) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	w, h := req.PixelSize()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *fakeRasterizer) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func waitResult(t *testing.T, job *Job) Result {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(30 * time.Second):
		t.Fatalf("capture %s did not finish", job.ID)
	}
	return job.Wait()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func rgb(c color.Color) [3]uint8 {
	r, g, b, _ := c.RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func assertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCaptureErrorUnwraps(t *testing.T) {
	err := NewCaptureError(NameNative, "rasterize", ErrZeroRegion)
	assert.ErrorIs(t, err, ErrZeroRegion)
	assert.Equal(t, "native rasterizer rasterize failed: capture region has zero area", err.Error())

	plain := NewCaptureError("", "download", errors.New("disk full"))
	assert.Equal(t, "capture download failed: disk full", plain.Error())

	var ce *CaptureError
	wrapped := asCaptureError("x", "y", err)
	require.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, NameNative, ce.Rasterizer)
}

func TestCaptureZeroWidthRegion(t *testing.T) {
	s, _ := newTestSurface(t)
	dir := t.TempDir()
	raster := &fakeRasterizer{name: "fake", available: true}
	p := NewPipeline(raster, WithDownloader(NewFileDownloader(dir)))

	var notified Result
	job := p.CaptureRegion(context.Background(), s, geometry.FromXYWH(10, 10, 0, 300), 1, func(r Result) { notified = r })
	result := waitResult(t, job)

	var ce *CaptureError
	require.True(t, errors.As(result.Err, &ce))
	assert.ErrorIs(t, result.Err, ErrZeroRegion)
	assert.Nil(t, result.PNG)
	assert.Empty(t, result.Path)
	assert.Equal(t, StatusFailed, job.Status())
	assert.Equal(t, result.Err, notified.Err)
	assert.Empty(t, raster.Requests())
	assertNoFiles(t, dir)
}

func TestCaptureInvalidRequests(t *testing.T) {
	s, _ := newTestSurface(t)
	detached, _ := newTestSurface(t)
	detached.Detach()

	tests := []struct {
		name    string
		element Element
		region  geometry.Rect
		scale   float64
		cause   error
	}{
		{"negative height", s, geometry.Rect{Left: 0, Top: 100, Right: 100, Bottom: 50}, 1, ErrZeroRegion},
		{"zero scale", s, geometry.FromXYWH(0, 0, 100, 100), 0, ErrInvalidScale},
		{"detached", detached, geometry.FromXYWH(0, 0, 100, 100), 1, ErrDetached},
		{"nil element", nil, geometry.FromXYWH(0, 0, 100, 100), 1, ErrDetached},
		{"outside", s, geometry.FromXYWH(5000, 5000, 100, 100), 1, ErrOutsideSurface},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			p := NewPipeline(&fakeRasterizer{name: "fake", available: true}, WithDownloader(NewFileDownloader(dir)))
			result := waitResult(t, p.CaptureRegion(context.Background(), tt.element, tt.region, tt.scale, nil))
			assert.ErrorIs(t, result.Err, tt.cause)
			assertNoFiles(t, dir)
		})
	}
}

func TestCaptureRasterizerFailureWritesNothing(t *testing.T) {
	s, _ := newTestSurface(t)
	dir := t.TempDir()
	p := NewPipeline(&fakeRasterizer{name: "fake", available: true, err: errors.New("gpu lost")}, WithDownloader(NewFileDownloader(dir)))

	result := waitResult(t, p.Capture(context.Background(), s, 1, nil))
	var ce *CaptureError
	require.True(t, errors.As(result.Err, &ce))
	assert.Equal(t, "fake", ce.Rasterizer)
	assertNoFiles(t, dir)
}

type panickingRasterizer struct{}

func (panickingRasterizer) Name() string      { return "broken" }
func (panickingRasterizer) IsAvailable() bool { return true }
func (panickingRasterizer) Rasterize(context.Context, Request) ([]byte, error) {
	panic("out of memory")
}

func TestCaptureClipsRegionToSurface(t *testing.T) {
	s, _ := newTestSurface(t)
	dir := t.TempDir()
	p := NewPipeline(NewNativeRasterizer(), WithDownloader(NewFileDownloader(dir)))

	result := waitResult(t, p.CaptureRegion(context.Background(), s, geometry.FromXYWH(0, 0, 1e10, 1e10), 1, nil))
	require.NoError(t, result.Err)
	assert.Equal(t, geometry.FromXYWH(0, 0, 1000, 846), result.Region)
	assert.Equal(t, image.Pt(1000, 846), result.Size)
}

func TestCaptureRejectsOversizedOutput(t *testing.T) {
	s, _ := newTestSurface(t)
	dir := t.TempDir()
	fake := &fakeRasterizer{name: "fake", available: true}
	p := NewPipeline(fake, WithDownloader(NewFileDownloader(dir)))

	result := waitResult(t, p.Capture(context.Background(), s, 100, nil))
	assert.ErrorIs(t, result.Err, ErrRegionTooLarge)
	var ce *CaptureError
	assert.True(t, errors.As(result.Err, &ce))
	assert.Empty(t, fake.Requests())
	assertNoFiles(t, dir)
}

func TestCaptureRasterizerPanicIsContained(t *testing.T) {
	s, _ := newTestSurface(t)
	dir := t.TempDir()
	p := NewPipeline(panickingRasterizer{}, WithDownloader(NewFileDownloader(dir)))

	result := waitResult(t, p.Capture(context.Background(), s, 1, nil))
	assert.ErrorIs(t, result.Err, ErrRasterizerPanic)
	var ce *CaptureError
	require.True(t, errors.As(result.Err, &ce))
	assert.Equal(t, "broken", ce.Rasterizer)
	assertNoFiles(t, dir)
}

func TestCaptureSavesFixedFilename(t *testing.T) {
	s, _ := newTestSurface(t)
	dir := t.TempDir()
	p := NewPipeline(NewNativeRasterizer(), WithDownloader(NewFileDownloader(dir)))

	job := p.Capture(context.Background(), s, 1, nil)
	assert.NotEmpty(t, job.ID)
	result := waitResult(t, job)
	require.NoError(t, result.Err)
	assert.Equal(t, StatusSucceeded, job.Status())
	assert.Equal(t, job.ID, result.JobID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Filename, entries[0].Name())

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	img := decodePNG(t, data)
	assert.Equal(t, image.Pt(1000, 846), img.Bounds().Size())
	assert.Equal(t, image.Pt(1000, 846), result.Size)
}

func TestCaptureSamplesWhenRunning(t *testing.T) {
	s, store := newTestSurface(t)
	gate := make(chan struct{})
	element := gatedElement{Surface: s, gate: gate}
	raster := &fakeRasterizer{name: "fake", available: true}
	p := NewPipeline(raster)

	job := p.CaptureRegion(context.Background(), element, geometry.FromXYWH(0, 0, 500, 500), 1, nil)

	// the user keeps dragging while the capture is in flight
	require.NoError(t, store.ApplyDrag(3, geometry.Point{X: -200, Y: 400}, geometry.FromXYWH(0, 0, 1000, 846), geometry.FromXYWH(500, 500, 100, 30), 200))
	close(gate)

	result := waitResult(t, job)
	require.NoError(t, result.Err)
	reqs := raster.Requests()
	require.Len(t, reqs, 1)
	tok, ok := reqs[0].Scene.Token(3)
	require.True(t, ok)
	assert.True(t, tok.OnSurface)
}

type gatedElement struct {
	*surface.Surface
	gate chan struct{}
}

func (g gatedElement) Scene() (surface.Scene, error) {
	<-g.gate
	return g.Surface.Scene()
}

func TestConcurrentCapturesAreIndependent(t *testing.T) {
	s, _ := newTestSurface(t)
	downloads := NewMemoryDownloader()
	p := NewPipeline(&fakeRasterizer{name: "fake", available: true}, WithDownloader(downloads))

	a := p.CaptureRegion(context.Background(), s, geometry.FromXYWH(0, 0, 100, 100), 1, nil)
	b := p.CaptureRegion(context.Background(), s, geometry.FromXYWH(0, 0, 200, 50), 2, nil)
	ra, rb := waitResult(t, a), waitResult(t, b)

	require.NoError(t, ra.Err)
	require.NoError(t, rb.Err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, image.Pt(100, 100), ra.Size)
	assert.Equal(t, image.Pt(400, 100), rb.Size)
	assert.Equal(t, 2, downloads.Saves())
	_, ok := downloads.File(Filename)
	assert.True(t, ok)
}

func TestCaptureIgnoresCancellation(t *testing.T) {
	s, _ := newTestSurface(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(&fakeRasterizer{name: "fake", available: true}, WithDownloader(NewMemoryDownloader()))
	result := waitResult(t, p.Capture(ctx, s, 1, nil))
	assert.NoError(t, result.Err)
}

func TestCaptureCallbackPanicIsContained(t *testing.T) {
	s, _ := newTestSurface(t)
	p := NewPipeline(&fakeRasterizer{name: "fake", available: true})
	job := p.Capture(context.Background(), s, 1, func(Result) { panic("callback") })
	result := waitResult(t, job)
	assert.NoError(t, result.Err)
	assert.Equal(t, StatusSucceeded, job.Status())
}

func TestPipelineFilename(t *testing.T) {
	assert.Equal(t, "gartner-hype-cycle-screenshot.png", NewPipeline(nil).Filename())
	assert.Equal(t, "x.png", NewPipeline(nil, WithFilename("x.png")).Filename())

	s, _ := newTestSurface(t)
	result := waitResult(t, NewPipeline(nil).Capture(context.Background(), s, 1, nil))
	assert.ErrorIs(t, result.Err, ErrNoRasterizer)
}
