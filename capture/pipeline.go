package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/surface"
	"github.com/google/uuid"
)

// Element is a rendered surface that can be sampled.
type Element interface {
	Scene() (surface.Scene, error)
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithDownloader sets where successful captures are saved. Without one,
// results only carry the PNG bytes.
func WithDownloader(d Downloader) PipelineOption {
	return func(p *Pipeline) { p.downloader = d }
}

// WithFilename overrides the export filename.
func WithFilename(name string) PipelineOption {
	return func(p *Pipeline) { p.filename = name }
}

// Pipeline runs capture jobs. Jobs are independent and share no state.
type Pipeline struct {
	rasterizer Rasterizer
	downloader Downloader
	filename   string
}

// NewPipeline creates a pipeline rasterizing with r.
func NewPipeline(r Rasterizer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{rasterizer: r, filename: Filename}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Filename is the name exports are saved under.
func (p *Pipeline) Filename() string {
	return p.filename
}

// CaptureRegion starts rasterizing region of element at pixelScale and
// returns immediately. The element is sampled when the job runs, so drags
// made after the request are included. onDone, if set, is called with the
// result before the job is marked done.
func (p *Pipeline) CaptureRegion(ctx context.Context, element Element, region geometry.Rect, pixelScale float64, onDone func(Result)) *Job {
	return p.start(ctx, element, &region, pixelScale, onDone)
}

// Capture is CaptureRegion over the whole widget as laid out when the job
// runs.
func (p *Pipeline) Capture(ctx context.Context, element Element, pixelScale float64, onDone func(Result)) *Job {
	return p.start(ctx, element, nil, pixelScale, onDone)
}

func (p *Pipeline) start(ctx context.Context, element Element, region *geometry.Rect, pixelScale float64, onDone func(Result)) *Job {
	job := newJob(uuid.NewString())
	// in-flight captures are never cancelled
	ctx = context.WithoutCancel(ctx)

	go func() {
		job.setStatus(StatusRunning)
		started := time.Now()
		result := p.safeRun(ctx, element, region, pixelScale)
		result.JobID = job.ID
		result.Duration = time.Since(started)

		if result.Err != nil {
			logger.Errorf("capture %s failed: %v", job.ID, result.Err)
		} else {
			logger.Infof("capture %s: %dx%d px in %s", job.ID, result.Size.X, result.Size.Y, result.Duration)
		}
		if onDone != nil {
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("panic in capture callback for %s: %v", job.ID, r)
					}
				}()
				onDone(result)
			}()
		}
		job.finish(result)
	}()
	return job
}

// safeRun turns a panic in a rasterizer into a failed result.
func (p *Pipeline) safeRun(ctx context.Context, element Element, region *geometry.Rect, pixelScale float64) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			name := ""
			if p.rasterizer != nil {
				name = p.rasterizer.Name()
			}
			result = Result{Err: NewCaptureError(name, "rasterize", fmt.Errorf("%w: %v", ErrRasterizerPanic, r))}
		}
	}()
	return p.run(ctx, element, region, pixelScale)
}

func validRegion(r geometry.Rect) bool {
	return !r.Empty()
}

func (p *Pipeline) run(ctx context.Context, element Element, region *geometry.Rect, pixelScale float64) Result {
	fail := func(rasterizer, op string, err error) Result {
		return Result{Err: asCaptureError(rasterizer, op, err)}
	}

	if region != nil && !validRegion(*region) {
		return fail("", "validate region", fmt.Errorf("%w: %s", ErrZeroRegion, *region))
	}
	if pixelScale <= 0 || math.IsNaN(pixelScale) || math.IsInf(pixelScale, 0) {
		return fail("", "validate scale", fmt.Errorf("%w: %v", ErrInvalidScale, pixelScale))
	}
	if element == nil {
		return fail("", "sample surface", ErrDetached)
	}
	if p.rasterizer == nil {
		return fail("", "rasterize", ErrNoRasterizer)
	}

	scene, err := element.Scene()
	if err != nil {
		return fail("", "sample surface", err)
	}
	target := scene.Bounds()
	if region != nil {
		target = *region
	}
	if !validRegion(target) {
		return fail("", "validate region", fmt.Errorf("%w: %s", ErrZeroRegion, target))
	}
	if !target.Intersects(scene.Bounds()) {
		return fail("", "validate region", fmt.Errorf("%w: %s not in %s", ErrOutsideSurface, target, scene.Bounds()))
	}

	target = target.Intersect(scene.Bounds())
	req := Request{Scene: scene, Region: target, PixelScale: pixelScale}
	if err := req.checkSize(); err != nil {
		return fail("", "validate region", err)
	}

	data, err := p.rasterizer.Rasterize(ctx, req)
	if err != nil {
		return fail(p.rasterizer.Name(), "rasterize", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fail(p.rasterizer.Name(), "verify PNG", err)
	}

	result := Result{Region: target, PNG: data}
	result.Size.X, result.Size.Y = cfg.Width, cfg.Height

	if p.downloader != nil {
		path, err := p.downloader.Save(ctx, p.filename, data)
		if err != nil {
			return fail("", "download", err)
		}
		result.Path = path
	}
	return result
}
