package hypecycle

import (
	"context"
	"fmt"
	"io"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/capture"
	"github.com/flanksource/hypecycle/drag"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/layout"
	"github.com/flanksource/hypecycle/placement"
	"github.com/flanksource/hypecycle/shutdown"
	"github.com/flanksource/hypecycle/surface"
)

// Option customises a widget.
type Option func(*options)

type options struct {
	downloader  capture.Downloader
	rasterizers []capture.Rasterizer
}

// WithDownloader replaces the file downloader writing to capture.output_dir.
func WithDownloader(d capture.Downloader) Option {
	return func(o *options) { o.downloader = d }
}

// WithRasterizers replaces the default rasterizer chain.
func WithRasterizers(rs ...capture.Rasterizer) Option {
	return func(o *options) { o.rasterizers = rs }
}

// Widget is one mounted hype-cycle widget.
type Widget struct {
	cfg      Config
	store    *placement.Store
	viewport *layout.Viewport
	surface  *surface.Surface
	drags    *drag.Set
	chain    *capture.Chain
	pipeline *capture.Pipeline
	scope    *shutdown.Scope
}

// New mounts a widget. Close releases it.
func New(cfg Config, opts ...Option) (*Widget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	sc, _ := cfg.Surface()
	policy, _ := cfg.Policy()

	bg := surface.BuiltinBackground()
	if cfg.Background != "" {
		loaded, err := surface.LoadBackground(cfg.Background)
		if err != nil {
			return nil, err
		}
		bg = loaded
	}

	w := &Widget{
		cfg:      cfg,
		store:    placement.NewStore(cfg.Tokens),
		viewport: layout.NewViewport(policy, cfg.ViewportWidth),
		scope:    shutdown.NewScope("widget"),
	}
	w.surface = surface.New(sc, w.store, w.viewport, bg)

	dragOpts := []drag.Option{drag.WithTrayHeight(cfg.TrayHeight)}
	if cfg.FrameBatching {
		dragOpts = append(dragOpts, drag.WithFrameBatching())
	}
	w.drags = drag.NewSet(w.store, w.surface, dragOpts...)

	if len(o.rasterizers) > 0 {
		w.chain = capture.NewChain(o.rasterizers...)
	} else {
		w.chain = capture.DefaultChain()
	}
	if err := w.chain.SetPreferred(cfg.Capture.Rasterizer); err != nil {
		return nil, err
	}
	if o.downloader == nil {
		o.downloader = capture.NewFileDownloader(cfg.Capture.OutputDir)
	}
	w.pipeline = capture.NewPipeline(w.chain, capture.WithDownloader(o.downloader))

	unsubscribe := w.viewport.Subscribe(func(t layout.Tier) {
		logger.Infof("Viewport %.0fpx now uses the %s layout", w.viewport.Width(), t.Name)
	})

	w.scope.AddWithPriority("detach surface", shutdown.PriorityIngress, w.surface.Detach)
	w.scope.AddCloser("rasterizers", shutdown.PriorityRasterizers, w.chain)
	w.scope.AddWithPriority("viewport subscription", shutdown.PrioritySubscriptions, unsubscribe)

	logger.Debugf("Mounted widget with %d tokens at %s", w.store.Len(), w.viewport.Tier())
	return w, nil
}

// Run mounts a widget, calls fn with it and always releases it afterwards.
func Run(ctx context.Context, cfg Config, fn func(context.Context, *Widget) error, opts ...Option) error {
	w, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(ctx, w)
}

// Close unmounts the widget. Later drags are ignored and captures fail
// with capture.ErrDetached.
func (w *Widget) Close() {
	w.scope.Close()
}

// Closed reports whether Close was called.
func (w *Widget) Closed() bool {
	return w.scope.Closed()
}

func (w *Widget) Config() Config {
	return w.cfg
}

// Tokens returns a snapshot of every token.
func (w *Widget) Tokens() []placement.Token {
	return w.store.Snapshot()
}

// Token returns one token.
func (w *Widget) Token(id int) (placement.Token, error) {
	return w.store.Get(id)
}

// Tier returns the active layout tier.
func (w *Widget) Tier() layout.Tier {
	return w.viewport.Tier()
}

// Policy returns the tier table in use.
func (w *Widget) Policy() *layout.Policy {
	return w.viewport.Policy()
}

// ViewportWidth is the last recorded viewport width.
func (w *Widget) ViewportWidth() float64 {
	return w.viewport.Width()
}

// Resize records a new viewport width and reports whether the tier changed.
func (w *Widget) Resize(width float64) bool {
	return w.viewport.SetWidth(width)
}

// Dispatch delivers a pointer event to a token.
func (w *Widget) Dispatch(id int, ev drag.Event) error {
	return w.drags.Dispatch(id, ev)
}

// Drag moves a token from one client point to another.
func (w *Widget) Drag(id int, from, to geometry.Point) error {
	return w.drags.Drag(id, from, to)
}

// Flush applies pending moves when frame batching is enabled.
func (w *Widget) Flush() {
	w.drags.Flush()
}

// Scene lays out the current frame.
func (w *Widget) Scene() (surface.Scene, error) {
	return w.surface.Scene()
}

// Rect returns the live rectangle of an element.
func (w *Widget) Rect(h surface.Handle) (geometry.Rect, error) {
	return w.surface.Rect(h)
}

// RenderSVG writes the current frame as SVG.
func (w *Widget) RenderSVG(out io.Writer, opts ...surface.RenderOption) error {
	scene, err := w.surface.Scene()
	if err != nil {
		return err
	}
	return surface.RenderSVG(out, scene, opts...)
}

// Rasterizers lists the available rasterizers in the order they are tried.
func (w *Widget) Rasterizers() []string {
	return w.chain.Available()
}

// Export captures the whole widget at the configured pixel scale.
func (w *Widget) Export(ctx context.Context, onDone func(capture.Result)) *capture.Job {
	return w.pipeline.Capture(ctx, w.surface, w.cfg.Capture.PixelScale, onDone)
}

// ExportRegion captures one region of the widget.
func (w *Widget) ExportRegion(ctx context.Context, region geometry.Rect, onDone func(capture.Result)) *capture.Job {
	return w.pipeline.CaptureRegion(ctx, w.surface, region, w.cfg.Capture.PixelScale, onDone)
}

// Filename is the name exports are saved under.
func (w *Widget) Filename() string {
	return w.pipeline.Filename()
}

func (w *Widget) String() string {
	return fmt.Sprintf("widget(%d tokens, %s)", w.store.Len(), w.viewport.Tier().Name)
}
