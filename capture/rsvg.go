package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/flanksource/hypecycle/surface"
)

// RSVGRasterizer renders through the rsvg-convert binary from librsvg. The
// region is selected with the SVG viewBox.
type RSVGRasterizer struct {
	Binary string
}

// NewRSVGRasterizer creates a new rsvg-convert rasterizer
func NewRSVGRasterizer() *RSVGRasterizer {
	return &RSVGRasterizer{Binary: "rsvg-convert"}
}

// Name returns the name of this rasterizer
func (r *RSVGRasterizer) Name() string {
	return NameRSVG
}

// IsAvailable checks if rsvg-convert is available in PATH
func (r *RSVGRasterizer) IsAvailable() bool {
	_, err := exec.LookPath(r.Binary)
	return err == nil
}

// Rasterize renders the request region as PNG
func (r *RSVGRasterizer) Rasterize(ctx context.Context, req Request) ([]byte, error) {
	if !r.IsAvailable() {
		return nil, NewCaptureError(r.Name(), "convert", fmt.Errorf("%s not found in PATH", r.Binary))
	}

	dir, err := os.MkdirTemp("", "hypecycle-rsvg-")
	if err != nil {
		return nil, NewCaptureError(r.Name(), "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	var svg bytes.Buffer
	if err := surface.RenderSVG(&svg, req.Scene, surface.WithRegion(req.Region), surface.WithPixelScale(req.PixelScale)); err != nil {
		return nil, NewCaptureError(r.Name(), "render SVG", err)
	}
	svgPath := filepath.Join(dir, "surface.svg")
	if err := os.WriteFile(svgPath, svg.Bytes(), 0o600); err != nil {
		return nil, NewCaptureError(r.Name(), "write SVG", err)
	}

	w, h := req.PixelSize()
	outputPath := filepath.Join(dir, "surface.png")
	args := []string{
		"--format=png",
		"--width=" + strconv.Itoa(w),
		"--height=" + strconv.Itoa(h),
		"--background-color=white",
		"--output=" + outputPath,
		svgPath,
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, NewCaptureError(r.Name(), "convert", fmt.Errorf("command failed: %w, output: %s", err, string(output)))
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, NewCaptureError(r.Name(), "read PNG", err)
	}
	return data, nil
}
