package capture

import (
	"errors"
	"fmt"

	"github.com/flanksource/hypecycle/surface"
)

var (
	// ErrZeroRegion is the cause when the capture region has no area.
	ErrZeroRegion = errors.New("capture region has zero area")

	// ErrOutsideSurface is the cause when the region misses the surface.
	ErrOutsideSurface = errors.New("capture region lies outside the surface")

	// ErrInvalidScale is the cause for a non-positive pixel scale.
	ErrInvalidScale = errors.New("pixel scale must be positive")

	// ErrDetached is the cause when the surface is no longer mounted.
	ErrDetached = surface.ErrDetached

	// ErrNoRasterizer is the cause when no rasterizer could run.
	ErrNoRasterizer = errors.New("no rasterizer available")

	// ErrRegionTooLarge is the cause when the output image would exceed
	// MaxPixelDimension on either side.
	ErrRegionTooLarge = errors.New("capture region too large")

	// ErrRasterizerPanic is the cause when a rasterizer panicked.
	ErrRasterizerPanic = errors.New("rasterizer panicked")
)

// CaptureError is the failure of one capture. No file is written when a
// capture fails.
type CaptureError struct {
	Rasterizer string
	Operation  string
	Err        error
}

func (e *CaptureError) Error() string {
	if e.Rasterizer == "" {
		return fmt.Sprintf("capture %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s rasterizer %s failed: %v", e.Rasterizer, e.Operation, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// NewCaptureError creates a new capture error
func NewCaptureError(rasterizer, operation string, err error) error {
	return &CaptureError{
		Rasterizer: rasterizer,
		Operation:  operation,
		Err:        err,
	}
}

// asCaptureError returns err unchanged if it already is a CaptureError.
func asCaptureError(rasterizer, operation string, err error) error {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return err
	}
	return NewCaptureError(rasterizer, operation, err)
}
