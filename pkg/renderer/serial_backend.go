package renderer

import (
	"context"
	"image"
	"time"
)

// SerialBackend evaluates every pixel on the calling goroutine. It is the
// reference the parallel backends are checked against.
type SerialBackend struct{}

// NewSerialBackend creates a serial backend
func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

// Name identifies the backend
func (sb *SerialBackend) Name() string {
	return "serial"
}

// Dispatch renders the packet row by row
func (sb *SerialBackend) Dispatch(ctx context.Context, packet []byte) (*Framebuffer, RenderStats, error) {
	start := time.Now()

	tr, err := compile(packet)
	if err != nil {
		return nil, RenderStats{}, err
	}

	fb := tr.NewFramebuffer()
	var stats RenderStats
	for y := 0; y < tr.height; y++ {
		if ctx.Err() != nil {
			return nil, RenderStats{}, cancelled(ctx)
		}
		rowStats, err := tr.RenderTile(image.Rect(0, y, tr.width, y+1), fb)
		if err != nil {
			return nil, RenderStats{}, err
		}
		stats.merge(rowStats)
	}

	stats.finalize()
	stats.Duration = time.Since(start)
	return fb, stats, nil
}
