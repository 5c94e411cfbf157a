package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/layout"
)

// ErrBackend is returned when a backend cannot build or run the render
// kernel. The render produces no framebuffer in that case.
var ErrBackend = errors.New("backend failure")

// Backend runs the per-pixel kernel over a packed scene
type Backend interface {
	// Name identifies the backend in logs
	Name() string

	// Dispatch decodes the packet, evaluates every pixel and returns the
	// complete framebuffer, or an error and no framebuffer.
	Dispatch(ctx context.Context, packet []byte) (*Framebuffer, RenderStats, error)
}

// compile decodes a packet into a tile renderer ready to evaluate pixels
func compile(packet []byte) (*TileRenderer, error) {
	s, params, err := layout.Decode(packet)
	if err != nil {
		return nil, fmt.Errorf("%w: build program: %w", ErrBackend, err)
	}
	pt := integrator.NewPathTracingIntegrator(s.SamplingConfig)
	return NewTileRenderer(s, pt, params.Width, params.Height, params.Seed), nil
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("render cancelled: %w", context.Cause(ctx))
}
