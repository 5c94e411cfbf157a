package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/layout"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ErrInvalidConfig is returned for unusable render settings
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig contains the per-render parameters
type RenderConfig struct {
	Width           int    // Image width in pixels
	Height          int    // Image height in pixels
	Seed            uint64 // Seed for every per-pixel random stream
	MaxBounces      int    // Overrides the scene's bounce budget when non-zero
	SamplesPerPixel int    // Overrides the scene's sample count when non-zero
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:  800,
		Height: 600,
		Seed:   0x123456789abcdef0,
	}
}

// Validate checks the image dimensions and overrides
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.MaxBounces < 0 || c.SamplesPerPixel < 0 {
		return fmt.Errorf("%w: negative override (bounces %d, samples %d)",
			ErrInvalidConfig, c.MaxBounces, c.SamplesPerPixel)
	}
	return nil
}

// SamplingConfig returns the scene's sampling settings with this config's overrides applied
func (c RenderConfig) SamplingConfig(s *scene.Scene) scene.SamplingConfig {
	return scene.MergeSamplingConfig(s.SamplingConfig, scene.SamplingConfig{
		MaxBounces:      c.MaxBounces,
		SamplesPerPixel: c.SamplesPerPixel,
	})
}

// Render validates the scene, packs it and dispatches it to the backend.
// It returns either a complete Width*Height framebuffer or an error.
func Render(ctx context.Context, s *scene.Scene, config RenderConfig, backend Backend) (*Framebuffer, RenderStats, error) {
	if err := config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}
	sampling := config.SamplingConfig(s)
	if err := sampling.Validate(); err != nil {
		return nil, RenderStats{}, err
	}
	if err := s.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	packet, err := layout.Encode(s, layout.Params{
		Width:           config.Width,
		Height:          config.Height,
		Seed:            config.Seed,
		MaxBounces:      sampling.MaxBounces,
		SamplesPerPixel: sampling.SamplesPerPixel,
	})
	if err != nil {
		return nil, RenderStats{}, fmt.Errorf("pack scene: %w", err)
	}

	fb, stats, err := backend.Dispatch(ctx, packet)
	if err != nil {
		return nil, RenderStats{}, err
	}
	if fb.Width != config.Width || fb.Height != config.Height || len(fb.Pixels) != config.Width*config.Height {
		return nil, RenderStats{}, fmt.Errorf("%w: %s returned %dx%d buffer for %dx%d render",
			ErrBackend, backend.Name(), fb.Width, fb.Height, config.Width, config.Height)
	}
	return fb, stats, nil
}
