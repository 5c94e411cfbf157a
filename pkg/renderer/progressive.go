package renderer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	MaxPasses            int     // Maximum number of passes (0 = until cancelled)
	MinPasses            int     // Passes before convergence may stop rendering
	ConvergenceThreshold float64 // Relative luminance error to stop at (0 = disabled)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		MaxPasses:            8,
		MinPasses:            4,
		ConvergenceThreshold: 0,
	}
}

// ProgressiveRenderer renders the same view repeatedly with a fresh seed per
// pass and averages the passes into a converging image
type ProgressiveRenderer struct {
	scene       *scene.Scene
	config      RenderConfig
	progressive ProgressiveConfig
	backend     Backend
	logger      core.Logger
	pixelStats  []PixelStats // Accumulated passes, row-major
	currentPass int
	seeds       *rand.Rand // Produces one render seed per pass
}

// NewProgressiveRenderer creates a new progressive renderer
func NewProgressiveRenderer(s *scene.Scene, config RenderConfig, progressive ProgressiveConfig, backend Backend, logger core.Logger) *ProgressiveRenderer {
	if logger == nil {
		logger = discardLogger{}
	}
	return &ProgressiveRenderer{
		scene:       s,
		config:      config,
		progressive: progressive,
		backend:     backend,
		logger:      logger,
		pixelStats:  make([]PixelStats, config.Width*config.Height),
		seeds:       rand.New(rand.NewPCG(config.Seed, 0)),
	}
}

// Scene returns the scene being rendered. Callers may move the camera
// between passes and must then call Reset.
func (pr *ProgressiveRenderer) Scene() *scene.Scene {
	return pr.scene
}

// Reset discards the accumulated passes
func (pr *ProgressiveRenderer) Reset() {
	clear(pr.pixelStats)
	pr.currentPass = 0
}

// CurrentPass returns the number of passes accumulated since the last Reset
func (pr *ProgressiveRenderer) CurrentPass() int {
	return pr.currentPass
}

// RenderPass renders one more pass and returns the running average
func (pr *ProgressiveRenderer) RenderPass(ctx context.Context) (*Framebuffer, RenderStats, error) {
	config := pr.config
	config.Seed = pr.seeds.Uint64()

	fb, stats, err := Render(ctx, pr.scene, config, pr.backend)
	if err != nil {
		return nil, RenderStats{}, err
	}

	for i, c := range fb.Pixels {
		pr.pixelStats[i].AddSample(c)
	}
	pr.currentPass++

	return pr.assembleCurrentImage(), stats, nil
}

// Converged reports whether every pixel is below the convergence threshold
func (pr *ProgressiveRenderer) Converged() bool {
	if pr.progressive.ConvergenceThreshold <= 0 {
		return false
	}
	for i := range pr.pixelStats {
		if !pr.pixelStats[i].Converged(pr.progressive.MinPasses, pr.progressive.ConvergenceThreshold) {
			return false
		}
	}
	return true
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *Framebuffer // Average of all passes so far
	Stats      RenderStats  // Stats of this pass alone
	IsLast     bool
}

// RenderProgressive renders passes in the background until MaxPasses,
// convergence or cancellation. Both channels are closed when it stops.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		pr.logger.Printf("Starting progressive rendering with %d passes on %s...\n",
			pr.progressive.MaxPasses, pr.backend.Name())

		for pass := 1; pr.progressive.MaxPasses <= 0 || pass <= pr.progressive.MaxPasses; pass++ {
			// Check if client disconnected before starting this pass
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- cancelled(ctx)
				return
			default:
			}

			startTime := time.Now()
			img, stats, err := pr.RenderPass(ctx)
			if err != nil {
				errChan <- err
				return
			}

			converged := pr.Converged()
			pr.logger.Printf("Pass %d completed in %v (%d paths, %.2f bounces/path)\n",
				pass, time.Since(startTime), stats.TotalSamples, float64(stats.TotalBounces)/float64(max(1, stats.TotalSamples)))
			if stats.Exhausted > 0 {
				pr.logger.Printf("Warning: %d paths hit the bounce limit\n", stats.Exhausted)
			}

			isLast := pass == pr.progressive.MaxPasses || converged
			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				return
			}

			if converged {
				pr.logger.Printf("All pixels converged after %d passes, stopping.\n", pass)
				return
			}
		}
	}()

	return passChan, errChan
}

// assembleCurrentImage averages the accumulated passes
func (pr *ProgressiveRenderer) assembleCurrentImage() *Framebuffer {
	fb := NewFramebuffer(pr.config.Width, pr.config.Height)
	for i := range pr.pixelStats {
		fb.Pixels[i] = pr.pixelStats[i].GetColor()
	}
	return fb
}
