package renderer

import (
	"math"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of paths traced
	AverageSamples float64       // Average paths per pixel
	TotalBounces   int           // Surface hits over all paths
	Emitted        int           // Paths that reached a light
	Missed         int           // Paths that left the scene
	Absorbed       int           // Paths absorbed by a surface
	Exhausted      int           // Paths that ran out of bounces (sentinel color)
	Duration       time.Duration // Wall time of the dispatch
}

// addPixel folds one pixel result into the stats
func (s *RenderStats) addPixel(p integrator.PixelResult) {
	s.TotalPixels++
	s.Emitted += p.Count(integrator.Emitted)
	s.Missed += p.Count(integrator.Missed)
	s.Absorbed += p.Count(integrator.Absorbed)
	s.Exhausted += p.Count(integrator.Exhausted)
	s.TotalSamples += p.Count(integrator.Emitted) + p.Count(integrator.Missed) +
		p.Count(integrator.Absorbed) + p.Count(integrator.Exhausted)
	s.TotalBounces += p.Bounces
}

// merge adds another tile's counters to s
func (s *RenderStats) merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.TotalBounces += other.TotalBounces
	s.Emitted += other.Emitted
	s.Missed += other.Missed
	s.Absorbed += other.Absorbed
	s.Exhausted += other.Exhausted
}

// finalize calculates derived statistics after all pixels are rendered
func (s *RenderStats) finalize() {
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// PixelStats accumulates per-pixel estimates across progressive passes
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	LuminanceAccum   float64   // Luminance accumulator for convergence
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of passes accumulated
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := float64(core.Luminance(color))
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Mul(1.0 / float32(ps.SampleCount))
}

// Converged reports whether the relative error of the pixel's luminance is
// below threshold after at least minSamples passes
func (ps *PixelStats) Converged(minSamples int, threshold float64) bool {
	if ps.SampleCount < max(1, minSamples) {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	variance := math.Max(0, meanSq-mean*mean)

	// Avoid division by zero for black pixels
	if mean <= 1e-8 {
		return variance < 1e-6
	}

	return math.Sqrt(variance)/mean < threshold
}

// CalculateAverageLuminance returns the mean luminance of a framebuffer
func CalculateAverageLuminance(fb *Framebuffer) float64 {
	if len(fb.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range fb.Pixels {
		total += float64(core.Luminance(p))
	}
	return total / float64(len(fb.Pixels))
}
