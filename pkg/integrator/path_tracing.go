package integrator

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var _ Integrator = (*PathTracingIntegrator)(nil)

// UnterminatedColor marks pixels whose path used up the bounce budget
var UnterminatedColor = core.NewVec3(1, 0, 1)

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// Config returns the sampling configuration the integrator was built with
func (pt *PathTracingIntegrator) Config() scene.SamplingConfig {
	return pt.config
}

// CameraRay returns the primary ray through pixel (x, y). The forward axis
// is yawed by fovy*(x/width - 0.5) and pitched by fovy*(y/height - 0.5);
// row 0 is the top of the image.
func CameraRay(camera scene.Camera, x, y, width, height int) core.Ray {
	forward := camera.Forward()
	right := camera.Right()
	up := right.Cross(forward)

	tx := camera.Fovy * (float32(x)/float32(width) - 0.5)
	ty := camera.Fovy * (float32(y)/float32(height) - 0.5)

	rotation := mgl32.QuatRotate(-tx, up).Mul(mgl32.QuatRotate(-ty, right))
	return core.NewRay(camera.Eye, rotation.Rotate(forward).Normalize())
}

// Trace follows one path until it reaches a light, misses, is absorbed or
// runs out of bounces. The bounce budget is checked before each
// intersection, so attempt MaxBounces+1 returns UnterminatedColor.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, s *scene.Scene, sampler core.Sampler) PathResult {
	throughput := core.NewVec3(1, 1, 1)

	for bounce := 0; ; bounce++ {
		if bounce >= pt.config.MaxBounces {
			return PathResult{Color: UnterminatedColor, Bounces: bounce, Termination: Exhausted}
		}

		hit, isHit := s.NearestHit(ray)
		if !isHit {
			return PathResult{Bounces: bounce, Termination: Missed}
		}

		object := &s.Objects[hit.Index]
		point := ray.At(hit.TOI)
		result := object.Scatter(object.Center, point, ray.Direction, sampler)

		switch result.Outcome {
		case material.Emitted:
			return PathResult{
				Color:       core.MultiplyVec(throughput, result.Attenuation),
				Bounces:     bounce + 1,
				Termination: Emitted,
			}
		case material.Absorbed:
			return PathResult{Bounces: bounce + 1, Termination: Absorbed}
		}

		throughput = core.MultiplyVec(throughput, result.Attenuation)
		ray = core.NewRay(point, result.Direction)
	}
}

// PixelColor averages SamplesPerPixel paths through the pixel. Each path
// draws from its own stream keyed by (seed, pixel index, sample index).
func (pt *PathTracingIntegrator) PixelColor(s *scene.Scene, x, y, width, height int, seed uint64) PixelResult {
	ray := CameraRay(s.Camera, x, y, width, height)
	samples := max(1, pt.config.SamplesPerPixel)
	pixelIndex := y*width + x

	var result PixelResult
	for sample := 0; sample < samples; sample++ {
		sampler := core.NewPixelSampler(seed, core.PixelStream(pixelIndex, sample))
		path := pt.Trace(ray, s, sampler)

		result.Color = result.Color.Add(path.Color)
		result.Paths[path.Termination]++
		result.Bounces += path.Bounces
	}

	result.Color = result.Color.Mul(1 / float32(samples))
	return result
}
