package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Trace follows one path from ray through the scene
	Trace(ray core.Ray, scene *scene.Scene, sampler core.Sampler) PathResult

	// PixelColor estimates the radiance of one pixel. It must be a pure
	// function of its arguments so pixels can be evaluated in parallel.
	PixelColor(scene *scene.Scene, x, y, width, height int, seed uint64) PixelResult
}

// Termination records why a path stopped
type Termination uint8

const (
	Missed    Termination = iota // left the scene
	Emitted                      // reached a light
	Absorbed                     // absorbed by a surface
	Exhausted                    // ran out of bounce budget
	numTerminations
)

// String returns a readable termination name
func (t Termination) String() string {
	switch t {
	case Missed:
		return "missed"
	case Emitted:
		return "emitted"
	case Absorbed:
		return "absorbed"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// PathResult is the outcome of tracing a single path
type PathResult struct {
	Color       core.Vec3
	Bounces     int // Surface hits processed, including the terminating one
	Termination Termination
}

// PixelResult is the averaged estimate for one pixel plus path bookkeeping
type PixelResult struct {
	Color   core.Vec3
	Paths   [numTerminations]int // Path count per Termination
	Bounces int                  // Total bounces over all paths
}

// Count returns how many paths ended with the given termination
func (p PixelResult) Count(t Termination) int {
	if int(t) >= len(p.Paths) {
		return 0
	}
	return p.Paths[t]
}
