package scene

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// NewCornellScene creates a Cornell box whose walls are huge spheres, with
// a mirror ball, a glass ball and a glowing ceiling cap
func NewCornellScene() *Scene {
	camera := NewCamera(
		math.Pi/4,
		core.NewVec3(50, 46, 155.6),
		core.NewVec3(0, -0.042612, -1),
		core.NewVec3(0, 1, 0),
	)

	s := NewScene(camera)
	s.SamplingConfig = SamplingConfig{
		MaxBounces:      24,
		SamplesPerPixel: 4,
	}

	const wall = 1e4
	// Walls absorb a fifth of the light so paths end before the bounce budget
	const wallReflectance = 0.8
	s.Add(
		// left (red)
		sphere(core.NewVec3(wall+1, 40.8, 81.6), wall, 0, wallReflectance, 0, 1, solid(0.75, 0.25, 0.25)),
		// right (blue)
		sphere(core.NewVec3(-wall+99, 40.8, 81.6), wall, 0, wallReflectance, 0, 1, solid(0.25, 0.25, 0.75)),
		// back
		sphere(core.NewVec3(50, 40.8, wall), wall, 0, wallReflectance, 0, 1, solid(0.75, 0.75, 0.75)),
		// front (behind the camera)
		sphere(core.NewVec3(50, 40.8, -wall+170), wall, 0, 0, 0, 1, solid(0, 0, 0)),
		// floor
		sphere(core.NewVec3(50, wall, 81.6), wall, 0, wallReflectance, 0, 1, solid(0.75, 0.75, 0.75)),
		// ceiling
		sphere(core.NewVec3(50, -wall+81.6, 81.6), wall, 0, wallReflectance, 0, 1, solid(0.75, 0.75, 0.75)),
		// mirror ball
		sphere(core.NewVec3(27, 16.5, 47), 16.5, 0, 1, 0, 0, solid(0.999, 0.999, 0.999)),
		// glass ball
		sphere(core.NewVec3(73, 16.5, 78), 16.5, 0, 0.1, 0.9, 0, solid(0.999, 0.999, 0.999)),
		// light cap poking through the ceiling
		sphere(core.NewVec3(50, 681.6-0.27, 81.6), 600, 1, 0, 0, 0, solid(1, 1, 1)),
	)

	return s
}
