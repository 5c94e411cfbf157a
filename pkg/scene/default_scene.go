package scene

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// solid is shorthand for a constant color texture
func solid(r, g, b float32) material.Texture {
	return material.NewSolidColor(core.NewVec3(r, g, b))
}

// sphere is shorthand for building an object from loose material fields
func sphere(center core.Vec3, radius, emittance, reflectance, transmittance, diffuseness float32, texture material.Texture) geometry.Object {
	return geometry.NewObject(center, radius, material.Material{
		Emittance:     emittance,
		Reflectance:   reflectance,
		Transmittance: transmittance,
		Diffuseness:   diffuseness,
		Texture:       texture,
	})
}

// NewDefaultScene creates the demo room: assorted balls on a wood floor
// inside a faintly glowing spherical wall, lit by one small light
func NewDefaultScene() *Scene {
	camera := NewCamera(
		math.Pi/2,
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 1, 0),
	)

	s := NewScene(camera)
	s.SamplingConfig = SamplingConfig{
		MaxBounces:      16,
		SamplesPerPixel: 1,
	}

	s.Add(
		// red ball
		sphere(core.NewVec3(-4, -1, -5), 1, 0, 1, 0, 1, solid(1, 0, 0)),
		// blue ball
		sphere(core.NewVec3(-0.5, -1, -5), 1, 0, 0.1, 0.9, 0.01, solid(0, 0.6, 1)),
		// frosted glass ball
		sphere(core.NewVec3(-0.7, -0.5, -1.5), 0.5, 0, 0.1, 0.8, 0.04, solid(0.9, 0.9, 1)),
		// glass ball
		sphere(core.NewVec3(0.2, -0.5, -1), 0.5, 0, 0.1, 0.9, 0, solid(0.9, 0.9, 1)),
		// brass ball
		sphere(core.NewVec3(3, 1.5, -10), 4, 0, 1, 0, 0.1, solid(1, 0.4, 0.1)),
		// small mirror ball
		sphere(core.NewVec3(3, -1, -3.5), 1, 0, 0.9, 0, 0, solid(1, 1, 1)),
		// light
		sphere(core.NewVec3(-9, 10, 0), 1, 1, 0, 1, 0, solid(0.9, 0.9, 1)),
		// walls
		sphere(core.NewVec3(0, 0, 0), 20, 0.2, 0, 0, 1, solid(1, 1, 1)),
		// floor
		sphere(core.NewVec3(0, -102, 0), 100, 0, 1, 0, 0.02, material.NewWoodTexture()),
	)

	return s
}
