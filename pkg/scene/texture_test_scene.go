package scene

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// NewTextureTestScene lines up one ball per procedural texture on a grass field
func NewTextureTestScene() *Scene {
	eye := core.NewVec3(0, 2, 10)
	lookAt := core.NewVec3(0, 1, 0)
	camera := NewCamera(
		float32(50*math.Pi/180),
		eye,
		lookAt.Sub(eye),
		core.NewVec3(0, 1, 0),
	)

	s := NewScene(camera)
	s.SamplingConfig = SamplingConfig{
		MaxBounces:      10,
		SamplesPerPixel: 8,
	}

	s.Add(
		// sky dome
		sphere(core.NewVec3(0, 0, 0), 100, 1, 0, 0, 0, material.NewSkyTexture()),
		// grass field
		sphere(core.NewVec3(0, -500, 0), 500, 0, 1, 0, 1, material.NewGrassTexture()),
		// wood ball
		sphere(core.NewVec3(-3, 1, 0), 1, 0, 1, 0, 0.9, material.NewWoodTexture()),
		// grass ball
		sphere(core.NewVec3(0, 1, 0), 1, 0, 1, 0, 1, material.NewGrassTexture()),
		// tinted glass ball
		sphere(core.NewVec3(3, 1, 0), 1, 0, 0.1, 0.9, 0.02, solid(0.8, 0.9, 1)),
	)

	return s
}
