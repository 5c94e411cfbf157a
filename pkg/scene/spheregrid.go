package scene

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	// Convert hue from degrees to radians
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// Convert from OKLAB to linear RGB
	// Using simplified approximation for OKLAB to RGB conversion
	// This is not perfectly accurate but good enough for our purposes

	// First convert to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	// Cube the values
	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// Convert LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	// Clamp to [0, 1] range
	r = math.Max(0, math.Min(1, r))
	g = math.Max(0, math.Min(1, g))
	blue = math.Max(0, math.Min(1, blue))

	return core.NewVec3(float32(r), float32(g), float32(blue))
}

// NewSphereGridScene creates a grid of OKLCH-colored balls on grass under a sky dome
func NewSphereGridScene() *Scene {
	eye := core.NewVec3(4.5, 6, 18)
	lookAt := core.NewVec3(4.5, 0.8, 4.5)
	camera := NewCamera(
		float32(40*math.Pi/180),
		eye,
		lookAt.Sub(eye),
		core.NewVec3(0, 1, 0),
	)

	s := NewScene(camera)
	s.SamplingConfig = SamplingConfig{
		MaxBounces:      12,
		SamplesPerPixel: 4,
	}

	// Sky dome lights the scene from every direction
	s.Add(sphere(core.NewVec3(4.5, 0, 4.5), 200, 1, 0, 0, 0, material.NewSkyTexture()))

	// Ground: a huge sphere whose top sits at y=0
	s.Add(sphere(core.NewVec3(4.5, -1000, 4.5), 1000, 0, 1, 0, 1, material.NewGrassTexture()))

	gridSize := 10
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := float32(spacing * 0.35)

	// OKLCH parameters for color variation
	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float32(float64(i)*spacing - targetArea/2.0 + 4.5)
			z := float32(float64(j)*spacing - targetArea/2.0 + 4.5)
			position := core.NewVec3(x, sphereRadius, z)

			// Hue across X, chroma across Z
			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			// Vary how glossy each ball is
			diffuseness := float32(0.05 + 0.45*float64((i+j)%3)/2.0)
			s.Add(sphere(position, sphereRadius, 0, 0.95, 0, diffuseness, material.NewSolidColor(color)))
		}
	}

	return s
}
