package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// createTestCamera looks down -z from the origin
func createTestCamera(fovy float32) scene.Camera {
	return scene.NewCamera(fovy, core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0))
}

func emissiveWhite() material.Material {
	return material.Material{
		Emittance: 1,
		Texture:   material.NewSolidColor(core.NewVec3(1, 1, 1)),
	}
}

func perfectMirror() material.Material {
	return material.Material{
		Reflectance: 1,
		Texture:     material.NewSolidColor(core.NewVec3(1, 1, 1)),
	}
}

// createMirrorTrap places the camera inside a perfect mirror so no path can escape
func createMirrorTrap() *scene.Scene {
	s := scene.NewScene(createTestCamera(math.Pi / 2))
	s.Add(geometry.NewObject(core.Vec3{}, 5, perfectMirror()))
	return s
}

func TestTrace_DirectEmissive(t *testing.T) {
	s := scene.NewScene(createTestCamera(0.1))
	s.Add(geometry.NewObject(core.NewVec3(0, 0, -5), 1, emissiveWhite()))

	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxBounces: 4, SamplesPerPixel: 1})
	result := integrator.PixelColor(s, 0, 0, 1, 1, 42)

	if result.Color != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected (1,1,1), got %v", result.Color)
	}
	if result.Count(Emitted) != 1 {
		t.Errorf("Expected one emitted path, got %v", result.Paths)
	}
	if result.Bounces != 1 {
		t.Errorf("Expected 1 bounce, got %d", result.Bounces)
	}
}

func TestTrace_MissIsBlack(t *testing.T) {
	s := scene.NewScene(createTestCamera(math.Pi / 2))
	// Small sphere behind the camera; no primary ray can reach it
	s.Add(geometry.NewObject(core.NewVec3(0, 0, 50), 0.5, emissiveWhite()))

	integrator := NewPathTracingIntegrator(scene.DefaultSamplingConfig())
	const width, height = 8, 6
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			result := integrator.PixelColor(s, x, y, width, height, 7)
			if result.Color != (core.Vec3{}) {
				t.Fatalf("Pixel (%d,%d): expected black, got %v", x, y, result.Color)
			}
			if result.Count(Missed) != 1 {
				t.Fatalf("Pixel (%d,%d): expected a missed path, got %v", x, y, result.Paths)
			}
		}
	}
}

func TestTrace_EmptySceneIsBlack(t *testing.T) {
	s := scene.NewScene(createTestCamera(math.Pi / 2))
	integrator := NewPathTracingIntegrator(scene.DefaultSamplingConfig())

	result := integrator.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), s, core.NewPixelSampler(1, 0))
	if result.Color != (core.Vec3{}) || result.Termination != Missed || result.Bounces != 0 {
		t.Errorf("Expected black missed path with 0 bounces, got %+v", result)
	}
}

func TestTrace_BounceBudget(t *testing.T) {
	s := createMirrorTrap()
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0.3, -0.2, -1).Normalize())

	for _, budget := range []int{1, 8, 128} {
		integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxBounces: budget, SamplesPerPixel: 1})
		result := integrator.Trace(ray, s, core.NewPixelSampler(3, 0))

		if result.Termination != Exhausted {
			t.Errorf("Budget %d: expected exhausted, got %v", budget, result.Termination)
		}
		if result.Color != UnterminatedColor {
			t.Errorf("Budget %d: expected sentinel %v, got %v", budget, UnterminatedColor, result.Color)
		}
		if result.Bounces != budget {
			t.Errorf("Budget %d: expected %d bounces, got %d", budget, budget, result.Bounces)
		}
	}
}

func TestTrace_AbsorbedIsBlack(t *testing.T) {
	s := scene.NewScene(createTestCamera(math.Pi / 2))
	absorber := material.Material{Texture: material.NewSolidColor(core.NewVec3(1, 1, 1))}
	s.Add(geometry.NewObject(core.NewVec3(0, 0, -3), 1, absorber))

	integrator := NewPathTracingIntegrator(scene.DefaultSamplingConfig())
	result := integrator.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), s, core.NewPixelSampler(5, 0))

	if result.Termination != Absorbed || result.Color != (core.Vec3{}) {
		t.Errorf("Expected black absorbed path, got %+v", result)
	}
}

func TestTrace_MirrorAttenuatesByDirectness(t *testing.T) {
	// Head-on mirror bounces straight back into a light behind the camera
	s := scene.NewScene(createTestCamera(math.Pi / 2))
	s.Add(geometry.NewObject(core.NewVec3(0, 0, -3), 1, perfectMirror()))
	s.Add(geometry.NewObject(core.NewVec3(0, 0, 10), 1, emissiveWhite()))

	integrator := NewPathTracingIntegrator(scene.DefaultSamplingConfig())
	result := integrator.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), s, core.NewPixelSampler(9, 0))

	if result.Termination != Emitted {
		t.Fatalf("Expected emitted path, got %v", result.Termination)
	}
	if result.Bounces != 2 {
		t.Errorf("Expected 2 bounces, got %d", result.Bounces)
	}
	if !result.Color.ApproxEqualThreshold(core.NewVec3(1, 1, 1), 1e-4) {
		t.Errorf("Expected near-white head-on reflection, got %v", result.Color)
	}
}

func TestPixelColor_Deterministic(t *testing.T) {
	s := scene.NewDefaultScene()
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxBounces: 16, SamplesPerPixel: 3})

	for _, p := range [][2]int{{0, 0}, {5, 3}, {15, 11}} {
		a := integrator.PixelColor(s, p[0], p[1], 16, 12, 2024)
		b := integrator.PixelColor(s, p[0], p[1], 16, 12, 2024)
		if a != b {
			t.Errorf("Pixel %v not deterministic: %+v != %+v", p, a, b)
		}
	}
}

func TestPixelColor_AveragesSamples(t *testing.T) {
	s := createMirrorTrap()
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxBounces: 2, SamplesPerPixel: 4})

	result := integrator.PixelColor(s, 1, 1, 4, 4, 11)
	if result.Count(Exhausted) != 4 {
		t.Errorf("Expected 4 exhausted paths, got %v", result.Paths)
	}
	if !result.Color.ApproxEqualThreshold(UnterminatedColor, 1e-6) {
		t.Errorf("Expected average of sentinels to be the sentinel, got %v", result.Color)
	}
	if result.Bounces != 8 {
		t.Errorf("Expected 8 total bounces, got %d", result.Bounces)
	}
}

func TestCameraRay(t *testing.T) {
	camera := createTestCamera(math.Pi / 2)
	const width, height = 100, 80

	center := CameraRay(camera, width/2, height/2, width, height)
	if !center.Direction.ApproxEqualThreshold(core.NewVec3(0, 0, -1), 1e-5) {
		t.Errorf("Center ray should look forward, got %v", center.Direction)
	}
	if center.Origin != camera.Eye {
		t.Errorf("Ray should start at the eye, got %v", center.Origin)
	}

	top := CameraRay(camera, width/2, 0, width, height)
	if top.Direction.Y() <= 0 {
		t.Errorf("Row 0 should look up, got %v", top.Direction)
	}
	left := CameraRay(camera, 0, height/2, width, height)
	if left.Direction.X() >= 0 {
		t.Errorf("Column 0 should look left, got %v", left.Direction)
	}

	// Corner ray rotates by half the field of view on each axis
	corner := CameraRay(camera, 0, 0, width, height)
	if math.Abs(float64(corner.Direction.Len())-1) > 1e-5 {
		t.Errorf("Expected unit direction, got length %f", corner.Direction.Len())
	}
	if corner.Direction.X() >= 0 || corner.Direction.Y() <= 0 {
		t.Errorf("Top-left ray should point up and left, got %v", corner.Direction)
	}
}

func TestTermination_String(t *testing.T) {
	tests := map[Termination]string{
		Missed:    "missed",
		Emitted:   "emitted",
		Absorbed:  "absorbed",
		Exhausted: "exhausted",
	}
	for termination, want := range tests {
		if got := termination.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}
