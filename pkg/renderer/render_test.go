package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/layout"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func startedPool(t *testing.T, workers, tileSize int) *WorkerPool {
	t.Helper()
	pool := NewWorkerPool(workers, tileSize)
	pool.Start()
	t.Cleanup(pool.Stop)
	return pool
}

func smallConfig(seed uint64) RenderConfig {
	return RenderConfig{Width: 24, Height: 18, Seed: seed, SamplesPerPixel: 2}
}

func TestRender_BackendParity(t *testing.T) {
	s := scene.NewDefaultScene()
	config := smallConfig(77)

	reference, refStats, err := Render(context.Background(), s, config, NewSerialBackend())
	if err != nil {
		t.Fatalf("Serial render failed: %v", err)
	}

	pools := []struct {
		workers, tileSize int
	}{
		{1, 64},
		{4, 5},
		{3, 7},
	}
	for _, p := range pools {
		fb, stats, err := Render(context.Background(), s, config, startedPool(t, p.workers, p.tileSize))
		if err != nil {
			t.Fatalf("Pool %+v failed: %v", p, err)
		}
		for i := range reference.Pixels {
			if fb.Pixels[i] != reference.Pixels[i] {
				t.Fatalf("Pool %+v pixel %d: %v != %v", p, i, fb.Pixels[i], reference.Pixels[i])
			}
		}
		if stats.TotalSamples != refStats.TotalSamples || stats.Exhausted != refStats.Exhausted {
			t.Errorf("Pool %+v stats differ: %+v vs %+v", p, stats, refStats)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	s := scene.NewDefaultScene()
	pool := startedPool(t, 4, 8)

	a, _, err := Render(context.Background(), s, smallConfig(5), pool)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	b, _, err := Render(context.Background(), s, smallConfig(5), pool)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	c, _, err := Render(context.Background(), s, smallConfig(6), pool)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	differs := false
	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			t.Fatalf("Pixel %d differs between identical renders", i)
		}
		if a.Pixels[i] != c.Pixels[i] {
			differs = true
		}
	}
	if !differs {
		t.Error("Expected a different seed to change the image")
	}
}

func TestRender_OutputShape(t *testing.T) {
	s := scene.NewDefaultScene()
	for _, size := range [][2]int{{1, 1}, {7, 3}, {3, 7}} {
		config := RenderConfig{Width: size[0], Height: size[1], Seed: 1}
		fb, stats, err := Render(context.Background(), s, config, NewSerialBackend())
		if err != nil {
			t.Fatalf("Render %v failed: %v", size, err)
		}
		if fb.Width != size[0] || fb.Height != size[1] || len(fb.Pixels) != size[0]*size[1] {
			t.Errorf("Expected %dx%d buffer, got %dx%d with %d pixels", size[0], size[1], fb.Width, fb.Height, len(fb.Pixels))
		}
		if stats.TotalPixels != size[0]*size[1] {
			t.Errorf("Expected %d pixels in stats, got %d", size[0]*size[1], stats.TotalPixels)
		}
	}
}

func TestRender_MissSceneIsBlack(t *testing.T) {
	s := scene.NewScene(createTestCamera())
	s.Add(geometry.NewObject(core.NewVec3(0, 0, 100), 1, material.Material{
		Emittance: 1,
		Texture:   material.NewSolidColor(core.NewVec3(1, 1, 1)),
	}))

	fb, stats, err := Render(context.Background(), s, RenderConfig{Width: 16, Height: 9, Seed: 3}, startedPool(t, 2, 4))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i, c := range fb.Pixels {
		if c != (core.Vec3{}) {
			t.Fatalf("Pixel %d: expected black, got %v", i, c)
		}
	}
	if stats.Missed != 16*9 {
		t.Errorf("Expected every path to miss, got %+v", stats)
	}
}

func TestRender_BounceBudgetSentinel(t *testing.T) {
	// Camera inside a perfect mirror: every path exhausts its budget
	s := scene.NewScene(createTestCamera())
	s.Add(geometry.NewObject(core.Vec3{}, 10, material.Material{
		Reflectance: 1,
		Texture:     material.NewSolidColor(core.NewVec3(1, 1, 1)),
	}))

	for _, budget := range []int{1, 8, 128} {
		config := RenderConfig{Width: 4, Height: 3, Seed: 9, MaxBounces: budget}
		fb, stats, err := Render(context.Background(), s, config, NewSerialBackend())
		if err != nil {
			t.Fatalf("Budget %d: render failed: %v", budget, err)
		}
		for i, c := range fb.Pixels {
			if c != integrator.UnterminatedColor {
				t.Fatalf("Budget %d pixel %d: expected sentinel, got %v", budget, i, c)
			}
		}
		if stats.TotalBounces != budget*12 {
			t.Errorf("Budget %d: expected %d bounces, got %d", budget, budget*12, stats.TotalBounces)
		}
	}
}

func TestRender_ConfigurationErrors(t *testing.T) {
	backend := NewSerialBackend()

	badRadius := scene.NewDefaultScene()
	badRadius.Objects[2].Radius = 0

	badFraction := scene.NewDefaultScene()
	badFraction.Objects[0].Reflectance = 0.8
	badFraction.Objects[0].Transmittance = 0.5

	nanCenter := scene.NewDefaultScene()
	nanCenter.Objects[1].Center = core.NewVec3(float32(math.NaN()), 0, 0)

	badCamera := scene.NewDefaultScene()
	badCamera.Camera.Up = badCamera.Camera.Look

	tests := []struct {
		name     string
		scene    *scene.Scene
		config   RenderConfig
		expected error
	}{
		{"zero radius", badRadius, smallConfig(1), scene.ErrInvalidObject},
		{"fractions exceed one", badFraction, smallConfig(1), scene.ErrInvalidObject},
		{"nan center", nanCenter, smallConfig(1), scene.ErrInvalidObject},
		{"parallel up", badCamera, smallConfig(1), scene.ErrInvalidCamera},
		{"zero width", scene.NewDefaultScene(), RenderConfig{Width: 0, Height: 4}, ErrInvalidConfig},
		{"negative bounces", scene.NewDefaultScene(), RenderConfig{Width: 4, Height: 4, MaxBounces: -1}, ErrInvalidConfig},
		{"bounces overflow packet", scene.NewDefaultScene(), RenderConfig{Width: 2, Height: 2, Seed: 1, MaxBounces: 1 << 32}, layout.ErrMalformed},
		{"samples overflow packet", scene.NewDefaultScene(), RenderConfig{Width: 2, Height: 2, Seed: 1, SamplesPerPixel: 1 << 32}, layout.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, _, err := Render(context.Background(), tt.scene, tt.config, backend)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
			if fb != nil {
				t.Error("Expected no framebuffer on error")
			}
		})
	}
}

func TestDispatch_MalformedPacket(t *testing.T) {
	packet, err := layout.Encode(scene.NewDefaultScene(), layout.Params{Width: 4, Height: 4, MaxBounces: 4, SamplesPerPixel: 1})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	packet[layout.HeaderSize+layout.CameraSize+48+16] = 200 // texture tag of object 0

	backends := []Backend{NewSerialBackend(), startedPool(t, 2, 4)}
	for _, backend := range backends {
		fb, _, err := backend.Dispatch(context.Background(), packet)
		if !errors.Is(err, ErrBackend) || !errors.Is(err, layout.ErrUnknownTexture) {
			t.Errorf("%s: expected ErrBackend wrapping ErrUnknownTexture, got %v", backend.Name(), err)
		}
		if fb != nil {
			t.Errorf("%s: expected no framebuffer", backend.Name())
		}

		if _, _, err := backend.Dispatch(context.Background(), packet[:10]); !errors.Is(err, ErrBackend) {
			t.Errorf("%s: expected ErrBackend for truncated packet, got %v", backend.Name(), err)
		}
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backends := []Backend{NewSerialBackend(), startedPool(t, 2, 4)}
	for _, backend := range backends {
		fb, _, err := Render(ctx, scene.NewDefaultScene(), smallConfig(1), backend)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", backend.Name(), err)
		}
		if fb != nil {
			t.Errorf("%s: expected no framebuffer", backend.Name())
		}
	}
}

func TestRender_BuiltInScenesRarelyExhaust(t *testing.T) {
	for _, id := range []string{"default", "cornell", "sphere-grid"} {
		t.Run(id, func(t *testing.T) {
			s, err := scene.NewBuiltInScene(id)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			_, stats, err := Render(context.Background(), s, RenderConfig{Width: 40, Height: 30, Seed: 5}, NewSerialBackend())
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			// Exhausted paths show up as magenta speckle
			if frac := float64(stats.Exhausted) / float64(stats.TotalSamples); frac > 0.03 {
				t.Errorf("Expected under 3%% exhausted paths, got %d of %d (%.1f%%)",
					stats.Exhausted, stats.TotalSamples, 100*frac)
			}
		})
	}
}
