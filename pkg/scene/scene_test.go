package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

func testCamera() Camera {
	return NewCamera(math.Pi/2, core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0))
}

func mirror(center core.Vec3, radius float32) geometry.Object {
	return sphere(center, radius, 0, 1, 0, 0, solid(1, 1, 1))
}

func TestNearestHit_PointingAway(t *testing.T) {
	s := NewScene(testCamera())
	s.Add(
		mirror(core.NewVec3(0, 0, -5), 1),
		mirror(core.NewVec3(3, 2, -8), 2),
		mirror(core.NewVec3(-4, 0, -3), 0.5),
	)

	// Every sphere lies in the -z half-space; rays heading +z miss them all
	directions := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(0.3, 0.2, 1),
		core.NewVec3(-1, 0, 0.1),
	}
	for _, d := range directions {
		if hit, ok := s.NearestHit(core.NewRay(core.Vec3{}, d)); ok {
			t.Errorf("Expected miss for direction %v, got hit on object %d at t=%f", d, hit.Index, hit.TOI)
		}
	}
}

func TestNearestHit_PicksClosest(t *testing.T) {
	s := NewScene(testCamera())
	s.Add(
		mirror(core.NewVec3(0, 0, -10), 1), // t = 9
		mirror(core.NewVec3(0, 0, -5), 1),  // t = 4
		mirror(core.NewVec3(0, 5, -5), 1),  // off axis
	)

	hit, ok := s.NearestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	if !ok {
		t.Fatal("Expected hit, got miss")
	}
	if hit.Index != 1 {
		t.Errorf("Expected object 1, got %d", hit.Index)
	}
	if math.Abs(float64(hit.TOI-4)) > 1e-5 {
		t.Errorf("Expected t=4, got %f", hit.TOI)
	}
}

func TestNearestHit_TieBreakLowerIndex(t *testing.T) {
	// Both spheres touch z=-4 on the ray: small one at (0,0,-5) r=1, big one at (0,0,-10) r=6
	small := mirror(core.NewVec3(0, 0, -5), 1)
	big := mirror(core.NewVec3(0, 0, -10), 6)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	orders := [][]geometry.Object{{small, big}, {big, small}, {small, small}}
	for i, objects := range orders {
		s := NewScene(testCamera())
		s.Add(objects...)

		for run := 0; run < 3; run++ {
			hit, ok := s.NearestHit(ray)
			if !ok {
				t.Fatalf("Order %d: expected hit", i)
			}
			if hit.Index != 0 {
				t.Errorf("Order %d run %d: expected tie to resolve to index 0, got %d", i, run, hit.Index)
			}
		}
	}
}

func TestNearestHit_Empty(t *testing.T) {
	s := NewScene(testCamera())
	if _, ok := s.NearestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))); ok {
		t.Error("Expected miss on empty scene")
	}
}

func TestValidate_Objects(t *testing.T) {
	nan := float32(math.NaN())

	tests := []struct {
		name    string
		object  geometry.Object
		wantErr bool
	}{
		{"valid", mirror(core.NewVec3(0, 0, -5), 1), false},
		{"glass sums to one", sphere(core.Vec3{}, 1, 0, 0.1, 0.9, 0, solid(1, 1, 1)), false},
		{"zero radius", mirror(core.Vec3{}, 0), true},
		{"negative radius", mirror(core.Vec3{}, -1), true},
		{"NaN radius", mirror(core.Vec3{}, nan), true},
		{"NaN center", mirror(core.NewVec3(nan, 0, 0), 1), true},
		{"emittance above one", sphere(core.Vec3{}, 1, 1.5, 0, 0, 0, solid(1, 1, 1)), true},
		{"negative diffuseness", sphere(core.Vec3{}, 1, 0, 1, 0, -0.1, solid(1, 1, 1)), true},
		{"reflect plus transmit above one", sphere(core.Vec3{}, 1, 0, 0.6, 0.6, 0, solid(1, 1, 1)), true},
		{"unknown texture", sphere(core.Vec3{}, 1, 0, 1, 0, 0, material.Texture{Kind: 9}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene(testCamera())
			s.Add(tt.object)

			err := s.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidObject) {
					t.Errorf("Expected ErrInvalidObject, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_Camera(t *testing.T) {
	tests := []struct {
		name    string
		camera  Camera
		wantErr bool
	}{
		{"valid", testCamera(), false},
		{"zero fovy", NewCamera(0, core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0)), true},
		{"fovy pi", NewCamera(math.Pi, core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0)), true},
		{"zero look", NewCamera(1, core.Vec3{}, core.Vec3{}, core.NewVec3(0, 1, 0)), true},
		{"up parallel to look", NewCamera(1, core.Vec3{}, core.NewVec3(0, 2, 0), core.NewVec3(0, 1, 0)), true},
		{"NaN eye", NewCamera(1, core.NewVec3(float32(math.NaN()), 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene(tt.camera)
			err := s.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("Expected ErrInvalidCamera, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestCamera_AxesAndMovement(t *testing.T) {
	c := NewCamera(1, core.NewVec3(1, 2, 3), core.NewVec3(0, 0, -2), core.NewVec3(0, 1, 0))

	if !c.Forward().ApproxEqual(core.NewVec3(0, 0, -1)) {
		t.Errorf("Expected normalized forward, got %v", c.Forward())
	}
	if !c.Right().ApproxEqual(core.NewVec3(1, 0, 0)) {
		t.Errorf("Expected right (1,0,0), got %v", c.Right())
	}
	if !c.TrueUp().ApproxEqual(core.NewVec3(0, 1, 0)) {
		t.Errorf("Expected up (0,1,0), got %v", c.TrueUp())
	}

	c.MoveForward()
	if !c.Eye.ApproxEqual(core.NewVec3(1, 2, 1)) {
		t.Errorf("Expected eye (1,2,1) after moving forward, got %v", c.Eye)
	}
	c.MoveBackward()
	c.MoveBackward()
	if !c.Eye.ApproxEqual(core.NewVec3(1, 2, 5)) {
		t.Errorf("Expected eye (1,2,5) after moving back twice, got %v", c.Eye)
	}
}

func TestSamplingConfig(t *testing.T) {
	merged := MergeSamplingConfig(DefaultSamplingConfig(), SamplingConfig{MaxBounces: 64})
	if merged.MaxBounces != 64 || merged.SamplesPerPixel != 1 {
		t.Errorf("Unexpected merge result %+v", merged)
	}

	if err := (SamplingConfig{MaxBounces: 0, SamplesPerPixel: 1}).Validate(); !errors.Is(err, ErrInvalidSampling) {
		t.Errorf("Expected ErrInvalidSampling for zero bounces, got %v", err)
	}
	if err := (SamplingConfig{MaxBounces: 1, SamplesPerPixel: 0}).Validate(); !errors.Is(err, ErrInvalidSampling) {
		t.Errorf("Expected ErrInvalidSampling for zero samples, got %v", err)
	}
}
