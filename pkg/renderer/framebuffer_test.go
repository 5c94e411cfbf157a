package renderer

import (
	"image/color"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestFramebuffer_ToRGBA(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, core.NewVec3(1, 0, 0))
	fb.Set(1, 0, core.NewVec3(0.25, 0.25, 0.25)) // gamma 2 -> 0.5
	fb.Set(0, 1, core.NewVec3(4, 4, 4))          // clamped
	fb.Set(1, 1, core.NewVec3(-1, 0, 0))         // negative clamps to 0

	img := fb.ToRGBA()
	tests := []struct {
		x, y     int
		expected color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{1, 0, color.RGBA{127, 127, 127, 255}},
		{0, 1, color.RGBA{255, 255, 255, 255}},
		{1, 1, color.RGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.expected {
			t.Errorf("Pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestFramebuffer_Float32s(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Set(0, 0, core.NewVec3(1, 2, 3))
	fb.Set(1, 0, core.NewVec3(4, 5, 6))

	got := fb.Float32s()
	expected := []float32{1, 2, 3, 4, 5, 6}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d floats, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Index %d: expected %f, got %f", i, expected[i], got[i])
		}
	}
}

func TestFramebuffer_RowMajor(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Set(2, 1, core.NewVec3(1, 1, 1))
	if fb.Pixels[5] != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected (2,1) at index 5, got %v", fb.Pixels)
	}
}
