package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the single-precision vector used throughout the renderer
type Vec3 = mgl32.Vec3

// Vec2 holds a pair of sample values
type Vec2 = mgl32.Vec2

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// MultiplyVec returns component-wise multiplication of two vectors
func MultiplyVec(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Clamp returns a vector with components clamped to [minVal, maxVal]
func Clamp(v Vec3, minVal, maxVal float32) Vec3 {
	return Vec3{
		mgl32.Clamp(v[0], minVal, maxVal),
		mgl32.Clamp(v[1], minVal, maxVal),
		mgl32.Clamp(v[2], minVal, maxVal),
	}
}

// GammaCorrect applies gamma correction to color values
func GammaCorrect(v Vec3, gamma float32) Vec3 {
	invGamma := 1.0 / float64(gamma)
	return Vec3{
		float32(math.Pow(float64(max(v[0], 0)), invGamma)),
		float32(math.Pow(float64(max(v[1], 0)), invGamma)),
		float32(math.Pow(float64(max(v[2], 0)), invGamma)),
	}
}

// Luminance returns the perceptual luminance of an RGB color
func Luminance(v Vec3) float32 {
	return 0.299*v[0] + 0.587*v[1] + 0.114*v[2]
}

// Normalize returns a unit vector in the same direction, or the zero vector
// for zero-length input (mgl32 would produce NaNs)
func Normalize(v Vec3) Vec3 {
	if v.Dot(v) == 0 {
		return Vec3{}
	}
	return v.Normalize()
}

// Reflect mirrors direction about the unit normal n
func Reflect(direction, n Vec3) Vec3 {
	return direction.Sub(n.Mul(2 * direction.Dot(n)))
}

// IsFinite reports whether every component is neither NaN nor infinite
func IsFinite(v Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Ray represents a ray with an origin and direction
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
