package geometry

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// MinTOI is the smallest time of impact accepted as a hit. Roots at or
// below it are treated as behind the ray origin, which keeps a bounce from
// re-hitting the surface it just left.
const MinTOI float32 = 1e-4

// Object is a sphere with a surface material
type Object struct {
	Center core.Vec3
	Radius float32
	material.Material
}

// NewObject creates a new sphere object
func NewObject(center core.Vec3, radius float32, mat material.Material) Object {
	return Object{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Intersect returns the time of impact of the ray with this sphere, or +Inf
func (o *Object) Intersect(ray core.Ray) float32 {
	return IntersectSphere(ray.Origin, ray.Direction, o.Center, o.Radius)
}

// Normal returns the outward unit normal at a point on the surface
func (o *Object) Normal(point core.Vec3) core.Vec3 {
	return core.Normalize(point.Sub(o.Center))
}

// IntersectSphere returns the nearest time of impact greater than MinTOI of
// the ray origin + t*direction with the sphere, or +Inf when there is none.
// The direction does not need to be unit length.
func IntersectSphere(origin, direction, center core.Vec3, radius float32) float32 {
	// Vector from sphere center to ray origin, widened so large wall
	// spheres keep their precision
	var oc, d [3]float64
	for i := range oc {
		oc[i] = float64(origin[i]) - float64(center[i])
		d[i] = float64(direction[i])
	}

	// Quadratic equation coefficients: at² + bt + c = 0
	a := dot64(d, d)
	b := 2 * dot64(oc, d)
	c := dot64(oc, oc) - float64(radius)*float64(radius)

	discriminant := b*b - 4*a*c
	if discriminant < 0 || a == 0 {
		return float32(math.Inf(1))
	}

	sqrtD := math.Sqrt(discriminant)
	near := float32((-b - sqrtD) / (2 * a))
	far := float32((-b + sqrtD) / (2 * a))

	// Try the closer intersection point first
	if near > MinTOI {
		return near
	}
	if far > MinTOI {
		return far
	}
	return float32(math.Inf(1))
}

func dot64(u, v [3]float64) float64 {
	return u[0]*v[0] + u[1]*v[1] + u[2]*v[2]
}
