package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Material describes how a sphere surface routes an incoming ray
type Material struct {
	Emittance     float32 // > 0 turns the surface into a light that ends the path
	Reflectance   float32 // probability of bouncing off the surface
	Transmittance float32 // probability of passing through; the rest is absorbed
	Diffuseness   float32 // probability of scattering into the hemisphere instead of specular
	Texture       Texture
}

// Outcome says what happened to a path at a bounce
type Outcome uint8

const (
	Scattered Outcome = iota // path continues along Bounce.Direction
	Emitted                  // path ends on a light
	Absorbed                 // path ends with no contribution
)

// String returns a readable outcome name
func (o Outcome) String() string {
	switch o {
	case Scattered:
		return "scattered"
	case Emitted:
		return "emitted"
	case Absorbed:
		return "absorbed"
	default:
		return "unknown"
	}
}

// Bounce contains the result of sampling one surface interaction
type Bounce struct {
	Outcome     Outcome
	Direction   core.Vec3 // Next ray direction (unit length), valid when Scattered
	Attenuation core.Vec3 // Multiplier for the path throughput, or emission when Emitted
	Normal      core.Vec3 // Shading normal facing the incoming ray
	Transmitted bool      // Ray continued through the surface
	Diffuse     bool      // Direction was drawn from the hemisphere
}

// Scatter samples the next path segment for a ray arriving at point on the
// sphere around center. Emissive surfaces terminate the path with
// texture*Emittance and no directness factor.
func (m Material) Scatter(center, point, incoming core.Vec3, sampler core.Sampler) Bounce {
	direction := core.Normalize(incoming)
	color := m.Texture.Evaluate(point, direction)

	if m.Emittance > 0 {
		return Bounce{
			Outcome:     Emitted,
			Attenuation: color.Mul(m.Emittance),
		}
	}

	// Orient the normal against the incoming ray so both faces shade the same
	normal := core.Normalize(point.Sub(center))
	if normal.Dot(direction) > 0 {
		normal = normal.Mul(-1)
	}

	directness := mgl32.Clamp(normal.Dot(direction.Mul(-1)), 0, 1)
	bounce := Bounce{
		Outcome:     Scattered,
		Attenuation: color.Mul(directness),
		Normal:      normal,
	}

	route := sampler.Get1D()
	switch {
	case route < m.Reflectance:
		// bounce off the surface
	case route < m.Reflectance+m.Transmittance:
		bounce.Transmitted = true
	default:
		return Bounce{Outcome: Absorbed, Normal: normal}
	}

	bounce.Diffuse = sampler.Get1D() < m.Diffuseness
	switch {
	case bounce.Transmitted && bounce.Diffuse:
		bounce.Direction = core.SampleCosineHemisphere(normal.Mul(-1), sampler.Get2D())
	case bounce.Transmitted:
		bounce.Direction = direction
	case bounce.Diffuse:
		bounce.Direction = core.SampleCosineHemisphere(normal, sampler.Get2D())
	default:
		bounce.Direction = core.Reflect(direction, normal)
	}
	bounce.Direction = core.Normalize(bounce.Direction)

	return bounce
}
