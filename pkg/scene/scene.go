package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

var (
	// ErrInvalidObject is returned for objects that cannot be rendered
	ErrInvalidObject = errors.New("invalid object")
	// ErrInvalidCamera is returned for degenerate camera settings
	ErrInvalidCamera = errors.New("invalid camera")
	// ErrInvalidSampling is returned for unusable sampling settings
	ErrInvalidSampling = errors.New("invalid sampling config")
)

// fractionTolerance absorbs rounding in Reflectance+Transmittance sums like 0.1+0.9
const fractionTolerance = 1e-5

// Scene contains all the elements needed for rendering
type Scene struct {
	Objects        []geometry.Object // Spheres, in tie-break order
	Camera         Camera
	SamplingConfig SamplingConfig // Recommended settings for this scene
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	MaxBounces      int // Bounce budget before the path is reported as unterminated
	SamplesPerPixel int // Number of paths averaged per pixel in one render
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		MaxBounces:      16,
		SamplesPerPixel: 1,
	}
}

// MergeSamplingConfig overlays non-zero fields of override onto base
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	if override.MaxBounces != 0 {
		base.MaxBounces = override.MaxBounces
	}
	if override.SamplesPerPixel != 0 {
		base.SamplesPerPixel = override.SamplesPerPixel
	}
	return base
}

// Validate checks the sampling settings
func (c SamplingConfig) Validate() error {
	if c.MaxBounces < 1 {
		return fmt.Errorf("%w: max bounces %d < 1", ErrInvalidSampling, c.MaxBounces)
	}
	if c.SamplesPerPixel < 1 {
		return fmt.Errorf("%w: samples per pixel %d < 1", ErrInvalidSampling, c.SamplesPerPixel)
	}
	return nil
}

// Hit identifies the nearest object along a ray
type Hit struct {
	Index int     // Position of the object in Scene.Objects
	TOI   float32 // Time of impact along the ray
}

// NewScene creates an empty scene with the given camera
func NewScene(camera Camera) *Scene {
	return &Scene{
		Camera:         camera,
		Objects:        make([]geometry.Object, 0),
		SamplingConfig: DefaultSamplingConfig(),
	}
}

// Add appends objects to the scene
func (s *Scene) Add(objects ...geometry.Object) {
	s.Objects = append(s.Objects, objects...)
}

// NearestHit returns the closest object hit by the ray. Only a strictly
// smaller time replaces the current best, so equal times resolve to the
// lower index.
func (s *Scene) NearestHit(ray core.Ray) (Hit, bool) {
	best := Hit{Index: -1, TOI: float32(math.Inf(1))}

	for i := range s.Objects {
		toi := s.Objects[i].Intersect(ray)
		if toi < best.TOI {
			best = Hit{Index: i, TOI: toi}
		}
	}

	return best, best.Index >= 0
}

// Validate rejects scenes that would render garbage
func (s *Scene) Validate() error {
	if err := s.Camera.Validate(); err != nil {
		return err
	}
	for i := range s.Objects {
		if err := validateObject(&s.Objects[i]); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

func validateObject(o *geometry.Object) error {
	if !core.IsFinite(o.Center) {
		return fmt.Errorf("%w: center %v is not finite", ErrInvalidObject, o.Center)
	}
	if !(o.Radius > 0) || math.IsInf(float64(o.Radius), 0) {
		return fmt.Errorf("%w: radius %v must be positive and finite", ErrInvalidObject, o.Radius)
	}

	fractions := []struct {
		name  string
		value float32
	}{
		{"emittance", o.Emittance},
		{"reflectance", o.Reflectance},
		{"transmittance", o.Transmittance},
		{"diffuseness", o.Diffuseness},
	}
	for _, f := range fractions {
		if !(f.value >= 0 && f.value <= 1) {
			return fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalidObject, f.name, f.value)
		}
	}
	if o.Reflectance+o.Transmittance > 1+fractionTolerance {
		return fmt.Errorf("%w: reflectance %v + transmittance %v exceeds 1",
			ErrInvalidObject, o.Reflectance, o.Transmittance)
	}

	if !o.Texture.Kind.Valid() {
		return fmt.Errorf("%w: unknown texture kind %d", ErrInvalidObject, o.Texture.Kind)
	}
	if !core.IsFinite(o.Texture.Color) {
		return fmt.Errorf("%w: texture color %v is not finite", ErrInvalidObject, o.Texture.Color)
	}
	return nil
}
