package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Camera is a pinhole camera with a symmetric field of view
type Camera struct {
	Fovy float32   // Field of view in radians, applied to both axes
	Eye  core.Vec3 // Ray origin
	Look core.Vec3 // Forward direction, any length
	Up   core.Vec3 // Approximate up direction
}

// NewCamera creates a camera
func NewCamera(fovy float32, eye, look, up core.Vec3) Camera {
	return Camera{Fovy: fovy, Eye: eye, Look: look, Up: up}
}

// Forward returns the normalized look direction
func (c Camera) Forward() core.Vec3 {
	return core.Normalize(c.Look)
}

// Right returns normalize(look × up)
func (c Camera) Right() core.Vec3 {
	return core.Normalize(c.Look.Cross(c.Up))
}

// TrueUp returns the up axis made orthogonal to the look direction
func (c Camera) TrueUp() core.Vec3 {
	return c.Right().Cross(c.Forward())
}

// Move translates the eye
func (c *Camera) Move(offset core.Vec3) {
	c.Eye = c.Eye.Add(offset)
}

// MoveForward steps the eye along look, scaled by the look vector's length
func (c *Camera) MoveForward() {
	c.Move(c.Look)
}

// MoveBackward steps the eye against look
func (c *Camera) MoveBackward() {
	c.Move(c.Look.Mul(-1))
}

// Validate checks that the camera spans a usable view
func (c Camera) Validate() error {
	if !(c.Fovy > 0 && c.Fovy < math.Pi) {
		return fmt.Errorf("%w: fovy %v outside (0, pi)", ErrInvalidCamera, c.Fovy)
	}
	if !core.IsFinite(c.Eye) || !core.IsFinite(c.Look) || !core.IsFinite(c.Up) {
		return fmt.Errorf("%w: eye/look/up must be finite", ErrInvalidCamera)
	}
	if c.Look.Dot(c.Look) == 0 {
		return fmt.Errorf("%w: look is the zero vector", ErrInvalidCamera)
	}
	if c.Right() == (core.Vec3{}) {
		return fmt.Errorf("%w: up %v is parallel to look %v", ErrInvalidCamera, c.Up, c.Look)
	}
	return nil
}
