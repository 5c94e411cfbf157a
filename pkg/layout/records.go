// Package layout defines the flat binary records a scene is packed into
// before it crosses to a render backend. Every record has a fixed size and
// 16-byte aligned float3 slots so the same bytes could be uploaded to a
// std430 storage buffer unchanged.
package layout

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Record sizes in bytes
const (
	HeaderSize  = 48
	CameraSize  = 64
	ObjectSize  = 80
	TextureSize = 32
)

// Version is bumped whenever a record changes shape
const Version uint32 = 1

// Magic identifies a packet
var Magic = [4]byte{'S', 'P', 'T', '1'}

// Header leads every packet
type Header struct {
	Magic           [4]byte
	Version         uint32
	Width           uint32
	Height          uint32
	Seed            uint64
	ObjectCount     uint32
	MaxBounces      uint32
	SamplesPerPixel uint32
	_               [12]byte
}

// Float3 is a vector padded to 16 bytes
type Float3 struct {
	X, Y, Z float32
	_       float32
}

// CameraRecord holds the camera basis as supplied by the caller
type CameraRecord struct {
	Fovy float32
	_    [3]float32
	Eye  Float3
	Look Float3
	Up   Float3
}

// TextureRecord is a tagged union; only SolidColor uses the payload
type TextureRecord struct {
	Payload [4]float32
	Tag     uint8
	_       [15]byte
}

// ObjectRecord is one sphere with its material and texture inline
type ObjectRecord struct {
	Center        Float3
	Radius        float32
	Diffuseness   float32
	Emittance     float32
	Reflectance   float32
	Transmittance float32
	_             [3]float32
	Texture       TextureRecord
}

func toFloat3(v core.Vec3) Float3 {
	return Float3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func (f Float3) vec3() core.Vec3 {
	return core.NewVec3(f.X, f.Y, f.Z)
}
