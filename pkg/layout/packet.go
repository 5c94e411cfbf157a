package layout

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var (
	// ErrMalformed is returned for packets that cannot be decoded
	ErrMalformed = errors.New("malformed packet")
	// ErrUnknownTexture is returned for texture tags outside the known set
	ErrUnknownTexture = errors.New("unknown texture tag")
)

var byteOrder = binary.LittleEndian

// Params are the per-render values packed next to the scene
type Params struct {
	Width           int
	Height          int
	Seed            uint64
	MaxBounces      int
	SamplesPerPixel int
}

// PacketSize returns the encoded size of a packet holding n objects
func PacketSize(n int) int {
	return HeaderSize + CameraSize + n*ObjectSize
}

// Encode packs the scene and render parameters into a packet
func Encode(s *scene.Scene, params Params) ([]byte, error) {
	if params.Width <= 0 || params.Height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrMalformed, params.Width, params.Height)
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"width", params.Width},
		{"height", params.Height},
		{"max bounces", params.MaxBounces},
		{"samples per pixel", params.SamplesPerPixel},
		{"object count", len(s.Objects)},
	} {
		if field.value < 0 || uint64(field.value) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %s %d does not fit in 32 bits", ErrMalformed, field.name, field.value)
		}
	}

	header := Header{
		Magic:           Magic,
		Version:         Version,
		Width:           uint32(params.Width),
		Height:          uint32(params.Height),
		Seed:            params.Seed,
		ObjectCount:     uint32(len(s.Objects)),
		MaxBounces:      uint32(params.MaxBounces),
		SamplesPerPixel: uint32(params.SamplesPerPixel),
	}
	camera := CameraRecord{
		Fovy: s.Camera.Fovy,
		Eye:  toFloat3(s.Camera.Eye),
		Look: toFloat3(s.Camera.Look),
		Up:   toFloat3(s.Camera.Up),
	}

	objects := make([]ObjectRecord, len(s.Objects))
	for i := range s.Objects {
		record, err := encodeObject(&s.Objects[i])
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		objects[i] = record
	}

	buf := bytes.NewBuffer(make([]byte, 0, PacketSize(len(objects))))
	for _, record := range []any{header, camera, objects} {
		if err := binary.Write(buf, byteOrder, record); err != nil {
			return nil, fmt.Errorf("encode packet: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Decode rebuilds the scene and parameters from a packet. The packet length
// must match the object count exactly.
func Decode(data []byte) (*scene.Scene, Params, error) {
	if len(data) < HeaderSize+CameraSize {
		return nil, Params{}, fmt.Errorf("%w: %d bytes is shorter than header and camera", ErrMalformed, len(data))
	}

	reader := bytes.NewReader(data)
	var header Header
	if err := binary.Read(reader, byteOrder, &header); err != nil {
		return nil, Params{}, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	if header.Magic != Magic {
		return nil, Params{}, fmt.Errorf("%w: bad magic %q", ErrMalformed, header.Magic[:])
	}
	if header.Version != Version {
		return nil, Params{}, fmt.Errorf("%w: version %d, want %d", ErrMalformed, header.Version, Version)
	}
	if header.Width == 0 || header.Height == 0 {
		return nil, Params{}, fmt.Errorf("%w: image size %dx%d", ErrMalformed, header.Width, header.Height)
	}
	if header.MaxBounces < 1 || header.SamplesPerPixel < 1 {
		return nil, Params{}, fmt.Errorf("%w: max bounces %d and samples per pixel %d must be at least 1",
			ErrMalformed, header.MaxBounces, header.SamplesPerPixel)
	}
	if want := PacketSize(int(header.ObjectCount)); len(data) != want {
		return nil, Params{}, fmt.Errorf("%w: %d objects need %d bytes, got %d",
			ErrMalformed, header.ObjectCount, want, len(data))
	}

	var camera CameraRecord
	if err := binary.Read(reader, byteOrder, &camera); err != nil {
		return nil, Params{}, fmt.Errorf("%w: camera: %v", ErrMalformed, err)
	}

	records := make([]ObjectRecord, header.ObjectCount)
	if err := binary.Read(reader, byteOrder, records); err != nil {
		return nil, Params{}, fmt.Errorf("%w: objects: %v", ErrMalformed, err)
	}

	params := Params{
		Width:           int(header.Width),
		Height:          int(header.Height),
		Seed:            header.Seed,
		MaxBounces:      int(header.MaxBounces),
		SamplesPerPixel: int(header.SamplesPerPixel),
	}

	s := scene.NewScene(scene.NewCamera(camera.Fovy, camera.Eye.vec3(), camera.Look.vec3(), camera.Up.vec3()))
	s.SamplingConfig = scene.SamplingConfig{
		MaxBounces:      params.MaxBounces,
		SamplesPerPixel: params.SamplesPerPixel,
	}
	for i, record := range records {
		object, err := decodeObject(record)
		if err != nil {
			return nil, Params{}, fmt.Errorf("object %d: %w", i, err)
		}
		s.Add(object)
	}
	return s, params, nil
}

func encodeObject(o *geometry.Object) (ObjectRecord, error) {
	texture, err := encodeTexture(o.Texture)
	if err != nil {
		return ObjectRecord{}, err
	}
	return ObjectRecord{
		Center:        toFloat3(o.Center),
		Radius:        o.Radius,
		Diffuseness:   o.Diffuseness,
		Emittance:     o.Emittance,
		Reflectance:   o.Reflectance,
		Transmittance: o.Transmittance,
		Texture:       texture,
	}, nil
}

func decodeObject(r ObjectRecord) (geometry.Object, error) {
	texture, err := decodeTexture(r.Texture)
	if err != nil {
		return geometry.Object{}, err
	}
	return geometry.NewObject(r.Center.vec3(), r.Radius, material.Material{
		Emittance:     r.Emittance,
		Reflectance:   r.Reflectance,
		Transmittance: r.Transmittance,
		Diffuseness:   r.Diffuseness,
		Texture:       texture,
	}), nil
}

func encodeTexture(t material.Texture) (TextureRecord, error) {
	if !t.Kind.Valid() {
		return TextureRecord{}, fmt.Errorf("%w: %d", ErrUnknownTexture, t.Kind)
	}
	record := TextureRecord{Tag: uint8(t.Kind)}
	if t.Kind == material.TextureSolidColor {
		record.Payload = [4]float32{t.Color.X(), t.Color.Y(), t.Color.Z(), 0}
	}
	return record, nil
}

func decodeTexture(r TextureRecord) (material.Texture, error) {
	kind := material.TextureKind(r.Tag)
	switch kind {
	case material.TextureSolidColor:
		return material.NewSolidColor(core.NewVec3(r.Payload[0], r.Payload[1], r.Payload[2])), nil
	case material.TextureSky:
		return material.NewSkyTexture(), nil
	case material.TextureGrass:
		return material.NewGrassTexture(), nil
	case material.TextureWood:
		return material.NewWoodTexture(), nil
	default:
		return material.Texture{}, fmt.Errorf("%w: %d", ErrUnknownTexture, r.Tag)
	}
}
