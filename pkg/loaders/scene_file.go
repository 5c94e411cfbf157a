package loaders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ErrSceneFile is returned for scene files that cannot be parsed
var ErrSceneFile = errors.New("invalid scene file")

// SceneFile is the JSON representation of a scene
type SceneFile struct {
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Camera          CameraCfg   `json:"camera"`
	MaxBounces      int         `json:"maxBounces,omitempty"`
	SamplesPerPixel int         `json:"samplesPerPixel,omitempty"`
	Objects         []ObjectCfg `json:"objects"`
}

// CameraCfg uses degrees for the field of view (friendlier than radians)
type CameraCfg struct {
	FovyDeg float32    `json:"fovyDeg,omitempty"` // defaults to 90
	Eye     [3]float32 `json:"eye"`
	Look    [3]float32 `json:"look"` // defaults to -z
	Up      [3]float32 `json:"up"`   // defaults to +y
}

// TextureCfg names a texture kind; Color applies to "solid" only
type TextureCfg struct {
	Kind  string     `json:"kind"`
	Color [3]float32 `json:"color"`
}

// ObjectCfg is one sphere
type ObjectCfg struct {
	Comment       string     `json:"comment,omitempty"`
	Center        [3]float32 `json:"center"`
	Radius        float32    `json:"radius"`
	Emittance     float32    `json:"emittance,omitempty"`
	Reflectance   float32    `json:"reflectance,omitempty"`
	Transmittance float32    `json:"transmittance,omitempty"`
	Diffuseness   float32    `json:"diffuseness,omitempty"`
	Texture       TextureCfg `json:"texture"`
}

// LoadSceneFile reads and validates a JSON scene file
func LoadSceneFile(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScene decodes a JSON scene. Unknown fields are rejected so typos
// don't silently fall back to defaults.
func ParseScene(data []byte) (*scene.Scene, error) {
	var file SceneFile
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneFile, err)
	}
	return file.Build()
}

// Build constructs and validates the runtime scene
func (f SceneFile) Build() (*scene.Scene, error) {
	s := scene.NewScene(f.Camera.build())
	s.SamplingConfig = scene.MergeSamplingConfig(s.SamplingConfig, scene.SamplingConfig{
		MaxBounces:      f.MaxBounces,
		SamplesPerPixel: f.SamplesPerPixel,
	})

	for i, o := range f.Objects {
		object, err := o.build()
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %v", ErrSceneFile, i, err)
		}
		s.Add(object)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.SamplingConfig.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c CameraCfg) build() scene.Camera {
	fovy := c.FovyDeg
	if fovy == 0 {
		fovy = 90
	}
	look := toVec3(c.Look)
	if look == (core.Vec3{}) {
		look = core.NewVec3(0, 0, -1)
	}
	up := toVec3(c.Up)
	if up == (core.Vec3{}) {
		up = core.NewVec3(0, 1, 0)
	}
	return scene.NewCamera(fovy*math.Pi/180, toVec3(c.Eye), look, up)
}

func (o ObjectCfg) build() (geometry.Object, error) {
	kind, err := material.ParseTextureKind(o.Texture.Kind)
	if err != nil {
		return geometry.Object{}, err
	}
	texture := material.Texture{Kind: kind}
	if kind == material.TextureSolidColor {
		texture.Color = toVec3(o.Texture.Color)
	}

	return geometry.NewObject(toVec3(o.Center), o.Radius, material.Material{
		Emittance:     o.Emittance,
		Reflectance:   o.Reflectance,
		Transmittance: o.Transmittance,
		Diffuseness:   o.Diffuseness,
		Texture:       texture,
	}), nil
}

// FromScene converts a scene into its file representation
func FromScene(s *scene.Scene, name string) SceneFile {
	file := SceneFile{
		Name: name,
		Camera: CameraCfg{
			FovyDeg: s.Camera.Fovy * 180 / math.Pi,
			Eye:     fromVec3(s.Camera.Eye),
			Look:    fromVec3(s.Camera.Look),
			Up:      fromVec3(s.Camera.Up),
		},
		MaxBounces:      s.SamplingConfig.MaxBounces,
		SamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
		Objects:         make([]ObjectCfg, 0, len(s.Objects)),
	}

	for _, o := range s.Objects {
		cfg := ObjectCfg{
			Center:        fromVec3(o.Center),
			Radius:        o.Radius,
			Emittance:     o.Emittance,
			Reflectance:   o.Reflectance,
			Transmittance: o.Transmittance,
			Diffuseness:   o.Diffuseness,
			Texture:       TextureCfg{Kind: o.Texture.Kind.String()},
		}
		if o.Texture.Kind == material.TextureSolidColor {
			cfg.Texture.Color = fromVec3(o.Texture.Color)
		}
		file.Objects = append(file.Objects, cfg)
	}
	return file
}

// MarshalScene renders a scene as indented JSON
func MarshalScene(s *scene.Scene, name string) ([]byte, error) {
	return json.MarshalIndent(FromScene(s, name), "", "  ")
}

// DiscoverSceneFiles lists the JSON scene files in dir. Files that fail to
// parse are skipped.
func DiscoverSceneFiles(dir string) ([]scene.SceneInfo, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var scenes []scene.SceneInfo
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var file SceneFile
		if err := json.Unmarshal(data, &file); err != nil {
			continue
		}

		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name := file.Name
		if name == "" {
			name = id
		}
		scenes = append(scenes, scene.SceneInfo{
			ID:          "file:" + id,
			Name:        name,
			Description: file.Description,
			Type:        "file",
			FilePath:    path,
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes, nil
}

func toVec3(v [3]float32) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func fromVec3(v core.Vec3) [3]float32 {
	return [3]float32{v[0], v[1], v[2]}
}
