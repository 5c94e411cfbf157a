package material

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns the color at a hit point seen along direction.
	// Position is used by solid procedural textures, direction by the sky.
	Evaluate(point, direction core.Vec3) core.Vec3
}

// TextureKind is the discriminant of a Texture. The numeric values are part
// of the packed record format and must not be reordered.
type TextureKind uint8

const (
	TextureSolidColor TextureKind = 0
	TextureSky        TextureKind = 1
	TextureGrass      TextureKind = 2
	TextureWood       TextureKind = 3
)

// String returns the lowercase name used in scene files
func (k TextureKind) String() string {
	switch k {
	case TextureSolidColor:
		return "solid"
	case TextureSky:
		return "sky"
	case TextureGrass:
		return "grass"
	case TextureWood:
		return "wood"
	default:
		return fmt.Sprintf("texture(%d)", uint8(k))
	}
}

// ParseTextureKind maps a scene-file name back to its kind
func ParseTextureKind(name string) (TextureKind, error) {
	for _, k := range []TextureKind{TextureSolidColor, TextureSky, TextureGrass, TextureWood} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown texture %q", name)
}

// Valid reports whether k is one of the known kinds
func (k TextureKind) Valid() bool {
	return k <= TextureWood
}

// Texture is a tagged variant: Kind selects the evaluator, Color is only
// meaningful for TextureSolidColor.
type Texture struct {
	Kind  TextureKind
	Color core.Vec3
}

// NewSolidColor creates a constant color texture
func NewSolidColor(color core.Vec3) Texture {
	return Texture{Kind: TextureSolidColor, Color: color}
}

// NewSkyTexture creates the procedural sky gradient
func NewSkyTexture() Texture {
	return Texture{Kind: TextureSky}
}

// NewGrassTexture creates the procedural grass pattern
func NewGrassTexture() Texture {
	return Texture{Kind: TextureGrass}
}

// NewWoodTexture creates the procedural wood ring pattern
func NewWoodTexture() Texture {
	return Texture{Kind: TextureWood}
}

// Evaluate dispatches on the texture kind
func (t Texture) Evaluate(point, direction core.Vec3) core.Vec3 {
	switch t.Kind {
	case TextureSolidColor:
		return t.Color
	case TextureSky:
		return skyColor(direction)
	case TextureGrass:
		return grassColor(point)
	case TextureWood:
		return woodColor(point)
	default:
		return core.Vec3{}
	}
}
