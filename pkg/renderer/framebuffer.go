package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Framebuffer holds unclamped linear radiance, row-major with row 0 at the top
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the radiance at pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[y*fb.Width+x]
}

// Set stores the radiance at pixel (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Vec3) {
	fb.Pixels[y*fb.Width+x] = c
}

// ToRGBA converts the framebuffer to a displayable 8-bit image
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(fb.At(x, y)))
		}
	}
	return img
}

// Float32s flattens the framebuffer into RGB triples for texture upload
func (fb *Framebuffer) Float32s() []float32 {
	out := make([]float32, 0, len(fb.Pixels)*3)
	for _, p := range fb.Pixels {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = core.GammaCorrect(colorVec, 2.0)

	// Clamp to valid color range
	colorVec = core.Clamp(colorVec, 0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X()),
		G: uint8(255 * colorVec.Y()),
		B: uint8(255 * colorVec.Z()),
		A: 255,
	}
}
