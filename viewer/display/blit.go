package display

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Blitter draws a linear RGB float image over the whole viewport
type Blitter struct {
	program uint32
	texture uint32
	quadVAO uint32 // empty VAO for the fullscreen triangle
	width   int32
	height  int32
}

// blitVertSrc emits a fullscreen triangle from gl_VertexID. UV v is flipped
// so image row 0 lands at the top of the window.
const blitVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = vec2(pos[gl_VertexID].x * 0.5 + 0.5, 0.5 - pos[gl_VertexID].y * 0.5);
}
` + "\x00"

// blitFragSrc applies gamma 2 and clamps, matching the PNG output
const blitFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D image;

void main() {
    vec3 c = texture(image, fragUV).rgb;
    outColor = vec4(clamp(sqrt(max(c, vec3(0.0))), 0.0, 1.0), 1.0);
}
` + "\x00"

// NewBlitter initialises OpenGL and allocates a width x height float texture.
// Must be called after the window context is made current.
func NewBlitter(width, height int) (*Blitter, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	prog, err := newProgram(blitVertSrc, blitFragSrc)
	if err != nil {
		return nil, fmt.Errorf("shader compile: %w", err)
	}

	b := &Blitter{program: prog, width: int32(width), height: int32(height)}

	gl.GenVertexArrays(1, &b.quadVAO)

	gl.GenTextures(1, &b.texture)
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB32F, b.width, b.height, 0, gl.RGB, gl.FLOAT, nil)

	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("image\x00")), 0)
	return b, nil
}

// Upload replaces the texture with width*height RGB triples, row 0 first
func (b *Blitter) Upload(pixels []float32) error {
	if want := int(b.width) * int(b.height) * 3; len(pixels) != want {
		return fmt.Errorf("upload: got %d floats, want %d", len(pixels), want)
	}
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, b.width, b.height, gl.RGB, gl.FLOAT, gl.Ptr(pixels))
	return nil
}

// Draw fills the viewport with the current texture
func (b *Blitter) Draw(viewportWidth, viewportHeight int) {
	gl.Viewport(0, 0, int32(viewportWidth), int32(viewportHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(b.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.BindVertexArray(b.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// Destroy releases all GPU resources
func (b *Blitter) Destroy() {
	gl.DeleteTextures(1, &b.texture)
	gl.DeleteVertexArrays(1, &b.quadVAO)
	gl.DeleteProgram(b.program)
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
