package gfx

import (
	"context"
	"fmt"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/layerfx/layerfx/compositor"
)

var glInitOnce sync.Once

// Full-screen quad as two triangles; the vertex shader derives UVs from
// the positions.
var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

const fallbackVertexSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// The error indicator: a flat magenta fill, so a broken pipeline is
// unmistakable on screen.
const fallbackFragmentSource = `#version 410 core
out vec4 fragColor;
void main() { fragColor = vec4(1.0, 0.0, 1.0, 1.0); }
`

// Device implements compositor.Device on OpenGL 4.1 core.
type Device struct {
	quadVAO    uint32
	quadVBO    uint32
	fallback   *program
	translator *gst.ShaderTranslator
	capture    *Offscreen
}

// NewDevice initializes the GL bindings, the full-screen quad geometry
// and the fallback program. The context must already be current. With
// translate set, shader sources are treated as WebGL2 and translated to
// GLSL 330 before compilation.
func NewDevice(translate bool) (*Device, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	d := &Device{}

	if translate {
		tr, err := gst.NewShaderTranslator(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create shader translator: %w", err)
		}
		d.translator = tr
	}

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	id, err := newProgram(fallbackVertexSource, fallbackFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback program: %w", err)
	}
	d.fallback = &program{id: id, locs: make(map[string]int32)}

	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)
	return d, nil
}

// Compile builds a program from the layer's vertex and fragment sources.
func (d *Device) Compile(vertex, fragment string) (compositor.Program, error) {
	names := make(map[string]string)
	if d.translator != nil {
		vs, err := d.translator.TranslateShader(vertex, "vertex", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL330)
		if err != nil {
			return nil, fmt.Errorf("vertex shader translation failed: %w", err)
		}
		fs, err := d.translator.TranslateShader(fragment, "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL330)
		if err != nil {
			return nil, fmt.Errorf("fragment shader translation failed: %w", err)
		}
		for name, v := range vs.Variables {
			names[name] = v.MappedName
		}
		for name, v := range fs.Variables {
			names[name] = v.MappedName
		}
		vertex, fragment = vs.Code, fs.Code
	}

	id, err := newProgram(vertex, fragment)
	if err != nil {
		return nil, err
	}
	return &program{id: id, locs: make(map[string]int32), names: names}, nil
}

// NewTargetPair allocates the ping-pong pair for the compositor.
func (d *Device) NewTargetPair(width, height int) (compositor.TargetPair, error) {
	return newTargetPair(width, height)
}

// SetCaptureTarget redirects display draws into an offscreen buffer.
// Record mode uses this to read the final composite back. Pass nil to
// restore direct-to-screen rendering.
func (d *Device) SetCaptureTarget(o *Offscreen) {
	d.capture = o
}

// BindDisplay makes the display surface (or the capture buffer in record
// mode) the render destination.
func (d *Device) BindDisplay() {
	if d.capture != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.capture.fbo)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawQuad() {
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (d *Device) FallbackProgram() compositor.Program {
	return d.fallback
}

// Destroy releases the device's GL resources.
func (d *Device) Destroy() {
	if d.fallback != nil {
		gl.DeleteProgram(d.fallback.id)
	}
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
}
