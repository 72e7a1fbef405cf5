package gfx

import (
	"fmt"
	"sort"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/layerfx/layerfx/uniform"
)

// program is a linked GL program with lazily cached uniform locations.
// When the sources went through the shader translator, names maps the
// authored uniform names to their translated ones.
type program struct {
	id    uint32
	locs  map[string]int32
	names map[string]string
}

func (p *program) Use() {
	gl.UseProgram(p.id)
}

func (p *program) location(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	lookup := name
	if mapped, ok := p.names[name]; ok {
		lookup = mapped
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(lookup+"\x00"))
	p.locs[name] = loc
	return loc
}

// Apply uploads the table's values to the program. Texture slots are
// assigned texture units in name order so bindings are stable between
// frames. A pending texture binds the zero texture, which samples as a
// defined empty default. A nil inputImage handle is the one condition
// that fails the bind, since the draw cannot mean anything without it.
func (p *program) Apply(t uniform.Table) error {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	var unit int32
	for _, name := range names {
		v := t[name]
		switch v.Kind {
		case uniform.KindScalar:
			if loc := p.location(name); loc != -1 {
				gl.Uniform1f(loc, v.Data[0])
			}
		case uniform.KindVec2:
			if loc := p.location(name); loc != -1 {
				gl.Uniform2f(loc, v.Data[0], v.Data[1])
			}
		case uniform.KindVec3:
			if loc := p.location(name); loc != -1 {
				gl.Uniform3f(loc, v.Data[0], v.Data[1], v.Data[2])
			}
		case uniform.KindVec4:
			if loc := p.location(name); loc != -1 {
				gl.Uniform4f(loc, v.Data[0], v.Data[1], v.Data[2], v.Data[3])
			}
		case uniform.KindTexture:
			loc := p.location(name)
			if loc == -1 {
				continue
			}
			var id uint32
			if v.Tex != nil {
				id, _ = v.Tex.Handle()
			} else if name == uniform.InputImage {
				return fmt.Errorf("input image texture is not bound")
			}
			gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
			gl.BindTexture(gl.TEXTURE_2D, id)
			gl.Uniform1i(loc, unit)
			unit++
		case uniform.KindOpaque:
			// Unknown declaration types carry no upload rule.
		}
	}
	return nil
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vertexShader)
	gl.AttachShader(prog, fragmentShader)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(prog, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return prog, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
