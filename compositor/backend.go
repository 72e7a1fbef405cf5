package compositor

import "github.com/layerfx/layerfx/uniform"

// Program is one compiled vertex+fragment shader pair ready to draw
// with. Apply uploads the table's values; it reports an error when a
// binding the draw depends on is unavailable, in which case the caller
// skips the draw but keeps the pipeline bookkeeping consistent.
type Program interface {
	Use()
	Apply(t uniform.Table) error
}

// Compiler turns shader source text into an executable Program.
type Compiler interface {
	Compile(vertex, fragment string) (Program, error)
}

// TargetPair is two equally sized offscreen color buffers. The output
// buffer is the current render destination; the input buffer is readable
// as a texture. Swap exchanges the two labels in constant time and never
// aliases them.
type TargetPair interface {
	BindOutput()
	Swap()
	Input() uniform.Texture
	Resize(width, height int)
	Size() (width, height int)
}

// Device is the rendering backend the compositor drives. The GL
// implementation lives in the gfx package; tests substitute a recording
// fake.
type Device interface {
	Compiler
	NewTargetPair(width, height int) (TargetPair, error)
	BindDisplay()
	Viewport(width, height int)
	Clear()
	DrawQuad()
	FallbackProgram() Program
}

// TextureLoader begins an asynchronous fetch of a texture source and
// returns a handle that resolves once the image is decoded and uploaded.
// The handle reads as not-ready until then.
type TextureLoader interface {
	Load(src string) uniform.Texture
}
