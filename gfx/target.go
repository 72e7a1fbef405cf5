package gfx

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/layerfx/layerfx/uniform"
)

// TargetPair is two equally sized FBO-backed color buffers exchanged
// between compositor stages. A half-float format keeps enough precision
// to avoid banding across many composited passes.
type TargetPair struct {
	fbo    [2]uint32
	tex    [2]uint32
	in     int
	out    int
	width  int
	height int
}

func newTargetPair(width, height int) (*TargetPair, error) {
	p := &TargetPair{in: 0, out: 1, width: width, height: height}

	for i := 0; i < 2; i++ {
		var fbo, tex uint32
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

		gl.GenFramebuffers(1, &fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
		if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
			return nil, fmt.Errorf("render target framebuffer %d is not complete", i)
		}

		p.fbo[i] = fbo
		p.tex[i] = tex
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return p, nil
}

// BindOutput makes the output buffer the active render destination.
func (p *TargetPair) BindOutput() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo[p.out])
}

// Swap exchanges the input and output labels. Constant time, no
// reallocation, and the two buffers never alias.
func (p *TargetPair) Swap() {
	p.in, p.out = p.out, p.in
}

// Input returns the input buffer's texture handle.
func (p *TargetPair) Input() uniform.Texture {
	return textureHandle(p.tex[p.in])
}

// Resize reallocates both buffers at the new size. Prior contents are
// discarded.
func (p *TargetPair) Resize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	for i := 0; i < 2; i++ {
		gl.BindTexture(gl.TEXTURE_2D, p.tex[i])
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (p *TargetPair) Size() (int, int) {
	return p.width, p.height
}

// Destroy releases both framebuffers and textures.
func (p *TargetPair) Destroy() {
	gl.DeleteFramebuffers(2, &p.fbo[0])
	gl.DeleteTextures(2, &p.tex[0])
}

// textureHandle is an always-ready GPU texture reference.
type textureHandle uint32

func (t textureHandle) Handle() (uint32, bool) {
	return uint32(t), true
}
