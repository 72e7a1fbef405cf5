package compositor

import (
	"fmt"

	"github.com/layerfx/layerfx/uniform"
)

// Recording fakes standing in for the GL backend.

type fakeTexture uint32

func (t fakeTexture) Handle() (uint32, bool) { return uint32(t), true }

type fakeProgram struct {
	fragment string
	applyErr error

	useCount   int
	applyCount int

	// Captured at Apply time.
	lastInput      uniform.Texture
	lastBackground uniform.Texture
	lastTime       float32
}

func (p *fakeProgram) Use() { p.useCount++ }

func (p *fakeProgram) Apply(t uniform.Table) error {
	p.applyCount++
	if v, ok := t.Get(uniform.InputImage); ok {
		p.lastInput = v.Tex
	}
	if v, ok := t.Get(uniform.BackgroundImage); ok {
		p.lastBackground = v.Tex
	}
	if v, ok := t.Get(uniform.Time); ok {
		p.lastTime = v.Data[0]
	}
	return p.applyErr
}

// fakeCompiler returns one fakeProgram per fragment source, failing any
// fragment listed in failOn.
type fakeCompiler struct {
	failOn   map[string]bool
	programs []*fakeProgram
}

func (c *fakeCompiler) Compile(vertex, fragment string) (Program, error) {
	if c.failOn[fragment] {
		return nil, fmt.Errorf("compile failed for %q", fragment)
	}
	p := &fakeProgram{fragment: fragment}
	c.programs = append(c.programs, p)
	return p, nil
}

type fakeLoader struct {
	requests []string
	tex      uniform.Texture
}

func (l *fakeLoader) Load(src string) uniform.Texture {
	l.requests = append(l.requests, src)
	return l.tex
}

// fakePair mirrors the GL target pair's index bookkeeping and appends
// destination changes to the shared event log.
type fakePair struct {
	dev     *fakeDevice
	tex     [2]fakeTexture
	in, out int
	width   int
	height  int

	swaps   int
	resizes int
}

func (p *fakePair) BindOutput() { p.dev.destination = fmt.Sprintf("target%d", p.out) }

func (p *fakePair) Swap() {
	p.in, p.out = p.out, p.in
	p.swaps++
}

func (p *fakePair) Input() uniform.Texture { return p.tex[p.in] }

func (p *fakePair) Resize(width, height int) {
	p.width, p.height = width, height
	p.resizes++
}

func (p *fakePair) Size() (int, int) { return p.width, p.height }

// fakeDevice records every draw together with the destination it went
// to.
type fakeDevice struct {
	pair        *fakePair
	fallback    *fakeProgram
	destination string
	draws       []string
	clears      int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{fallback: &fakeProgram{fragment: "fallback"}}
}

func (d *fakeDevice) Compile(vertex, fragment string) (Program, error) {
	return &fakeProgram{fragment: fragment}, nil
}

func (d *fakeDevice) NewTargetPair(width, height int) (TargetPair, error) {
	d.pair = &fakePair{
		dev:    d,
		tex:    [2]fakeTexture{1, 2},
		in:     0,
		out:    1,
		width:  width,
		height: height,
	}
	return d.pair, nil
}

func (d *fakeDevice) BindDisplay()           { d.destination = "display" }
func (d *fakeDevice) Viewport(w, h int)      {}
func (d *fakeDevice) Clear()                 { d.clears++ }
func (d *fakeDevice) DrawQuad()              { d.draws = append(d.draws, d.destination) }
func (d *fakeDevice) FallbackProgram() Program {
	return d.fallback
}
