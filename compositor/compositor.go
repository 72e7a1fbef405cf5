// Package compositor implements the multi-pass compositing pipeline: it
// turns layer descriptions into compiled shader passes and runs them in
// order once per frame, ping-ponging a pair of offscreen render targets
// so each stage consumes the previous stage's output.
package compositor

import (
	"fmt"
	"log"

	"github.com/layerfx/layerfx/uniform"
)

// Compositor owns the runtime layer list and the render target pair and
// drives one compositing pass per displayed frame. All methods must be
// called from the single rendering thread.
type Compositor struct {
	device Device
	layers []*Layer
	pair   TargetPair

	width  int
	height int

	pointerX float32
	pointerY float32
}

// New builds a compositor over an already-constructed layer list. The
// render target pair is allocated at the given surface size.
func New(device Device, layers []*Layer, width, height int) (*Compositor, error) {
	pair, err := device.NewTargetPair(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create render target pair: %w", err)
	}
	if len(layers) == 0 {
		log.Printf("Warning: no usable layers, every frame will draw the fallback indicator")
	}
	return &Compositor{
		device: device,
		layers: layers,
		pair:   pair,
		width:  width,
		height: height,
	}, nil
}

// Layers exposes the runtime layer list.
func (c *Compositor) Layers() []*Layer { return c.layers }

// SetPointer records the normalized pointer position (0..1, Y up) that
// the next frame propagates to every layer. Never fails, never blocks.
func (c *Compositor) SetPointer(x, y float32) {
	c.pointerX, c.pointerY = x, y
}

// Resize reallocates the render target pair and updates every layer's
// resolution uniform. Must run between frames, never mid-frame.
func (c *Compositor) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.pair.Resize(width, height)
	for _, l := range c.layers {
		l.Uniforms.Set(uniform.Resolution, uniform.Vec2(float32(width), float32(height)))
	}
}

// NormalizePointer maps a raw pointer position in surface pixels to the
// normalized (0..1) coordinates layers consume. Y is inverted so 0 is
// the bottom edge.
func NormalizePointer(x, y float64, width, height int) (float32, float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return float32(x / float64(width)), float32(1 - y/float64(height))
}

// RenderFrame runs one full compositing pass: refresh the per-frame
// uniforms, iterate the visible layers front to back through the target
// pair, and draw the last visible layer to the display surface.
func (c *Compositor) RenderFrame(elapsed float64) {
	for _, l := range c.layers {
		l.Uniforms.Set(uniform.Time, uniform.Scalar(float32(elapsed)))
		l.Uniforms.Set(uniform.Pointer, uniform.Vec2(c.pointerX, c.pointerY))
	}

	visible := c.visibleLayers()
	if len(visible) == 0 {
		c.drawFallback()
		return
	}

	c.pair.BindOutput()
	c.device.Viewport(c.width, c.height)
	c.device.Clear()

	// The pre-pipeline image: the texture that fed the very first
	// processed layer, captured once for layers that sample it.
	var background uniform.Texture

	for i, l := range visible {
		last := i == len(visible)-1

		l.Uniforms.Set(uniform.InputImage, uniform.TextureValue(c.pair.Input()))
		if l.NeedsBackground {
			bg := background
			if bg == nil {
				bg = c.pair.Input()
			}
			l.Uniforms.Set(uniform.BackgroundImage, uniform.TextureValue(bg))
		}

		if last {
			c.device.BindDisplay()
		} else {
			c.pair.BindOutput()
		}
		c.device.Viewport(c.width, c.height)
		c.device.Clear()

		prog := l.ActiveProgram()
		prog.Use()
		if err := prog.Apply(l.Uniforms); err != nil {
			// Skip the draw but keep swapping so later layers stay wired
			// to the right buffers.
			log.Printf("Warning: layer %q failed to bind, skipping draw: %v", l.Kind, err)
		} else {
			c.device.DrawQuad()
		}

		if !last {
			if background == nil {
				background = c.pair.Input()
			}
			c.pair.Swap()
		}
	}
}

// drawFallback paints the error-indicator so the display always shows a
// defined image even when no layer survived construction.
func (c *Compositor) drawFallback() {
	c.device.BindDisplay()
	c.device.Viewport(c.width, c.height)
	c.device.Clear()
	if fb := c.device.FallbackProgram(); fb != nil {
		fb.Use()
		c.device.DrawQuad()
	}
}

func (c *Compositor) visibleLayers() []*Layer {
	out := c.layers[:0:0]
	for _, l := range c.layers {
		if l.Visible {
			out = append(out, l)
		}
	}
	return out
}
