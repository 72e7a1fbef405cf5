package compositor

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/layerfx/layerfx/document"
	"github.com/layerfx/layerfx/uniform"
)

// Layer is one runtime compositing stage: an ordered list of compiled
// programs sharing a single uniform table owned exclusively by this
// layer.
type Layer struct {
	Kind            string
	Visible         bool
	Uniforms        uniform.Table
	Programs        []Program
	NeedsBackground bool
}

// ActiveProgram returns the program drawn for this layer. Only the first
// compiled pass is executed per frame; full multi-pass chaining is an
// extension point and the remaining programs are kept for it.
func (l *Layer) ActiveProgram() Program {
	return l.Programs[0]
}

// Builder constructs the runtime layer list from layer descriptions.
type Builder struct {
	Compiler Compiler

	// Loader resolves custom texture descriptors. Optional; without it
	// texture descriptors are logged and skipped.
	Loader TextureLoader

	// Textures are externally supplied named textures (for example the
	// audio spectrum texture). Each is merged into any layer whose
	// fragment sources reference its sampler name.
	Textures map[string]uniform.Texture
}

// Build turns descriptions into runtime layers, in input order. Layers
// without a vertex source, and passes without a fragment source, are
// dropped with a log line; a layer that ends up with zero compiled
// programs never enters the runtime list.
func (b *Builder) Build(descs []document.LayerDesc, width, height int) []*Layer {
	layers := make([]*Layer, 0, len(descs))
	for i := range descs {
		desc := &descs[i]
		if desc.Vertex == "" {
			log.Printf("Warning: layer %d (%q) has no vertex source, dropping layer", i, desc.Type)
			continue
		}

		l := &Layer{
			Kind:     desc.Type,
			Visible:  desc.IsVisible(),
			Uniforms: uniform.Defaults(width, height),
		}

		for p, frag := range desc.Fragments {
			if frag == "" {
				log.Printf("Warning: layer %d (%q) pass %s has no fragment source, dropping pass", i, desc.Type, passLabel(desc, p))
				continue
			}
			prog, err := b.Compiler.Compile(desc.Vertex, frag)
			if err != nil {
				log.Printf("Warning: layer %d (%q) pass %s failed to compile: %v", i, desc.Type, passLabel(desc, p), err)
				continue
			}
			l.Programs = append(l.Programs, prog)
			if referencesSampler(frag, uniform.BackgroundImage) {
				l.NeedsBackground = true
			}
		}

		if len(l.Programs) == 0 {
			log.Printf("Warning: layer %d (%q) has no usable passes, dropping layer", i, desc.Type)
			continue
		}

		l.Uniforms.MergeDeclared(desc.Type, desc.Uniforms)

		for name, tex := range b.Textures {
			if layerReferences(desc, name) {
				l.Uniforms.Set(name, uniform.TextureValue(tex))
			}
		}

		if desc.Texture != nil {
			if b.Loader == nil {
				log.Printf("Warning: layer %d (%q) wants texture %q but no loader is configured", i, desc.Type, desc.Texture.Src)
			} else {
				// The layer is usable immediately; the sampler reads as
				// an empty default until the load resolves.
				l.Uniforms.Set(desc.Texture.SamplerName(), uniform.TextureValue(b.Loader.Load(desc.Texture.Src)))
			}
		}

		layers = append(layers, l)
	}
	return layers
}

// passLabel names a pass for diagnostics, attaching the authored pass
// name when the document carries one.
func passLabel(desc *document.LayerDesc, p int) string {
	if p < len(desc.Passes) && desc.Passes[p].Name != "" {
		return fmt.Sprintf("%d (%s)", p, desc.Passes[p].Name)
	}
	return strconv.Itoa(p)
}

// referencesSampler reports whether the shader source textually uses the
// named sampler uniform.
func referencesSampler(source, name string) bool {
	return strings.Contains(source, name)
}

func layerReferences(desc *document.LayerDesc, name string) bool {
	for _, frag := range desc.Fragments {
		if referencesSampler(frag, name) {
			return true
		}
	}
	return false
}
