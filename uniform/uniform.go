package uniform

import (
	"fmt"
	"log"
)

// Reserved uniform names. Every layer's table contains these entries;
// the pipeline rewrites them each frame (or on resize) before drawing.
const (
	Time            = "time"
	Resolution      = "resolution"
	Pointer         = "pointer"
	InputImage      = "inputImage"
	BackgroundImage = "backgroundImage"

	// DefaultTextureName is the sampler a custom texture descriptor binds
	// to when the document does not name one.
	DefaultTextureName = "customTexture"
)

// pipelineManaged lists the reserved names that layer declarations may
// never overwrite. backgroundImage is deliberately absent: a layer may
// declare it, but the compositor rebinds it whenever the layer actually
// samples the background.
var pipelineManaged = map[string]bool{
	Time:       true,
	Resolution: true,
	Pointer:    true,
	InputImage: true,
}

// Kind tags the variants of a uniform value.
type Kind int

const (
	KindScalar Kind = iota
	KindVec2
	KindVec3
	KindVec4
	KindTexture
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindTexture:
		return "texture"
	default:
		return "opaque"
	}
}

// Texture is a GPU texture handle held in a uniform slot. Handle reports
// the texture name and whether the texture is ready to sample; pending
// asynchronous loads return (0, false) and the program binds an empty
// default instead.
type Texture interface {
	Handle() (uint32, bool)
}

// Value is a closed tagged union of the types a uniform can carry.
// Data holds the numeric components for scalar/vector kinds.
type Value struct {
	Kind Kind
	Data [4]float32
	Tex  Texture
	Raw  any
}

func Scalar(v float32) Value {
	return Value{Kind: KindScalar, Data: [4]float32{v}}
}

func Vec2(x, y float32) Value {
	return Value{Kind: KindVec2, Data: [4]float32{x, y}}
}

func Vec3(x, y, z float32) Value {
	return Value{Kind: KindVec3, Data: [4]float32{x, y, z}}
}

func Vec4(x, y, z, w float32) Value {
	return Value{Kind: KindVec4, Data: [4]float32{x, y, z, w}}
}

func TextureValue(t Texture) Value {
	return Value{Kind: KindTexture, Tex: t}
}

func Opaque(raw any) Value {
	return Value{Kind: KindOpaque, Raw: raw}
}

// Table maps uniform names to typed values. Each layer owns exactly one
// table; tables are never shared between layers.
type Table map[string]Value

// Defaults returns a fresh table holding the reserved entries sized for
// the given surface dimensions.
func Defaults(width, height int) Table {
	return Table{
		Time:            Scalar(0),
		Resolution:      Vec2(float32(width), float32(height)),
		Pointer:         Vec2(0, 0),
		InputImage:      TextureValue(nil),
		BackgroundImage: TextureValue(nil),
	}
}

// Clone returns an independent copy of the table. Values are plain data,
// so copying the map is a deep copy for everything except texture
// handles, which are shared GPU resources by design.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func (t Table) Set(name string, v Value) {
	t[name] = v
}

func (t Table) Get(name string) (Value, bool) {
	v, ok := t[name]
	return v, ok
}

// MergeDeclared folds layer-declared uniforms into the table. Reserved
// pipeline-managed names are skipped. Unknown type tags are kept as
// opaque values so new declaration types degrade gracefully.
func (t Table) MergeDeclared(kind string, decls map[string]Declaration) {
	for name, decl := range decls {
		if pipelineManaged[name] {
			log.Printf("Warning: layer %q declares reserved uniform %q, ignoring", kind, name)
			continue
		}
		v, err := Convert(decl.Type, decl.Value)
		if err != nil {
			log.Printf("Warning: layer %q uniform %q: %v", kind, name, err)
		}
		t[name] = v
	}
}

// Declaration is a declared uniform as it appears in the layer document:
// a type tag plus the raw decoded JSON value.
type Declaration struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Convert builds a Value from a declaration. Known tags are "1f" (scalar)
// and "2f" (two-component vector, accepting either [x, y] or {x:, y:}).
// Anything else is passed through opaquely with a non-nil error so the
// caller can log the unhandled tag.
func Convert(typeTag string, raw any) (Value, error) {
	switch typeTag {
	case "1f":
		f, ok := toFloat(raw)
		if !ok {
			return Opaque(raw), fmt.Errorf("type 1f wants a number, got %T", raw)
		}
		return Scalar(f), nil
	case "2f":
		switch v := raw.(type) {
		case []any:
			if len(v) != 2 {
				return Opaque(raw), fmt.Errorf("type 2f wants 2 components, got %d", len(v))
			}
			x, okx := toFloat(v[0])
			y, oky := toFloat(v[1])
			if !okx || !oky {
				return Opaque(raw), fmt.Errorf("type 2f has non-numeric components")
			}
			return Vec2(x, y), nil
		case map[string]any:
			x, okx := toFloat(v["x"])
			y, oky := toFloat(v["y"])
			if !okx || !oky {
				return Opaque(raw), fmt.Errorf("type 2f object wants numeric x and y")
			}
			return Vec2(x, y), nil
		default:
			return Opaque(raw), fmt.Errorf("type 2f wants an array or {x,y} object, got %T", raw)
		}
	default:
		return Opaque(raw), fmt.Errorf("unhandled uniform type %q, passing value through", typeTag)
	}
}

func toFloat(raw any) (float32, bool) {
	switch v := raw.(type) {
	case float64:
		return float32(v), true
	case float32:
		return v, true
	case int:
		return float32(v), true
	default:
		return 0, false
	}
}
