package gfx

import (
	"image"
	"image/draw"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// UploadImage creates a 2D texture from an image. The source is
// converted to RGBA first for a consistent upload path.
func UploadImage(img image.Image) uint32 {
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)

	width := int32(rgba.Rect.Size().X)
	height := int32(rgba.Rect.Size().Y)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return id
}

// AsyncTexture is a uniform texture slot backed by an asynchronous image
// load. Decoding happens off-thread; the GL upload is deferred to the
// first Handle call on the render thread after the image arrives. Until
// then Handle reports not-ready and the slot samples as empty.
type AsyncTexture struct {
	images <-chan image.Image
	id     uint32
	ready  bool
	failed bool
}

// NewAsyncTexture wraps a channel that will deliver at most one decoded
// image. A closed channel without a value marks the load as failed and
// the slot stays at its empty default.
func NewAsyncTexture(images <-chan image.Image) *AsyncTexture {
	return &AsyncTexture{images: images}
}

// Handle implements uniform.Texture. Called once per bind on the render
// thread, so the upload happens with the context current.
func (t *AsyncTexture) Handle() (uint32, bool) {
	if t.ready {
		return t.id, true
	}
	if t.failed {
		return 0, false
	}
	select {
	case img, ok := <-t.images:
		if !ok || img == nil {
			t.failed = true
			return 0, false
		}
		t.id = UploadImage(img)
		t.ready = true
		return t.id, true
	default:
		return 0, false
	}
}

// Destroy releases the texture if the upload happened.
func (t *AsyncTexture) Destroy() {
	if t.ready {
		gl.DeleteTextures(1, &t.id)
		t.ready = false
	}
}
