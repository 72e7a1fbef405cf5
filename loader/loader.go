// Package loader is the image-loading collaborator: given a source
// locator it asynchronously yields a texture handle, which reads as
// not-ready until the fetch and decode complete.
package loader

import (
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	// Decoders for image.Decode.
	_ "image/jpeg"
	_ "image/png"

	"github.com/layerfx/layerfx/gfx"
	"github.com/layerfx/layerfx/uniform"
)

// Loader fetches and decodes texture images off the render thread.
type Loader struct {
	client *http.Client
}

func New() *Loader {
	return &Loader{
		client: &http.Client{Transport: &headerTransport{Transport: http.DefaultTransport}},
	}
}

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "layerfx/1.0")
	return t.Transport.RoundTrip(req)
}

// Load starts an asynchronous fetch of src (file path or http(s) URL)
// and returns the texture handle immediately. A failed load is logged
// and leaves the handle at its empty default forever.
func (l *Loader) Load(src string) uniform.Texture {
	images := make(chan image.Image, 1)
	go func() {
		defer close(images)
		img, err := l.fetch(src)
		if err != nil {
			log.Printf("Warning: failed to load texture %s: %v", src, err)
			return
		}
		images <- img
	}()
	return gfx.NewAsyncTexture(images)
}

func (l *Loader) fetch(src string) (image.Image, error) {
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := l.client.Get(src)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to download %s, status code: %d", src, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", src, err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", src, err)
	}
	return img, nil
}
