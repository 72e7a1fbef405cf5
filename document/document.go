// Package document loads and parses the layer-description document that
// drives the compositor. The document must be fully available before
// construction begins; a missing or unparsable document is fatal.
package document

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/layerfx/layerfx/uniform"
)

// Document is the top-level record. History holds the ordered list of
// layer descriptions, applied front to back.
type Document struct {
	History []LayerDesc
}

// LayerDesc describes one compositor stage as authored. It is immutable
// once loaded; runtime state lives in compositor.Layer.
type LayerDesc struct {
	Type      string                         `json:"type"`
	Visible   *bool                          `json:"visible"`
	Passes    []Pass                         `json:"passes"`
	Uniforms  map[string]uniform.Declaration `json:"uniforms"`
	Vertex    string                         `json:"vertex"`
	Fragments []string                       `json:"fragments"`
	Texture   *TextureRef                    `json:"texture"`
}

// Pass carries per-pass metadata. The fragment source list is the
// authoritative pass order; pass names label build diagnostics.
type Pass struct {
	Name string `json:"name"`
}

// TextureRef points a custom texture at a sampler uniform.
type TextureRef struct {
	Src     string `json:"src"`
	Uniform string `json:"uniform"`
}

// SamplerName returns the uniform the texture binds to, defaulting to
// customTexture when the document does not name one.
func (t *TextureRef) SamplerName() string {
	if t.Uniform != "" {
		return t.Uniform
	}
	return uniform.DefaultTextureName
}

// IsVisible reports the layer's visibility, defaulting to true when the
// field is absent from the document.
func (d *LayerDesc) IsVisible() bool {
	return d.Visible == nil || *d.Visible
}

type rawDocument struct {
	History *[]LayerDesc `json:"history"`
}

// Parse decodes a document from r. A document without a history field is
// rejected; an empty history list is valid and yields an empty pipeline.
func Parse(r io.Reader) (*Document, error) {
	var raw rawDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode layer document: %w", err)
	}
	if raw.History == nil {
		return nil, fmt.Errorf("layer document has no history field")
	}
	return &Document{History: *raw.History}, nil
}

var httpClient = &http.Client{
	Transport: &headerTransport{Transport: http.DefaultTransport},
}

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "layerfx/1.0")
	return t.Transport.RoundTrip(req)
}

// Load reads a document from a local file path or an http(s) URL.
func Load(src string) (*Document, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := httpClient.Get(src)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch layer document %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch layer document %s, status code: %d", src, resp.StatusCode)
		}
		return Parse(resp.Body)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open layer document %s: %w", src, err)
	}
	defer f.Close()
	return Parse(f)
}
