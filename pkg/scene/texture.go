package scene

import (
	"image"
	"sync/atomic"
)

// Texture is a CPU side image waiting to be uploaded by a renderer
type Texture struct {
	Name  string
	Image *image.RGBA
	// SRGB marks colour data; data maps such as normals stay linear
	SRGB bool
	// Placeholder is set when the texture was synthesised instead of loaded
	Placeholder bool

	version atomic.Uint64
}

// NewTexture wraps an image
func NewTexture(name string, img *image.RGBA, srgb bool) *Texture {
	t := &Texture{Name: name, Image: img, SRGB: srgb}
	t.version.Store(1)
	return t
}

// Version changes whenever the image content must be uploaded again
func (t *Texture) Version() uint64 { return t.version.Load() }

// Touch marks the image as modified
func (t *Texture) Touch() { t.version.Add(1) }
