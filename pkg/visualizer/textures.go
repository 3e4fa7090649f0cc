package visualizer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"resonance/pkg/config"
	"resonance/pkg/scene"
)

// MaxTextureSize bounds the longer edge of decoded textures
const MaxTextureSize = 4096

// TextureLoader reads a texture for a sphere slot
type TextureLoader interface {
	LoadTexture(path string, slot config.TextureSlot) (*scene.Texture, error)
}

// FileTextureLoader decodes PNG, JPEG, BMP, TIFF and WebP files from disk
type FileTextureLoader struct{}

// LoadTexture decodes path into an RGBA texture
func (FileTextureLoader) LoadTexture(path string, slot config.TextureSlot) (*scene.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}

	img := toRGBA(src, MaxTextureSize)
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("texture %s (%s) is empty", path, format)
	}

	return scene.NewTexture(path, img, slot == config.SlotColor), nil
}

// toRGBA converts any image to RGBA, downscaling so neither edge exceeds limit
func toRGBA(src image.Image, limit int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w > limit || h > limit {
		if w >= h {
			h = h * limit / w
			w = limit
		} else {
			w = w * limit / h
			h = limit
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		return dst
	}

	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
