package visualizer

import (
	"image"
	"image/color"

	"resonance/internal/noise"
	"resonance/pkg/config"
	"resonance/pkg/scene"
)

const (
	placeholderSize      = 128
	placeholderAmplitude = 0.15
)

// Placeholder synthesises a neutral stand-in for a texture slot:
// grey colour, white occlusion, a flat normal map, and faint noise for
// displacement so the sphere still breathes with the music.
func Placeholder(slot config.TextureSlot, seed int64) *scene.Texture {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))

	switch slot {
	case config.SlotColor:
		fill(img, color.RGBA{128, 128, 128, 255})
	case config.SlotAmbientOcclusion:
		fill(img, color.RGBA{255, 255, 255, 255})
	case config.SlotNormal:
		fill(img, color.RGBA{128, 128, 255, 255})
	default:
		field := noise.NewGenerator(seed).Field(placeholderSize, placeholderSize, 0.05, 4)
		for i, v := range field {
			g := uint8(255 * (0.5 + (v-0.5)*2*placeholderAmplitude))
			x, y := i%placeholderSize, i/placeholderSize
			img.SetRGBA(x, y, color.RGBA{g, g, g, 255})
		}
	}

	t := scene.NewTexture("placeholder:"+string(slot), img, slot == config.SlotColor)
	t.Placeholder = true
	return t
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}
