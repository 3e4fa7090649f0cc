package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/util"
)

// Color is linear RGB in [0,1]
type Color = mgl32.Vec3

// Hex converts a packed 0xRRGGBB value
func Hex(c uint32) Color {
	r, g, b := util.UnpackColor(c)
	return Color{r, g, b}
}
