package util

const (
	redBlueMask = 0xff00ff
	greenMask   = 0x00ff00
)

// InterpolateColorsCompact blends two packed 0xRRGGBB colors with 8-bit fixed point.
// Red and blue are blended together in one word, green separately, so the
// channels never carry into each other. t is clamped into [0, 1].
func InterpolateColorsCompact(a, b uint32, t float64) uint32 {
	t = Clamp(t, 0, 1)

	f2 := uint64(256 * t)
	f1 := 256 - f2

	rb := ((uint64(a&redBlueMask)*f1 + uint64(b&redBlueMask)*f2) >> 8) & redBlueMask
	g := ((uint64(a&greenMask)*f1 + uint64(b&greenMask)*f2) >> 8) & greenMask

	return uint32(rb | g)
}

// UnpackColor splits a packed 0xRRGGBB color into normalized channels
func UnpackColor(c uint32) (r, g, b float32) {
	r = float32((c>>16)&0xff) / 255
	g = float32((c>>8)&0xff) / 255
	b = float32(c&0xff) / 255
	return r, g, b
}
