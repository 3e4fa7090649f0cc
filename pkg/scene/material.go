package scene

// Side selects which triangle faces are drawn
type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// Material is implemented by every surface description the renderer knows
type Material interface {
	Settings() *MaterialSettings
}

// MaterialSettings are shared by every material
type MaterialSettings struct {
	Side        Side
	Fog         bool
	Transparent bool
}

// Settings implements Material
func (m *MaterialSettings) Settings() *MaterialSettings { return m }

// BasicMaterial is an unlit flat colour
type BasicMaterial struct {
	MaterialSettings
	Color Color
}

// NewBasicMaterial creates an unlit material
func NewBasicMaterial(c Color) *BasicMaterial {
	return &BasicMaterial{MaterialSettings: MaterialSettings{Fog: true}, Color: c}
}

// LambertMaterial is diffuse only
type LambertMaterial struct {
	MaterialSettings
	Color Color
}

// NewLambertMaterial creates a diffuse material
func NewLambertMaterial(c Color) *LambertMaterial {
	return &LambertMaterial{MaterialSettings: MaterialSettings{Fog: true}, Color: c}
}

// EmissiveMask suppresses emissive glow where a texture is bright.
//
// The mask is sampled at the surface UV, multiplied by ColorPower, pulled
// toward mid grey as Contrast goes to zero, then used as the blend factor from
// the emissive radiance to black.
type EmissiveMask struct {
	Map        *Texture
	Contrast   float32
	ColorPower float32
}

// NewEmissiveMask returns the inactive mask: no map, contrast 0, colour power 1
func NewEmissiveMask() EmissiveMask {
	return EmissiveMask{Contrast: 0, ColorPower: 1}
}

// PhongMaterial is Blinn-Phong shading with the usual texture slots
type PhongMaterial struct {
	MaterialSettings
	Color             Color
	Specular          Color
	Shininess         float32
	Emissive          Color
	EmissiveIntensity float32

	Map               *Texture
	AOMap             *Texture
	AOMapIntensity    float32
	NormalMap         *Texture
	NormalScale       float32
	DisplacementMap   *Texture
	DisplacementScale float32
	DisplacementBias  float32

	EmissiveMask EmissiveMask
}

// NewPhongMaterial returns a white material with shininess 30 and an inactive mask
func NewPhongMaterial() *PhongMaterial {
	return &PhongMaterial{
		MaterialSettings:  MaterialSettings{Fog: true},
		Color:             Color{1, 1, 1},
		Specular:          Hex(0x111111),
		Shininess:         30,
		EmissiveIntensity: 1,
		AOMapIntensity:    1,
		NormalScale:       1,
		DisplacementScale: 1,
		EmissiveMask:      NewEmissiveMask(),
	}
}

// PhysicalMaterial is a metalness/roughness surface
type PhysicalMaterial struct {
	MaterialSettings
	Color     Color
	Metalness float32
	Roughness float32
}

// NewPhysicalMaterial creates a metalness/roughness material
func NewPhysicalMaterial(c Color, metalness, roughness float32) *PhysicalMaterial {
	return &PhysicalMaterial{
		MaterialSettings: MaterialSettings{Fog: true},
		Color:            c,
		Metalness:        metalness,
		Roughness:        roughness,
	}
}
