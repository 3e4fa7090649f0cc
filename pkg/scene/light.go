package scene

import "github.com/go-gl/mathgl/mgl32"

// ShadowConfig describes a light's shadow map
type ShadowConfig struct {
	MapSize int
	Near    float32
	Far     float32
	Focus   float32
	Bias    float32
}

// DefaultShadow matches every spot light in the visualizer
func DefaultShadow() ShadowConfig {
	return ShadowConfig{MapSize: 1024, Near: 10, Far: 1000, Focus: 1, Bias: -0.0005}
}

// SpotLight is a cone light aimed at a target node
type SpotLight struct {
	Node
	Color     Color
	Intensity float32
	Distance  float32
	Angle     float32
	Penumbra  float32
	Decay     float32
	Target    *Node
	Shadow    ShadowConfig
}

// NewSpotLight creates a light aimed at the origin
func NewSpotLight(name string, c Color, intensity float32) *SpotLight {
	target := NewNode(name + ".target")
	return &SpotLight{
		Node:      NewNode(name),
		Color:     c,
		Intensity: intensity,
		Angle:     mgl32.DegToRad(60),
		Decay:     2,
		Target:    &target,
		Shadow:    DefaultShadow(),
	}
}

// Direction is the normalized world-space axis of the cone
func (l *SpotLight) Direction() mgl32.Vec3 {
	d := l.Target.WorldPosition().Sub(l.WorldPosition())
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// ShadowMatrix is projection times view for rendering this light's shadow map
func (l *SpotLight) ShadowMatrix() mgl32.Mat4 {
	pos := l.WorldPosition()
	up := mgl32.Vec3{0, 1, 0}
	if abs32(l.Direction().Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}

	fov := 2 * l.Angle * l.Shadow.Focus
	if fov > mgl32.DegToRad(179) {
		fov = mgl32.DegToRad(179)
	}
	far := l.Shadow.Far
	if l.Distance > 0 {
		far = l.Distance
	}

	proj := mgl32.Perspective(fov, 1, l.Shadow.Near, far)
	view := mgl32.LookAtV(pos, l.Target.WorldPosition(), up)
	return proj.Mul4(view)
}

// HemisphereLight blends between a sky and ground colour by surface normal
type HemisphereLight struct {
	Node
	Sky       Color
	Ground    Color
	Intensity float32
}

// NewHemisphereLight creates a hemisphere light
func NewHemisphereLight(sky, ground Color, intensity float32) *HemisphereLight {
	n := NewNode("hemisphere")
	n.Position = mgl32.Vec3{0, 1, 0}
	return &HemisphereLight{Node: n, Sky: sky, Ground: ground, Intensity: intensity}
}
