package controls

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/pkg/scene"
)

// SphereCollider is a bounding sphere in world space
type SphereCollider struct {
	Center mgl32.Vec3
	Radius float32
}

// BoundingSphere wraps a mesh in a world-space sphere. Displaced Phong
// surfaces grow by their current displacement so the probe meets the
// outermost surface the shader can produce.
func BoundingSphere(m *scene.Mesh) SphereCollider {
	var r float32
	for _, p := range m.Geometry.Positions {
		if l := p.Len(); l > r {
			r = l
		}
	}

	if phong, ok := m.Material.(*scene.PhongMaterial); ok && phong.DisplacementMap != nil {
		if grow := phong.DisplacementScale + phong.DisplacementBias; grow > 0 {
			r += grow
		}
	}

	s := m.Scale
	scale := s[0]
	if s[1] > scale {
		scale = s[1]
	}
	if s[2] > scale {
		scale = s[2]
	}

	return SphereCollider{Center: m.WorldPosition(), Radius: r * scale}
}

// ClosestPoint returns the point on the surface nearest to point
func (sc SphereCollider) ClosestPoint(point mgl32.Vec3) mgl32.Vec3 {
	direction := point.Sub(sc.Center)
	distance := direction.Len()

	if distance <= 0.0001 {
		// any surface point will do from the centre
		return sc.Center.Add(mgl32.Vec3{sc.Radius, 0, 0})
	}

	return sc.Center.Add(direction.Mul(sc.Radius / distance))
}

// Contains reports whether point is inside or on the sphere
func (sc SphereCollider) Contains(point mgl32.Vec3) bool {
	return point.Sub(sc.Center).Len() <= sc.Radius
}

// Distance is the signed distance to the surface, negative inside
func (sc SphereCollider) Distance(point mgl32.Vec3) float32 {
	return point.Sub(sc.Center).Len() - sc.Radius
}

// Raycast returns the distance along a unit direction to the first surface
// hit within far. A ray starting inside hits at 0.
func (sc SphereCollider) Raycast(origin, dir mgl32.Vec3, far float32) (float32, bool) {
	oc := origin.Sub(sc.Center)
	c := oc.Dot(oc) - sc.Radius*sc.Radius
	if c <= 0 {
		return 0, true
	}

	b := oc.Dot(dir)
	if b > 0 {
		return 0, false
	}

	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	t := -b - float32(math.Sqrt(float64(disc)))
	if t > far {
		return 0, false
	}
	return t, true
}
