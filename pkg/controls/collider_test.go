package controls

import (
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/pkg/scene"
)

func TestSphereCollider_Queries(t *testing.T) {
	sc := SphereCollider{Center: mgl32.Vec3{0, 50, 0}, Radius: 7}

	if !sc.Contains(mgl32.Vec3{0, 55, 0}) || sc.Contains(mgl32.Vec3{0, 58, 0}) {
		t.Error("Contains is wrong around the top")
	}
	if d := sc.Distance(mgl32.Vec3{0, 60, 0}); math.Abs(float64(d-3)) > 1e-5 {
		t.Errorf("Expected distance 3, got %v", d)
	}
	if d := sc.Distance(sc.Center); d != -7 {
		t.Errorf("Expected -7 at centre, got %v", d)
	}

	p := sc.ClosestPoint(mgl32.Vec3{10, 50, 0})
	if p.Sub(mgl32.Vec3{7, 50, 0}).Len() > 1e-5 {
		t.Errorf("Closest point %v", p)
	}
	if p := sc.ClosestPoint(sc.Center); sc.Distance(p) > 1e-5 {
		t.Errorf("Closest point from the centre is off the surface: %v", p)
	}
}

func TestSphereCollider_Raycast(t *testing.T) {
	sc := SphereCollider{Center: mgl32.Vec3{0, 50, 0}, Radius: 7}
	down := mgl32.Vec3{0, -1, 0}

	cases := []struct {
		name   string
		origin mgl32.Vec3
		far    float32
		hit    bool
		dist   float32
	}{
		{"above within reach", mgl32.Vec3{0, 62, 0}, 10, true, 5},
		{"above out of reach", mgl32.Vec3{0, 70, 0}, 10, false, 0},
		{"beside", mgl32.Vec3{8, 62, 0}, 100, false, 0},
		{"below", mgl32.Vec3{0, 40, 0}, 100, false, 0},
		{"inside", mgl32.Vec3{0, 52, 0}, 10, true, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, hit := sc.Raycast(c.origin, down, c.far)
			if hit != c.hit {
				t.Fatalf("Expected hit=%v, got %v", c.hit, hit)
			}
			if hit && math.Abs(float64(d-c.dist)) > 1e-4 {
				t.Errorf("Expected distance %v, got %v", c.dist, d)
			}
		})
	}
}

func TestBoundingSphere(t *testing.T) {
	mesh := scene.NewMesh("ball", scene.NewIcosahedronGeometry(7, 2), scene.NewPhongMaterial())
	mesh.Position = mgl32.Vec3{4, 50, 0}

	sc := BoundingSphere(mesh)
	if sc.Center != mesh.Position || math.Abs(float64(sc.Radius-7)) > 1e-4 {
		t.Errorf("Unexpected bounds %+v", sc)
	}

	mesh.SetScale(2)
	if sc := BoundingSphere(mesh); math.Abs(float64(sc.Radius-14)) > 1e-3 {
		t.Errorf("Scale ignored: %v", sc.Radius)
	}
	mesh.SetScale(1)

	phong := mesh.Material.(*scene.PhongMaterial)
	phong.DisplacementMap = scene.NewTexture("d", image.NewRGBA(image.Rect(0, 0, 1, 1)), false)
	phong.DisplacementScale = 3
	if sc := BoundingSphere(mesh); math.Abs(float64(sc.Radius-10)) > 1e-4 {
		t.Errorf("Displacement ignored: %v", sc.Radius)
	}
}
