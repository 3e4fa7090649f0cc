package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPlaneGeometry_Layout(t *testing.T) {
	g := NewPlaneGeometry(220, 90, 21, 21)

	if g.VertexCount() != 22*22 {
		t.Fatalf("Expected 484 vertices, got %d", g.VertexCount())
	}
	if len(g.Indices) != 21*21*6 {
		t.Errorf("Expected %d indices, got %d", 21*21*6, len(g.Indices))
	}

	first, last := g.Positions[0], g.Positions[len(g.Positions)-1]
	if first != (mgl32.Vec3{-110, 45, 0}) || last != (mgl32.Vec3{110, -45, 0}) {
		t.Errorf("Unexpected corners %v %v", first, last)
	}
	if g.UVs[0] != (mgl32.Vec2{0, 1}) || g.UVs[21] != (mgl32.Vec2{1, 1}) {
		t.Errorf("Unexpected top row uvs %v %v", g.UVs[0], g.UVs[21])
	}
}

func TestComputeVertexNormals_FlatPlaneFacesZ(t *testing.T) {
	g := NewPlaneGeometry(2, 2, 2, 2)
	g.ComputeVertexNormals()
	for i, n := range g.Normals {
		if !near(n, mgl32.Vec3{0, 0, 1}, 1e-6) {
			t.Fatalf("normal %d = %v", i, n)
		}
	}
}

func TestBoxGeometry_NormalsMatchWinding(t *testing.T) {
	g := NewBoxGeometry(30, 15, 2)
	if g.VertexCount() != 24 || len(g.Indices) != 36 {
		t.Fatalf("Unexpected sizes %d/%d", g.VertexCount(), len(g.Indices))
	}

	for i := 0; i < len(g.Indices); i += 3 {
		a, b, c := g.Positions[g.Indices[i]], g.Positions[g.Indices[i+1]], g.Positions[g.Indices[i+2]]
		face := b.Sub(a).Cross(c.Sub(a))
		if face.Dot(g.Normals[g.Indices[i]]) <= 0 {
			t.Errorf("triangle %d winds against its normal", i/3)
		}
	}
}

func TestMerge_OffsetsIndices(t *testing.T) {
	box := NewBoxGeometry(1, 1, 1)
	cyl := NewCylinderGeometry(4, 4, 20, 10, 1)
	merged := Merge(box, cyl)

	if merged.VertexCount() != box.VertexCount()+cyl.VertexCount() {
		t.Fatalf("Vertex count %d", merged.VertexCount())
	}
	if len(merged.Indices) != len(box.Indices)+len(cyl.Indices) {
		t.Fatalf("Index count %d", len(merged.Indices))
	}
	for _, idx := range merged.Indices {
		if int(idx) >= merged.VertexCount() {
			t.Fatalf("index %d out of range", idx)
		}
	}
	if merged.Indices[len(box.Indices)] < uint32(box.VertexCount()) {
		t.Error("cylinder indices were not offset")
	}
}

func TestGeometry_Transforms(t *testing.T) {
	g := &Geometry{
		Positions: []mgl32.Vec3{{1, 0, 0}},
		Normals:   []mgl32.Vec3{{1, 0, 0}},
	}

	g.RotateY(-math.Pi / 2)
	if !near(g.Positions[0], mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("RotateY(-pi/2) of +X = %v, expected +Z", g.Positions[0])
	}
	if !near(g.Normals[0], mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("normal not rotated: %v", g.Normals[0])
	}

	g.Translate(1, 2, 3).Scale(2, 2, 2)
	if !near(g.Positions[0], mgl32.Vec3{2, 4, 8}, 1e-5) {
		t.Errorf("Translate+Scale = %v", g.Positions[0])
	}
	if !near(g.Normals[0], mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("uniform scale changed normal direction: %v", g.Normals[0])
	}
	if g.Version != 3 {
		t.Errorf("Expected version 3 after three transforms, got %d", g.Version)
	}
}

func TestIcosahedronGeometry(t *testing.T) {
	const radius, detail = 7, 3
	g := NewIcosahedronGeometry(radius, detail)

	want := 20 * (detail + 1) * (detail + 1) * 3
	if g.VertexCount() != want {
		t.Fatalf("Expected %d vertices, got %d", want, g.VertexCount())
	}

	for i, p := range g.Positions {
		if math.Abs(float64(p.Len())-radius) > 1e-4 {
			t.Fatalf("vertex %d at distance %v", i, p.Len())
		}
		if !near(g.Normals[i], p.Normalize(), 1e-5) {
			t.Fatalf("normal %d not radial", i)
		}
	}

	for i, uv := range g.UVs {
		if uv[0] < 0 || uv[0] > 1.2 || uv[1] < 0 || uv[1] > 1 {
			t.Fatalf("uv %d out of range: %v", i, uv)
		}
	}
}
