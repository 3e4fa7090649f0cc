package visualizer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/pkg/scene"
)

func facing(t *testing.T, m *scene.Mesh, target mgl32.Vec3) {
	t.Helper()
	forward := m.Quaternion.Rotate(mgl32.Vec3{0, 0, 1})
	want := target.Sub(m.WorldPosition()).Normalize()
	if forward.Sub(want).Len() > 1e-3 {
		t.Errorf("%s faces %v, expected %v", m.Name, forward, want)
	}
}

func TestBuildBoard(t *testing.T) {
	ctx := testContext()
	b, err := BuildBoard(ctx)
	if err != nil {
		t.Fatalf("BuildBoard failed: %v", err)
	}

	if len(b.Shapes) != 22*22 {
		t.Errorf("Expected 484 shapes, got %d", len(b.Shapes))
	}
	if len(b.Dancers) != 2 {
		t.Errorf("Expected 2 dancer lights, got %d", len(b.Dancers))
	}
	if b.MainLight.Color != scene.Hex(0xffffff) {
		t.Errorf("Main board light colour %v", b.MainLight.Color)
	}
	for _, d := range b.Dancers {
		if d.Color != scene.Hex(0x0000ff) || d.Intensity != boardLightIntensity {
			t.Errorf("Dancer starts at %v / %v", d.Color, d.Intensity)
		}
	}

	// the wall plus every shape
	if got := len(ctx.Scene.Meshes()); got != 485 {
		t.Errorf("Expected 485 meshes in scene, got %d", got)
	}
	if got := len(ctx.Scene.SpotLights()); got != 3 {
		t.Errorf("Expected 3 spot lights, got %d", got)
	}

	for _, s := range b.Shapes[:10] {
		facing(t, s, mgl32.Vec3{})
		if s.Layers.Has(BloomLayer) {
			t.Errorf("%s should not bloom", s.Name)
		}
	}
}

func TestBuildBoard_ShapesShareGeometry(t *testing.T) {
	b, err := BuildBoard(testContext())
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range b.Shapes[1:] {
		if s.Geometry != b.Shapes[0].Geometry {
			t.Fatalf("%s has its own geometry", s.Name)
		}
		if s.Material == b.Shapes[0].Material {
			t.Fatalf("%s shares a material", s.Name)
		}
	}
}

func TestBoard_OnRenderDancers(t *testing.T) {
	b, err := BuildBoard(testContext())
	if err != nil {
		t.Fatal(err)
	}

	b.OnRender(0, nil)
	for _, d := range b.Dancers {
		if d.Intensity != 1 || d.Color != scene.Hex(0x0000ff) {
			t.Errorf("Silent dancer: %v / %v", d.Intensity, d.Color)
		}
	}

	b.OnRender(1, nil)
	for _, d := range b.Dancers {
		if d.Intensity != 100 || d.Color != scene.Hex(0xff0000) {
			t.Errorf("Loud dancer: %v / %v", d.Intensity, d.Color)
		}
	}
}

func TestBoard_OnRenderAimsShapes(t *testing.T) {
	b, err := BuildBoard(testContext())
	if err != nil {
		t.Fatal(err)
	}

	bins := make([]byte, 3)
	bins[0] = 0
	bins[1] = 0xff

	untouched := b.Shapes[5].Quaternion
	b.OnRender(0.5, bins)

	facing(t, b.Shapes[0], mgl32.Vec3{0, aimMinHeight, 0})
	facing(t, b.Shapes[1], mgl32.Vec3{0, aimMaxHeight, 0})
	facing(t, b.Shapes[2], mgl32.Vec3{0, aimMinHeight, 0})

	if b.Shapes[5].Quaternion != untouched {
		t.Error("Shape without a bin should keep its orientation")
	}
}

func TestBoard_OnRenderMoreBinsThanShapes(t *testing.T) {
	b, err := BuildBoard(testContext())
	if err != nil {
		t.Fatal(err)
	}
	bins := make([]byte, BoardResolution)
	for i := range bins {
		bins[i] = byte(i)
	}
	b.OnRender(0.25, bins)

	last := b.Shapes[len(b.Shapes)-1]
	h := aimMinHeight + float32(byte(len(b.Shapes)-1))/255*(aimMaxHeight-aimMinHeight)
	facing(t, last, mgl32.Vec3{0, h, 0})
}
