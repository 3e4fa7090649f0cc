package visualizer

import (
	"context"
	"math"
	"testing"

	"resonance/pkg/config"
)

func TestLoads(t *testing.T) {
	cases := []struct {
		loudness, load, power float64
	}{
		{0, 0, 0},
		{510, 10, 0.5},
		{1020, 20, 1},
		{5000, 20, 1},
		{-3, 0, 0},
	}
	for _, c := range cases {
		load, power := Loads(c.loudness, 0, 1020)
		if math.Abs(load-c.load) > 1e-9 || math.Abs(power-c.power) > 1e-9 {
			t.Errorf("Loads(%v) = %v, %v; expected %v, %v", c.loudness, load, power, c.load, c.power)
		}
	}

	// degenerate range falls back to the low end
	if load, power := Loads(7, 3, 3); load != 0 || power != 0 {
		t.Errorf("Degenerate range gave %v, %v", load, power)
	}
}

func TestNewSphere_InitialState(t *testing.T) {
	s := NewSphere(config.SphereMaterialConfig{Directory: "x"}, 0xff8800)

	mask := s.Material.EmissiveMask
	if mask.Map != nil || mask.Contrast != 0 || mask.ColorPower != 1 {
		t.Errorf("Unexpected initial mask %+v", mask)
	}
	if s.Material.EmissiveIntensity != 0 {
		t.Errorf("Expected emissive intensity 0, got %v", s.Material.EmissiveIntensity)
	}
	if !s.Mesh.Layers.Has(0) || !s.Mesh.Layers.Has(BloomLayer) {
		t.Errorf("Sphere should be on layers 0 and %d, mask %b", BloomLayer, s.Mesh.Layers)
	}
}

func TestSphere_Update(t *testing.T) {
	profile := config.SphereMaterialConfig{
		EmissiveMaskContrast:                    2,
		EmissiveMaskColorPower:                  4,
		EmissiveMaskColorPowerInterpolateFactor: 0.5,
	}
	s := NewSphere(profile, 0)

	s.Update(0, 0)
	if s.Material.DisplacementScale != 1 {
		t.Errorf("Displacement scale floor is 1, got %v", s.Material.DisplacementScale)
	}
	if s.Material.EmissiveMask.ColorPower != 3.5 {
		t.Errorf("Expected colour power 3.5 at silence, got %v", s.Material.EmissiveMask.ColorPower)
	}
	if s.Material.EmissiveMask.Contrast != 2 {
		t.Errorf("Expected contrast 2, got %v", s.Material.EmissiveMask.Contrast)
	}

	s.Update(20, 1)
	if s.Material.DisplacementScale != 20 || s.Material.EmissiveIntensity != 1 {
		t.Errorf("Unexpected full load state %v %v", s.Material.DisplacementScale, s.Material.EmissiveIntensity)
	}
	if s.Material.EmissiveMask.ColorPower != 2.5 {
		t.Errorf("Expected colour power 2.5 at full load, got %v", s.Material.EmissiveMask.ColorPower)
	}
}

func TestSphere_AnimateIsPeriodic(t *testing.T) {
	s := NewSphere(config.SphereMaterialConfig{}, 0)

	s.Animate(1)
	a := s.Mesh.Quaternion
	s.Animate(1 + 2*math.Pi)
	b := s.Mesh.Quaternion

	if math.Abs(float64(a.Dot(b))) < 1-1e-4 {
		t.Errorf("Rotation not periodic: %v vs %v", a, b)
	}
}

func TestSphere_LoadTextures(t *testing.T) {
	ctx := testContext()
	loader := &fakeTextures{}
	s := NewSphere(ctx.Session.Material, 0)

	if err := s.LoadTextures(context.Background(), loader, ctx.Assets, ctx.Log); err != nil {
		t.Fatalf("LoadTextures failed: %v", err)
	}

	m := s.Material
	if m.Map == nil || m.AOMap == nil || m.NormalMap == nil || m.DisplacementMap == nil {
		t.Fatal("Expected every slot to be filled")
	}
	if m.EmissiveMask.Map != m.DisplacementMap {
		t.Error("Emissive mask should reuse the displacement texture")
	}
	if m.Map.Placeholder {
		t.Error("Loaded texture flagged as placeholder")
	}
	if !m.Map.SRGB || m.NormalMap.SRGB {
		t.Error("Only the colour map is sRGB")
	}
	if len(loader.paths) != 4 {
		t.Errorf("Expected 4 loads, got %v", loader.paths)
	}
}

func TestSphere_LoadTexturesFallsBackToPlaceholders(t *testing.T) {
	ctx := testContext()
	s := NewSphere(ctx.Session.Material, 0)

	if err := s.LoadTextures(context.Background(), &fakeTextures{fail: true}, ctx.Assets, ctx.Log); err != nil {
		t.Fatalf("Failures must degrade, got %v", err)
	}

	m := s.Material
	if !m.Map.Placeholder || !m.AOMap.Placeholder || !m.NormalMap.Placeholder || !m.DisplacementMap.Placeholder {
		t.Error("Expected placeholders in every slot")
	}

	px := m.NormalMap.Image.RGBAAt(0, 0)
	if px.R != 128 || px.G != 128 || px.B != 255 {
		t.Errorf("Flat normal placeholder expected, got %v", px)
	}
}

func TestSphere_LoadTexturesCancelled(t *testing.T) {
	ctx := testContext()
	s := NewSphere(ctx.Session.Material, 0)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.LoadTextures(cancelled, &fakeTextures{}, ctx.Assets, ctx.Log); err == nil {
		t.Error("Expected cancellation error")
	}
}
