package visualizer

import (
	"errors"
	"testing"

	"resonance/pkg/scene"
)

func compositorScene() (*scene.Scene, *scene.Mesh, *scene.Mesh) {
	s := scene.New()
	plain := scene.NewMesh("plain", scene.NewBoxGeometry(1, 1, 1), scene.NewLambertMaterial(scene.Hex(0xffffff)))
	glowing := scene.NewMesh("glowing", scene.NewBoxGeometry(1, 1, 1), scene.NewPhongMaterial())
	glowing.Layers.Enable(BloomLayer)

	group := scene.NewGroup("nested")
	group.Add(plain)
	s.Add(group, glowing)
	return s, plain, glowing
}

func TestCompositor_IsolatesBloomLayer(t *testing.T) {
	s, plain, glowing := compositorScene()
	plainMat, glowMat := plain.Material, glowing.Material

	bloom := &fakePipeline{}
	final := &fakePipeline{}
	c := NewCompositor(s, bloom, final, true)

	bloom.onRender = func() {
		if plain.Material == plainMat {
			t.Error("Non-bloom mesh kept its material during the bloom pass")
		}
		if _, ok := plain.Material.(*scene.BasicMaterial); !ok {
			t.Errorf("Expected dark basic material, got %T", plain.Material)
		}
		if glowing.Material != glowMat {
			t.Error("Bloom mesh lost its material")
		}
		if c.Stashed() != 1 {
			t.Errorf("Expected 1 stashed material, got %d", c.Stashed())
		}
	}
	final.onRender = func() {
		if plain.Material != plainMat || glowing.Material != glowMat {
			t.Error("Final pass saw swapped materials")
		}
		if c.Stashed() != 0 {
			t.Errorf("Stash not empty before final pass: %d", c.Stashed())
		}
	}

	for i := 0; i < 3; i++ {
		if err := c.Render(); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
	}
	if bloom.count() != 3 || final.count() != 3 {
		t.Errorf("Expected 3 renders each, got %d / %d", bloom.count(), final.count())
	}
}

func TestCompositor_BloomDisabled(t *testing.T) {
	s, plain, _ := compositorScene()
	plainMat := plain.Material

	bloom := &fakePipeline{}
	final := &fakePipeline{}
	c := NewCompositor(s, bloom, final, false)

	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	if bloom.count() != 0 {
		t.Error("Bloom pipeline ran while disabled")
	}
	if final.count() != 1 || plain.Material != plainMat {
		t.Error("Final pipeline should run untouched")
	}
}

func TestCompositor_RestoresOnBloomError(t *testing.T) {
	s, plain, _ := compositorScene()
	plainMat := plain.Material

	bloom := &fakePipeline{err: errors.New("boom")}
	final := &fakePipeline{}
	c := NewCompositor(s, bloom, final, true)

	if err := c.Render(); err == nil {
		t.Fatal("Expected bloom error")
	}
	if plain.Material != plainMat {
		t.Error("Material not restored after failed bloom pass")
	}
	if c.Stashed() != 0 {
		t.Errorf("Stash leaked %d entries", c.Stashed())
	}
	if final.count() != 0 {
		t.Error("Final pass should not run after a bloom failure")
	}
}

func TestCompositor_RestoresDetachedMesh(t *testing.T) {
	s, plain, _ := compositorScene()
	plainMat := plain.Material

	bloom := &fakePipeline{}
	c := NewCompositor(s, bloom, &fakePipeline{}, true)
	bloom.onRender = func() {
		plain.Base().Parent().Remove(plain)
	}

	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	if plain.Material != plainMat || c.Stashed() != 0 {
		t.Error("Detached mesh did not get its material back")
	}
}

func TestCompositor_SetSize(t *testing.T) {
	bloom, final := &fakePipeline{}, &fakePipeline{}
	c := NewCompositor(scene.New(), bloom, final, true)
	c.SetSize(800, 600)

	if bloom.width != 800 || bloom.height != 600 || final.width != 800 || final.height != 600 {
		t.Errorf("Pipelines out of step: %dx%d / %dx%d", bloom.width, bloom.height, final.width, final.height)
	}
}
