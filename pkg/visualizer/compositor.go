package visualizer

import (
	"resonance/pkg/scene"
)

// Pipeline is one chain of render passes
type Pipeline interface {
	Render() error
	SetSize(width, height int)
}

// Compositor runs the bloom and final pipelines over one scene.
//
// When bloom is enabled, meshes outside the bloom layer are drawn with a black
// stand-in during the bloom pipeline so only bloom members feed the blur. The
// original materials are back in place before the final pipeline runs.
type Compositor struct {
	scene   *scene.Scene
	bloom   Pipeline
	final   Pipeline
	enabled bool

	bloomLayer scene.Layers
	dark       scene.Material
	stash      map[*scene.Mesh]scene.Material
}

// NewCompositor wires the two pipelines
func NewCompositor(s *scene.Scene, bloom, final Pipeline, bloomEnabled bool) *Compositor {
	var layer scene.Layers
	layer.Set(BloomLayer)

	dark := scene.NewBasicMaterial(scene.Hex(0x000000))

	return &Compositor{
		scene:      s,
		bloom:      bloom,
		final:      final,
		enabled:    bloomEnabled,
		bloomLayer: layer,
		dark:       dark,
		stash:      make(map[*scene.Mesh]scene.Material),
	}
}

// BloomEnabled reports whether the bloom pipeline runs
func (c *Compositor) BloomEnabled() bool { return c.enabled }

// Stashed returns how many materials are currently swapped out
func (c *Compositor) Stashed() int { return len(c.stash) }

// Render runs bloom isolation, the bloom pipeline and the final pipeline
func (c *Compositor) Render() error {
	if c.enabled {
		if err := c.renderBloom(); err != nil {
			return err
		}
	}
	return c.final.Render()
}

func (c *Compositor) renderBloom() error {
	c.darkenNonBloomed()
	defer c.restoreMaterials()
	return c.bloom.Render()
}

func (c *Compositor) darkenNonBloomed() {
	scene.Traverse(c.scene, func(o scene.Object) {
		m, ok := o.(*scene.Mesh)
		if !ok || c.bloomLayer.Test(m.Layers) {
			return
		}
		c.stash[m] = m.Material
		m.Material = c.dark
	})
}

func (c *Compositor) restoreMaterials() {
	scene.Traverse(c.scene, func(o scene.Object) {
		m, ok := o.(*scene.Mesh)
		if !ok {
			return
		}
		if original, ok := c.stash[m]; ok {
			m.Material = original
			delete(c.stash, m)
		}
	})

	// meshes removed from the graph mid-pass are still owed their material
	for m, original := range c.stash {
		m.Material = original
		delete(c.stash, m)
	}
}

// SetSize resizes both pipelines together
func (c *Compositor) SetSize(width, height int) {
	c.bloom.SetSize(width, height)
	c.final.SetSize(width, height)
}
