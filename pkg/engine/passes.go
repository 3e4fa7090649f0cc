package engine

import (
	"fmt"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"

	"resonance/pkg/config"
	"resonance/pkg/scene"
)

// bloomMips is the depth of the blur chain
const bloomMips = 5

var (
	bloomKernelRadii = [bloomMips]int{3, 5, 7, 9, 11}
	bloomFactors     = [bloomMips]float32{1.0, 0.8, 0.6, 0.4, 0.2}
)

// bloomSmoothWidth is the luminance ramp above the threshold
const bloomSmoothWidth = 0.01

func newQuadProgram(fragment string) (*program, error) {
	return newProgram(quadVertexShader, fragment)
}

// RenderPass draws the scene into the read buffer
type RenderPass struct {
	Scene  *scene.Scene
	Camera *scene.PerspectiveCamera
}

// NewRenderPass creates a scene pass
func NewRenderPass(s *scene.Scene, camera *scene.PerspectiveCamera) *RenderPass {
	return &RenderPass{Scene: s, Camera: camera}
}

func (p *RenderPass) Render(r *OpenGLRenderer, _, read *RenderTarget, toScreen bool) error {
	if toScreen {
		return r.Render(p.Scene, p.Camera, nil)
	}
	return r.Render(p.Scene, p.Camera, read)
}

func (p *RenderPass) NeedsSwap() bool        { return false }
func (p *RenderPass) SetSize(_, _ int) error { return nil }
func (p *RenderPass) Delete()                {}

// gaussianCoefficients returns the one sided weights of a blur with sigma equal to its radius
func gaussianCoefficients(kernelRadius int) []float32 {
	sigma := float64(kernelRadius)
	out := make([]float32, kernelRadius)
	for i := range out {
		x := float64(i)
		out[i] = float32(0.39894 * math.Exp(-0.5*x*x/(sigma*sigma)) / sigma)
	}
	return out
}

// bloomMipSizes halves the half resolution target once per mip
func bloomMipSizes(width, height int) [bloomMips][2]int {
	var sizes [bloomMips][2]int
	w := int(math.Round(float64(width) / 2))
	h := int(math.Round(float64(height) / 2))
	for i := range sizes {
		sizes[i] = [2]int{max(w, 1), max(h, 1)}
		w = int(math.Round(float64(w) / 2))
		h = int(math.Round(float64(h) / 2))
	}
	return sizes
}

// BloomPass extracts bright pixels, blurs them over a mip chain and adds the
// result back onto the read buffer
type BloomPass struct {
	Strength  float32
	Radius    float32
	Threshold float32

	highPass  *program
	blur      *program
	composite *program
	copy      *program

	bright     *RenderTarget
	horizontal [bloomMips]*RenderTarget
	vertical   [bloomMips]*RenderTarget
}

// NewBloomPass compiles the bloom programs and allocates the mip chain
func NewBloomPass(width, height int, cfg config.BloomConfig) (*BloomPass, error) {
	p := &BloomPass{
		Strength:  float32(cfg.Strength),
		Radius:    float32(cfg.Radius),
		Threshold: float32(cfg.Threshold),
	}

	var err error
	if p.highPass, err = newQuadProgram(highPassFragmentShader); err != nil {
		return nil, fmt.Errorf("failed to build high pass program: %w", err)
	}
	if p.blur, err = newQuadProgram(blurFragmentShader); err != nil {
		p.Delete()
		return nil, fmt.Errorf("failed to build blur program: %w", err)
	}
	if p.composite, err = newQuadProgram(bloomCompositeFragmentShader); err != nil {
		p.Delete()
		return nil, fmt.Errorf("failed to build bloom composite program: %w", err)
	}
	if p.copy, err = newQuadProgram(copyFragmentShader); err != nil {
		p.Delete()
		return nil, fmt.Errorf("failed to build copy program: %w", err)
	}

	sizes := bloomMipSizes(width, height)
	if p.bright, err = NewRenderTarget(sizes[0][0], sizes[0][1], false); err != nil {
		p.Delete()
		return nil, err
	}
	for i, size := range sizes {
		if p.horizontal[i], err = NewRenderTarget(size[0], size[1], false); err != nil {
			p.Delete()
			return nil, err
		}
		if p.vertical[i], err = NewRenderTarget(size[0], size[1], false); err != nil {
			p.Delete()
			return nil, err
		}
	}

	return p, nil
}

func (p *BloomPass) Render(r *OpenGLRenderer, _, read *RenderTarget, toScreen bool) error {
	gl.Disable(gl.BLEND)

	// 1. bright pixels
	r.bindTarget(p.bright)
	p.highPass.use()
	bindTexture(p.highPass.uniform("source"), 0, read.Texture())
	gl.Uniform1f(p.highPass.uniform("threshold"), p.Threshold)
	gl.Uniform1f(p.highPass.uniform("smoothWidth"), bloomSmoothWidth)
	r.drawQuad()

	// 2. blur chain
	p.blur.use()
	input := p.bright
	for i := 0; i < bloomMips; i++ {
		coefficients := gaussianCoefficients(bloomKernelRadii[i])
		gl.Uniform1i(p.blur.uniform("kernelRadius"), int32(bloomKernelRadii[i]))
		gl.Uniform1fv(p.blur.uniform("coefficients"), int32(len(coefficients)), &coefficients[0])

		w, h := p.horizontal[i].Size()
		gl.Uniform2f(p.blur.uniform("invSize"), 1/float32(w), 1/float32(h))

		r.bindTarget(p.horizontal[i])
		bindTexture(p.blur.uniform("source"), 0, input.Texture())
		gl.Uniform2f(p.blur.uniform("direction"), 1, 0)
		r.drawQuad()

		r.bindTarget(p.vertical[i])
		bindTexture(p.blur.uniform("source"), 0, p.horizontal[i].Texture())
		gl.Uniform2f(p.blur.uniform("direction"), 0, 1)
		r.drawQuad()

		input = p.vertical[i]
	}

	// 3. weighted sum of the mips
	r.bindTarget(p.horizontal[0])
	p.composite.use()
	units := make([]int32, bloomMips)
	tints := make([]float32, 3*bloomMips)
	for i := 0; i < bloomMips; i++ {
		units[i] = int32(i)
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, p.vertical[i].Texture())
		copy(tints[3*i:], []float32{1, 1, 1})
	}
	gl.Uniform1iv(p.composite.uniform("blur"), bloomMips, &units[0])
	gl.Uniform1fv(p.composite.uniform("bloomFactors"), bloomMips, &bloomFactors[0])
	gl.Uniform3fv(p.composite.uniform("bloomTints"), bloomMips, &tints[0])
	gl.Uniform1f(p.composite.uniform("bloomStrength"), p.Strength)
	gl.Uniform1f(p.composite.uniform("bloomRadius"), p.Radius)
	r.drawQuad()

	// 4. add onto the read buffer
	if toScreen {
		r.bindTarget(nil)
	} else {
		r.bindTarget(read)
	}
	p.copy.use()
	bindTexture(p.copy.uniform("source"), 0, p.horizontal[0].Texture())
	gl.Uniform1f(p.copy.uniform("opacity"), 1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	r.drawQuad()
	gl.Disable(gl.BLEND)

	return glError("bloom pass")
}

func (p *BloomPass) NeedsSwap() bool { return false }

func (p *BloomPass) SetSize(width, height int) error {
	sizes := bloomMipSizes(width, height)
	if err := p.bright.SetSize(sizes[0][0], sizes[0][1]); err != nil {
		return err
	}
	for i, size := range sizes {
		if err := p.horizontal[i].SetSize(size[0], size[1]); err != nil {
			return err
		}
		if err := p.vertical[i].SetSize(size[0], size[1]); err != nil {
			return err
		}
	}
	return nil
}

func (p *BloomPass) Delete() {
	for _, t := range append(p.horizontal[:], p.vertical[:]...) {
		if t != nil {
			t.Delete()
		}
	}
	if p.bright != nil {
		p.bright.Delete()
	}
	p.highPass.delete()
	p.blur.delete()
	p.composite.delete()
	p.copy.delete()
}

// MixPass adds the bloom composer's result onto the base image
type MixPass struct {
	bloom   *Composer
	program *program
}

// NewMixPass samples bloom's read buffer every frame
func NewMixPass(bloom *Composer) (*MixPass, error) {
	prog, err := newQuadProgram(mixFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to build mix program: %w", err)
	}
	return &MixPass{bloom: bloom, program: prog}, nil
}

func (p *MixPass) Render(r *OpenGLRenderer, write, read *RenderTarget, toScreen bool) error {
	if toScreen {
		r.bindTarget(nil)
	} else {
		r.bindTarget(write)
	}
	p.program.use()
	bindTexture(p.program.uniform("baseTexture"), 0, read.Texture())
	bindTexture(p.program.uniform("bloomTexture"), 1, p.bloom.ReadBuffer().Texture())
	r.drawQuad()
	return glError("mix pass")
}

func (p *MixPass) NeedsSwap() bool        { return true }
func (p *MixPass) SetSize(_, _ int) error { return nil }
func (p *MixPass) Delete()                { p.program.delete() }

// OutputPass tone maps and encodes to sRGB
type OutputPass struct {
	Exposure float32
	program  *program
}

// NewOutputPass creates the final pass
func NewOutputPass(exposure float64) (*OutputPass, error) {
	prog, err := newQuadProgram(outputFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to build output program: %w", err)
	}
	return &OutputPass{Exposure: float32(exposure), program: prog}, nil
}

func (p *OutputPass) Render(r *OpenGLRenderer, write, read *RenderTarget, toScreen bool) error {
	if toScreen {
		r.bindTarget(nil)
	} else {
		r.bindTarget(write)
	}
	p.program.use()
	bindTexture(p.program.uniform("source"), 0, read.Texture())
	gl.Uniform1f(p.program.uniform("exposure"), p.Exposure)
	r.drawQuad()
	return glError("output pass")
}

func (p *OutputPass) NeedsSwap() bool        { return true }
func (p *OutputPass) SetSize(_, _ int) error { return nil }
func (p *OutputPass) Delete()                { p.program.delete() }

// Pipelines builds the bloom composer and the final composer at the given
// buffer size. Without bloom the final composer skips the mix.
func Pipelines(r *OpenGLRenderer, s *scene.Scene, camera *scene.PerspectiveCamera, cfg *config.Config, width, height int) (bloom, final *Composer, err error) {
	log := r.log.Named("composer")

	bloom, err = NewComposer(r, width, height, log)
	if err != nil {
		return nil, nil, err
	}
	bloom.RenderToScreen = false
	bloom.AddPass(NewRenderPass(s, camera))

	bloomPass, err := NewBloomPass(width, height, cfg.Bloom)
	if err != nil {
		bloom.Delete()
		return nil, nil, err
	}
	bloom.AddPass(bloomPass)

	final, err = NewComposer(r, width, height, log)
	if err != nil {
		bloom.Delete()
		return nil, nil, err
	}
	final.AddPass(NewRenderPass(s, camera))

	if cfg.BloomComposerEnabled {
		mix, err := NewMixPass(bloom)
		if err != nil {
			bloom.Delete()
			final.Delete()
			return nil, nil, err
		}
		final.AddPass(mix)
	}

	output, err := NewOutputPass(cfg.Bloom.Exposure)
	if err != nil {
		bloom.Delete()
		final.Delete()
		return nil, nil, err
	}
	final.AddPass(output)

	return bloom, final, nil
}
