package engine

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is an offscreen framebuffer with an HDR colour texture and an
// optional depth buffer
type RenderTarget struct {
	fbo       uint32
	texture   uint32
	depth     uint32
	width     int
	height    int
	withDepth bool
}

// NewRenderTarget allocates a framebuffer of the given size
func NewRenderTarget(width, height int, withDepth bool) (*RenderTarget, error) {
	t := &RenderTarget{withDepth: withDepth}

	gl.GenFramebuffers(1, &t.fbo)
	gl.GenTextures(1, &t.texture)
	if withDepth {
		gl.GenRenderbuffers(1, &t.depth)
	}

	if err := t.allocate(width, height); err != nil {
		t.Delete()
		return nil, err
	}
	return t, nil
}

func (t *RenderTarget) allocate(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	t.width, t.height = width, height

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(width), int32(height), 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)

	if t.withDepth {
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, t.depth)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		return errors.New("framebuffer not complete")
	}
	return nil
}

// SetSize reallocates the attachments when the size changes
func (t *RenderTarget) SetSize(width, height int) error {
	if t.width == width && t.height == height {
		return nil
	}
	return t.allocate(width, height)
}

// Size returns the allocated size
func (t *RenderTarget) Size() (int, int) { return t.width, t.height }

// Texture is the colour attachment
func (t *RenderTarget) Texture() uint32 { return t.texture }

// Delete releases the GL objects
func (t *RenderTarget) Delete() {
	if t.depth != 0 {
		gl.DeleteRenderbuffers(1, &t.depth)
	}
	gl.DeleteTextures(1, &t.texture)
	gl.DeleteFramebuffers(1, &t.fbo)
	*t = RenderTarget{}
}

// ShadowMap is a depth texture sampled with hardware comparison
type ShadowMap struct {
	fbo     uint32
	texture uint32
	size    int
}

// NewShadowMap allocates a square depth-only framebuffer
func NewShadowMap(size int) (*ShadowMap, error) {
	s := &ShadowMap{size: size}

	gl.GenTextures(1, &s.texture)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(size), int32(size), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := []float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.GenFramebuffers(1, &s.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, s.texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		s.Delete()
		return nil, errors.New("shadow framebuffer not complete")
	}
	return s, nil
}

// Delete releases the GL objects
func (s *ShadowMap) Delete() {
	gl.DeleteTextures(1, &s.texture)
	gl.DeleteFramebuffers(1, &s.fbo)
	*s = ShadowMap{}
}
