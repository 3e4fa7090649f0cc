package scene

import "github.com/go-gl/mathgl/mgl32"

// PerspectiveCamera projects with a vertical field of view in degrees
type PerspectiveCamera struct {
	Node
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewPerspectiveCamera creates a camera
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	return &PerspectiveCamera{Node: NewNode("camera"), FOV: fov, Aspect: aspect, Near: near, Far: far}
}

// SetAspect updates the aspect ratio from a viewport size
func (c *PerspectiveCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Projection returns the projection matrix
func (c *PerspectiveCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// View returns the world to camera matrix. Cameras look down their local -Z.
func (c *PerspectiveCamera) View() mgl32.Mat4 {
	return c.World().Inv()
}

// Sees reports whether an object is on one of the camera's layers
func (c *PerspectiveCamera) Sees(o Object) bool {
	return c.Layers.Test(o.Base().Layers)
}
