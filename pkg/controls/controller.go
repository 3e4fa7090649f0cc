// Package controls moves the first-person camera: pointer-lock mouse look,
// WASD walking with sprint and jump, gravity, and standing on solid meshes.
package controls

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/logger"
	"resonance/internal/util"
	"resonance/pkg/scene"
)

// Settings tune the walker
type Settings struct {
	Speed            float64 // acceleration per second
	StopFactor       float64 // horizontal damping per second
	SprintFactor     float64
	JumpPower        float64
	Gravity          float64
	Height           float64 // eye height above the floor
	ProbeLength      float64 // how far below the feet solid ground is searched
	MouseSensitivity float64 // radians per pixel
}

// DefaultSettings returns the walker used by the visualizer
func DefaultSettings() Settings {
	return Settings{
		Speed:            500,
		StopFactor:       10,
		SprintFactor:     2.5,
		JumpPower:        400,
		Gravity:          9.8 * 100,
		Height:           10,
		ProbeLength:      10,
		MouseSensitivity: 0.002,
	}
}

// Intent is the movement input for one frame. Jump is a press, not a hold.
type Intent struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Sprint   bool
	Jump     bool
}

// Controller drives a camera like a walking player
type Controller struct {
	camera   *scene.PerspectiveCamera
	settings Settings
	log      *logger.Logger

	velocity mgl32.Vec3
	yaw      float64
	pitch    float64
	canJump  bool
	locked   bool
}

// NewController takes over camera, keeping its current heading
func NewController(camera *scene.PerspectiveCamera, settings Settings, log *logger.Logger) *Controller {
	forward := camera.Quaternion.Rotate(mgl32.Vec3{0, 0, -1})

	c := &Controller{
		camera:   camera,
		settings: settings,
		log:      log,
		yaw:      math.Atan2(float64(-forward[0]), float64(-forward[2])),
		pitch:    math.Asin(util.Clamp(float64(forward[1]), -1, 1)),
	}
	c.apply()
	return c
}

// Locked reports whether the pointer is captured
func (c *Controller) Locked() bool { return c.locked }

// SetLocked captures or releases the pointer. Released pointers freeze the walker.
func (c *Controller) SetLocked(locked bool) {
	if c.locked == locked {
		return
	}
	c.locked = locked
	if !locked {
		c.velocity = mgl32.Vec3{}
	}
	c.log.Debugf("Pointer lock %v", locked)
}

// Toggle flips the pointer lock and returns the new state
func (c *Controller) Toggle() bool {
	c.SetLocked(!c.locked)
	return c.locked
}

// Position is the eye position
func (c *Controller) Position() mgl32.Vec3 { return c.camera.Position }

// Velocity is the current walker velocity in camera-relative axes
func (c *Controller) Velocity() mgl32.Vec3 { return c.velocity }

// Yaw and Pitch are the heading angles in radians
func (c *Controller) Yaw() float64   { return c.yaw }
func (c *Controller) Pitch() float64 { return c.pitch }

// Look turns the camera by a mouse movement in pixels
func (c *Controller) Look(dx, dy float64) {
	if !c.locked {
		return
	}
	c.yaw -= dx * c.settings.MouseSensitivity
	c.pitch = util.Clamp(c.pitch-dy*c.settings.MouseSensitivity, -math.Pi/2, math.Pi/2)
	c.apply()
}

func (c *Controller) apply() {
	yaw := mgl32.QuatRotate(float32(c.yaw), mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(float32(c.pitch), mgl32.Vec3{1, 0, 0})
	c.camera.Quaternion = yaw.Mul(pitch).Normalize()
}

// Update advances the walker by dt seconds. Horizontal velocity is stored
// negated against the camera's right and forward axes; y is world up.
func (c *Controller) Update(dt float64, in Intent, solids []*scene.Mesh) {
	if !c.locked || dt <= 0 {
		return
	}
	s := c.settings

	if in.Jump && c.canJump {
		c.velocity[1] += float32(s.JumpPower)
		c.canJump = false
	}

	c.velocity[0] -= c.velocity[0] * float32(s.StopFactor*dt)
	c.velocity[2] -= c.velocity[2] * float32(s.StopFactor*dt)
	c.velocity[1] -= float32(s.Gravity * dt)

	direction := mgl32.Vec3{axis(in.Right, in.Left), 0, axis(in.Forward, in.Backward)}
	if direction.Len() > 0 {
		direction = direction.Normalize()
	}

	speed := s.Speed
	if in.Sprint {
		speed *= s.SprintFactor
	}
	if in.Forward || in.Backward {
		c.velocity[2] -= direction[2] * float32(speed*dt)
	}
	if in.Left || in.Right {
		c.velocity[0] -= direction[0] * float32(speed*dt)
	}

	if c.standing(solids) {
		if c.velocity[1] < 0 {
			c.velocity[1] = 0
		}
		c.canJump = true
	}

	c.moveRight(-c.velocity[0] * float32(dt))
	c.moveForward(-c.velocity[2] * float32(dt))
	c.camera.Position[1] += c.velocity[1] * float32(dt)

	if floor := float32(s.Height); c.camera.Position[1] < floor {
		c.velocity[1] = 0
		c.camera.Position[1] = floor
		c.canJump = true
	}
}

func axis(positive, negative bool) float32 {
	var v float32
	if positive {
		v++
	}
	if negative {
		v--
	}
	return v
}

// standing probes straight down from the feet for a solid within reach
func (c *Controller) standing(solids []*scene.Mesh) bool {
	feet := c.camera.Position.Sub(mgl32.Vec3{0, float32(c.settings.Height), 0})
	down := mgl32.Vec3{0, -1, 0}

	for _, m := range solids {
		if _, hit := BoundingSphere(m).Raycast(feet, down, float32(c.settings.ProbeLength)); hit {
			return true
		}
	}
	return false
}

// moveRight walks along the camera's horizontal right axis
func (c *Controller) moveRight(distance float32) {
	sin, cos := math.Sincos(c.yaw)
	right := mgl32.Vec3{float32(cos), 0, float32(-sin)}
	c.camera.Position = c.camera.Position.Add(right.Mul(distance))
}

// moveForward walks along the horizontal heading, ignoring pitch
func (c *Controller) moveForward(distance float32) {
	sin, cos := math.Sincos(c.yaw)
	forward := mgl32.Vec3{float32(-sin), 0, float32(-cos)}
	c.camera.Position = c.camera.Position.Add(forward.Mul(distance))
}
