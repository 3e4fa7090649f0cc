package controls

import (
	"io"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/logger"
	"resonance/pkg/scene"
)

const step = 1.0 / 60

func newWalker(position mgl32.Vec3) (*Controller, *scene.PerspectiveCamera) {
	camera := scene.NewPerspectiveCamera(38, 1, 1, 1000)
	camera.Position = position
	c := NewController(camera, DefaultSettings(), logger.NewWriterLogger("error", io.Discard))
	c.SetLocked(true)
	return c, camera
}

func run(c *Controller, frames int, in Intent, solids []*scene.Mesh) {
	for i := 0; i < frames; i++ {
		c.Update(step, in, solids)
	}
}

// sameRotation compares unit quaternions up to sign with an absolute tolerance
func sameRotation(a, b mgl32.Quat) bool {
	return math.Abs(float64(a.Dot(b))) > 1-1e-5
}

func TestController_KeepsInitialHeading(t *testing.T) {
	camera := scene.NewPerspectiveCamera(38, 1, 1, 1000)
	camera.SetRotation(0, math.Pi/100, 0)
	before := camera.Quaternion

	c := NewController(camera, DefaultSettings(), logger.NewWriterLogger("error", io.Discard))
	if math.Abs(c.Yaw()-math.Pi/100) > 1e-5 || math.Abs(c.Pitch()) > 1e-5 {
		t.Errorf("Heading %v/%v", c.Yaw(), c.Pitch())
	}
	if !sameRotation(camera.Quaternion, before) {
		t.Errorf("Camera rotation changed: %v -> %v", before, camera.Quaternion)
	}
}

func TestController_IgnoresInputWhileUnlocked(t *testing.T) {
	c, camera := newWalker(mgl32.Vec3{0, 10, 0})
	c.SetLocked(false)

	run(c, 30, Intent{Forward: true}, nil)
	c.Look(100, 100)

	if camera.Position != (mgl32.Vec3{0, 10, 0}) {
		t.Errorf("Moved while unlocked: %v", camera.Position)
	}
	if c.Yaw() != 0 || c.Pitch() != 0 {
		t.Error("Looked around while unlocked")
	}
}

func TestController_Toggle(t *testing.T) {
	c, _ := newWalker(mgl32.Vec3{})
	if c.Toggle() || c.Locked() {
		t.Error("Expected unlocked after toggle")
	}
	if !c.Toggle() {
		t.Error("Expected locked after second toggle")
	}
}

func TestController_WalksForward(t *testing.T) {
	c, camera := newWalker(mgl32.Vec3{0, 10, 0})

	run(c, 30, Intent{Forward: true}, nil)

	if camera.Position[2] >= 0 {
		t.Errorf("Expected to move towards -Z, got %v", camera.Position)
	}
	if math.Abs(float64(camera.Position[0])) > 1e-4 {
		t.Errorf("Drifted sideways: %v", camera.Position)
	}
	if camera.Position[1] != 10 {
		t.Errorf("Expected to stay on the floor, got %v", camera.Position[1])
	}
}

func TestController_StrafesRelativeToHeading(t *testing.T) {
	c, camera := newWalker(mgl32.Vec3{0, 10, 0})
	c.Look(-math.Pi/2/0.002, 0) // face -X

	run(c, 30, Intent{Right: true}, nil)

	if camera.Position[2] >= 0 || math.Abs(float64(camera.Position[0])) > 1e-3 {
		t.Errorf("Right of -X should be -Z, got %v", camera.Position)
	}
}

func TestController_SprintIsFaster(t *testing.T) {
	walk, walkCam := newWalker(mgl32.Vec3{0, 10, 0})
	sprint, sprintCam := newWalker(mgl32.Vec3{0, 10, 0})

	run(walk, 30, Intent{Forward: true}, nil)
	run(sprint, 30, Intent{Forward: true, Sprint: true}, nil)

	if -sprintCam.Position[2] <= -walkCam.Position[2]*2 {
		t.Errorf("Sprint %v vs walk %v", sprintCam.Position[2], walkCam.Position[2])
	}
}

func TestController_StopsWhenReleased(t *testing.T) {
	c, _ := newWalker(mgl32.Vec3{0, 10, 0})
	run(c, 30, Intent{Forward: true}, nil)
	run(c, 300, Intent{}, nil)

	if v := c.Velocity(); math.Abs(float64(v[2])) > 1e-3 {
		t.Errorf("Still moving: %v", v)
	}
}

func TestController_GravityAndFloor(t *testing.T) {
	c, camera := newWalker(mgl32.Vec3{0, 80, 0})

	c.Update(step, Intent{}, nil)
	if camera.Position[1] >= 80 {
		t.Error("Gravity did not pull down")
	}

	run(c, 300, Intent{}, nil)
	if camera.Position[1] != 10 || c.Velocity()[1] != 0 {
		t.Errorf("Expected to rest at eye height, got %v / %v", camera.Position[1], c.Velocity()[1])
	}
}

func TestController_JumpOnlyFromGround(t *testing.T) {
	c, camera := newWalker(mgl32.Vec3{0, 80, 0})

	// airborne, jump ignored
	c.Update(step, Intent{Jump: true}, nil)
	if c.Velocity()[1] > 0 {
		t.Error("Jumped in mid air")
	}

	run(c, 300, Intent{}, nil)
	c.Update(step, Intent{Jump: true}, nil)
	if camera.Position[1] <= 10 {
		t.Errorf("Jump from floor did not lift, y=%v", camera.Position[1])
	}

	vy := c.Velocity()[1]
	c.Update(step, Intent{Jump: true}, nil)
	if c.Velocity()[1] > vy {
		t.Error("Double jump allowed")
	}
}

func TestController_StandsOnSolids(t *testing.T) {
	ball := scene.NewMesh("sphere", scene.NewIcosahedronGeometry(7, 2), scene.NewPhongMaterial())
	ball.Position = mgl32.Vec3{0, 50, 0}
	solids := []*scene.Mesh{ball}

	// feet 5 above the top of the ball
	c, camera := newWalker(mgl32.Vec3{0, 72, 0})
	run(c, 60, Intent{}, solids)

	if camera.Position[1] != 72 {
		t.Errorf("Expected to stand on the ball, y=%v", camera.Position[1])
	}

	c.Update(step, Intent{Jump: true}, solids)
	if camera.Position[1] <= 72 {
		t.Error("Expected to jump off the ball")
	}

	// without the ball the same start falls
	c2, camera2 := newWalker(mgl32.Vec3{0, 72, 0})
	run(c2, 60, Intent{}, nil)
	if camera2.Position[1] >= 72 {
		t.Error("Expected to fall with no solids")
	}
}

func TestController_LookClampsPitch(t *testing.T) {
	c, camera := newWalker(mgl32.Vec3{})

	c.Look(0, -10000)
	if c.Pitch() != math.Pi/2 {
		t.Errorf("Expected pitch clamped to pi/2, got %v", c.Pitch())
	}
	up := camera.Quaternion.Rotate(mgl32.Vec3{0, 0, -1})
	if up.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-4 {
		t.Errorf("Expected to look straight up, looking %v", up)
	}

	c.Look(0, 20000)
	if c.Pitch() != -math.Pi/2 {
		t.Errorf("Expected pitch clamped to -pi/2, got %v", c.Pitch())
	}

	c.Look(100, 0)
	if math.Abs(c.Yaw()+0.2) > 1e-9 {
		t.Errorf("Expected yaw -0.2, got %v", c.Yaw())
	}
}
