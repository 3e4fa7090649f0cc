// Package visualizer builds the audio reactive scene and drives it frame by frame.
// It is independent of OpenGL: rendering happens behind the Pipeline interface.
package visualizer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/logger"
	"resonance/pkg/config"
	"resonance/pkg/scene"
)

// BloomLayer is the render layer whose members glow
const BloomLayer = 1

var (
	cameraPosition = mgl32.Vec3{8.050869121172505, 50.03205560041558, 110.87623656286746}
	cameraYaw      = float32(math.Pi / 100)
)

const (
	cameraNear = 1
	cameraFar  = 1000

	fogNear = 0
	fogFar  = 750
)

// Context is the state every scene builder works on
type Context struct {
	Scene   *scene.Scene
	Camera  *scene.PerspectiveCamera
	Config  *config.Config
	Session *config.Session
	Assets  *config.AssetPaths
	Log     *logger.Logger
}

// NewContext creates the scene, fog and camera for a session
func NewContext(cfg *config.Config, session *config.Session, log *logger.Logger) *Context {
	s := scene.New()
	s.Background = scene.Hex(0x000000)
	s.Fog = &scene.Fog{Color: scene.Hex(0x000000), Near: fogNear, Far: fogFar}

	aspect := float32(cfg.Graphics.Width) / float32(cfg.Graphics.Height)
	camera := scene.NewPerspectiveCamera(float32(cfg.Graphics.FOV), aspect, cameraNear, cameraFar)
	camera.Layers.Enable(0)
	camera.Layers.Enable(BloomLayer)
	camera.Position = cameraPosition
	camera.SetRotation(0, cameraYaw, 0)

	return &Context{
		Scene:   s,
		Camera:  camera,
		Config:  cfg,
		Session: session,
		Assets:  config.NewAssetPaths(cfg.Assets),
		Log:     log,
	}
}
