package visualizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/util"
	"resonance/pkg/scene"
)

// AudioSource is the analysis side of the music player
type AudioSource interface {
	Loudness() float64
	FrequencyData(resolution int) []byte
	MinSampleRange() float64
	MaxSampleRange() float64
}

const (
	timeScale = 3000.0 // milliseconds per radian of animation phase

	mainLightIntensity = 20
	mainLightDistance  = 300
	mainLightOrbit     = 50

	groundSize = 500
)

var mainLightPosition = mgl32.Vec3{0, 60, 0}

// FrameStats describes one tick
type FrameStats struct {
	Skipped   bool
	Time      float64
	Loudness  float64
	Load      float64
	LoadPower float64
}

// Visualizer owns the scene and advances it once per displayed frame
type Visualizer struct {
	ctx        *Context
	audio      AudioSource
	board      *Board
	compositor *Compositor
	mainLight  *scene.SpotLight
	ground     *scene.Mesh

	sphere      *Sphere
	sphereReady chan *Sphere
	sphereErr   chan error
	cancel      context.CancelFunc
}

// New builds the static scene and starts loading the sphere textures in the
// background. Frames are skipped until the sphere is ready.
func New(ctx *Context, audio AudioSource, textures TextureLoader, bloom, final Pipeline) (*Visualizer, error) {
	if ctx.Session == nil {
		return nil, errors.New("visualizer: no session selected")
	}

	v := &Visualizer{
		ctx:         ctx,
		audio:       audio,
		compositor:  NewCompositor(ctx.Scene, bloom, final, ctx.Config.BloomComposerEnabled),
		sphereReady: make(chan *Sphere, 1),
		sphereErr:   make(chan error, 1),
	}

	v.buildFurniture()

	board, err := BuildBoard(ctx)
	if err != nil {
		return nil, err
	}
	v.board = board

	loadCtx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	sphere := NewSphere(ctx.Session.Material, ctx.Session.Lights.SpecialColor)
	go func() {
		if err := sphere.LoadTextures(loadCtx, textures, ctx.Assets, ctx.Log); err != nil {
			v.sphereErr <- err
			return
		}
		v.sphereReady <- sphere
	}()

	ctx.Log.Infof("Scene built: %d shapes, %d dancer lights, bloom %v",
		len(board.Shapes), len(board.Dancers), v.compositor.BloomEnabled())

	return v, nil
}

func (v *Visualizer) buildFurniture() {
	s := v.ctx.Scene

	s.Add(scene.NewHemisphereLight(scene.Hex(0x000000), scene.Hex(0xffffff), 0.15))

	light := scene.NewSpotLight("main", scene.Hex(uint32(v.ctx.Session.Lights.MainLightColor)), mainLightIntensity)
	light.Position = mainLightPosition
	light.Angle = math.Pi / 3
	light.Penumbra = 1
	light.Decay = 1
	light.Distance = mainLightDistance
	light.CastShadow = true
	light.Shadow = scene.DefaultShadow()
	s.Add(light)
	v.mainLight = light

	ground := scene.NewMesh("ground", scene.NewPlaneGeometry(groundSize, groundSize, 1, 1), scene.NewLambertMaterial(scene.Hex(0xffffff)))
	ground.ReceiveShadow = true
	ground.SetRotation(-math.Pi/2, 0, 0)
	s.Add(ground)
	v.ground = ground
}

// Context returns the shared scene context
func (v *Visualizer) Context() *Context { return v.ctx }

// Board returns the curved board
func (v *Visualizer) Board() *Board { return v.board }

// Compositor returns the compositor
func (v *Visualizer) Compositor() *Compositor { return v.compositor }

// Sphere returns the sphere once it has joined the scene, nil before
func (v *Visualizer) Sphere() *Sphere { return v.sphere }

// Ready reports whether the sphere has joined the scene
func (v *Visualizer) Ready() bool { return v.sphere != nil }

// Colliders lists meshes the camera controller can stand on
func (v *Visualizer) Colliders() []*scene.Mesh {
	if v.sphere == nil {
		return nil
	}
	return []*scene.Mesh{v.sphere.Mesh}
}

// Close stops any texture load still in flight
func (v *Visualizer) Close() {
	v.cancel()
}

// adoptSphere attaches a finished sphere on the render thread
func (v *Visualizer) adoptSphere() error {
	if v.sphere != nil {
		return nil
	}

	select {
	case s := <-v.sphereReady:
		v.ctx.Scene.Add(s.Mesh)
		v.sphere = s
		v.ctx.Log.Info("Sphere ready")
	case err := <-v.sphereErr:
		return fmt.Errorf("sphere build failed: %w", err)
	default:
	}
	return nil
}

// Loads maps a raw loudness reading onto load in [LoadMin, LoadMax] and
// loadPower in [0, 1]. Both are clamped.
func Loads(loudness, min, max float64) (load, loadPower float64) {
	load = util.Clamp(util.RemapRange(loudness, min, max, LoadMin, LoadMax), LoadMin, LoadMax)
	loadPower = util.Clamp(util.RemapRange(load, LoadMin, LoadMax, 0, 1), 0, 1)
	return load, loadPower
}

// Frame advances the scene to elapsed time since start and renders it.
// Until the sphere is ready nothing is touched.
func (v *Visualizer) Frame(elapsed time.Duration) (FrameStats, error) {
	if err := v.adoptSphere(); err != nil {
		return FrameStats{Skipped: true}, err
	}
	if v.sphere == nil {
		return FrameStats{Skipped: true}, nil
	}

	t := float64(elapsed) / float64(time.Millisecond) / timeScale
	stats := FrameStats{Time: t}

	sin, cos := math.Sincos(t)
	v.mainLight.Position[0] = float32(cos * mainLightOrbit)
	v.mainLight.Position[2] = float32(sin * mainLightOrbit)

	stats.Loudness = v.audio.Loudness()
	stats.Load, stats.LoadPower = Loads(stats.Loudness, v.audio.MinSampleRange(), v.audio.MaxSampleRange())

	v.sphere.Update(stats.Load, stats.LoadPower)
	v.sphere.Animate(t)

	v.board.OnRender(stats.LoadPower, v.audio.FrequencyData(BoardResolution))

	if err := v.compositor.Render(); err != nil {
		return stats, fmt.Errorf("render failed: %w", err)
	}
	return stats, nil
}

// Resize keeps the camera projection and both pipelines on the same viewport
func (v *Visualizer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.ctx.Camera.SetAspect(width, height)
	v.compositor.SetSize(width, height)
}

// WaitReady blocks until the sphere textures have loaded, the load failed, or
// ctx is done. Frame still has to run once to attach the sphere.
func (v *Visualizer) WaitReady(ctx context.Context) error {
	if v.sphere != nil {
		return nil
	}
	select {
	case s := <-v.sphereReady:
		v.sphereReady <- s
		return nil
	case err := <-v.sphereErr:
		v.sphereErr <- err
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
