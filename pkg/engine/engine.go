package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"resonance/internal/logger"
	"resonance/pkg/config"
	"resonance/pkg/controls"
	"resonance/pkg/visualizer"
)

// Transport is the playback surface bound to O, P and I
type Transport interface {
	TogglePause() error
	SkipNext() error
	SkipPrevious() error
}

// maxFrameDelta caps the controller step after a stall
const maxFrameDelta = 0.1

// Engine owns the window and runs the display loop
type Engine struct {
	window   *glfw.Window
	config   *config.Config
	logger   *logger.Logger
	renderer *OpenGLRenderer
	input    *InputHandler
	fps      *visualizer.FPSCounter

	visualizer *visualizer.Visualizer
	controller *controls.Controller
	transport  Transport
	bloom      *Composer
	final      *Composer

	isRunning  bool
	start      time.Time
	lastUpdate time.Time
}

// NewEngine opens the window and creates the GL renderer
func NewEngine(cfg *config.Config, log *logger.Logger) (*Engine, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Set window hints
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Graphics.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, cfg.Graphics.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}

	window.MakeContextCurrent()
	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	width, height := window.GetFramebufferSize()
	renderer, err := NewOpenGLRenderer(width, height, log.Named("renderer"))
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	return &Engine{
		window:   window,
		config:   cfg,
		logger:   log,
		renderer: renderer,
		input:    NewInputHandler(window),
		fps:      visualizer.NewFPSCounter(time.Second),
	}, nil
}

// bufferSize scales a framebuffer size by the configured pixel ratio
func (e *Engine) bufferSize(width, height int) (int, int) {
	ratio := e.config.Graphics.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	return int(math.Round(float64(width) * ratio)), int(math.Round(float64(height) * ratio))
}

// Attach builds the pipelines and the visualizer for a session. The sphere
// keeps loading in the background; Run starts drawing once it is ready.
func (e *Engine) Attach(ctx *visualizer.Context, audio visualizer.AudioSource, transport Transport, textures visualizer.TextureLoader) error {
	fbWidth, fbHeight := e.window.GetFramebufferSize()
	width, height := e.bufferSize(fbWidth, fbHeight)

	bloom, final, err := Pipelines(e.renderer, ctx.Scene, ctx.Camera, e.config, width, height)
	if err != nil {
		return fmt.Errorf("failed to build pipelines: %w", err)
	}

	v, err := visualizer.New(ctx, audio, textures, bloom, final)
	if err != nil {
		bloom.Delete()
		final.Delete()
		return err
	}
	v.Resize(width, height)

	e.visualizer = v
	e.transport = transport
	e.bloom, e.final = bloom, final
	e.controller = controls.NewController(ctx.Camera, controls.DefaultSettings(), e.logger.Named("controls"))

	e.window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		e.renderer.SetSize(w, h)
		e.visualizer.Resize(e.bufferSize(w, h))
	})

	return nil
}

// Run drives the display loop until the window closes
func (e *Engine) Run() error {
	if e.visualizer == nil {
		return errors.New("engine: nothing attached")
	}
	defer e.cleanup()

	e.isRunning = true
	e.start = time.Now()
	e.lastUpdate = e.start

	for e.isRunning && !e.window.ShouldClose() {
		currentTime := time.Now()
		deltaTime := math.Min(currentTime.Sub(e.lastUpdate).Seconds(), maxFrameDelta)
		e.lastUpdate = currentTime

		e.input.Update()
		e.processInput()
		e.update(deltaTime)

		stats, err := e.visualizer.Frame(currentTime.Sub(e.start))
		if err != nil {
			return err
		}
		if stats.Skipped {
			// clear so the window is not garbage while the sphere loads
			e.renderer.bindTarget(nil)
			gl.ClearColor(0, 0, 0, 1)
			gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		}

		e.window.SwapBuffers()
		glfw.PollEvents()

		if e.fps.Tick(time.Now()) {
			e.window.SetTitle(fmt.Sprintf("%s - %.0f fps", e.config.Graphics.Title, e.fps.FPS()))
			e.logger.Debugf("%.1f fps, loudness %.1f, load %.2f, power %.2f",
				e.fps.FPS(), stats.Loudness, stats.Load, stats.LoadPower)
		}
	}

	return nil
}

// processInput handles the keys that are not movement
func (e *Engine) processInput() {
	actions, err := dispatchKeys(e.input, e.transport)
	if err != nil {
		e.logger.Warnf("Playback command dropped: %v", err)
	}
	if actions.quit {
		e.isRunning = false
		return
	}
	if actions.toggleLock {
		e.setLocked(!e.controller.Locked())
	}
}

// keyEvents reports what went down this frame
type keyEvents interface {
	IsKeyPressed(key glfw.Key) bool
	IsMouseButtonPressed(button glfw.MouseButton) bool
}

type frameActions struct {
	quit       bool
	toggleLock bool
}

// dispatchKeys sends O, P and I to the transport and reports whether the
// frame asked to quit (Escape) or to toggle the pointer lock (left click)
func dispatchKeys(in keyEvents, transport Transport) (frameActions, error) {
	actions := frameActions{
		quit:       in.IsKeyPressed(glfw.KeyEscape),
		toggleLock: in.IsMouseButtonPressed(glfw.MouseButtonLeft),
	}

	var err error
	switch {
	case in.IsKeyPressed(glfw.KeyO):
		err = transport.TogglePause()
	case in.IsKeyPressed(glfw.KeyP):
		err = transport.SkipNext()
	case in.IsKeyPressed(glfw.KeyI):
		err = transport.SkipPrevious()
	}
	return actions, err
}

func (e *Engine) setLocked(locked bool) {
	e.controller.SetLocked(locked)
	if locked {
		e.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		e.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	e.input.ResetMouse()
}

// update moves the camera
func (e *Engine) update(deltaTime float64) {
	delta := e.input.GetMouseDelta()
	e.controller.Look(delta[0], delta[1])
	e.controller.Update(deltaTime, e.input.Intent(), e.visualizer.Colliders())
}

// cleanup performs necessary cleanup before exiting
func (e *Engine) cleanup() {
	e.logger.Info("Shutting down engine...")
	e.visualizer.Close()
	e.bloom.Delete()
	e.final.Delete()
	e.renderer.Close()
	e.window.Destroy()
	glfw.Terminate()
}
