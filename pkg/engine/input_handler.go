package engine

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"resonance/pkg/controls"
)

// watchedKeys are polled every frame
var watchedKeys = []glfw.Key{
	glfw.KeyW, glfw.KeyA, glfw.KeyS, glfw.KeyD,
	glfw.KeyUp, glfw.KeyDown, glfw.KeyLeft, glfw.KeyRight,
	glfw.KeyLeftShift, glfw.KeySpace, glfw.KeyEscape,
	glfw.KeyO, glfw.KeyP, glfw.KeyI,
}

// InputHandler tracks keyboard and mouse state between frames
type InputHandler struct {
	window            *glfw.Window
	currentKeys       map[glfw.Key]bool
	previousKeys      map[glfw.Key]bool
	currentMousePos   [2]float64
	previousMousePos  [2]float64
	currentMouseBtns  map[glfw.MouseButton]bool
	previousMouseBtns map[glfw.MouseButton]bool
	mouseDelta        [2]float64
	skipDelta         bool
}

// NewInputHandler creates an input handler for a window
func NewInputHandler(window *glfw.Window) *InputHandler {
	return &InputHandler{
		window:            window,
		currentKeys:       make(map[glfw.Key]bool),
		previousKeys:      make(map[glfw.Key]bool),
		currentMouseBtns:  make(map[glfw.MouseButton]bool),
		previousMouseBtns: make(map[glfw.MouseButton]bool),
		skipDelta:         true,
	}
}

// Update samples the current state
func (ih *InputHandler) Update() {
	for k, v := range ih.currentKeys {
		ih.previousKeys[k] = v
	}
	for b, v := range ih.currentMouseBtns {
		ih.previousMouseBtns[b] = v
	}

	ih.previousMousePos = ih.currentMousePos
	x, y := ih.window.GetCursorPos()
	ih.currentMousePos = [2]float64{x, y}

	if ih.skipDelta {
		ih.mouseDelta = [2]float64{}
		ih.skipDelta = false
	} else {
		ih.mouseDelta[0] = ih.currentMousePos[0] - ih.previousMousePos[0]
		ih.mouseDelta[1] = ih.currentMousePos[1] - ih.previousMousePos[1]
	}

	for _, key := range watchedKeys {
		ih.currentKeys[key] = ih.window.GetKey(key) == glfw.Press
	}
	for btn := glfw.MouseButton1; btn <= glfw.MouseButtonLast; btn++ {
		ih.currentMouseBtns[btn] = ih.window.GetMouseButton(btn) == glfw.Press
	}
}

// ResetMouse drops the next mouse delta. Call it when the cursor mode changes.
func (ih *InputHandler) ResetMouse() {
	ih.skipDelta = true
}

// IsKeyDown reports whether a key is held
func (ih *InputHandler) IsKeyDown(key glfw.Key) bool {
	return ih.currentKeys[key]
}

// IsKeyPressed reports whether a key went down this frame
func (ih *InputHandler) IsKeyPressed(key glfw.Key) bool {
	return ih.currentKeys[key] && !ih.previousKeys[key]
}

// IsMouseButtonPressed reports whether a button went down this frame
func (ih *InputHandler) IsMouseButtonPressed(button glfw.MouseButton) bool {
	return ih.currentMouseBtns[button] && !ih.previousMouseBtns[button]
}

// GetMouseDelta returns the cursor movement since the last frame
func (ih *InputHandler) GetMouseDelta() [2]float64 {
	return ih.mouseDelta
}

// Intent maps the movement keys to controller input
func (ih *InputHandler) Intent() controls.Intent {
	return controls.Intent{
		Forward:  ih.IsKeyDown(glfw.KeyW) || ih.IsKeyDown(glfw.KeyUp),
		Backward: ih.IsKeyDown(glfw.KeyS) || ih.IsKeyDown(glfw.KeyDown),
		Left:     ih.IsKeyDown(glfw.KeyA) || ih.IsKeyDown(glfw.KeyLeft),
		Right:    ih.IsKeyDown(glfw.KeyD) || ih.IsKeyDown(glfw.KeyRight),
		Sprint:   ih.IsKeyDown(glfw.KeyLeftShift),
		Jump:     ih.IsKeyDown(glfw.KeySpace),
	}
}
