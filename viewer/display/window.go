package display

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

// Action is a viewer command triggered by a key press
type Action int

const (
	ActionNone Action = iota
	ActionMoveForward
	ActionMoveBackward
	ActionQuit
)

// Window is a GLFW window with a current OpenGL 4.1 core context
type Window struct {
	Handle  *glfw.Window
	Width   int
	Height  int
	Title   string
	pending []Action
}

// WindowConfig contains the window settings
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

// DefaultWindowConfig returns sensible default values
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:  800,
		Height: 600,
		Title:  "Sphere Path Tracer",
		VSync:  true,
	}
}

// NewWindow opens a window and makes its context current
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}
	handle.SetKeyCallback(window.onKey)
	return window, nil
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	if a := KeyAction(key); a != ActionNone {
		w.pending = append(w.pending, a)
	}
}

// KeyAction maps a key to a viewer command
func KeyAction(key glfw.Key) Action {
	switch key {
	case glfw.KeyW:
		return ActionMoveForward
	case glfw.KeyS:
		return ActionMoveBackward
	case glfw.KeyEscape:
		return ActionQuit
	default:
		return ActionNone
	}
}

// PollEvents processes window events and returns the commands they produced
func (w *Window) PollEvents() []Action {
	w.pending = w.pending[:0]
	glfw.PollEvents()
	if w.Handle.ShouldClose() {
		w.pending = append(w.pending, ActionQuit)
	}
	return w.pending
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}
