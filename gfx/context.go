// Package gfx is the OpenGL backend: window/context management, program
// compilation, render targets and texture upload. Everything here must
// run on the main thread with the context current.
package gfx

import (
	"fmt"
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

// Context wraps the GLFW window that backs the display surface.
type Context struct {
	window *glfw.Window
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts the windowing system down.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}

// NewContext creates the window and makes its GL context current. When
// visible is false the window is hidden (record mode).
func NewContext(width, height int, title string, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	c := &Context{window: win}
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	win.MakeContextCurrent()
	glfw.SwapInterval(1)
	return c, nil
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// EndFrame presents the frame and delivers pending host notifications
// (resize, pointer) before the next one.
func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

// FramebufferSize returns the drawable size in device pixels.
func (c *Context) FramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// PointerPixels returns the cursor position scaled into framebuffer
// pixel coordinates, accounting for the window's pixel density.
func (c *Context) PointerPixels() (float64, float64) {
	fbWidth, fbHeight := c.window.GetFramebufferSize()
	winWidth, winHeight := c.window.GetSize()
	scaleX, scaleY := 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}
	x, y := c.window.GetCursorPos()
	return x * scaleX, y * scaleY
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}
