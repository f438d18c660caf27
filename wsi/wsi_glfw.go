// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build (linux || windows || darwin) && cgo

package wsi

import (
	"errors"
	"log"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	if err := initGLFW(); err != nil {
		log.Printf("[!] wsi: %v (wsi unavailable)", err)
		initDummy()
	}
}

// initGLFW initializes the GLFW platform.
// GLFW requires that it, and all window calls that follow,
// run on the main thread; callers are expected to lock it.
func initGLFW() error {
	if err := glfw.Init(); err != nil {
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("wsi: no Vulkan loader found")
	}
	newWindow = newWindowGLFW
	dispatch = glfw.PollEvents
	vulkanProcAddr = glfw.GetVulkanGetInstanceProcAddress
	platform = GLFW
	return nil
}

// windowGLFW implements Window and SurfaceSource.
// width and height cache the framebuffer extent, in pixels,
// which is what surfaces created from the window measure;
// on hidpi displays it differs from the screen-coordinate
// size that GLFW's window calls take.
type windowGLFW struct {
	win    *glfw.Window
	width  int
	height int
	title  string
}

func newWindowGLFW(width, height int, title string) (Window, error) {
	// The surface is presented by a GPU driver, so GLFW
	// must not create a client API context of its own.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}
	w := &windowGLFW{
		win:   win,
		title: title,
	}
	w.width, w.height = win.GetFramebufferSize()
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, newWidth, newHeight int) {
		w.width = newWidth
		w.height = newHeight
		if windowHandler != nil {
			windowHandler.WindowResize(w, newWidth, newHeight)
		}
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		if windowHandler != nil {
			windowHandler.WindowClose(w)
		}
	})
	return w, nil
}

func (w *windowGLFW) Map() error {
	w.win.Show()
	return nil
}

func (w *windowGLFW) Unmap() error {
	w.win.Hide()
	return nil
}

func (w *windowGLFW) Resize(width, height int) error {
	w.win.SetSize(width, height)
	w.width, w.height = w.win.GetFramebufferSize()
	return nil
}

func (w *windowGLFW) SetTitle(title string) error {
	w.win.SetTitle(title)
	w.title = title
	return nil
}

func (w *windowGLFW) Close() {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	closeWindow(w)
}

func (w *windowGLFW) Width() int    { return w.width }
func (w *windowGLFW) Height() int   { return w.height }
func (w *windowGLFW) Title() string { return w.title }

func (w *windowGLFW) InstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *windowGLFW) CreateSurface(instance unsafe.Pointer) (uintptr, error) {
	return w.win.CreateWindowSurface(instance, nil)
}
