// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package engine implements presentation of a textured quad
// to a surface whose extent and pre-transform change at the
// whim of the window system.
// It owns the swapchain lifecycle, a fixed number of
// in-flight frame slots, and the per-frame command
// recording; the GPU work itself goes through a
// driver.Device.
package engine

import (
	"errors"
	"io/fs"
	"sync"

	"prerot/driver"
	"prerot/internal/assets"
	"prerot/wsi"
)

// ErrNotReady means that a frame was requested outside the
// InitWindow/TermWindow window.
var ErrNotReady = errors.New("engine: no window initialized")

// Engine is the serialized entry point of the presentation
// engine. Lifecycle notifications arrive from a callback
// context while an external clock drives DrawFrame, so
// every method takes the one lock guarding the renderer
// state.
type Engine struct {
	mu   sync.Mutex
	cfg  Config
	dev  driver.Device
	surf driver.Surface
	rend *renderer
}

// New creates an engine on dev.
// A nil config selects the defaults.
func New(dev driver.Device, config *Config) *Engine {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
		cfg.sanitize()
	}
	return &Engine{cfg: cfg, dev: dev}
}

// InitWindow loads the fixed assets from fsys, creates the
// presentation surface for win and brings up the frame
// machinery. It must be balanced by TermWindow.
func (e *Engine) InitWindow(win wsi.Window, fsys fs.FS) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rend != nil {
		return errors.New("engine: window already initialized")
	}

	vert, err := assets.Shader(fsys, e.cfg.VertShaderPath)
	if err != nil {
		return err
	}
	frag, err := assets.Shader(fsys, e.cfg.FragShaderPath)
	if err != nil {
		return err
	}
	tex, err := assets.Texture(fsys, e.cfg.TexturePath)
	if err != nil {
		return err
	}

	surf, err := e.dev.NewSurface(win, &driver.RenderParams{
		VertSPV: vert,
		FragSPV: frag,
		Pix:     tex.Pix,
		Width:   tex.Width,
		Height:  tex.Height,
	})
	if err != nil {
		return err
	}

	rend, err := newRenderer(e.cfg, e.dev, surf, tex.Width, tex.Height)
	if err != nil {
		surf.Destroy()
		return err
	}
	e.surf = surf
	e.rend = rend
	return nil
}

// WindowResized notes the window's new dimensions,
// requesting a swapchain rebuild when they differ from the
// active generation's.
func (e *Engine) WindowResized(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rend != nil {
		e.rend.resized(width, height)
	}
}

// TermWindow tears down everything InitWindow created.
// It blocks until the device is idle before releasing any
// resource. Terminating an uninitialized engine has no
// effect.
func (e *Engine) TermWindow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rend == nil {
		return
	}
	e.rend.destroy()
	e.rend = nil
	e.surf.Destroy()
	e.surf = nil
}

// Ready reports whether the engine can draw frames.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rend != nil
}

// DrawFrame produces and presents one frame.
// Errors are unrecoverable: the caller must call TermWindow
// and stop the loop.
func (e *Engine) DrawFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rend == nil {
		return ErrNotReady
	}
	return e.rend.drawFrame()
}

// DelayMillis returns the delay the external frame clock
// should apply before the next DrawFrame call.
// frameTimeNanos is accepted for clock interfaces that
// report the last frame's duration; the delay is fixed.
func (e *Engine) DelayMillis(frameTimeNanos int64) uint32 {
	_ = frameTimeNanos
	return e.cfg.DelayMillis
}
