// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"time"

	"prerot/linear"
	"prerot/wsi"
)

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external
// memory that is not managed by GC, so Destroy must be
// called explicitly to ensure such memory is deallocated.
type Destroyer interface {
	Destroy()
}

// Device is the interface to an open driver instance.
// It binds a logical device and a single submission queue
// once, at Open time. A Device presents to at most one
// Surface at a time.
type Device interface {
	Destroyer

	// NewSurface creates the presentation surface for win
	// and the fixed render resources described by p.
	// The surface's pixel format and presenting queue family
	// are chosen here and never change; extent and transform
	// are re-read on every Probe call.
	NewSurface(win wsi.Window, p *RenderParams) (Surface, error)

	// NewFence creates a new fence, optionally in the
	// signaled state.
	NewFence(signaled bool) (Fence, error)

	// NewSemaphore creates a new semaphore.
	NewSemaphore() (Semaphore, error)

	// NewCmdBuffer creates a new command buffer.
	NewCmdBuffer() (CmdBuffer, error)

	// Submit enqueues cb on the device queue.
	// Execution waits on the wait semaphore at the color
	// output stage and, when done, signals the signal
	// semaphore and the fence.
	Submit(cb CmdBuffer, wait, signal Semaphore, fence Fence) error

	// WaitIdle blocks until the device completes all
	// outstanding work.
	WaitIdle() error
}

// RenderParams describes the fixed resources that a Surface
// creates once: the shader pair, and the source texture that
// the quad pipeline samples.
// Pix holds tightly-packed RGBA data, 4*Width*Height bytes.
type RenderParams struct {
	VertSPV []byte
	FragSPV []byte
	Pix     []byte
	Width   int
	Height  int
}

// Fence is a CPU-observable completion signal for queued
// work. It bounds reuse of per-frame resources.
type Fence interface {
	Destroyer

	// Wait blocks until the fence is signaled.
	// It returns ErrTimeout if the bound elapses first,
	// which callers must treat as a device hang.
	Wait(timeout time.Duration) error

	// Reset returns the fence to the unsignaled state.
	Reset() error
}

// Semaphore orders queue operations without CPU visibility.
// The engine never observes its state; it only wires it
// between acquire, submit and present.
type Semaphore interface {
	Destroyer
}

// DrawConstants is the push-constant block of the quad
// vertex shader.
// Fit scales the quad to preserve the texture's aspect
// ratio within the logical surface; Rotate compensates in
// clip space for the surface pre-transform.
type DrawConstants struct {
	Fit    linear.M4
	Rotate linear.M2
}

// CmdBuffer is the interface that defines a command buffer.
// The engine records one command sequence per frame:
//
//	1. call Begin
//	2. call BeginPass targeting an acquired image
//	3. call SetViewport/SetScissor with the image extent
//	4. call SetConstants with the frame's DrawConstants
//	5. call SetPipeline
//	6. call Draw
//	7. call EndPass
//	8. call End and then Device.Submit
//
// A command buffer must not be re-recorded between Submit
// and the signaling of the submission's fence.
type CmdBuffer interface {
	Destroyer

	// Begin prepares the command buffer for recording,
	// discarding any previous recording.
	Begin() error

	// BeginPass begins the render pass targeting t, which
	// must be a Target of the currently valid swapchain,
	// clearing it to the given color.
	BeginPass(t Target, width, height int, clear [4]float32)

	// SetViewport sets the dynamic viewport.
	SetViewport(width, height int)

	// SetScissor sets the dynamic scissor rectangle.
	SetScissor(width, height int)

	// SetConstants pushes the shader constants.
	SetConstants(c *DrawConstants)

	// SetPipeline binds the quad pipeline along with its
	// descriptor set and vertex buffer.
	SetPipeline()

	// Draw draws vertCount vertices of the quad strip.
	Draw(vertCount int)

	// EndPass ends the render pass.
	EndPass()

	// End ends recording and prepares the command buffer
	// for submission.
	End() error
}
