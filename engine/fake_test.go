// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"time"

	"prerot/driver"
	"prerot/wsi"
)

// fakeDevice implements the driver interfaces with an
// instantly-completing GPU. It records an operation
// sequence so tests can assert ordering, and collects
// violations of the synchronization contract.
type fakeDevice struct {
	surf       *fakeSurface
	fences     []*fakeFence
	seq        int
	idleSeqs   []int
	submits    int
	violations []string
}

func newFakeDevice(width, height int, t driver.Transform) *fakeDevice {
	d := &fakeDevice{}
	d.surf = &fakeSurface{dev: d, width: width, height: height, transform: t}
	return d
}

func (d *fakeDevice) tick() int { d.seq++; return d.seq }

func (d *fakeDevice) violate(s string) { d.violations = append(d.violations, s) }

func (d *fakeDevice) Destroy() {}

func (d *fakeDevice) NewSurface(wsi.Window, *driver.RenderParams) (driver.Surface, error) {
	return d.surf, nil
}

func (d *fakeDevice) NewFence(signaled bool) (driver.Fence, error) {
	f := &fakeFence{dev: d, signaled: signaled}
	d.fences = append(d.fences, f)
	return f, nil
}

func (d *fakeDevice) NewSemaphore() (driver.Semaphore, error) {
	return &fakeSemaphore{}, nil
}

func (d *fakeDevice) NewCmdBuffer() (driver.CmdBuffer, error) {
	return &fakeCmdBuffer{dev: d}, nil
}

func (d *fakeDevice) Submit(cb driver.CmdBuffer, wait, signal driver.Semaphore, fence driver.Fence) error {
	d.submits++
	c := cb.(*fakeCmdBuffer)
	f := fence.(*fakeFence)
	if f.signaled {
		d.violate("submit with a signaled fence")
	}
	if c.recording {
		d.violate("submit of a command buffer still recording")
	}
	c.pending = true
	f.pending = c
	return nil
}

func (d *fakeDevice) WaitIdle() error {
	d.idleSeqs = append(d.idleSeqs, d.tick())
	for _, f := range d.fences {
		f.complete()
	}
	return nil
}

type fakeFence struct {
	dev       *fakeDevice
	signaled  bool
	pending   *fakeCmdBuffer
	destroyed bool
}

func (f *fakeFence) complete() {
	if f.pending != nil {
		f.pending.pending = false
		f.pending = nil
		f.signaled = true
	}
}

func (f *fakeFence) Wait(timeout time.Duration) error {
	// The fake GPU finishes by the time the CPU waits.
	f.complete()
	if !f.signaled {
		return driver.ErrTimeout
	}
	return nil
}

func (f *fakeFence) Reset() error {
	f.signaled = false
	return nil
}

func (f *fakeFence) Destroy() { f.destroyed = true }

type fakeSemaphore struct{ destroyed bool }

func (s *fakeSemaphore) Destroy() { s.destroyed = true }

type fakeCmdBuffer struct {
	dev       *fakeDevice
	pending   bool
	recording bool
	target    driver.Target
	width     int
	height    int
	clear     [4]float32
	consts    driver.DrawConstants
	draws     int
	destroyed bool
}

func (c *fakeCmdBuffer) Begin() error {
	if c.pending {
		c.dev.violate("command buffer re-recorded while in flight")
	}
	c.recording = true
	return nil
}

func (c *fakeCmdBuffer) BeginPass(t driver.Target, width, height int, clear [4]float32) {
	if t.(*fakeTarget).sc.destroyed {
		c.dev.violate("render pass targets a destroyed swapchain")
	}
	c.target = t
	c.width = width
	c.height = height
	c.clear = clear
}

func (c *fakeCmdBuffer) SetViewport(width, height int) {
	if width != c.width || height != c.height {
		c.dev.violate("viewport does not match render area")
	}
}

func (c *fakeCmdBuffer) SetScissor(width, height int) {
	if width != c.width || height != c.height {
		c.dev.violate("scissor does not match render area")
	}
}

func (c *fakeCmdBuffer) SetConstants(dc *driver.DrawConstants) { c.consts = *dc }

func (c *fakeCmdBuffer) SetPipeline() {}

func (c *fakeCmdBuffer) Draw(vertCount int) { c.draws += vertCount }

func (c *fakeCmdBuffer) EndPass() {}

func (c *fakeCmdBuffer) End() error {
	c.recording = false
	return nil
}

func (c *fakeCmdBuffer) Destroy() { c.destroyed = true }

// fakeSurface scripts the window system: tests mutate its
// extent, transform and suboptimal flag between frames.
type fakeSurface struct {
	dev        *fakeDevice
	width      int
	height     int
	transform  driver.Transform
	suboptimal bool
	probes     int
	chains     []*fakeSwapchain
	destroyed  bool
}

func (s *fakeSurface) Destroy() { s.destroyed = true }

func (s *fakeSurface) Probe() (driver.SurfaceInfo, error) {
	s.probes++
	return driver.SurfaceInfo{
		Width:     s.width,
		Height:    s.height,
		Transform: s.transform,
	}, nil
}

func (s *fakeSurface) NewSwapchain(info driver.SwapchainInfo, old driver.Swapchain) (driver.Swapchain, error) {
	sc := &fakeSwapchain{
		dev:  s.dev,
		surf: s,
		info: info,
		// Platforms routinely hand back more images
		// than the requested minimum.
		images: info.MinImages + 1,
		old:    old,
	}
	s.chains = append(s.chains, sc)
	return sc, nil
}

type fakeSwapchain struct {
	dev        *fakeDevice
	surf       *fakeSurface
	info       driver.SwapchainInfo
	images     int
	old        driver.Swapchain
	next       int
	targets    int
	destroys   int
	destroySeq int
	destroyed  bool
}

func (sc *fakeSwapchain) ImageCount() int { return sc.images }

func (sc *fakeSwapchain) NewTarget(index int) (driver.Target, error) {
	sc.targets++
	return &fakeTarget{sc: sc}, nil
}

func (sc *fakeSwapchain) Acquire(sig driver.Semaphore) (int, error) {
	if sc.destroyed {
		sc.dev.violate("acquire on a destroyed swapchain")
	}
	i := sc.next % sc.images
	sc.next++
	return i, nil
}

func (sc *fakeSwapchain) Present(index int, wait driver.Semaphore) (bool, error) {
	if sc.destroyed {
		sc.dev.violate("present on a destroyed swapchain")
	}
	return sc.surf.suboptimal, nil
}

func (sc *fakeSwapchain) Destroy() {
	if sc.destroyed {
		sc.dev.violate("swapchain destroyed twice")
	}
	sc.destroyed = true
	sc.destroys++
	sc.destroySeq = sc.dev.tick()
}

type fakeTarget struct {
	sc        *fakeSwapchain
	destroyed bool
}

func (t *fakeTarget) Destroy() { t.destroyed = true }
