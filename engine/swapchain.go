// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"log"

	"prerot/driver"
)

// generation is one swapchain and the resources tied to its
// images. A rebuild creates a whole new generation rather
// than mutating the live one.
type generation struct {
	sc        driver.Swapchain
	transform driver.Transform

	// Logical (unrotated) surface extent.
	surfW, surfH int

	// Display-space image extent: the surface extent with
	// width and height exchanged for quarter-turns.
	imgW, imgH int

	// Per-image render targets, created lazily on first
	// acquire. nil means not yet created.
	targets []driver.Target

	// Frame at which this generation, once superseded, can
	// be destroyed. Meaningful only on the retiring slot.
	retireAt uint64
}

// target returns the render target for the image at index,
// creating it on first use. Images never acquired before a
// rebuild never pay the setup cost.
func (g *generation) target(index int) (driver.Target, error) {
	if g.targets[index] == nil {
		t, err := g.sc.NewTarget(index)
		if err != nil {
			return nil, err
		}
		g.targets[index] = t
	}
	return g.targets[index], nil
}

// destroy releases the generation's targets and swapchain.
func (g *generation) destroy() {
	for i, t := range g.targets {
		if t != nil {
			t.Destroy()
			g.targets[i] = nil
		}
	}
	g.sc.Destroy()
}

// buildGeneration probes the surface and creates a new
// generation for its current extent and pre-transform.
// old, when non-nil, is chained as the new swapchain's
// parent and stays owned by the caller.
func (r *renderer) buildGeneration(old driver.Swapchain) (*generation, error) {
	info, err := r.surf.Probe()
	if err != nil {
		return nil, err
	}
	g := &generation{
		transform: info.Transform,
		surfW:     info.Width,
		surfH:     info.Height,
		imgW:      info.Width,
		imgH:      info.Height,
	}
	if info.Transform.Swapped() {
		g.imgW, g.imgH = g.imgH, g.imgW
	}
	sc, err := r.surf.NewSwapchain(driver.SwapchainInfo{
		Width:     g.imgW,
		Height:    g.imgH,
		Transform: info.Transform,
		MinImages: r.cfg.MinImages,
	}, old)
	if err != nil {
		return nil, err
	}
	g.sc = sc
	g.targets = make([]driver.Target, sc.ImageCount())
	return g, nil
}

// requestRebuild marks the active swapchain as stale.
// The flag is consumed at the next frame boundary.
func (r *renderer) requestRebuild() {
	r.pending = true
}

// shouldRebuildNow decides whether this frame boundary
// rebuilds the swapchain. A pending request or a half-turn
// rotation triggers immediately; a bare suboptimal signal
// counts down the rotation latency and triggers only at
// zero, absorbing the lag between a rotation event and the
// platform's transform-changed signal.
// A trigger resets the countdown and consumes the pending
// flag.
func (r *renderer) shouldRebuildNow(suboptimal, halfTurn bool) bool {
	if !suboptimal && !r.pending {
		return false
	}
	if !halfTurn && !r.pending {
		r.latency--
		if r.latency > 0 {
			return false
		}
	}
	r.latency = r.cfg.RotationLatency
	r.pending = false
	return true
}

// swapToNew installs g as the current generation and moves
// the superseded one to the retiring slot, to be destroyed
// once every in-flight frame that could reference it has
// drained.
// At most one retiring generation is tracked. A second
// rebuild arriving before the first retires forces a device
// wait and immediate destruction of the older one.
func (r *renderer) swapToNew(g *generation) error {
	if r.retiring != nil {
		log.Printf("[!] swapchain rebuilt twice within %d frames", r.cfg.FramesInFlight)
		if err := r.dev.WaitIdle(); err != nil {
			return err
		}
		r.retiring.destroy()
		r.retiring = nil
	}
	r.retiring = r.current
	r.retiring.retireAt = r.frame + uint64(r.cfg.FramesInFlight)
	r.current = g
	return nil
}

// retireIfDue destroys the retiring generation when frame
// reaches its retirement marker. It is a no-op at any other
// frame and when nothing is retiring.
func (r *renderer) retireIfDue(frame uint64) {
	if r.retiring == nil || r.retiring.retireAt != frame {
		return
	}
	r.retiring.destroy()
	r.retiring = nil
	log.Printf("swapchain retired at frame %d", frame)
}

// teardown waits for the device to go idle and then
// destroys every live generation unconditionally.
// Used only at full shutdown.
func (r *renderer) teardown() error {
	err := r.dev.WaitIdle()
	if r.retiring != nil {
		r.retiring.destroy()
		r.retiring = nil
	}
	if r.current != nil {
		r.current.destroy()
		r.current = nil
	}
	return err
}
