// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"log"

	"prerot/driver"
)

// frameSlot holds the per-frame resources of one in-flight
// frame. Slots are indexed by frame count modulo the number
// of frames in flight, so a slot is reused only after its
// fence signals.
type frameSlot struct {
	acquire driver.Semaphore
	render  driver.Semaphore
	fence   driver.Fence
	cmd     driver.CmdBuffer
}

// renderer drives the frame loop against one surface.
// It is not safe for concurrent use; Engine serializes
// access to it.
type renderer struct {
	cfg  Config
	dev  driver.Device
	surf driver.Surface

	// Source texture dimensions, fixed at init, feeding
	// the content-fit scale.
	texW, texH int

	slots []frameSlot
	frame uint64

	// Generation arena.
	current  *generation
	retiring *generation
	pending  bool
	latency  int
}

// newRenderer creates the frame slots and the initial
// swapchain generation.
// Fences start signaled so the first wait on each slot
// passes immediately.
func newRenderer(cfg Config, dev driver.Device, surf driver.Surface, texW, texH int) (*renderer, error) {
	r := &renderer{
		cfg:     cfg,
		dev:     dev,
		surf:    surf,
		texW:    texW,
		texH:    texH,
		latency: cfg.RotationLatency,
	}
	g, err := r.buildGeneration(nil)
	if err != nil {
		return nil, err
	}
	r.current = g
	r.slots = make([]frameSlot, cfg.FramesInFlight)
	for i := range r.slots {
		s := &r.slots[i]
		if s.acquire, err = dev.NewSemaphore(); err != nil {
			r.destroy()
			return nil, err
		}
		if s.render, err = dev.NewSemaphore(); err != nil {
			r.destroy()
			return nil, err
		}
		if s.fence, err = dev.NewFence(true); err != nil {
			r.destroy()
			return nil, err
		}
		if s.cmd, err = dev.NewCmdBuffer(); err != nil {
			r.destroy()
			return nil, err
		}
	}
	log.Printf("renderer: %dx%d surface, %s, %d images, %d frames in flight",
		g.surfW, g.surfH, g.transform, len(g.targets), cfg.FramesInFlight)
	return r, nil
}

// drawFrame produces and presents one frame.
// Any error other than the internally handled rebuild
// signals is unrecoverable; the caller must stop the loop
// and tear the renderer down.
func (r *renderer) drawFrame() error {
	slot := &r.slots[r.frame%uint64(len(r.slots))]

	// Sole blocking point of the steady-state loop. The
	// fence bounds CPU-ahead-of-GPU skew and gates reuse
	// of the slot's command buffer and semaphores.
	if err := slot.fence.Wait(r.cfg.FenceTimeout); err != nil {
		return fmt.Errorf("frame %d: %w", r.frame, err)
	}
	if err := slot.fence.Reset(); err != nil {
		return fmt.Errorf("frame %d: %w", r.frame, err)
	}

	index, err := r.current.sc.Acquire(slot.acquire)
	if err != nil {
		return fmt.Errorf("frame %d: acquire: %w", r.frame, err)
	}

	target, err := r.current.target(index)
	if err != nil {
		return fmt.Errorf("frame %d: target %d: %w", r.frame, index, err)
	}
	if err := r.record(slot.cmd, target); err != nil {
		return fmt.Errorf("frame %d: record: %w", r.frame, err)
	}

	if err := r.dev.Submit(slot.cmd, slot.acquire, slot.render, slot.fence); err != nil {
		return fmt.Errorf("frame %d: submit: %w", r.frame, err)
	}

	rebuild, err := r.current.sc.Present(index, slot.render)
	if err != nil {
		return fmt.Errorf("frame %d: present: %w", r.frame, err)
	}

	if err := r.maybeRebuild(rebuild); err != nil {
		return fmt.Errorf("frame %d: rebuild: %w", r.frame, err)
	}

	r.retireIfDue(r.frame)

	r.frame++
	if r.frame%uint64(r.cfg.LogInterval) == 0 {
		log.Printf("frame %d [%s %dx%d]",
			r.frame, r.current.transform, r.current.imgW, r.current.imgH)
	}
	return nil
}

// maybeRebuild applies the rebuild policy at the frame
// boundary. suboptimal is the present-time staleness signal
// of the frame just presented.
func (r *renderer) maybeRebuild(suboptimal bool) error {
	if !suboptimal && !r.pending {
		return nil
	}
	info, err := r.surf.Probe()
	if err != nil {
		return err
	}
	halfTurn := info.Transform.HalfTurnFrom(r.current.transform)
	if !r.shouldRebuildNow(suboptimal, halfTurn) {
		return nil
	}
	log.Printf("frame %d: rebuilding swapchain (%s -> %s)",
		r.frame, r.current.transform, info.Transform)
	g, err := r.buildGeneration(r.current.sc)
	if err != nil {
		return err
	}
	return r.swapToNew(g)
}

// resized requests a rebuild when the reported dimensions
// differ from the current generation's surface extent.
func (r *renderer) resized(width, height int) {
	if width != r.current.surfW || height != r.current.surfH {
		r.requestRebuild()
	}
}

// destroy releases everything the renderer owns, waiting
// for the device to drain first.
func (r *renderer) destroy() {
	if err := r.teardown(); err != nil {
		log.Printf("[!] renderer teardown: %v", err)
	}
	for i := range r.slots {
		s := &r.slots[i]
		if s.cmd != nil {
			s.cmd.Destroy()
		}
		if s.fence != nil {
			s.fence.Destroy()
		}
		if s.render != nil {
			s.render.Destroy()
		}
		if s.acquire != nil {
			s.acquire.Destroy()
		}
	}
	r.slots = nil
}
