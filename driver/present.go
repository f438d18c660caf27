// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"github.com/chewxy/math32"
)

// Transform is a display pre-transform: the rotation that
// the presentation engine applies between the rendered
// image and the physical display.
// Content must be counter-rotated in the shader stage to
// compensate.
type Transform int

// Pre-transforms.
const (
	Identity Transform = iota
	Rotate90
	Rotate180
	Rotate270
)

// Swapped reports whether t is a quarter-turn, in which
// case swapchain images use the surface extent with width
// and height exchanged.
func (t Transform) Swapped() bool {
	return t == Rotate90 || t == Rotate270
}

// HalfTurnFrom reports whether going from u to t is a
// 180-degree rotation. A half-turn does not change the
// image extent, so a swapchain rebuild for it carries no
// risk of visual artifacts from extent mismatch.
func (t Transform) HalfTurnFrom(u Transform) bool {
	return (int(t)-int(u)+4)%4 == 2
}

// Radians returns the compensation angle for t.
func (t Transform) Radians() float32 {
	return float32(t) * math32.Pi / 2
}

func (t Transform) String() string {
	switch t {
	case Identity:
		return "identity"
	case Rotate90:
		return "rotate90"
	case Rotate180:
		return "rotate180"
	case Rotate270:
		return "rotate270"
	}
	return "invalid transform"
}

// SurfaceInfo holds the mutable properties of a presentation
// surface: its current extent, in logical (unrotated) pixels,
// and its current pre-transform.
type SurfaceInfo struct {
	Width     int
	Height    int
	Transform Transform
}

// SwapchainInfo describes a swapchain to be created.
// Width and height are given in display space: callers must
// have exchanged them already when Transform.Swapped is true.
type SwapchainInfo struct {
	Width     int
	Height    int
	Transform Transform
	MinImages int
}

// Surface is the interface to a presentation surface.
// Its pixel format and presenting queue family are fixed
// per boot; extent and pre-transform change at the whim of
// the window system and are re-read by Probe.
type Surface interface {
	Destroyer

	// Probe queries the surface's current extent and
	// pre-transform.
	// It is called at startup, at every swapchain build
	// and whenever a present reports the active swapchain
	// as stale.
	Probe() (SurfaceInfo, error)

	// NewSwapchain creates a swapchain for this surface.
	// old, when non-nil, is passed as the chaining parent
	// so the implementation can reuse internal resources;
	// it remains valid and must still be destroyed by the
	// caller once drained.
	NewSwapchain(info SwapchainInfo, old Swapchain) (Swapchain, error)
}

// Swapchain is a generation of presentable images.
// Images are acquired and presented in a cycle; per-image
// render targets are created lazily by NewTarget.
type Swapchain interface {
	Destroyer

	// ImageCount returns the actual number of images the
	// implementation created, which may exceed the
	// requested minimum.
	ImageCount() int

	// NewTarget creates the render target (view and
	// framebuffer) for the image at index.
	NewTarget(index int) (Target, error)

	// Acquire requests the index of the next presentable
	// image, signaling sig when the image is ready to be
	// rendered to.
	// A suboptimal swapchain is not an acquire failure; it
	// is reported at present time.
	Acquire(sig Semaphore) (int, error)

	// Present requests presentation of the image at index,
	// waiting on the wait semaphore.
	// The returned flag reports that the platform considers
	// the swapchain suboptimal or out of date and a rebuild
	// is due; this is a transient signal, not an error.
	Present(index int, wait Semaphore) (rebuild bool, err error)
}

// Target is an opaque per-image render target.
type Target interface {
	Destroyer
}
